package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	SourcesDir  string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing per-domain feed source files"`
	DataDir     string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory holding the per-domain cache documents"`
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for refresh tasks"`

	// Refresh behavior
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler tick interval in seconds"`
	FetchConcurrency  int `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" default:"4" description:"Maximum concurrent feed fetches per refresh"`

	// Translation
	TranslatorURL     string `long:"translator-url" env:"TRANSLATOR_URL" description:"Base URL of the translation service (empty disables translation)"`
	TranslatorTimeout int    `long:"translator-timeout" env:"TRANSLATOR_TIMEOUT" default:"10" description:"Translation request timeout in seconds"`
	DisplayLanguage   string `long:"display-language" env:"DISPLAY_LANGUAGE" default:"fr" description:"Target language for stored titles and descriptions"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Veille/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Paris)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SourcesDir:        raw.SourcesDir,
		DataDir:           raw.DataDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		FetchConcurrency:  raw.FetchConcurrency,
		TranslatorURL:     raw.TranslatorURL,
		TranslatorTimeout: raw.TranslatorTimeout,
		DisplayLanguage:   raw.DisplayLanguage,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
