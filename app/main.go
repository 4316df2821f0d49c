package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veilletech/rss-engine/app/api"
	"github.com/veilletech/rss-engine/app/cfg"
	"github.com/veilletech/rss-engine/app/fetch"
	"github.com/veilletech/rss-engine/app/normalize"
	"github.com/veilletech/rss-engine/app/query"
	"github.com/veilletech/rss-engine/app/refresh"
	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/store"
	"github.com/veilletech/rss-engine/app/tasks"
	"github.com/veilletech/rss-engine/app/translate"
	"github.com/veilletech/rss-engine/app/update"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting RSS Veille server", "version", appCfg.Version)

	// Load per-domain source configurations
	configCache := sources.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		log.Fatalf("Failed to load source configurations: %v", err)
	}
	slog.Info("Source configurations loaded", "domains", configCache.GetConfigCount(), "sources", configCache.SourceCount())

	// Shared pipeline components
	httpClient := &http.Client{}
	fetcher := fetch.NewFetcher(httpClient, appCfg.UserAgent, appCfg.FetchConcurrency)
	normalizer := normalize.NewNormalizer()

	var translator translate.Translator
	if appCfg.TranslatorURL != "" {
		translator = translate.NewClient(appCfg.TranslatorURL, time.Duration(appCfg.TranslatorTimeout)*time.Second)
		slog.Info("Translation enabled", "url", appCfg.TranslatorURL, "display_language", appCfg.DisplayLanguage)
	} else {
		slog.Info("Translation disabled (TRANSLATOR_URL not set)")
	}
	translationService := translate.NewService(translator, appCfg.DisplayLanguage)

	// One store, query engine and orchestrator per domain
	engines := make(map[update.Domain]*query.Engine)
	orchestrators := make(map[update.Domain]*refresh.Orchestrator)
	for _, domain := range update.Domains {
		s, err := store.Open(domain, appCfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open store for domain %s: %v", domain, err)
		}
		slog.Info("Collection loaded", "domain", domain, "updates", s.Count())

		engines[domain] = query.NewEngine(s)
		orchestrators[domain] = refresh.NewOrchestrator(domain, configCache, fetcher, normalizer, translationService, s)
	}

	// Background scheduler keeps the collections warm
	scheduler := tasks.NewScheduler(configCache, orchestrators)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(engines, orchestrators, configCache, appCfg.DataDir)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
