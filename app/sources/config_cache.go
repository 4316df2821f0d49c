package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/veilletech/rss-engine/app/update"
)

// ConfigCache loads and caches per-domain source configurations. Reads are
// concurrent; LoadConfig replaces a cached entry in place so a reload never
// leaves the cache without a domain.
type ConfigCache struct {
	sourcesDir string
	cache      map[string]*DomainConfig
	mu         sync.RWMutex
}

func NewConfigCache(sourcesDir string) *ConfigCache {
	return &ConfigCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*DomainConfig),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		domain := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(domain)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "domain", domain,
			"sources", len(config.Sources), "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(domain string) (*DomainConfig, error) {
	configFile := filepath.Join(cc.sourcesDir, domain+".yml")
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Domain = domain

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[domain] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(domain update.Domain) (*DomainConfig, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[string(domain)]
	if !ok {
		return nil, fmt.Errorf("source config for domain '%s' not found", domain)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*DomainConfig {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*DomainConfig, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

// SourceCount returns the total number of configured sources across domains.
func (cc *ConfigCache) SourceCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	count := 0
	for _, config := range cc.cache {
		count += len(config.Sources)
	}
	return count
}

func (cc *ConfigCache) parseConfig(configFile string) (*DomainConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config DomainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = 3600
	}
	if config.Settings.MaxItems == 0 {
		config.Settings.MaxItems = 50
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 15
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *DomainConfig) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if _, ok := update.ParseDomain(config.Domain); !ok {
		return fmt.Errorf("unknown domain '%s'", config.Domain)
	}

	if len(config.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	for i, source := range config.Sources {
		if source.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if source.URL == "" {
			return fmt.Errorf("source %d (%s): URL is required", i, source.Name)
		}
	}

	nonNegativeFields := map[string]int{
		"refresh interval": config.Settings.RefreshInterval,
		"max items":        config.Settings.MaxItems,
		"timeout":          config.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must not be negative", fieldName)
		}
	}

	return nil
}
