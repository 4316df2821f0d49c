package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veilletech/rss-engine/app/classify"
	"github.com/veilletech/rss-engine/app/fetch"
	"github.com/veilletech/rss-engine/app/normalize"
	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/store"
	"github.com/veilletech/rss-engine/app/translate"
	"github.com/veilletech/rss-engine/app/update"
)

// ErrInProgress is returned when a refresh is requested for a domain that is
// already refreshing. Callers do not wait; the in-flight cycle already covers
// their request.
var ErrInProgress = errors.New("refresh already in progress")

// Result reports the outcome of one refresh cycle. Total counts records
// parsed across all sources; Stored counts records actually inserted or
// updated, which is lower when upstream content is unchanged.
type Result struct {
	Message   string    `json:"message"`
	Stored    int       `json:"stored"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// Orchestrator drives a domain's full fetch-normalize-classify-translate-merge
// cycle. Stage failures are absorbed per source or per record and downgrade
// the outcome to partial; only a persistence failure surfaces as an error, and
// then the prior committed state is untouched.
type Orchestrator struct {
	domain      update.Domain
	configCache *sources.ConfigCache
	fetcher     *fetch.Fetcher
	normalizer  *normalize.Normalizer
	classifier  *classify.Classifier
	translator  *translate.Service
	store       *store.Store

	mu sync.Mutex
}

func NewOrchestrator(domain update.Domain, configCache *sources.ConfigCache,
	fetcher *fetch.Fetcher, normalizer *normalize.Normalizer,
	translator *translate.Service, s *store.Store) *Orchestrator {
	return &Orchestrator{
		domain:      domain,
		configCache: configCache,
		fetcher:     fetcher,
		normalizer:  normalizer,
		classifier:  classify.NewClassifier(domain),
		translator:  translator,
		store:       s,
	}
}

func (o *Orchestrator) Domain() update.Domain {
	return o.domain
}

func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if !o.mu.TryLock() {
		return Result{}, ErrInProgress
	}
	defer o.mu.Unlock()

	started := time.Now()

	config, err := o.configCache.GetConfig(o.domain)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load source config: %w", err)
	}

	srcs := config.EnabledSources()
	timeout := time.Duration(config.Settings.Timeout) * time.Second
	results := o.fetcher.Run(ctx, srcs, timeout)

	var batch []update.Update
	total := 0
	skipped := 0
	translationFailures := 0
	failedSources := 0

	for _, result := range results {
		if result.Err != nil {
			failedSources++
			slog.Warn("Source unreachable, continuing batch",
				"domain", o.domain, "source", result.Source.Name, "error", result.Err)
			continue
		}

		normalized, skippedEntries, err := o.normalizer.Run(result.Data, result.Source, config.Settings.MaxItems)
		if err != nil {
			failedSources++
			slog.Warn("Source document unparseable, continuing batch",
				"domain", o.domain, "source", result.Source.Name, "error", err)
			continue
		}
		skipped += skippedEntries
		total += len(normalized)

		for i := range normalized {
			normalized[i] = o.classifier.Run(normalized[i], result.Source)
		}

		normalized, failed := o.translator.Run(ctx, normalized, result.Source.Language)
		translationFailures += failed

		batch = append(batch, normalized...)
	}

	if len(srcs) > 0 && failedSources == len(srcs) {
		slog.Error("Refresh failed: no sources reachable", "domain", o.domain, "sources", len(srcs))
		return Result{
			Message:   "Refresh failed: no sources reachable, collection unchanged",
			Stored:    0,
			Total:     0,
			Timestamp: time.Now().UTC(),
		}, nil
	}

	inserted, updated, err := o.store.Merge(batch)
	if err != nil {
		return Result{}, fmt.Errorf("failed to persist collection: %w", err)
	}

	message := fmt.Sprintf("Refresh completed: %d new, %d updated", inserted, updated)
	if failedSources > 0 {
		message = fmt.Sprintf("%s (%d/%d sources failed)", message, failedSources, len(srcs))
	}

	slog.Info("Refresh cycle completed",
		"domain", o.domain,
		"duration", time.Since(started),
		"sources", len(srcs),
		"failed_sources", failedSources,
		"total", total,
		"skipped_entries", skipped,
		"translation_failures", translationFailures,
		"inserted", inserted,
		"updated", updated)

	return Result{
		Message:   message,
		Stored:    inserted + updated,
		Total:     total,
		Timestamp: time.Now().UTC(),
	}, nil
}
