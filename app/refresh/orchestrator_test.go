package refresh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/veilletech/rss-engine/app/fetch"
	"github.com/veilletech/rss-engine/app/normalize"
	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/store"
	"github.com/veilletech/rss-engine/app/translate"
	"github.com/veilletech/rss-engine/app/update"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>%s</title>
<link>https://example.com</link>
<item>
<title>Patch Tuesday security update</title>
<link>https://example.com/%s/security</link>
<description>Critical vulnerability fixed</description>
<pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
</item>
<item>
<title>New feature preview</title>
<link>https://example.com/%s/feature</link>
<description>A new feature is rolling out</description>
<pubDate>Tue, 03 Jun 2025 10:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func feedServer(t *testing.T, name string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedTemplate, name, name, name)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeSourceConfig(t *testing.T, dir string, urls ...string) *sources.ConfigCache {
	t.Helper()

	config := "domain: windows\nsettings:\n  refresh_interval: 3600\n  max_items: 50\n  timeout: 5\nsources:\n"
	for i, url := range urls {
		config += fmt.Sprintf("  - name: \"Feed %d\"\n    url: \"%s\"\n    language: \"en\"\n    enabled: true\n", i, url)
	}

	if err := os.WriteFile(filepath.Join(dir, "windows.yml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := sources.NewConfigCache(dir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	return configCache
}

func newTestOrchestrator(t *testing.T, configCache *sources.ConfigCache) (*Orchestrator, *store.Store) {
	t.Helper()

	s, err := store.Open(update.DomainWindows, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fetcher := fetch.NewFetcher(&http.Client{}, "rss-engine-test/1.0", 4)
	orchestrator := NewOrchestrator(update.DomainWindows, configCache,
		fetcher, normalize.NewNormalizer(), translate.NewService(nil, "fr"), s)
	return orchestrator, s
}

func TestRunStoresFetchedUpdates(t *testing.T) {
	server := feedServer(t, "alpha")
	configCache := writeSourceConfig(t, t.TempDir(), server.URL)
	orchestrator, s := newTestOrchestrator(t, configCache)

	result, err := orchestrator.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Total != 2 {
		t.Errorf("Expected 2 parsed records, got %d", result.Total)
	}
	if result.Stored != 2 {
		t.Errorf("Expected 2 stored records, got %d", result.Stored)
	}
	if s.Count() != 2 {
		t.Errorf("Expected 2 records in the collection, got %d", s.Count())
	}
	if result.Message != "Refresh completed: 2 new, 0 updated" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
	if result.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	for _, u := range s.Snapshot() {
		if u.Category == "" {
			t.Errorf("Record %s was not classified", u.ID)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	server := feedServer(t, "alpha")
	configCache := writeSourceConfig(t, t.TempDir(), server.URL)
	orchestrator, s := newTestOrchestrator(t, configCache)

	if _, err := orchestrator.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	result, err := orchestrator.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Stored != 0 {
		t.Errorf("Expected 0 stored for unchanged upstream content, got %d", result.Stored)
	}
	if s.Count() != 2 {
		t.Errorf("Expected collection unchanged at 2 records, got %d", s.Count())
	}
}

func TestRunPartialSourceFailure(t *testing.T) {
	server := feedServer(t, "alpha")
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(down.Close)

	configCache := writeSourceConfig(t, t.TempDir(), server.URL, down.URL)
	orchestrator, s := newTestOrchestrator(t, configCache)

	result, err := orchestrator.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Stored != 2 {
		t.Errorf("Expected 2 stored records from the healthy source, got %d", result.Stored)
	}
	if s.Count() != 2 {
		t.Errorf("Expected 2 records in the collection, got %d", s.Count())
	}
	if result.Message != "Refresh completed: 2 new, 0 updated (1/2 sources failed)" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
}

func TestRunAllSourcesDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	configCache := writeSourceConfig(t, t.TempDir(), down.URL)
	orchestrator, s := newTestOrchestrator(t, configCache)

	// Seed the collection so we can assert it survives a dead cycle.
	seed := update.Update{
		ID:            "seed",
		Title:         "Existing record",
		Link:          "https://example.com/seed",
		PublishedDate: time.Now().UTC(),
		Category:      "general",
		Source:        "Seed",
	}
	if _, _, err := s.Merge([]update.Update{seed}); err != nil {
		t.Fatal(err)
	}

	result, err := orchestrator.Run(context.Background())
	if err != nil {
		t.Fatalf("All-sources-down must not be an error, got %v", err)
	}
	if result.Stored != 0 || result.Total != 0 {
		t.Errorf("Expected stored=0 total=0, got stored=%d total=%d", result.Stored, result.Total)
	}
	if result.Message != "Refresh failed: no sources reachable, collection unchanged" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
	if s.Count() != 1 {
		t.Errorf("Collection must be untouched, got %d records", s.Count())
	}
}

func TestRunRejectsConcurrentRefresh(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedTemplate, "slow", "slow", "slow")
	}))
	t.Cleanup(slow.Close)

	configCache := writeSourceConfig(t, t.TempDir(), slow.URL)
	orchestrator, _ := newTestOrchestrator(t, configCache)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orchestrator.Run(context.Background())
	}()

	// Give the first cycle time to take the lock before contending.
	time.Sleep(50 * time.Millisecond)

	_, err := orchestrator.Run(context.Background())
	if !errors.Is(err, ErrInProgress) {
		t.Errorf("Expected ErrInProgress, got %v", err)
	}

	close(release)
	wg.Wait()
}

func TestRunUnknownDomainConfig(t *testing.T) {
	configCache := sources.NewConfigCache(t.TempDir())
	orchestrator, _ := newTestOrchestrator(t, configCache)

	if _, err := orchestrator.Run(context.Background()); err == nil {
		t.Error("Expected error when no source config is loaded")
	}
}
