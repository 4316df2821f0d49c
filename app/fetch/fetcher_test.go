package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veilletech/rss-engine/app/sources"
)

func TestRunFetchesAllSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "payload for %s", r.URL.Path)
	}))
	defer server.Close()

	srcs := []sources.Source{
		{Name: "One", URL: server.URL + "/one", Enabled: true},
		{Name: "Two", URL: server.URL + "/two", Enabled: true},
		{Name: "Three", URL: server.URL + "/three", Enabled: true},
	}

	fetcher := NewFetcher(&http.Client{}, "rss-engine-test/1.0", 2)
	results := fetcher.Run(context.Background(), srcs, 5*time.Second)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, result := range results {
		if result.Err != nil {
			t.Errorf("Result %d: unexpected error: %v", i, result.Err)
		}
		if result.Source.Name != srcs[i].Name {
			t.Errorf("Result %d: expected source %s, got %s", i, srcs[i].Name, result.Source.Name)
		}
		if !strings.HasPrefix(string(result.Data), "payload for") {
			t.Errorf("Result %d: unexpected payload %q", i, result.Data)
		}
	}
}

func TestRunSetsUserAgent(t *testing.T) {
	var seenAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAgent.Store(r.UserAgent())
	}))
	defer server.Close()

	fetcher := NewFetcher(&http.Client{}, "RSS Veille/1.0", 1)
	fetcher.Run(context.Background(), []sources.Source{{Name: "UA", URL: server.URL}}, 5*time.Second)

	if got, _ := seenAgent.Load().(string); got != "RSS Veille/1.0" {
		t.Errorf("Expected user agent 'RSS Veille/1.0', got %q", got)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer ok.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	srcs := []sources.Source{
		{Name: "Healthy", URL: ok.URL, Enabled: true},
		{Name: "Broken", URL: broken.URL, Enabled: true},
		{Name: "Unreachable", URL: "http://127.0.0.1:1", Enabled: true},
	}

	fetcher := NewFetcher(&http.Client{}, "rss-engine-test/1.0", 4)
	results := fetcher.Run(context.Background(), srcs, 5*time.Second)

	if results[0].Err != nil {
		t.Errorf("Healthy source must succeed, got %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("Expected error for non-200 response")
	}
	if results[2].Err == nil {
		t.Error("Expected error for unreachable host")
	}
}

func TestRunHonorsTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer slow.Close()

	fetcher := NewFetcher(&http.Client{}, "rss-engine-test/1.0", 1)
	start := time.Now()
	results := fetcher.Run(context.Background(),
		[]sources.Source{{Name: "Slow", URL: slow.URL}}, 100*time.Millisecond)

	if results[0].Err == nil {
		t.Error("Expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("Timeout was not enforced")
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
	}))
	defer server.Close()

	srcs := make([]sources.Source, 8)
	for i := range srcs {
		srcs[i] = sources.Source{Name: fmt.Sprintf("S%d", i), URL: server.URL}
	}

	fetcher := NewFetcher(&http.Client{}, "rss-engine-test/1.0", 2)
	fetcher.Run(context.Background(), srcs, 5*time.Second)

	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent fetches, observed %d", peak.Load())
	}
}
