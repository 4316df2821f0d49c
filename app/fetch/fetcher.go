package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/veilletech/rss-engine/app/sources"
)

// Result carries one source's raw feed document or its recorded failure.
// Exactly one of Data and Err is meaningful.
type Result struct {
	Source sources.Source
	Data   []byte
	Err    error
}

// Fetcher retrieves feed documents for a batch of sources with bounded
// parallelism. A single source failing (timeout, non-200, transport error)
// never aborts the batch; Run itself cannot fail.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	concurrency int
}

func NewFetcher(httpClient *http.Client, userAgent string, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		httpClient:  httpClient,
		userAgent:   userAgent,
		concurrency: concurrency,
	}
}

func (f *Fetcher) Run(ctx context.Context, srcs []sources.Source, timeout time.Duration) []Result {
	results := make([]Result, len(srcs))
	sem := make(chan struct{}, f.concurrency)

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := f.fetchOne(ctx, src.URL, timeout)
			results[i] = Result{Source: src, Data: data, Err: err}
		}(i, src)
	}
	wg.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
