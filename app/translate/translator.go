package translate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Translator rewrites a single text from one language to another. The HTTP
// client below is the production implementation; tests swap in a
// deterministic stub.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Client talks to a LibreTranslate-compatible endpoint (POST /translate).
type Client struct {
	client  *resty.Client
	baseURL string
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond),
		baseURL: baseURL,
	}
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
	}

	// ForceContentType: some deployments answer with text/plain or no
	// Content-Type at all; the body is JSON regardless.
	var resp translateResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&resp).
		ForceContentType("application/json").
		Post(c.baseURL + "/translate")

	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}

	if httpResp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("translation service returned HTTP %d", httpResp.StatusCode())
	}

	if resp.Error != "" {
		return "", fmt.Errorf("translation service error: %s", resp.Error)
	}

	if resp.TranslatedText == "" {
		return "", fmt.Errorf("translation service returned empty text")
	}

	return resp.TranslatedText, nil
}
