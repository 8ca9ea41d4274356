// Package fetch retrieves documents over plain HTTP with bounded retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"docsync/internal/domain"
)

// Config holds fetcher configuration.
type Config struct {
	Timeout        time.Duration
	UserAgent      string
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client fetches documents as text and derives lightweight metadata from the
// body. Fetching is idempotent and leaves no side effects on failure.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:      cfg.UserAgent,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "fetch"),
	}
}

// Fetch retrieves one document, retrying transient failures with exponential
// backoff.
func (c *Client) Fetch(ctx context.Context, url string) (*domain.Document, error) {
	var content string
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		content, err = c.doRequest(ctx, url)
		if err == nil {
			doc := &domain.Document{
				URL:      url,
				Content:  content,
				Metadata: extractMetadata(content),
			}
			return doc, nil
		}

		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("fetch failed, retrying",
			"url", url,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doRequest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/plain, text/markdown, text/html")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

// extractMetadata derives document metadata from the text body: the first
// heading becomes the title, and link/image markers are counted.
func extractMetadata(content string) domain.DocumentMetadata {
	meta := domain.DocumentMetadata{
		WordCount:  len(strings.Fields(content)),
		LinkCount:  strings.Count(content, "http") + strings.Count(content, "["),
		ImageCount: strings.Count(content, "!["),
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "#") {
			meta.Title = strings.TrimSpace(strings.TrimLeft(line, "#"))
			break
		}
	}

	return meta
}
