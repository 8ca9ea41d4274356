// Package index is a minimal REST client for the search index service.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docsync/internal/domain"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client upserts and deletes index documents by their deterministic IDs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger.With("component", "index"),
	}
}

// Upsert creates or replaces a document. Re-indexing the same document is
// idempotent on the index side.
func (c *Client) Upsert(ctx context.Context, doc domain.IndexDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	url := fmt.Sprintf("%s/documents/%s", c.baseURL, doc.ID)
	if err := c.do(ctx, http.MethodPut, url, body); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	c.logger.Debug("indexed document", "id", doc.ID, "url", doc.URL)
	return nil
}

// Delete removes a document by ID. Deleting an absent document is not an
// error.
func (c *Client) Delete(ctx context.Context, docID string) error {
	url := fmt.Sprintf("%s/documents/%s", c.baseURL, docID)
	if err := c.do(ctx, http.MethodDelete, url, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	c.logger.Debug("deleted document", "id", docID)
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
