// Package discover retrieves the candidate URL universe for a source from a
// paged JSON manifest endpoint.
package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docsync/internal/domain"
)

type Config struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
}

// Client pages through a source's manifest and returns the discovered URLs
// with their content-type hints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
	logger     *slog.Logger
}

type manifestPage struct {
	Entries  []domain.DiscoveredURL `json:"entries"`
	PageInfo pageInfo               `json:"page_info"`
}

type pageInfo struct {
	Page     int `json:"page"`
	NumPages int `json:"num_pages"`
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		logger:   logger.With("component", "discover"),
	}
}

// Discover fetches every manifest page for the source. A failure on any page
// fails the whole discovery; partial universes would make the obsolete-set
// computation retire live documents.
func (c *Client) Discover(ctx context.Context, sourceID string) ([]domain.DiscoveredURL, error) {
	var all []domain.DiscoveredURL

	for page := 0; ; page++ {
		resp, err := c.fetchPage(ctx, sourceID, page)
		if err != nil {
			return nil, fmt.Errorf("fetch manifest page %d: %w", page, err)
		}

		all = append(all, resp.Entries...)

		c.logger.Debug("fetched manifest page",
			"source", sourceID,
			"page", page,
			"entries", len(resp.Entries),
			"total", len(all),
		)

		if page >= resp.PageInfo.NumPages-1 {
			break
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, sourceID string, page int) (*manifestPage, error) {
	url := fmt.Sprintf("%s/sources/%s/manifest?pageSize=%d&page=%d", c.baseURL, sourceID, c.pageSize, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var pageResp manifestPage
	if err := json.NewDecoder(resp.Body).Decode(&pageResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &pageResp, nil
}
