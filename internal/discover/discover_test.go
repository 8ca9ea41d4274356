package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsync/internal/domain"
)

func newTestClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(Config{BaseURL: baseURL, PageSize: 2, Timeout: 5 * time.Second}, logger)
}

func TestDiscover_PagesThroughManifest(t *testing.T) {
	pages := [][]domain.DiscoveredURL{
		{
			{URL: "https://kb.example.com/a", ContentType: "procedure"},
			{URL: "https://kb.example.com/b", ContentType: "faq"},
		},
		{
			{URL: "https://kb.example.com/c", ContentType: "reference"},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources/kb/manifest", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		require.Less(t, page, len(pages))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"entries":   pages[page],
			"page_info": map[string]int{"page": page, "num_pages": len(pages)},
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Discover(context.Background(), "kb")
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "https://kb.example.com/a", got[0].URL)
	assert.Equal(t, "procedure", got[0].ContentType)
	assert.Equal(t, "https://kb.example.com/c", got[2].URL)
}

func TestDiscover_EmptySource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entries":   []domain.DiscoveredURL{},
			"page_info": map[string]int{"page": 0, "num_pages": 1},
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Discover(context.Background(), "kb")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_PageFailureFailsWholeDiscovery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entries": []domain.DiscoveredURL{
				{URL: "https://kb.example.com/a", ContentType: "faq"},
			},
			"page_info": map[string]int{"page": 0, "num_pages": 3},
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Discover(context.Background(), "kb")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("fetch manifest page %d", 1))
}
