package index

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsync/internal/domain"
)

func newTestClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(Config{BaseURL: baseURL, APIKey: "secret", Timeout: 5 * time.Second}, logger)
}

func TestUpsert(t *testing.T) {
	doc := domain.IndexDocument{
		ID:      "abc123",
		URL:     "https://kb.example.com/dd",
		Title:   "Edit Direct Deposit",
		Content: "# Edit Direct Deposit\nbody\n",
		Metadata: domain.DocumentMetadata{
			Title:       "Edit Direct Deposit",
			ContentType: "procedure",
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/documents/abc123", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got domain.IndexDocument
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, doc, got)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).Upsert(context.Background(), doc))
}

func TestUpsert_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Upsert(context.Background(), domain.IndexDocument{ID: "abc123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status: 503")
}

func TestDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/documents/abc123", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).Delete(context.Background(), "abc123"))
}

func TestDelete_AbsentDocumentIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).Delete(context.Background(), "missing"))
}
