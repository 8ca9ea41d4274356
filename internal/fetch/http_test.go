package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(maxAttempts int) *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(Config{
		Timeout:        5 * time.Second,
		UserAgent:      "DocSync/1.0",
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, logger)
}

func TestFetch_Success(t *testing.T) {
	body := "# Edit Direct Deposit\n\nSee https://pay.example.com and ![icon](x)\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DocSync/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	doc, err := newTestClient(1).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, doc.URL)
	assert.Equal(t, body, doc.Content)
	assert.Equal(t, "Edit Direct Deposit", doc.Metadata.Title)
	assert.Equal(t, 1, doc.Metadata.ImageCount)
	assert.Positive(t, doc.Metadata.WordCount)
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("# Recovered\nbody\n"))
	}))
	defer srv.Close()

	doc, err := newTestClient(3).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Recovered", doc.Metadata.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ExhaustsAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	doc, err := newTestClient(2).Fetch(context.Background(), srv.URL)
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestFetch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(3).Fetch(ctx, srv.URL)
	require.Error(t, err)
}

func TestCalculateBackoff(t *testing.T) {
	c := newTestClient(5)
	c.initialBackoff = 100 * time.Millisecond
	c.maxBackoff = 300 * time.Millisecond

	assert.Equal(t, 100*time.Millisecond, c.calculateBackoff(1))
	assert.Equal(t, 200*time.Millisecond, c.calculateBackoff(2))
	assert.Equal(t, 300*time.Millisecond, c.calculateBackoff(3)) // capped
	assert.Equal(t, 300*time.Millisecond, c.calculateBackoff(4))
}

func TestExtractMetadata(t *testing.T) {
	content := "intro line\n## First Heading\n# Second Heading\n[a] ![b] http://x\n"
	meta := extractMetadata(content)

	assert.Equal(t, "First Heading", meta.Title)
	assert.Equal(t, 1, meta.ImageCount)
	assert.Equal(t, len([]string{"intro", "line", "##", "First", "Heading", "#", "Second", "Heading", "[a]", "![b]", "http://x"}), meta.WordCount)
}
