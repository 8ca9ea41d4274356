package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"docsync/internal/domain"
)

// Fetcher retrieves one document. It must be idempotent and side-effect-free
// on failure; per-call timeouts are its responsibility.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*domain.Document, error)
}

// Indexer maintains the search index. Upsert is idempotent per document ID.
type Indexer interface {
	Upsert(ctx context.Context, doc domain.IndexDocument) error
	Delete(ctx context.Context, docID string) error
}

// ObjectStore persists opaque blobs under container/key. GetLatest returns
// the most recently written object whose key starts with keyPrefix, or
// (nil, nil) when none exists.
type ObjectStore interface {
	Put(ctx context.Context, container, key string, data []byte) error
	GetLatest(ctx context.Context, container, keyPrefix string) ([]byte, error)
}

// Discoverer supplies the candidate URL universe for one source, with
// content-type hints.
type Discoverer interface {
	Discover(ctx context.Context, sourceID string) ([]domain.DiscoveredURL, error)
}

// Publisher notifies downstream consumers of applied change events.
type Publisher interface {
	PublishChange(ctx context.Context, event *domain.ChangeEvent) error
	Close() error
}
