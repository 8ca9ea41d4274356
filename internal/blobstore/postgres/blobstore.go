// Package postgres implements the object store over a single blobs table.
package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// BlobStore persists opaque JSON blobs under (container, key). The newest
// blob for a key prefix is resolved by write time, so snapshot keys carry a
// timestamp and GetLatest restores the most recent state.
type BlobStore struct {
	db *sqlx.DB
}

func NewBlobStore(db *sqlx.DB) *BlobStore {
	return &BlobStore{db: db}
}

func (s *BlobStore) Put(ctx context.Context, container, key string, data []byte) error {
	query := `
		INSERT INTO blobs (container, key, data, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (container, key) DO UPDATE SET
			data = EXCLUDED.data,
			created_at = EXCLUDED.created_at`

	_, err := s.db.ExecContext(ctx, query, container, key, data)
	return err
}

// GetLatest returns the most recently written blob whose key starts with
// keyPrefix, or (nil, nil) when none exists.
func (s *BlobStore) GetLatest(ctx context.Context, container, keyPrefix string) ([]byte, error) {
	query := `
		SELECT data FROM blobs
		WHERE container = $1 AND key LIKE $2 || '%'
		ORDER BY created_at DESC, key DESC
		LIMIT 1`

	var data []byte
	err := s.db.GetContext(ctx, &data, query, container, keyPrefix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
