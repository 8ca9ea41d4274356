// Package fingerprint computes multi-facet content fingerprints: a content
// hash over the raw text, a structural hash over the canonical heading
// outline, and a metadata hash over the document metadata.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"docsync/internal/domain"
)

type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		logger: logger.With("component", "fingerprint"),
		now:    time.Now,
	}
}

// Fingerprint builds a complete fingerprint for one document. It is a pure
// function of its inputs except for the embedded timestamp. A structural
// extraction failure degrades to an empty outline; the returned fingerprint
// is always complete.
func (e *Engine) Fingerprint(url, content string, meta domain.DocumentMetadata) domain.ContentFingerprint {
	structural, err := json.Marshal(extractOutline(content))
	if err != nil {
		e.logger.Warn("structural extraction failed, using empty outline", "url", url, "error", err)
		structural, _ = json.Marshal(emptyOutline())
	}

	metadataJSON, err := json.Marshal(meta)
	if err != nil {
		e.logger.Warn("metadata serialization failed", "url", url, "error", err)
		metadataJSON = []byte("{}")
	}

	return domain.ContentFingerprint{
		URL:            url,
		ContentHash:    hashBytes([]byte(content)),
		StructuralHash: hashBytes(structural),
		MetadataHash:   hashBytes(metadataJSON),
		LastModified:   e.now(),
		WordCount:      len(strings.Fields(content)),
		Title:          meta.Title,
		SectionCount:   countHeadings(content),
		LinkCount:      strings.Count(content, "http") + strings.Count(content, "["),
	}
}

// DocumentID derives the deterministic search-index identifier for a URL.
func DocumentID(url string) string {
	return hashBytes([]byte(url))
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func countHeadings(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			count++
		}
	}
	return count
}
