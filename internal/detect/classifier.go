// Package detect compares fingerprint versions, decides whether a change
// occurred, classifies it and scores its significance.
package detect

import (
	"log/slog"
	"time"

	"docsync/internal/domain"
	"docsync/internal/state"
)

// Classifier owns change detection over the shared fingerprint store and
// change history. Classify reports a change without recording it; Commit
// replaces the stored fingerprint and appends the event to the history.
type Classifier struct {
	fingerprints *state.FingerprintStore
	history      *state.History
	logger       *slog.Logger
	now          func() time.Time
}

func NewClassifier(fingerprints *state.FingerprintStore, history *state.History, logger *slog.Logger) *Classifier {
	return &Classifier{
		fingerprints: fingerprints,
		history:      history,
		logger:       logger.With("component", "detect"),
		now:          time.Now,
	}
}

// Classify compares the stored fingerprint for newFP.URL against newFP.
// It returns nil when nothing changed; the stored fingerprint is still
// replaced so the next cycle compares against a fresh copy, but LastModified
// is carried over from the old fingerprint since it tracks the last content
// change, not the last check. A detected change does NOT touch the stores:
// the caller applies it with Commit once the change has actually been
// indexed, so a failed index attempt is re-detected on the next check.
func (c *Classifier) Classify(newFP domain.ContentFingerprint) *domain.ChangeEvent {
	old, ok := c.fingerprints.Get(newFP.URL)
	if !ok {
		return &domain.ChangeEvent{
			URL:             newFP.URL,
			ChangeType:      domain.ChangeNew,
			OldFingerprint:  nil,
			NewFingerprint:  newFP,
			DetectedAt:      c.now(),
			ConfidenceScore: 1.0,
			ChangeDetails:   domain.ChangeDetails{Reason: "new content discovered"},
		}
	}

	var changes []domain.ChangeType
	details := domain.ChangeDetails{}

	if old.ContentHash != newFP.ContentHash {
		changes = append(changes, domain.ChangeContent)
		details.Content = &domain.ContentDelta{
			OldWordCount:    old.WordCount,
			NewWordCount:    newFP.WordCount,
			WordCountChange: newFP.WordCount - old.WordCount,
		}
	}

	if old.StructuralHash != newFP.StructuralHash {
		changes = append(changes, domain.ChangeStructure)
		details.Structure = &domain.StructureDelta{
			OldSectionCount:    old.SectionCount,
			NewSectionCount:    newFP.SectionCount,
			SectionCountChange: newFP.SectionCount - old.SectionCount,
		}
	}

	if old.MetadataHash != newFP.MetadataHash {
		changes = append(changes, domain.ChangeMetadata)
		details.Metadata = &domain.MetadataDelta{
			OldTitle: old.Title,
			NewTitle: newFP.Title,
		}
	}

	if len(changes) == 0 {
		newFP.LastModified = old.LastModified
		c.fingerprints.Put(newFP)
		return nil
	}

	ev := domain.ChangeEvent{
		URL:             newFP.URL,
		ChangeType:      primaryChangeType(changes),
		OldFingerprint:  &old,
		NewFingerprint:  newFP,
		DetectedAt:      c.now(),
		ConfidenceScore: confidence(old, newFP, changes),
		ChangeDetails:   details,
	}

	c.logger.Debug("change detected",
		"url", newFP.URL,
		"change_type", ev.ChangeType,
		"confidence", ev.ConfidenceScore,
	)

	return &ev
}

// Commit applies a detected change: the new fingerprint replaces the stored
// one and the event joins the history. Until Commit runs, the old
// fingerprint stays authoritative and Classify keeps reporting the change.
func (c *Classifier) Commit(ev *domain.ChangeEvent) {
	c.fingerprints.Put(ev.NewFingerprint)
	c.history.Append(*ev)
}
