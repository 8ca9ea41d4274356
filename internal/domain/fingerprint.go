package domain

import "time"

// ContentFingerprint captures the state of one monitored document at check
// time. Exactly one fingerprint exists per URL; it is replaced on every check,
// never mutated in place.
type ContentFingerprint struct {
	URL            string    `json:"url"`
	ContentHash    string    `json:"content_hash"`
	StructuralHash string    `json:"structural_hash"`
	MetadataHash   string    `json:"metadata_hash"`
	LastModified   time.Time `json:"last_modified"` // last confirmed content change, not last check
	WordCount      int       `json:"word_count"`
	Title          string    `json:"title"`
	SectionCount   int       `json:"section_count"`
	LinkCount      int       `json:"link_count"`
}

type ChangeType string

const (
	ChangeNew       ChangeType = "new"
	ChangeContent   ChangeType = "content"
	ChangeStructure ChangeType = "structure"
	ChangeMetadata  ChangeType = "metadata"
)

// ChangeEvent is an append-only record that a document's fingerprint diverged
// from the prior version.
type ChangeEvent struct {
	URL             string              `json:"url"`
	ChangeType      ChangeType          `json:"change_type"`
	OldFingerprint  *ContentFingerprint `json:"old_fingerprint"`
	NewFingerprint  ContentFingerprint  `json:"new_fingerprint"`
	DetectedAt      time.Time           `json:"detected_at"`
	ConfidenceScore float64             `json:"confidence_score"`
	ChangeDetails   ChangeDetails       `json:"change_details"`
}

// ChangeDetails summarizes the magnitude of each changed category.
type ChangeDetails struct {
	Reason    string          `json:"reason,omitempty"`
	Content   *ContentDelta   `json:"content_change,omitempty"`
	Structure *StructureDelta `json:"structural_change,omitempty"`
	Metadata  *MetadataDelta  `json:"metadata_change,omitempty"`
}

type ContentDelta struct {
	OldWordCount    int `json:"old_word_count"`
	NewWordCount    int `json:"new_word_count"`
	WordCountChange int `json:"word_count_change"`
}

type StructureDelta struct {
	OldSectionCount    int `json:"old_section_count"`
	NewSectionCount    int `json:"new_section_count"`
	SectionCountChange int `json:"section_count_change"`
}

type MetadataDelta struct {
	OldTitle string `json:"old_title"`
	NewTitle string `json:"new_title"`
}
