package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsync/internal/domain"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	fps := NewFingerprintStore()
	hist := NewHistory()
	scheds := NewScheduleStore()

	saved := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	checked := saved.Add(-time.Hour)

	fp := domain.ContentFingerprint{
		URL:            "https://kb.example.com/a",
		ContentHash:    "c1",
		StructuralHash: "s1",
		MetadataHash:   "m1",
		LastModified:   saved.Add(-48 * time.Hour),
		WordCount:      42,
		Title:          "A",
		SectionCount:   3,
		LinkCount:      1,
	}
	fps.Put(fp)

	hist.Append(domain.ChangeEvent{
		URL:             fp.URL,
		ChangeType:      domain.ChangeNew,
		NewFingerprint:  fp,
		DetectedAt:      saved.Add(-24 * time.Hour),
		ConfidenceScore: 1.0,
		ChangeDetails:   domain.ChangeDetails{Reason: "new content discovered"},
	})

	scheds.Put(fp.URL, domain.MonitoringSchedule{
		ContentType:    "faq",
		FrequencyHours: 12,
		Priority:       domain.PriorityMedium,
		LastCheck:      &checked,
		NextCheck:      checked.Add(12 * time.Hour),
	})

	data, err := Encode(fps, hist, scheds, saved)
	require.NoError(t, err)

	fps2 := NewFingerprintStore()
	hist2 := NewHistory()
	scheds2 := NewScheduleStore()
	require.NoError(t, Decode(data, fps2, hist2, scheds2))

	got, ok := fps2.Get(fp.URL)
	require.True(t, ok)
	assert.Equal(t, fp, got)

	assert.Equal(t, hist.All(), hist2.All())

	entry, ok := scheds2.Get(fp.URL)
	require.True(t, ok)
	assert.Equal(t, 12, entry.FrequencyHours)
	require.NotNil(t, entry.LastCheck)
	assert.True(t, entry.LastCheck.Equal(checked))
}

func TestSnapshot_ToleratesMissingAndUnknownKeys(t *testing.T) {
	fps := NewFingerprintStore()
	hist := NewHistory()
	scheds := NewScheduleStore()

	// Pre-populate to prove Decode replaces rather than merges.
	fps.Put(domain.ContentFingerprint{URL: "https://kb.example.com/stale"})

	data := []byte(`{"saved_at": "2026-01-15T12:00:00Z", "future_field": {"x": 1}}`)
	require.NoError(t, Decode(data, fps, hist, scheds))

	assert.Equal(t, 0, fps.Len())
	assert.Equal(t, 0, hist.Len())
	assert.Equal(t, 0, scheds.Len())
}

func TestSnapshot_DecodeRejectsMalformedJSON(t *testing.T) {
	err := Decode([]byte("{not json"), NewFingerprintStore(), NewHistory(), NewScheduleStore())
	assert.Error(t, err)
}

func TestScheduleStore_DiscoveryOrder(t *testing.T) {
	s := NewScheduleStore()

	s.Put("https://kb.example.com/b", domain.MonitoringSchedule{ContentType: "faq"})
	s.Put("https://kb.example.com/a", domain.MonitoringSchedule{ContentType: "faq"})
	s.Put("https://kb.example.com/b", domain.MonitoringSchedule{ContentType: "reference"}) // replace keeps position

	assert.Equal(t, []string{"https://kb.example.com/b", "https://kb.example.com/a"}, s.URLs())

	s.Delete("https://kb.example.com/b")
	assert.Equal(t, []string{"https://kb.example.com/a"}, s.URLs())
	assert.Equal(t, 1, s.Len())
}

func TestHistory_RecentAndPrune(t *testing.T) {
	h := NewHistory()
	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	for _, age := range []time.Duration{72 * time.Hour, 12 * time.Hour, 2 * time.Hour} {
		h.Append(domain.ChangeEvent{
			URL:        "https://kb.example.com/a",
			ChangeType: domain.ChangeContent,
			DetectedAt: base.Add(-age),
		})
	}

	recent := h.Recent(base.Add(-24 * time.Hour))
	require.Len(t, recent, 2)
	// Newest first.
	assert.Equal(t, base.Add(-2*time.Hour), recent[0].DetectedAt)
	assert.Equal(t, base.Add(-12*time.Hour), recent[1].DetectedAt)

	removed := h.Prune(base.Add(-24 * time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, h.Len())
}
