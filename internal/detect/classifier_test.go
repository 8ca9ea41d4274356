package detect

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsync/internal/domain"
	"docsync/internal/state"
)

type classifierFixture struct {
	classifier   *Classifier
	fingerprints *state.FingerprintStore
	history      *state.History
	now          time.Time
}

func newClassifierFixture() *classifierFixture {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	fingerprints := state.NewFingerprintStore()
	history := state.NewHistory()

	c := NewClassifier(fingerprints, history, logger)
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	return &classifierFixture{
		classifier:   c,
		fingerprints: fingerprints,
		history:      history,
		now:          now,
	}
}

func makeFingerprint(url string) domain.ContentFingerprint {
	return domain.ContentFingerprint{
		URL:            url,
		ContentHash:    "content-v1",
		StructuralHash: "structure-v1",
		MetadataHash:   "metadata-v1",
		LastModified:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		WordCount:      100,
		Title:          "Edit Direct Deposit",
		SectionCount:   4,
		LinkCount:      2,
	}
}

// seed classifies and commits a fingerprint so later checks compare
// against it.
func (f *classifierFixture) seed(t *testing.T, fp domain.ContentFingerprint) {
	t.Helper()
	ev := f.classifier.Classify(fp)
	require.NotNil(t, ev)
	f.classifier.Commit(ev)
}

func TestClassify_NewContent(t *testing.T) {
	f := newClassifierFixture()

	fp := makeFingerprint("https://kb.example.com/dd")
	ev := f.classifier.Classify(fp)

	require.NotNil(t, ev)
	assert.Equal(t, domain.ChangeNew, ev.ChangeType)
	assert.Equal(t, 1.0, ev.ConfidenceScore)
	assert.Nil(t, ev.OldFingerprint)
	assert.Equal(t, "new content discovered", ev.ChangeDetails.Reason)
	assert.Equal(t, f.now, ev.DetectedAt)

	// Nothing is stored until the change is committed.
	_, ok := f.fingerprints.Get(fp.URL)
	assert.False(t, ok)
	assert.Equal(t, 0, f.history.Len())

	f.classifier.Commit(ev)

	stored, ok := f.fingerprints.Get(fp.URL)
	require.True(t, ok)
	assert.Equal(t, fp, stored)
	assert.Equal(t, 1, f.history.Len())
}

func TestClassify_RedetectsUncommittedChange(t *testing.T) {
	f := newClassifierFixture()

	old := makeFingerprint("https://kb.example.com/dd")
	f.seed(t, old)

	fresh := old
	fresh.ContentHash = "content-v2"
	fresh.WordCount = 150

	// Detected but never committed, e.g. the index rejected the document.
	require.NotNil(t, f.classifier.Classify(fresh))

	stored, ok := f.fingerprints.Get(old.URL)
	require.True(t, ok)
	assert.Equal(t, old, stored)

	// The same change surfaces again on the next check.
	again := f.classifier.Classify(fresh)
	require.NotNil(t, again)
	assert.Equal(t, domain.ChangeContent, again.ChangeType)
	assert.Equal(t, 1, f.history.Len())
}

func TestClassify_NoChangeReturnsNil(t *testing.T) {
	f := newClassifierFixture()

	fp := makeFingerprint("https://kb.example.com/dd")
	f.seed(t, fp)

	recheck := fp
	recheck.LastModified = f.now // fresh check timestamp
	ev := f.classifier.Classify(recheck)

	assert.Nil(t, ev)
	assert.Equal(t, 1, f.history.Len())

	// The stored copy is refreshed but keeps the original change timestamp.
	stored, ok := f.fingerprints.Get(fp.URL)
	require.True(t, ok)
	assert.Equal(t, fp.LastModified, stored.LastModified)
}

func TestClassify_ContentChange(t *testing.T) {
	f := newClassifierFixture()

	old := makeFingerprint("https://kb.example.com/dd")
	f.seed(t, old)

	fresh := old
	fresh.ContentHash = "content-v2"
	fresh.WordCount = 125

	ev := f.classifier.Classify(fresh)

	require.NotNil(t, ev)
	assert.Equal(t, domain.ChangeContent, ev.ChangeType)
	// |125-100| / 100 * 2 = 0.5
	assert.InDelta(t, 0.5, ev.ConfidenceScore, 1e-9)

	require.NotNil(t, ev.ChangeDetails.Content)
	assert.Equal(t, 100, ev.ChangeDetails.Content.OldWordCount)
	assert.Equal(t, 125, ev.ChangeDetails.Content.NewWordCount)
	assert.Equal(t, 25, ev.ChangeDetails.Content.WordCountChange)

	require.NotNil(t, ev.OldFingerprint)
	assert.Equal(t, old, *ev.OldFingerprint)
}

func TestClassify_StructureOutranksContent(t *testing.T) {
	f := newClassifierFixture()

	old := makeFingerprint("https://kb.example.com/dd")
	f.seed(t, old)

	fresh := old
	fresh.ContentHash = "content-v2"
	fresh.StructuralHash = "structure-v2"
	fresh.WordCount = 110
	fresh.SectionCount = 5

	ev := f.classifier.Classify(fresh)

	require.NotNil(t, ev)
	assert.Equal(t, domain.ChangeStructure, ev.ChangeType)
	// structure: |5-4|/4*3 = 0.75 beats content: |110-100|/100*2 = 0.2
	assert.InDelta(t, 0.75, ev.ConfidenceScore, 1e-9)
	require.NotNil(t, ev.ChangeDetails.Structure)
	assert.Equal(t, 1, ev.ChangeDetails.Structure.SectionCountChange)
	require.NotNil(t, ev.ChangeDetails.Content)
}

func TestClassify_MetadataConfidence(t *testing.T) {
	f := newClassifierFixture()

	old := makeFingerprint("https://kb.example.com/dd")
	f.seed(t, old)

	retitled := old
	retitled.MetadataHash = "metadata-v2"
	retitled.Title = "Edit Direct Deposit (Updated)"

	ev := f.classifier.Classify(retitled)
	require.NotNil(t, ev)
	assert.Equal(t, domain.ChangeMetadata, ev.ChangeType)
	assert.InDelta(t, 0.8, ev.ConfidenceScore, 1e-9)
	require.NotNil(t, ev.ChangeDetails.Metadata)
	assert.Equal(t, "Edit Direct Deposit", ev.ChangeDetails.Metadata.OldTitle)
	f.classifier.Commit(ev)

	// A metadata change without a title change scores low.
	sameTitle := retitled
	sameTitle.MetadataHash = "metadata-v3"
	ev = f.classifier.Classify(sameTitle)
	require.NotNil(t, ev)
	assert.InDelta(t, 0.3, ev.ConfidenceScore, 1e-9)
}

func TestClassify_ConfidenceClampedAndGuarded(t *testing.T) {
	f := newClassifierFixture()

	old := makeFingerprint("https://kb.example.com/dd")
	old.WordCount = 0
	old.SectionCount = 0
	f.seed(t, old)

	fresh := old
	fresh.ContentHash = "content-v2"
	fresh.StructuralHash = "structure-v2"
	fresh.WordCount = 500
	fresh.SectionCount = 9

	ev := f.classifier.Classify(fresh)
	require.NotNil(t, ev)
	assert.Equal(t, 1.0, ev.ConfidenceScore)
	assert.GreaterOrEqual(t, ev.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, ev.ConfidenceScore, 1.0)
}

func TestPrimaryChangeType(t *testing.T) {
	assert.Equal(t, domain.ChangeStructure, primaryChangeType([]domain.ChangeType{
		domain.ChangeMetadata, domain.ChangeContent, domain.ChangeStructure,
	}))
	assert.Equal(t, domain.ChangeContent, primaryChangeType([]domain.ChangeType{
		domain.ChangeMetadata, domain.ChangeContent,
	}))
	assert.Equal(t, domain.ChangeMetadata, primaryChangeType([]domain.ChangeType{
		domain.ChangeMetadata,
	}))
}

func TestSummarize(t *testing.T) {
	f := newClassifierFixture()
	schedules := state.NewScheduleStore()
	schedules.Put("https://kb.example.com/a", domain.MonitoringSchedule{ContentType: "faq"})

	first := makeFingerprint("https://kb.example.com/a")
	f.seed(t, first)

	changed := first
	changed.ContentHash = "content-v2"
	changed.WordCount = 150
	f.seed(t, changed)

	stats := Summarize(f.history, f.fingerprints, schedules, f.now)

	assert.Equal(t, 2, stats.TotalChanges)
	assert.Equal(t, 1, stats.TotalFingerprints)
	assert.Equal(t, 1, stats.TotalMonitoredURLs)
	assert.Equal(t, 1, stats.ChangesByType[domain.ChangeNew])
	assert.Equal(t, 1, stats.ChangesByType[domain.ChangeContent])
	assert.Equal(t, 2, stats.ChangesLast24h)
	assert.Equal(t, 2, stats.ChangesLastWeek)
	// (1.0 + 1.0) / 2: the content change moved half the words, capped ratio*2 at 1
	assert.InDelta(t, 1.0, stats.AverageConfidence, 1e-9)
}
