package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docsync/internal/domain"
	"docsync/internal/state"
)

const (
	detectionStatePrefix = "change_detection_state_"
	syncStatePrefix      = "sync_state_"
	stateKeyTimeLayout   = "20060102_150405"
)

// systemState is the persisted form of the engine's aggregate metrics and
// recent run history.
type systemState struct {
	SyncMetrics         syncMetrics         `json:"sync_metrics"`
	LastFullSync        *time.Time          `json:"last_full_sync"`
	LastIncrementalSync *time.Time          `json:"last_incremental_sync"`
	SyncHistory         []domain.SyncResult `json:"sync_history"`
	SavedAt             time.Time           `json:"saved_at"`
}

// SaveState persists two snapshots to the object store: the change-detection
// state (fingerprints, change history, schedules) and the engine metrics with
// recent run results. Keys are timestamped so GetLatest finds the newest.
func (s *SyncService) SaveState(ctx context.Context) error {
	if s.objects == nil {
		return nil
	}

	saveTime := s.now()
	stamp := saveTime.UTC().Format(stateKeyTimeLayout)

	detectionData, err := state.Encode(s.fingerprints, s.history, s.schedules, saveTime)
	if err != nil {
		return fmt.Errorf("encode detection state: %w", err)
	}
	detectionKey := detectionStatePrefix + stamp + ".json"
	if err := s.objects.Put(ctx, s.cfg.StateContainer, detectionKey, detectionData); err != nil {
		return fmt.Errorf("save detection state: %w", err)
	}

	s.mu.Lock()
	snap := systemState{
		SyncMetrics:         s.metrics,
		LastFullSync:        s.lastFullSync,
		LastIncrementalSync: s.lastIncrementalSync,
		SavedAt:             saveTime,
	}
	keep := len(s.results)
	if s.cfg.HistoryLimit > 0 && keep > s.cfg.HistoryLimit {
		keep = s.cfg.HistoryLimit
	}
	snap.SyncHistory = append([]domain.SyncResult{}, s.results[len(s.results)-keep:]...)
	s.mu.Unlock()

	systemData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}
	systemKey := syncStatePrefix + stamp + ".json"
	if err := s.objects.Put(ctx, s.cfg.SystemContainer, systemKey, systemData); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	s.logger.Info("state saved", "detection_key", detectionKey, "system_key", systemKey)
	return nil
}

// LoadState restores the latest persisted snapshots. Missing snapshots are
// not an error; the in-memory state simply starts empty.
func (s *SyncService) LoadState(ctx context.Context) error {
	if s.objects == nil {
		return nil
	}

	detectionData, err := s.objects.GetLatest(ctx, s.cfg.StateContainer, detectionStatePrefix)
	if err != nil {
		return fmt.Errorf("load detection state: %w", err)
	}
	if detectionData != nil {
		if err := state.Decode(detectionData, s.fingerprints, s.history, s.schedules); err != nil {
			return fmt.Errorf("load detection state: %w", err)
		}
		s.logger.Info("detection state restored",
			"fingerprints", s.fingerprints.Len(),
			"schedules", s.schedules.Len(),
			"history", s.history.Len(),
		)
	}

	systemData, err := s.objects.GetLatest(ctx, s.cfg.SystemContainer, syncStatePrefix)
	if err != nil {
		return fmt.Errorf("load sync state: %w", err)
	}
	if systemData != nil {
		var snap systemState
		if err := json.Unmarshal(systemData, &snap); err != nil {
			return fmt.Errorf("load sync state: %w", err)
		}
		s.mu.Lock()
		s.metrics = snap.SyncMetrics
		s.lastFullSync = snap.LastFullSync
		s.lastIncrementalSync = snap.LastIncrementalSync
		s.results = snap.SyncHistory
		s.mu.Unlock()
		s.logger.Info("sync state restored", "total_syncs", snap.SyncMetrics.TotalSyncs)
	}

	return nil
}

// contentArchive is the payload stored for each successfully indexed
// document.
type contentArchive struct {
	URL        string                  `json:"url"`
	Metadata   domain.DocumentMetadata `json:"metadata"`
	Content    string                  `json:"content"`
	ArchivedAt time.Time               `json:"archived_at"`
}

// archiveContent stores the raw content of an indexed document, keyed by a
// short content hash so re-archiving identical content overwrites in place.
func (s *SyncService) archiveContent(ctx context.Context, doc *domain.Document, fp domain.ContentFingerprint) error {
	if s.objects == nil {
		return nil
	}

	payload := contentArchive{
		URL:        doc.URL,
		Metadata:   doc.Metadata,
		Content:    doc.Content,
		ArchivedAt: s.now(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	group := doc.Metadata.ContentType
	if group == "" {
		group = "unknown"
	}
	key := fmt.Sprintf("content/%s/%s.json", group, fp.ContentHash[:16])

	return s.objects.Put(ctx, s.cfg.ContentContainer, key, data)
}
