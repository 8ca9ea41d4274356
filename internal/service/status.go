package service

import (
	"time"

	"docsync/internal/detect"
	"docsync/internal/domain"
	"docsync/internal/state"
)

// OperationStatus returns a copy of an active operation's state.
func (s *SyncService) OperationStatus(operationID string) (domain.SyncOperation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.active[operationID]
	if !ok {
		return domain.SyncOperation{}, false
	}
	return *op, true
}

// ActiveOperations returns copies of all operations currently in flight.
func (s *SyncService) ActiveOperations() []domain.SyncOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SyncOperation, 0, len(s.active))
	for _, op := range s.active {
		out = append(out, *op)
	}
	return out
}

// History returns the most recent sync results, oldest first.
func (s *SyncService) History(limit int) []domain.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.results) {
		limit = len(s.results)
	}
	out := make([]domain.SyncResult, limit)
	copy(out, s.results[len(s.results)-limit:])
	return out
}

// Statistics returns the aggregate synchronization view.
func (s *SyncService) Statistics() domain.SyncStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statisticsLocked()
}

func (s *SyncService) statisticsLocked() domain.SyncStatistics {
	total := s.metrics.TotalSyncs
	denom := total
	if denom < 1 {
		denom = 1
	}

	return domain.SyncStatistics{
		TotalSyncs:          total,
		SuccessfulSyncs:     s.metrics.SuccessfulSyncs,
		FailedSyncs:         s.metrics.FailedSyncs,
		SuccessRate:         float64(s.metrics.SuccessfulSyncs) / float64(denom) * 100,
		AverageSyncTime:     s.metrics.AverageSyncTime,
		LastFullSync:        s.lastFullSync,
		LastIncrementalSync: s.lastIncrementalSync,
		ActiveOperations:    len(s.active),
		TotalDocuments:      s.fingerprints.Len(),
		MonitoredURLs:       s.schedules.Len(),
	}
}

// LastFullSync reports when the last full run completed, nil if never.
func (s *SyncService) LastFullSync() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFullSync
}

// LastIncrementalSync reports when the last incremental run completed, nil if
// never.
func (s *SyncService) LastIncrementalSync() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIncrementalSync
}

// RecentChanges returns change events detected within the window, newest
// first.
func (s *SyncService) RecentChanges(window time.Duration) []domain.ChangeEvent {
	return s.history.Recent(s.now().Add(-window))
}

// ChangeStatistics summarizes the change history.
func (s *SyncService) ChangeStatistics() detect.Statistics {
	return detect.Summarize(s.history, s.fingerprints, s.schedules, s.now())
}

// PruneHistory drops change events older than the configured retention
// window and reports how many were removed.
func (s *SyncService) PruneHistory() int {
	removed := s.history.Prune(s.now().Add(-s.cfg.HistoryRetention))
	if removed > 0 {
		s.logger.Info("pruned change history", "removed", removed)
	}
	return removed
}

// Fingerprints exposes the fingerprint store to status readers.
func (s *SyncService) Fingerprints() *state.FingerprintStore {
	return s.fingerprints
}

// Schedules exposes the schedule store to status readers.
func (s *SyncService) Schedules() *state.ScheduleStore {
	return s.schedules
}

// ChangeHistory exposes the change-event log to status readers.
func (s *SyncService) ChangeHistory() *state.History {
	return s.history
}
