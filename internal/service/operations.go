package service

import (
	"context"
	"fmt"
	"time"

	"docsync/internal/domain"
)

func (s *SyncService) beginOperation(opType domain.OperationType) *domain.SyncOperation {
	op := &domain.SyncOperation{
		OperationID:   fmt.Sprintf("%s_%d", opType, s.now().UnixNano()),
		OperationType: opType,
		Status:        domain.StatusPending,
		StartedAt:     s.now(),
		Errors:        []string{},
	}

	s.mu.Lock()
	s.active[op.OperationID] = op
	op.Status = domain.StatusRunning
	s.mu.Unlock()

	return op
}

// updateOperation refreshes the running counters; they only ever grow while
// the run is in progress.
func (s *SyncService) updateOperation(op *domain.SyncOperation, processed, updated int, errs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op.URLsProcessed = processed
	op.URLsUpdated = updated
	op.URLsFailed = len(errs)
	op.Errors = append([]string{}, errs...)
}

// finishOperation closes out a run: final status, aggregate metrics with the
// incremental running average, last-sync timestamps, and the appended
// SyncResult. The operation leaves the active set but survives in history.
// An interrupted run does not advance the last-sync timestamps, so the
// truncated sync is re-attempted after a restart.
func (s *SyncService) finishOperation(
	ctx context.Context,
	op *domain.SyncOperation,
	start time.Time,
	totalProcessed, newlyIndexed, updatedIndexed, removedIndexed int,
	errs []string,
) *domain.SyncResult {
	executionTime := s.now().Sub(start).Seconds()
	success := len(errs) == 0

	s.mu.Lock()
	defer s.mu.Unlock()

	completed := s.now()
	op.CompletedAt = &completed
	op.URLsProcessed = totalProcessed
	op.URLsUpdated = newlyIndexed + updatedIndexed
	op.URLsFailed = len(errs)
	op.Errors = append([]string{}, errs...)
	if success {
		op.Status = domain.StatusCompleted
	} else {
		op.Status = domain.StatusFailed
		last := errs[len(errs)-1]
		s.metrics.LastError = &last
	}

	s.metrics.TotalSyncs++
	if success {
		s.metrics.SuccessfulSyncs++
	} else {
		s.metrics.FailedSyncs++
	}
	previousTotal := s.metrics.AverageSyncTime * float64(s.metrics.TotalSyncs-1)
	s.metrics.AverageSyncTime = (previousTotal + executionTime) / float64(s.metrics.TotalSyncs)

	if ctx.Err() == nil {
		if op.OperationType == domain.FullSync {
			t := completed
			s.lastFullSync = &t
		} else {
			t := completed
			s.lastIncrementalSync = &t
		}
	}

	result := domain.SyncResult{
		OperationID:    op.OperationID,
		OperationType:  op.OperationType,
		Success:        success,
		TotalProcessed: totalProcessed,
		NewlyIndexed:   newlyIndexed,
		UpdatedIndexed: updatedIndexed,
		RemovedIndexed: removedIndexed,
		Errors:         append([]string{}, errs...),
		ExecutionTime:  executionTime,
		Statistics:     s.statisticsLocked(),
	}

	s.results = append(s.results, result)
	delete(s.active, op.OperationID)

	return &result
}
