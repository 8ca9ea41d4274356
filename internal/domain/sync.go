package domain

import "time"

type OperationType string

const (
	FullSync        OperationType = "full_sync"
	IncrementalSync OperationType = "incremental_sync"
)

type OperationStatus string

const (
	StatusPending   OperationStatus = "pending"
	StatusRunning   OperationStatus = "running"
	StatusCompleted OperationStatus = "completed"
	StatusFailed    OperationStatus = "failed"
)

// SyncOperation tracks one synchronization run in progress. Status moves
// pending -> running -> completed|failed; counters never decrease while
// running.
type SyncOperation struct {
	OperationID   string          `json:"operation_id"`
	OperationType OperationType   `json:"operation_type"`
	Status        OperationStatus `json:"status"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
	URLsProcessed int             `json:"urls_processed"`
	URLsUpdated   int             `json:"urls_updated"`
	URLsFailed    int             `json:"urls_failed"`
	Errors        []string        `json:"errors"`
}

// SyncResult is the immutable summary of a finished run.
// ExecutionTime is in seconds.
type SyncResult struct {
	OperationID    string         `json:"operation_id"`
	OperationType  OperationType  `json:"operation_type"`
	Success        bool           `json:"success"`
	TotalProcessed int            `json:"total_processed"`
	NewlyIndexed   int            `json:"newly_indexed"`
	UpdatedIndexed int            `json:"updated_indexed"`
	RemovedIndexed int            `json:"removed_indexed"`
	Errors         []string       `json:"errors"`
	ExecutionTime  float64        `json:"execution_time"`
	Statistics     SyncStatistics `json:"sync_statistics"`
}

// SyncStatistics is the aggregate view exposed to monitoring callers and
// snapshotted into every SyncResult. SuccessRate is a percentage,
// AverageSyncTime is in seconds.
type SyncStatistics struct {
	TotalSyncs          int        `json:"total_syncs"`
	SuccessfulSyncs     int        `json:"successful_syncs"`
	FailedSyncs         int        `json:"failed_syncs"`
	SuccessRate         float64    `json:"success_rate"`
	AverageSyncTime     float64    `json:"average_sync_time"`
	LastFullSync        *time.Time `json:"last_full_sync"`
	LastIncrementalSync *time.Time `json:"last_incremental_sync"`
	ActiveOperations    int        `json:"active_operations"`
	TotalDocuments      int        `json:"total_documents"`
	MonitoredURLs       int        `json:"monitored_urls"`
}
