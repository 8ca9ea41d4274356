package domain

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for due-set sorting; lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// MonitoringSchedule is the polling cadence for one monitored URL.
// FrequencyHours is fixed at registration and never recomputed by
// rescheduling.
type MonitoringSchedule struct {
	ContentType    string     `json:"content_type"`
	FrequencyHours int        `json:"frequency_hours"`
	Priority       Priority   `json:"priority"`
	LastCheck      *time.Time `json:"last_check"`
	NextCheck      time.Time  `json:"next_check"`
}
