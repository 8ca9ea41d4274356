package detect

import (
	"time"

	"docsync/internal/domain"
	"docsync/internal/state"
)

// Statistics summarizes the change history for status reporting.
type Statistics struct {
	TotalMonitoredURLs int                       `json:"total_monitored_urls"`
	TotalFingerprints  int                       `json:"total_fingerprints"`
	TotalChanges       int                       `json:"total_changes"`
	ChangesByType      map[domain.ChangeType]int `json:"changes_by_type"`
	ChangesLast24h     int                       `json:"changes_last_24h"`
	ChangesLastWeek    int                       `json:"changes_last_week"`
	AverageConfidence  float64                   `json:"average_confidence"`
}

// Summarize computes change statistics over the history log.
func Summarize(history *state.History, fingerprints *state.FingerprintStore, schedules *state.ScheduleStore, now time.Time) Statistics {
	events := history.All()

	stats := Statistics{
		TotalMonitoredURLs: schedules.Len(),
		TotalFingerprints:  fingerprints.Len(),
		TotalChanges:       len(events),
		ChangesByType:      make(map[domain.ChangeType]int),
	}

	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	sum := 0.0
	for _, ev := range events {
		stats.ChangesByType[ev.ChangeType]++
		sum += ev.ConfidenceScore
		if !ev.DetectedAt.Before(dayAgo) {
			stats.ChangesLast24h++
		}
		if !ev.DetectedAt.Before(weekAgo) {
			stats.ChangesLastWeek++
		}
	}

	if len(events) > 0 {
		stats.AverageConfidence = sum / float64(len(events))
	}

	return stats
}
