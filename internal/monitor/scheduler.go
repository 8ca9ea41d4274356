// Package monitor owns the per-URL polling cadence: how often each document
// is re-checked, which documents are due now, and rescheduling after a check.
package monitor

import (
	"log/slog"
	"sort"
	"time"

	"docsync/internal/domain"
)

// baseFrequencyHours maps a content type to its base check cadence.
var baseFrequencyHours = map[string]int{
	"procedure":     6,
	"reference":     24,
	"overview":      72,
	"faq":           12,
	"documentation": 48,
}

// fallbackFrequencyHours applies to unrecognized content types.
const fallbackFrequencyHours = 48

// Scheduler manages monitoring schedules over the shared schedule store.
// Entries are removed only by the orchestrator's obsolete cleanup.
type Scheduler struct {
	schedules ScheduleStore
	logger    *slog.Logger
}

// ScheduleStore is the subset of the state store the scheduler needs.
type ScheduleStore interface {
	Get(url string) (domain.MonitoringSchedule, bool)
	Put(url string, entry domain.MonitoringSchedule)
	URLs() []string
}

func NewScheduler(schedules ScheduleStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		schedules: schedules,
		logger:    logger.With("component", "monitor"),
	}
}

// FrequencyFor derives the check cadence from the content-type base rate
// adjusted by priority: high halves it (floor, minimum 1h), low doubles it.
func FrequencyFor(contentType string, priority domain.Priority) int {
	hours, ok := baseFrequencyHours[contentType]
	if !ok {
		hours = fallbackFrequencyHours
	}

	switch priority {
	case domain.PriorityHigh:
		hours /= 2
		if hours < 1 {
			hours = 1
		}
	case domain.PriorityLow:
		hours *= 2
	}

	return hours
}

// Register creates or replaces the schedule entry for url. The frequency is
// derived once here and left untouched by later rescheduling.
func (s *Scheduler) Register(url, contentType string, priority domain.Priority, now time.Time) {
	hours := FrequencyFor(contentType, priority)

	entry := domain.MonitoringSchedule{
		ContentType:    contentType,
		FrequencyHours: hours,
		Priority:       priority,
		LastCheck:      nil,
		NextCheck:      now.Add(time.Duration(hours) * time.Hour),
	}
	s.schedules.Put(url, entry)

	s.logger.Info("monitoring registered",
		"url", url,
		"content_type", contentType,
		"frequency_hours", hours,
	)
}

// Due returns the URLs whose next check time has passed, high priority
// first, then medium, then low; ties keep discovery order.
func (s *Scheduler) Due(now time.Time) []string {
	var due []string
	for _, url := range s.schedules.URLs() {
		entry, ok := s.schedules.Get(url)
		if !ok {
			continue
		}
		if !entry.NextCheck.After(now) {
			due = append(due, url)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, _ := s.schedules.Get(due[i])
		b, _ := s.schedules.Get(due[j])
		return a.Priority.Rank() < b.Priority.Rank()
	})

	return due
}

// MarkChecked records a completed check and advances the next check time by
// the entry's fixed frequency.
func (s *Scheduler) MarkChecked(url string, now time.Time) {
	entry, ok := s.schedules.Get(url)
	if !ok {
		return
	}

	checked := now
	entry.LastCheck = &checked
	entry.NextCheck = now.Add(time.Duration(entry.FrequencyHours) * time.Hour)
	s.schedules.Put(url, entry)
}
