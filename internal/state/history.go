package state

import (
	"sort"
	"sync"
	"time"

	"docsync/internal/domain"
)

// History is the append-only change-event log. Events are pruned by age,
// never mutated.
type History struct {
	mu     sync.RWMutex
	events []domain.ChangeEvent
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Append(ev domain.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

// All returns a copy of the full log in append order.
func (h *History) All() []domain.ChangeEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.ChangeEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Recent returns events detected at or after cutoff, newest first.
func (h *History) Recent(cutoff time.Time) []domain.ChangeEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []domain.ChangeEvent
	for _, ev := range h.events {
		if !ev.DetectedAt.Before(cutoff) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

// Prune drops events detected before cutoff and reports how many were
// removed.
func (h *History) Prune(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.events[:0]
	for _, ev := range h.events {
		if !ev.DetectedAt.Before(cutoff) {
			kept = append(kept, ev)
		}
	}
	removed := len(h.events) - len(kept)
	h.events = kept
	return removed
}

func (h *History) snapshot() []domain.ChangeEvent {
	return h.All()
}

func (h *History) restore(events []domain.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = make([]domain.ChangeEvent, len(events))
	copy(h.events, events)
}
