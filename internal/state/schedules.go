package state

import (
	"sort"
	"sync"

	"docsync/internal/domain"
)

// ScheduleStore keeps the monitoring schedule per URL, preserving discovery
// order so that due-set ordering is stable across equal priorities.
type ScheduleStore struct {
	mu        sync.RWMutex
	schedules map[string]domain.MonitoringSchedule
	order     []string
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{schedules: make(map[string]domain.MonitoringSchedule)}
}

func (s *ScheduleStore) Get(url string) (domain.MonitoringSchedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.schedules[url]
	return entry, ok
}

// Put inserts or replaces the schedule for url. First insertion fixes the
// URL's position in discovery order.
func (s *ScheduleStore) Put(url string, entry domain.MonitoringSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[url]; !ok {
		s.order = append(s.order, url)
	}
	s.schedules[url] = entry
}

func (s *ScheduleStore) Delete(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[url]; !ok {
		return
	}
	delete(s.schedules, url)
	for i, u := range s.order {
		if u == url {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// URLs returns the monitored URLs in discovery order.
func (s *ScheduleStore) URLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urls := make([]string, len(s.order))
	copy(urls, s.order)
	return urls
}

func (s *ScheduleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schedules)
}

func (s *ScheduleStore) snapshot() map[string]domain.MonitoringSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.MonitoringSchedule, len(s.schedules))
	for url, entry := range s.schedules {
		out[url] = entry
	}
	return out
}

// restore rebuilds the store from a snapshot map. Snapshot objects carry no
// ordering, so discovery order is re-established lexicographically.
func (s *ScheduleStore) restore(schedules map[string]domain.MonitoringSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = make(map[string]domain.MonitoringSchedule, len(schedules))
	s.order = make([]string, 0, len(schedules))
	for url, entry := range schedules {
		s.schedules[url] = entry
		s.order = append(s.order, url)
	}
	sort.Strings(s.order)
}
