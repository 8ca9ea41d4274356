// Package state holds the in-memory stores for fingerprints, monitoring
// schedules and change history, plus the JSON snapshot codec used to persist
// them through an object store. The stores are mutated by the orchestrator's
// single sequential flow; the mutexes exist so status readers never observe
// torn state.
package state

import (
	"sync"

	"docsync/internal/domain"
)

// FingerprintStore keeps the current fingerprint per monitored URL.
type FingerprintStore struct {
	mu           sync.RWMutex
	fingerprints map[string]domain.ContentFingerprint
}

func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{fingerprints: make(map[string]domain.ContentFingerprint)}
}

func (s *FingerprintStore) Get(url string) (domain.ContentFingerprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.fingerprints[url]
	return fp, ok
}

// Put replaces the fingerprint for fp.URL. Fingerprints are replaced, never
// mutated in place.
func (s *FingerprintStore) Put(fp domain.ContentFingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[fp.URL] = fp
}

func (s *FingerprintStore) Delete(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fingerprints, url)
}

func (s *FingerprintStore) URLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urls := make([]string, 0, len(s.fingerprints))
	for url := range s.fingerprints {
		urls = append(urls, url)
	}
	return urls
}

func (s *FingerprintStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fingerprints)
}

func (s *FingerprintStore) snapshot() map[string]domain.ContentFingerprint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.ContentFingerprint, len(s.fingerprints))
	for url, fp := range s.fingerprints {
		out[url] = fp
	}
	return out
}

func (s *FingerprintStore) restore(fingerprints map[string]domain.ContentFingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints = make(map[string]domain.ContentFingerprint, len(fingerprints))
	for url, fp := range fingerprints {
		s.fingerprints[url] = fp
	}
}
