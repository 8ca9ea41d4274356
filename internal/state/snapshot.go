package state

import (
	"encoding/json"
	"fmt"
	"time"

	"docsync/internal/domain"
)

// Snapshot is the persisted form of the three stores. The key set is part of
// the durable format; loading tolerates missing keys (empty collections) and
// ignores unknown ones.
type Snapshot struct {
	Fingerprints        map[string]domain.ContentFingerprint `json:"fingerprints"`
	ChangeHistory       []domain.ChangeEvent                 `json:"change_history"`
	MonitoringSchedules map[string]domain.MonitoringSchedule `json:"monitoring_schedules"`
	SavedAt             time.Time                            `json:"saved_at"`
}

// Encode serializes the current contents of the stores.
func Encode(fps *FingerprintStore, hist *History, scheds *ScheduleStore, savedAt time.Time) ([]byte, error) {
	snap := Snapshot{
		Fingerprints:        fps.snapshot(),
		ChangeHistory:       hist.snapshot(),
		MonitoringSchedules: scheds.snapshot(),
		SavedAt:             savedAt,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode replaces the contents of the stores with the snapshot data.
func Decode(data []byte, fps *FingerprintStore, hist *History, scheds *ScheduleStore) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snap.Fingerprints == nil {
		snap.Fingerprints = make(map[string]domain.ContentFingerprint)
	}
	if snap.MonitoringSchedules == nil {
		snap.MonitoringSchedules = make(map[string]domain.MonitoringSchedule)
	}

	fps.restore(snap.Fingerprints)
	hist.restore(snap.ChangeHistory)
	scheds.restore(snap.MonitoringSchedules)
	return nil
}
