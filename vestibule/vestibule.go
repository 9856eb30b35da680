package vestibule

import (
	"sync"
	"time"

	"github.com/vestalabs/habitat/core"
)

// Vestibule bundles the three wellness layers behind one door: arrival
// screening, breeding validation and runtime monitoring.
type Vestibule struct {
	watchdog *Watchdog

	mu      sync.Mutex
	records []core.QuarantineRecord
}

func New() *Vestibule {
	return &Vestibule{watchdog: NewWatchdog()}
}

// ScreenEntity runs the arrival stability check on a text sample. The
// measured ratio is stored on the entity either way; failing entities
// are quarantined on the spot.
func (v *Vestibule) ScreenEntity(entity *core.Entity, textSample string) (bool, string) {
	stable, ratio, reason := EvaluateStability(textSample)
	entity.SetRepetitionRatio(ratio)

	if !stable {
		record := Quarantine(entity, reason)
		v.mu.Lock()
		v.records = append(v.records, record)
		v.mu.Unlock()
		return false, "Quarantined: " + reason
	}
	return true, "Stability check passed"
}

// ValidateBreeding runs the counselor over a candidate pair. Approval
// covers both clean and warning verdicts.
func (v *Vestibule) ValidateBreeding(parentA, parentB *core.Entity) (bool, core.CompatibilityReport) {
	report := EvaluateCompatibility(parentA, parentB)
	return report.Verdict.Permits(), report
}

// MonitorAgent registers a spawned agent process with the watchdog.
func (v *Vestibule) MonitorAgent(entityID string, pid int, name string) {
	v.watchdog.RegisterAgent(entityID, pid, name)
}

// CheckAgentHealth reports whether a monitored agent is within limits.
func (v *Vestibule) CheckAgentHealth(entityID string) (bool, string) {
	return v.watchdog.CheckVitals(entityID)
}

// Watchdog exposes the runtime monitor for metric updates and
// termination.
func (v *Vestibule) Watchdog() *Watchdog {
	return v.watchdog
}

// QuarantineRecords returns a copy of all quarantine records taken so
// far, oldest first.
func (v *Vestibule) QuarantineRecords() []core.QuarantineRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]core.QuarantineRecord, len(v.records))
	copy(out, v.records)
	return out
}

// Release closes the most recent active quarantine record for an
// entity. Returns false when no active record exists. The caller is
// responsible for moving the entity itself back into circulation.
func (v *Vestibule) Release(entityID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := len(v.records) - 1; i >= 0; i-- {
		if v.records[i].EntityID == entityID && v.records[i].Status == core.QuarantineActive {
			now := time.Now().UTC()
			v.records[i].Status = core.QuarantineReleased
			v.records[i].ReleaseDate = &now
			return true
		}
	}
	return false
}
