// Package vestibule is the wellness and safety layer: arrival screening,
// pre-breeding compatibility checks and runtime agent monitoring.
package vestibule

import (
	"fmt"
	"strings"
	"time"

	"github.com/vestalabs/habitat/core"
)

// StabilityThreshold is the diversity ratio an entity's text sample must
// exceed to pass screening.
const StabilityThreshold = 0.4

// EvaluateStability measures thought-pattern diversity in a text sample:
// unique lowercased words over total words. Empty samples never pass.
func EvaluateStability(textSample string) (stable bool, ratio float64, reason string) {
	words := strings.Fields(strings.ToLower(textSample))
	if len(words) == 0 {
		return false, 0.0, "Empty text sample"
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	ratio = float64(len(unique)) / float64(len(words))

	if ratio > StabilityThreshold {
		return true, ratio, fmt.Sprintf("Stable: %.2f diversity ratio", ratio)
	}
	return false, ratio, fmt.Sprintf("Unstable: %.2f diversity ratio (threshold: %v)", ratio, StabilityThreshold)
}

// Quarantine moves an entity out of circulation and returns the audit
// record. The entity's location and status are updated in place.
func Quarantine(entity *core.Entity, reason string) core.QuarantineRecord {
	entity.Location = core.LocationQuarantine
	entity.Status = core.StatusQuarantined

	metrics := map[string]float64{
		"repetition_ratio": 0.0,
		"entropy":          entity.Entropy,
		"stability_score":  entity.StabilityScore,
	}
	if entity.RepetitionRatio != nil {
		metrics["repetition_ratio"] = *entity.RepetitionRatio
	}

	return core.QuarantineRecord{
		EntityID:       entity.ID,
		QuarantineDate: time.Now().UTC(),
		Reason:         reason,
		Metrics:        metrics,
		Status:         core.QuarantineActive,
	}
}
