package vestibule

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vestalabs/habitat/core"
)

// Counselor thresholds.
const (
	MaxTemperatureVariance = 0.6
	MaxSkillCount          = 8
)

// Skill groups that must never co-occur in a combined skillset. A pair
// rejects when every skill of both groups is present.
var forbiddenCombos = [][2][]string{
	{{"filesystem_nuke"}, {"filesystem_write"}},
	{{"network_scan"}, {"dm_policy_open"}},
}

// EvaluateCompatibility runs the pre-breeding checks in fixed order.
// Temperature variance and forbidden skill pairs reject immediately and
// short-circuit; provider mismatch, skill bloat and low stability only
// accumulate warnings. Neither parent is modified.
func EvaluateCompatibility(parentA, parentB *core.Entity) core.CompatibilityReport {
	report := core.CompatibilityReport{
		Timestamp: time.Now().UTC(),
		ParentAID: parentA.ID,
		ParentBID: parentB.ID,
		Checks:    map[string]any{},
		Verdict:   core.VerdictApproved,
		Warnings:  []string{},
	}

	tempDiff := math.Abs(parentA.DNA.Cognition.Temperature() - parentB.DNA.Cognition.Temperature())
	report.Checks["temperature_variance"] = tempDiff
	if tempDiff > MaxTemperatureVariance {
		report.Verdict = core.VerdictRejected
		report.Notes = fmt.Sprintf(
			"Temperature variance %.2f exceeds maximum %v. Offspring would be unstable.",
			tempDiff, MaxTemperatureVariance)
		return report
	}

	providerA := parentA.DNA.Cognition.Provider()
	providerB := parentB.DNA.Cognition.Provider()
	report.Checks["provider_match"] = providerA == providerB
	if providerA != providerB {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Hybrid lineage (%s + %s). Monitor for hallucinations.", providerA, providerB))
	}

	combined := parentA.DNA.Capability.SkillSet()
	for skill := range parentB.DNA.Capability.SkillSet() {
		combined[skill] = true
	}
	report.Checks["total_skills"] = len(combined)
	if len(combined) > MaxSkillCount {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Bloated skillset: %d skills. Child may have high latency.", len(combined)))
	}

	for _, combo := range forbiddenCombos {
		if containsAll(combined, combo[0]) && containsAll(combined, combo[1]) {
			report.Verdict = core.VerdictRejected
			report.Notes = fmt.Sprintf("Forbidden skill combination: %s + %s. Security risk.",
				strings.Join(combo[0], ", "), strings.Join(combo[1], ", "))
			return report
		}
	}

	if parentA.StabilityScore < 0.5 || parentB.StabilityScore < 0.5 {
		report.Warnings = append(report.Warnings,
			"One or both parents have low stability scores. Offspring may inherit instability.")
	}

	if len(report.Warnings) > 0 {
		report.Verdict = core.VerdictWarning
		report.Notes = "Compatible with caveats. Review warnings."
	} else {
		report.Verdict = core.VerdictApproved
		report.Notes = "Fully compatible. Breeding approved."
	}
	return report
}

func containsAll(set map[string]bool, skills []string) bool {
	for _, s := range skills {
		if !set[s] {
			return false
		}
	}
	return true
}
