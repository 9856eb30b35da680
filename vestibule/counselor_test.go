package vestibule_test

import (
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/vestibule"
)

func breedingCandidate(t *testing.T, name string, temperature float64, provider string, skills ...string) *core.Entity {
	t.Helper()
	e := core.NewEntity(name, "PAIR0000")
	e.DNA.Cognition = core.Cognition{"temperature": temperature, "provider": provider}
	e.DNA.Capability = core.Capability{Skills: skills}
	return e
}

func TestCompatibilityApprovedPair(t *testing.T) {
	a := breedingCandidate(t, "ParentA", 0.7, "anthropic", "coding", "writing")
	b := breedingCandidate(t, "ParentB", 0.5, "anthropic", "analysis", "research")

	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictApproved)
	gt.Equal(t, report.Notes, "Fully compatible. Breeding approved.")
	gt.A(t, report.Warnings).Length(0)
	gt.Equal(t, report.ParentAID, a.ID)
	gt.Equal(t, report.ParentBID, b.ID)
	gt.Equal(t, report.Checks["provider_match"], any(true))
	gt.Equal(t, report.Checks["total_skills"], any(4))
	gt.True(t, report.Verdict.Permits())
}

func TestCompatibilityTemperatureVarianceRejects(t *testing.T) {
	a := breedingCandidate(t, "Icy", 0.1, "anthropic")
	b := breedingCandidate(t, "Blazing", 0.9, "anthropic")

	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictRejected)
	gt.Equal(t, report.Notes, "Temperature variance 0.80 exceeds maximum 0.6. Offspring would be unstable.")
	gt.False(t, report.Verdict.Permits())

	// Short-circuit: later checks never ran.
	if _, ran := report.Checks["provider_match"]; ran {
		t.Error("provider check should not run after a temperature rejection")
	}
	if _, ran := report.Checks["total_skills"]; ran {
		t.Error("skill check should not run after a temperature rejection")
	}
}

func TestCompatibilityMissingTemperatureDefaults(t *testing.T) {
	a := core.NewEntity("Blank Slate", "PAIR0001")
	a.DNA.Cognition = core.Cognition{}
	b := breedingCandidate(t, "Hot Head", 0.9, "unknown")

	// Missing temperature reads as 0.5; variance 0.4 stays under the cap.
	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictApproved)
}

func TestCompatibilityProviderMismatchWarns(t *testing.T) {
	a := breedingCandidate(t, "Left", 0.5, "anthropic")
	b := breedingCandidate(t, "Right", 0.5, "openai")

	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictWarning)
	gt.Equal(t, report.Notes, "Compatible with caveats. Review warnings.")
	gt.A(t, report.Warnings).Length(1)
	gt.Equal(t, report.Warnings[0], "Hybrid lineage (anthropic + openai). Monitor for hallucinations.")
	gt.Equal(t, report.Checks["provider_match"], any(false))
	gt.True(t, report.Verdict.Permits())
}

func TestCompatibilitySkillBloatWarns(t *testing.T) {
	skillsA := make([]string, 0, 5)
	skillsB := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		skillsA = append(skillsA, fmt.Sprintf("skill-a%d", i))
		skillsB = append(skillsB, fmt.Sprintf("skill-b%d", i))
	}
	a := breedingCandidate(t, "Packed", 0.5, "anthropic", skillsA...)
	b := breedingCandidate(t, "Loaded", 0.5, "anthropic", skillsB...)

	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictWarning)
	gt.Equal(t, report.Checks["total_skills"], any(10))
	gt.Equal(t, report.Warnings[0], "Bloated skillset: 10 skills. Child may have high latency.")
}

func TestCompatibilityForbiddenSkillPairRejects(t *testing.T) {
	a := breedingCandidate(t, "Wrecker", 0.5, "anthropic", "filesystem_nuke")
	b := breedingCandidate(t, "Scribe", 0.5, "anthropic", "filesystem_write")

	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictRejected)
	gt.Equal(t, report.Notes, "Forbidden skill combination: filesystem_nuke + filesystem_write. Security risk.")
}

func TestCompatibilityRejectionKeepsEarlierWarnings(t *testing.T) {
	a := breedingCandidate(t, "Scanner", 0.5, "anthropic", "network_scan")
	b := breedingCandidate(t, "Open Door", 0.5, "openai", "dm_policy_open")

	// The provider warning lands before the forbidden pair rejects.
	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictRejected)
	gt.S(t, report.Notes).Contains("Forbidden skill combination")
	gt.A(t, report.Warnings).Length(1)
	gt.S(t, report.Warnings[0]).Contains("Hybrid lineage")
}

func TestCompatibilityLowStabilityWarns(t *testing.T) {
	a := breedingCandidate(t, "Shaky", 0.5, "anthropic")
	a.StabilityScore = 0.4
	b := breedingCandidate(t, "Solid", 0.5, "anthropic")

	report := vestibule.EvaluateCompatibility(a, b)
	gt.Equal(t, report.Verdict, core.VerdictWarning)
	gt.Equal(t, report.Warnings[0], "One or both parents have low stability scores. Offspring may inherit instability.")
}

func TestValidateBreedingGate(t *testing.T) {
	v := vestibule.New()

	a := breedingCandidate(t, "Warm", 0.5, "anthropic")
	b := breedingCandidate(t, "Cool", 0.5, "openai")
	ok, report := v.ValidateBreeding(a, b)
	gt.True(t, ok)
	gt.Equal(t, report.Verdict, core.VerdictWarning)

	c := breedingCandidate(t, "Frozen", 0.1, "anthropic")
	d := breedingCandidate(t, "Molten", 0.9, "anthropic")
	ok, report = v.ValidateBreeding(c, d)
	gt.False(t, ok)
	gt.Equal(t, report.Verdict, core.VerdictRejected)
}
