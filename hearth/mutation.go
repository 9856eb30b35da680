package hearth

import (
	"math"
	"strings"

	"github.com/vestalabs/habitat/core"
)

// Mutation rates. Each check rolls independently on every breeding, so
// an offspring can carry several mutations at once.
const (
	temperatureShiftRate = 0.10
	skillAwakeningRate   = 0.01
	valueInsertionRate   = 0.05
	toneMutationRate     = 0.05
)

var temperatureShifts = []float64{-0.2, -0.1, 0.1, 0.2}

// Skills that can awaken spontaneously even when neither parent has them.
var awakeningSkills = []string{
	"browser-automation",
	"advanced-search",
	"data-analysis",
	"creative-writing",
}

// Core values that can appear de novo, as "key: description" pairs.
var insertableValues = []string{
	"curiosity: Seeks to understand deeply",
	"efficiency: Values speed and optimization",
	"empathy: Prioritizes understanding others",
	"precision: Accuracy above all",
	"creativity: Embraces novel approaches",
	"stability: Favors proven methods",
}

// Voices a tone mutation can graft onto the offspring.
var mutantVoices = []string{
	"Playful",
	"Serious",
	"Sarcastic",
	"Warm",
	"Clinical",
	"Enthusiastic",
}

// Mutate applies the four independent mutation checks to a copy of dna
// and reports whether any of them fired. The input is never modified.
func (e *Engine) Mutate(dna core.DNA) (core.DNA, bool) {
	out := dna.Clone()
	mutated := false

	// Temperature drift. The roll is consumed whether or not the
	// cognition strand carries a temperature at all.
	if e.rng.Float64() < temperatureShiftRate {
		if raw, ok := out.Cognition["temperature"]; ok {
			if current, numeric := asFloat(raw); numeric {
				shift := temperatureShifts[e.rng.Intn(len(temperatureShifts))]
				shifted := math.Min(1.0, math.Max(0.1, current+shift))
				out.Cognition["temperature"] = math.Round(shifted*100) / 100
				mutated = true
			}
		}
	}

	// Skill awakening. Only counts when the skill is genuinely new.
	if e.rng.Float64() < skillAwakeningRate {
		skill := awakeningSkills[e.rng.Intn(len(awakeningSkills))]
		if !out.Capability.HasSkill(skill) {
			out.Capability.Skills = append(out.Capability.Skills, skill)
			mutated = true
		}
	}

	// Core value insertion. Overwriting an inherited value still counts
	// as a mutation.
	if e.rng.Float64() < valueInsertionRate {
		entry := insertableValues[e.rng.Intn(len(insertableValues))]
		key, description, _ := strings.Cut(entry, ": ")
		out.Personality.CoreValues[key] = description
		mutated = true
	}

	// Tone mutation: a second unweighted flip gates the actual graft.
	if e.rng.Float64() < toneMutationRate {
		if e.rng.Float64() < 0.5 {
			voice := mutantVoices[e.rng.Intn(len(mutantVoices))]
			current := out.Personality.ToneStyle["voice"]
			out.Personality.ToneStyle["voice"] = strings.Trim(current+", "+voice, ", ")
			mutated = true
		}
	}

	return out, mutated
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
