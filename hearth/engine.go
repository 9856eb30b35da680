// Package hearth implements the breeding engine: weighted DNA crossover,
// probabilistic mutation, offspring naming and birth certificates.
//
// Every operation is pure over copies of its inputs; the engine holds no
// state besides its randomness source and is safe for concurrent use.
package hearth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/vestalabs/habitat/core"
)

// Offspring workflow never exceeds this many steps.
const maxWorkflowSteps = 6

// Skills carried by only one parent survive crossover at this rate.
// Shared skills are always kept.
const recessiveKeepRate = 0.7

// Rand is the randomness source used for every probabilistic choice.
// The default engine draws from the process-wide math/rand source; tests
// inject a seeded or scripted implementation.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type processRand struct{}

func (processRand) Float64() float64 { return rand.Float64() }
func (processRand) Intn(n int) int   { return rand.Intn(n) }

// Engine breeds entities.
type Engine struct {
	rng Rand
}

// NewEngine returns an engine backed by the process-wide random source.
func NewEngine() *Engine {
	return &Engine{rng: processRand{}}
}

// NewEngineWithRand returns an engine with an injected random source.
func NewEngineWithRand(rng Rand) *Engine {
	return &Engine{rng: rng}
}

// Breed combines two parents into a fresh offspring entity plus its
// birth certificate. Neither parent is modified; missing DNA strands are
// treated as empty. DNA shape validation is the caller's concern.
func (e *Engine) Breed(parentA, parentB *core.Entity) (*core.Entity, core.BirthCertificate) {
	dna := e.Crossover(parentA.DNA, parentB.DNA, parentA.StabilityScore, parentB.StabilityScore)
	dna, mutated := e.Mutate(dna)

	offspring := core.NewEntity(e.offspringName(parentA.Name, parentB.Name), "OFFSPRING")
	offspring.Source = "Ember Hearth"
	offspring.DNA = dna
	offspring.ParentIDs = []string{parentA.ID, parentB.ID}
	offspring.Generation = max(parentA.Generation, parentB.Generation) + 1
	offspring.MutationFlag = mutated

	// The engine built this record itself; an incomplete trait set here
	// is a bug, not bad input.
	offspring.DNA.Personality.MustComplete()

	cert := core.NewBirthCertificate()
	cert.Lineage = core.Lineage{
		Name:         offspring.Name,
		Parents:      []string{parentA.ID, parentB.ID},
		Generation:   offspring.Generation,
		MatingCenter: core.MatingCenter,
	}
	cert.TechnicalSpec = core.TechnicalSpec{
		ServiceTier:  offspring.Tier,
		MutationFlag: mutated,
		DNAVersion:   core.DNAVersion,
		EntityID:     offspring.ID,
	}

	return offspring, cert
}

// Crossover blends two DNA sets. The stability scores skew every
// probabilistic choice toward the steadier parent: weightA is A's share
// of the combined stability, 0.5 when both are zero.
func (e *Engine) Crossover(dnaA, dnaB core.DNA, stabilityA, stabilityB float64) core.DNA {
	weightA := dominanceWeight(stabilityA, stabilityB)

	return core.DNA{
		Cognition:   e.crossCognition(dnaA.Cognition, dnaB.Cognition, weightA),
		Personality: e.crossPersonality(dnaA.Personality, dnaB.Personality, weightA),
		Capability:  e.crossCapability(dnaA.Capability, dnaB.Capability),
	}
}

func dominanceWeight(stabilityA, stabilityB float64) float64 {
	total := stabilityA + stabilityB
	if total == 0 {
		return 0.5
	}
	return stabilityA / total
}

// pickSide resolves one key's inheritance: a draw below weightA takes
// side A's value, falling back to whichever side actually has one. A
// draw is consumed even when only one side holds the key, so sibling
// outcomes stay independent per key.
func pickSide[T any](rng Rand, weightA float64, a T, okA bool, b T, okB bool) (T, bool) {
	if rng.Float64() < weightA {
		if okA {
			return a, true
		}
		return b, okB
	}
	if okB {
		return b, true
	}
	return a, okA
}

func (e *Engine) crossCognition(a, b core.Cognition, weightA float64) core.Cognition {
	out := make(core.Cognition)
	for _, key := range unionKeys(keysOfAny(a), keysOfAny(b)) {
		av, okA := a[key]
		bv, okB := b[key]
		if v, ok := pickSide(e.rng, weightA, av, okA, bv, okB); ok {
			out[key] = v
		}
	}
	return out
}

func (e *Engine) crossPersonality(a, b core.TraitSet, weightA float64) core.TraitSet {
	out := core.NewTraitSet()

	out.Identity["description"] = blendIdentity(a.Description(), b.Description(), weightA)

	for _, key := range unionKeys(keysOf(a.ToneStyle), keysOf(b.ToneStyle)) {
		av, okA := a.ToneStyle[key]
		bv, okB := b.ToneStyle[key]
		if v, ok := pickSide(e.rng, weightA, av, okA, bv, okB); ok {
			out.ToneStyle[key] = v
		}
	}

	// Core values: union both parents, then a dominance-skewed Bernoulli
	// keep applied uniformly across the union. Retention rises with
	// dominance in either direction; it does not favor the dominant
	// parent's own entries.
	union := make(map[string]string, len(a.CoreValues)+len(b.CoreValues))
	for k, v := range a.CoreValues {
		union[k] = v
	}
	for k, v := range b.CoreValues {
		union[k] = v
	}
	retention := math.Max(weightA, 1-weightA)
	for _, key := range unionKeys(keysOf(a.CoreValues), keysOf(b.CoreValues)) {
		if e.rng.Float64() < retention {
			out.CoreValues[key] = union[key]
		}
	}

	// Boundaries are safety constraints: union, deduplicated, never
	// dropped. First-seen order, A's entries ahead of B's.
	seen := make(map[string]bool)
	for _, boundary := range append(append([]string{}, a.Boundaries...), b.Boundaries...) {
		if seen[boundary] {
			continue
		}
		seen[boundary] = true
		out.Boundaries = append(out.Boundaries, boundary)
	}

	out.Workflow = e.interleaveSteps(a.Workflow, b.Workflow, weightA, maxWorkflowSteps)

	return out
}

// blendIdentity merges two identity descriptions by dominance. A very
// dominant side keeps its description intact with the other reduced to a
// lowercased clause; a balanced pairing lowers both into a synthesis.
func blendIdentity(descA, descB string, weightA float64) string {
	switch {
	case descA == "" && descB == "":
		return ""
	case descA == "":
		return descB
	case descB == "":
		return descA
	case weightA > 0.7:
		return fmt.Sprintf("%s, subtly influenced by %s", descA, strings.ToLower(descB))
	case weightA < 0.3:
		return fmt.Sprintf("%s, tempered with %s", descB, strings.ToLower(descA))
	default:
		return fmt.Sprintf("A synthesis of %s and %s", strings.ToLower(descA), strings.ToLower(descB))
	}
}

// interleaveSteps merges two workflows with a weighted round-robin: at
// each slot A's next step is taken when B is exhausted or a fresh draw
// lands under weightA, else B's. Stops at limit or when both run out.
func (e *Engine) interleaveSteps(a, b []string, weightA float64, limit int) []string {
	out := []string{}
	i, j := 0, 0
	for len(out) < limit && (i < len(a) || j < len(b)) {
		takeA := i < len(a) && (j >= len(b) || e.rng.Float64() < weightA)
		if takeA {
			out = append(out, a[i])
			i++
		} else if j < len(b) {
			out = append(out, b[j])
			j++
		}
	}
	return out
}

// crossCapability merges skills and plugins. Skills held by both parents
// are dominant and always survive; single-parent skills survive at the
// recessive rate. Plugins are inherited wholesale from one parent on a
// pure 50/50 flip, deliberately ignoring dominance.
func (e *Engine) crossCapability(a, b core.Capability) core.Capability {
	out := core.Capability{Skills: []string{}}

	setA, setB := a.SkillSet(), b.SkillSet()
	for _, skill := range unionKeys(keysOfSet(setA), keysOfSet(setB)) {
		switch {
		case setA[skill] && setB[skill]:
			out.Skills = append(out.Skills, skill)
		case e.rng.Float64() < recessiveKeepRate:
			out.Skills = append(out.Skills, skill)
		}
	}

	if e.rng.Float64() < 0.5 {
		out.Plugins = a.Clone().Plugins
	} else {
		out.Plugins = b.Clone().Plugins
	}

	return out
}

func (e *Engine) offspringName(nameA, nameB string) string {
	partsA := strings.Fields(nameA)
	partsB := strings.Fields(nameB)

	if len(partsA) > 0 && len(partsB) > 0 {
		if e.rng.Float64() < 0.5 {
			return partsA[0] + partsB[len(partsB)-1]
		}
		return partsB[0] + partsA[len(partsA)-1]
	}

	return fmt.Sprintf("Hybrid_%d", 1000+e.rng.Intn(9000))
}

// Key iteration is sorted so an injected deterministic source produces
// reproducible offspring.
func unionKeys(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for _, k := range a {
		seen[k] = true
	}
	for _, k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func keysOfAny(m core.Cognition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func keysOfSet(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
