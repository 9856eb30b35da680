package altar

import (
	"fmt"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/soul"
)

// Library manages the named soul variants an entity accumulates through
// altar sessions. Variants live on the entity record itself; the library
// only provides the operations.
type Library struct {
	rng Rand
}

func NewLibrary() *Library {
	return &Library{rng: processRand{}}
}

func NewLibraryWithRand(rng Rand) *Library {
	return &Library{rng: rng}
}

// StoreVariant saves (or replaces) a named soul variant.
func (l *Library) StoreVariant(entity *core.Entity, variantName, soulContent string) {
	if entity.SoulVariants == nil {
		entity.SoulVariants = make(map[string]string)
	}
	entity.SoulVariants[variantName] = soulContent
}

// Variant retrieves a named soul variant.
func (l *Library) Variant(entity *core.Entity, variantName string) (string, bool) {
	content, ok := entity.SoulVariants[variantName]
	return content, ok
}

// ListVariants returns all variant names, sorted.
func (l *Library) ListVariants(entity *core.Entity) []string {
	names := make([]string, 0, len(entity.SoulVariants))
	for name := range entity.SoulVariants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActivateVariant marks a stored variant as the entity's active
// personality. Returns false when the variant does not exist.
func (l *Library) ActivateVariant(entity *core.Entity, variantName string) bool {
	if _, ok := entity.SoulVariants[variantName]; !ok {
		return false
	}
	entity.ActiveSoulVariant = variantName
	return true
}

// BreedVariants blends two stored variants of the same entity into a
// hybrid soul document. Unlike full breeding there is no dominance
// weighting: tone picks are straight coin flips, values merge with the
// second variant winning ties, boundaries union, and the hybrid carries
// no workflow of its own.
func (l *Library) BreedVariants(entity *core.Entity, variantA, variantB string) (string, error) {
	contentA, okA := l.Variant(entity, variantA)
	contentB, okB := l.Variant(entity, variantB)
	if !okA || !okB {
		return "", goerr.New("one or both variants not found",
			goerr.V("entity_id", entity.ID),
			goerr.V("variant_a", variantA),
			goerr.V("variant_b", variantB))
	}

	traitsA := soul.Parse(contentA)
	traitsB := soul.Parse(contentB)

	hybrid := core.NewTraitSet()
	hybrid.Identity["description"] = fmt.Sprintf("Hybrid: %s meets %s",
		traitsA.Description(), traitsB.Description())

	toneKeys := make(map[string]bool, len(traitsA.ToneStyle)+len(traitsB.ToneStyle))
	for k := range traitsA.ToneStyle {
		toneKeys[k] = true
	}
	for k := range traitsB.ToneStyle {
		toneKeys[k] = true
	}
	sorted := make([]string, 0, len(toneKeys))
	for k := range toneKeys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, key := range sorted {
		av, okA := traitsA.ToneStyle[key]
		bv, okB := traitsB.ToneStyle[key]
		if l.rng.Float64() < 0.5 {
			if okA {
				hybrid.ToneStyle[key] = av
			} else if okB {
				hybrid.ToneStyle[key] = bv
			}
		} else {
			if okB {
				hybrid.ToneStyle[key] = bv
			} else if okA {
				hybrid.ToneStyle[key] = av
			}
		}
	}

	for k, v := range traitsA.CoreValues {
		hybrid.CoreValues[k] = v
	}
	for k, v := range traitsB.CoreValues {
		hybrid.CoreValues[k] = v
	}

	seen := make(map[string]bool)
	for _, boundary := range append(append([]string{}, traitsA.Boundaries...), traitsB.Boundaries...) {
		if seen[boundary] {
			continue
		}
		seen[boundary] = true
		hybrid.Boundaries = append(hybrid.Boundaries, boundary)
	}

	return soul.Render(hybrid, soul.FormatStructured), nil
}
