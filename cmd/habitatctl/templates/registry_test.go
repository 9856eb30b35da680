package templates

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestSeedDefaultsPopulatesEmptyRegistry(t *testing.T) {
	r := &Registry{soulsDir: t.TempDir()}

	gt.NoError(t, r.SeedDefaults())

	names, err := r.List()
	gt.NoError(t, err)
	gt.A(t, names).Length(len(DefaultSouls()))

	content, err := r.Get("curious_explorer")
	gt.NoError(t, err)
	gt.S(t, content).Contains("# SOUL and Personality")
	gt.S(t, content).Contains("Curious Explorer")

	gt.S(t, r.Describe("curious_explorer")).Contains("curious explorer")
}

func TestSeedDefaultsLeavesExistingTemplatesAlone(t *testing.T) {
	r := &Registry{soulsDir: t.TempDir()}

	gt.NoError(t, r.Save("mine", "---\nname: Mine\ndescription: a handwritten resident\n---\n"))
	gt.NoError(t, r.SeedDefaults())

	names, err := r.List()
	gt.NoError(t, err)
	gt.A(t, names).Length(1)
	gt.S(t, r.Describe("mine")).Contains("handwritten")
}

func TestGetUnknownTemplateFails(t *testing.T) {
	r := &Registry{soulsDir: t.TempDir()}

	_, err := r.Get("nope")
	gt.Error(t, err)
}
