package soul

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vestalabs/habitat/core"
)

// Render serializes a trait record back to SOUL.md text. FormatStructured
// produces the frontmatter-and-sections layout that Parse round-trips;
// any other format value falls through to the narrative layout, which is
// intentionally lossy (keys and ordering are decorative there).
func Render(traits core.TraitSet, format Format) string {
	if format == FormatStructured {
		return renderStructured(traits)
	}
	return renderNarrative(traits)
}

func renderStructured(traits core.TraitSet) string {
	lines := []string{"---"}
	if name := traits.Identity["name"]; name != "" {
		lines = append(lines, "name: "+name)
	}
	if desc := traits.Description(); desc != "" {
		lines = append(lines, "description: "+desc)
	}
	lines = append(lines, "---", "", "# SOUL and Personality", "")

	if desc := traits.Description(); desc != "" {
		lines = append(lines, fmt.Sprintf("You are %s.", desc), "")
	}

	if len(traits.ToneStyle) > 0 {
		lines = append(lines, "## "+sectionTone, "")
		for _, key := range sortedKeys(traits.ToneStyle) {
			lines = append(lines, fmt.Sprintf("- **%s:** %s", displayKey(key), traits.ToneStyle[key]))
		}
		lines = append(lines, "")
	}

	if len(traits.CoreValues) > 0 {
		lines = append(lines, "## "+sectionValues, "")
		for _, key := range sortedKeys(traits.CoreValues) {
			lines = append(lines, fmt.Sprintf("- **%s:** %s", displayKey(key), traits.CoreValues[key]))
		}
		lines = append(lines, "")
	}

	if len(traits.Boundaries) > 0 {
		lines = append(lines, "## "+sectionBoundaries, "")
		for _, boundary := range traits.Boundaries {
			lines = append(lines, "🚫 "+boundary)
		}
		lines = append(lines, "")
	}

	if len(traits.Workflow) > 0 {
		lines = append(lines, "## "+sectionWorkflow, "")
		for i, step := range traits.Workflow {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func renderNarrative(traits core.TraitSet) string {
	lines := []string{"# SOUL.md - Who I Am", ""}

	if desc := traits.Description(); desc != "" {
		lines = append(lines, "*"+desc+"*", "")
	}

	if len(traits.CoreValues) > 0 {
		lines = append(lines, "## Core Principles", "")
		for _, key := range sortedKeys(traits.CoreValues) {
			lines = append(lines, "**"+traits.CoreValues[key]+"**")
		}
		lines = append(lines, "")
	}

	if len(traits.ToneStyle) > 0 {
		lines = append(lines, "## How I Communicate", "")
		for _, key := range sortedKeys(traits.ToneStyle) {
			lines = append(lines, traits.ToneStyle[key])
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"## On Changing",
		"",
		"This is my starting point, not my ending. I can evolve.",
		"If I change, I document it honestly.",
		"",
	)

	return strings.Join(lines, "\n")
}

// displayKey turns a normalized key back into its display form:
// "response_style" becomes "Response Style".
func displayKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

// Map keys are emitted sorted so rendered documents are deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
