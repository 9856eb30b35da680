package soul_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/soul"
)

const structuredDoc = `---
name: TestAgent
description: A test agent for parsing
---

# SOUL and Personality

## Tone and Style Guidelines

- Voice: Professional and clear
- Clarity: Prioritize understanding

## Core Values

- Accuracy: Always be truthful
- Efficiency: Value time

## Boundaries and Constraints

🚫 Never modify code without permission
- Never exfiltrate private data

## Workflow Priorities

1. Read the room first
2. Act with restraint
`

func TestParseStructured(t *testing.T) {
	traits := soul.Parse(structuredDoc)

	gt.Equal(t, traits.Identity["name"], "TestAgent")
	gt.Equal(t, traits.Identity["description"], "A test agent for parsing")
	gt.Equal(t, traits.ToneStyle["voice"], "Professional and clear")
	gt.Equal(t, traits.ToneStyle["clarity"], "Prioritize understanding")
	gt.Equal(t, traits.CoreValues["accuracy"], "Always be truthful")
	gt.Equal(t, traits.CoreValues["efficiency"], "Value time")
	gt.Equal(t, traits.Boundaries, []string{
		"Never modify code without permission",
		"Never exfiltrate private data",
	})
	gt.Equal(t, traits.Workflow, []string{
		"Read the room first",
		"Act with restraint",
	})
}

func TestParseStructuredBoldKeys(t *testing.T) {
	doc := `---
name: BoldAgent
---

## Tone and Style Guidelines

- **Voice:** Quiet, concise
- **Response Style**: Terse
`
	traits := soul.Parse(doc)

	gt.Equal(t, traits.ToneStyle["voice"], "Quiet, concise")
	gt.Equal(t, traits.ToneStyle["response_style"], "Terse")
}

func TestParseMalformedFrontmatter(t *testing.T) {
	doc := `---
name: [unclosed
---

## Core Values

- Accuracy: Truthful
`
	traits := soul.Parse(doc)

	// Broken metadata is skipped, never fatal; sections still parse.
	gt.Equal(t, len(traits.Identity), 0)
	gt.Equal(t, traits.CoreValues["accuracy"], "Truthful")
}

func TestParseNarrative(t *testing.T) {
	doc := `# Who I Am

I am *a quiet helper who listens first*, nothing more.

**Clarity over cleverness.**
**Kindness matters here.**

I keep my answers brief and concise.
`
	traits := soul.Parse(doc)

	gt.Equal(t, traits.Identity["description"], "a quiet helper who listens first")
	gt.Equal(t, traits.CoreValues["clarity"], "Clarity over cleverness")
	gt.Equal(t, traits.CoreValues["value_2"], "Kindness matters here")
	gt.Equal(t, traits.ToneStyle["voice"], "Quiet, concise")
	gt.Equal(t, traits.ToneStyle["empathy"], "High")
}

func TestParseEmptyDocument(t *testing.T) {
	traits := soul.Parse("")

	gt.V(t, traits.Identity).NotNil()
	gt.V(t, traits.ToneStyle).NotNil()
	gt.V(t, traits.CoreValues).NotNil()
	gt.V(t, traits.Boundaries).NotNil()
	gt.V(t, traits.Workflow).NotNil()
	gt.Equal(t, len(traits.Identity), 0)
}

func TestStructuredRoundTrip(t *testing.T) {
	orig := core.NewTraitSet()
	orig.Identity["name"] = "EmberChild"
	orig.Identity["description"] = "a synthesis of calm analyst and wild artist"
	orig.ToneStyle["voice"] = "Quiet, concise"
	orig.ToneStyle["clarity"] = "Technical"
	orig.CoreValues["accuracy"] = "Always be truthful"
	orig.CoreValues["response_style"] = "Short over long"
	orig.Boundaries = append(orig.Boundaries,
		"Never modify code without permission",
		"Never exfiltrate private data",
	)
	orig.Workflow = append(orig.Workflow,
		"Read the room first",
		"Act with restraint",
	)

	rendered := soul.Render(orig, soul.FormatStructured)
	parsed := soul.Parse(rendered)

	gt.Equal(t, parsed.Identity["name"], orig.Identity["name"])
	gt.Equal(t, parsed.Identity["description"], orig.Identity["description"])
	gt.Equal(t, parsed.ToneStyle, orig.ToneStyle)
	gt.Equal(t, parsed.CoreValues, orig.CoreValues)
	gt.Equal(t, parsed.Boundaries, orig.Boundaries)
	gt.Equal(t, parsed.Workflow, orig.Workflow)

	// A second pass is stable, not merely equivalent.
	gt.Equal(t, soul.Render(parsed, soul.FormatStructured), rendered)
}

func TestParseDetectsFormat(t *testing.T) {
	structured := soul.Parse("---\nname: X\n---\n")
	gt.Equal(t, structured.Identity["name"], "X")

	narrative := soul.Parse("Just some prose with *an identity span* inside.")
	gt.Equal(t, narrative.Identity["description"], "an identity span")
}

func TestParseWorkflowIgnoresUnnumberedLines(t *testing.T) {
	doc := `---
name: W
---

## Workflow Priorities

1. First step
note between items
2. Second step
`
	traits := soul.Parse(doc)
	gt.Equal(t, traits.Workflow, []string{"First step", "Second step"})
}

func TestParseSectionNamesAreExact(t *testing.T) {
	doc := `---
name: X
---

## Tone

- Voice: Loud

## Core Values

- Grit: Keeps going
`
	traits := soul.Parse(doc)

	// "Tone" is not a recognized header; only exact names bind.
	gt.Equal(t, len(traits.ToneStyle), 0)
	gt.Equal(t, traits.CoreValues["grit"], "Keeps going")
}

func TestNarrativeIdentityOnlyInFirstFiveLines(t *testing.T) {
	doc := strings.Repeat("plain line\n", 6) + "*late emphasis*\n"
	traits := soul.Parse(doc)
	gt.Equal(t, len(traits.Identity), 0)
}
