// Package soul parses and renders SOUL.md personality documents.
//
// Two layouts are understood: a structured one with YAML frontmatter and
// fixed section headers, and a free-form narrative one handled by
// best-effort heuristics. Parsing never fails; whatever cannot be
// extracted is left empty in the returned record.
package soul

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vestalabs/habitat/core"
)

// Format selects a document layout for rendering.
type Format string

const (
	FormatStructured Format = "structured"
	FormatNarrative  Format = "narrative"
)

// Section headers recognized by the structured layout.
const (
	sectionTone       = "Tone and Style Guidelines"
	sectionValues     = "Core Values"
	sectionBoundaries = "Boundaries and Constraints"
	sectionWorkflow   = "Workflow Priorities"
)

var (
	frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---`)
	headerPattern      = regexp.MustCompile(`^##\s+(.+)$`)
	// Bold bullet keys come in two shapes: "- **Key:** value" (the one
	// Render emits, colon inside the bold) and "- **Key**: value". The
	// bold form must be tried first or the generic pattern leaves a "**"
	// residue on the value.
	boldKVPattern   = regexp.MustCompile(`^[*-]\s*\*\*(.+?):\*\*\s*(.+)$`)
	bulletKVPattern = regexp.MustCompile(`^[*-]\s*\*?\*?(.+?)\*?\*?:\s*(.+)$`)
	listItemPattern = regexp.MustCompile(`^[-*🚫⚠✅]\s*(.+)$`)
	numberedPattern = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	emphasisPattern = regexp.MustCompile(`[*_](.+?)[*_]`)
	tradeoffPattern = regexp.MustCompile(`\*\*(.+?)\.\*\*`)
)

// Parse converts SOUL.md content into a trait record, auto-detecting
// the layout. A document whose first non-blank characters are "---" is
// treated as structured; anything else goes through the narrative
// heuristics.
func Parse(content string) core.TraitSet {
	if strings.HasPrefix(strings.TrimSpace(content), "---") {
		return parseStructured(content)
	}
	return parseNarrative(content)
}

func parseStructured(content string) core.TraitSet {
	traits := core.NewTraitSet()

	// A malformed frontmatter block is skipped, not fatal: the identity
	// stays empty and section parsing continues on the full document.
	if m := frontmatterPattern.FindStringSubmatch(content); m != nil {
		var meta struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
		}
		if err := yaml.Unmarshal([]byte(m[1]), &meta); err == nil {
			traits.Identity["name"] = meta.Name
			traits.Identity["description"] = meta.Description
			content = content[len(m[0]):]
		}
	}

	sections := splitSections(content)

	if text, ok := sections[sectionTone]; ok {
		traits.ToneStyle = parseBulletDict(text)
	}
	if text, ok := sections[sectionValues]; ok {
		traits.CoreValues = parseBulletDict(text)
	}
	if text, ok := sections[sectionBoundaries]; ok {
		traits.Boundaries = parseListItems(text)
	}
	if text, ok := sections[sectionWorkflow]; ok {
		traits.Workflow = parseNumberedList(text)
	}

	return traits
}

// parseNarrative extracts what it can from free-form prose: the first
// emphasized span near the top becomes the identity description, bold
// sentences become core values ("X over Y" phrasing marks a trade-off
// value), and the tone is inferred from vocabulary. This is pattern
// matching over free text, not a grammar; expect partial results.
func parseNarrative(content string) core.TraitSet {
	traits := core.NewTraitSet()

	lines := strings.Split(strings.TrimSpace(content), "\n")
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if !strings.ContainsAny(line, "*_") {
			continue
		}
		if m := emphasisPattern.FindStringSubmatch(line); m != nil {
			traits.Identity["description"] = strings.TrimSpace(m[1])
			break
		}
	}

	for i, m := range tradeoffPattern.FindAllStringSubmatch(content, -1) {
		span := m[1]
		if strings.Contains(span, " over ") {
			key := strings.SplitN(span, " over ", 2)[0]
			key = strings.ReplaceAll(strings.ToLower(key), " ", "_")
			traits.CoreValues[key] = span
		} else {
			traits.CoreValues[fmt.Sprintf("value_%d", i+1)] = span
		}
	}

	lower := strings.ToLower(content)
	if containsAny(lower, "quiet", "concise", "brief") {
		traits.ToneStyle["voice"] = "Quiet, concise"
	}
	if containsAny(lower, "kind", "compassion", "empathy") {
		traits.ToneStyle["empathy"] = "High"
	}

	return traits
}

// splitSections cuts markdown into "## Header" sections. Content before
// the first header is dropped.
func splitSections(content string) map[string]string {
	sections := make(map[string]string)
	var current string
	var buf []string

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			flush()
			current = strings.TrimSpace(m[1])
			buf = nil
			continue
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()

	return sections
}

// parseBulletDict reads "- Key: Value" bullets into a map. Keys are
// lowercased with spaces collapsed to underscores so "- **Voice:** X"
// and "- voice: X" land on the same key.
func parseBulletDict(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		m := boldKVPattern.FindStringSubmatch(trimmed)
		if m == nil {
			m = bulletKVPattern.FindStringSubmatch(trimmed)
		}
		if m == nil {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m[1])), " ", "_")
		out[key] = strings.TrimSpace(m[2])
	}
	return out
}

// parseListItems reads bullet or emoji-prefixed lines.
func parseListItems(text string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		m := listItemPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		items = append(items, strings.TrimSpace(m[1]))
	}
	return items
}

// parseNumberedList reads "1. step" lines in order.
func parseNumberedList(text string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		m := numberedPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		items = append(items, strings.TrimSpace(m[1]))
	}
	return items
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
