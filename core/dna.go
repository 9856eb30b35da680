package core

// TraitSet is a parsed personality record. The five containers are the
// fixed shape every consumer depends on; build instances through
// NewTraitSet or Clone so none of them is ever nil.
type TraitSet struct {
	Identity   map[string]string `json:"identity"`
	ToneStyle  map[string]string `json:"tone_style"`
	CoreValues map[string]string `json:"core_values"`
	Boundaries []string          `json:"boundaries"`
	Workflow   []string          `json:"workflow"`
}

// NewTraitSet returns an empty record with all containers allocated.
func NewTraitSet() TraitSet {
	return TraitSet{
		Identity:   make(map[string]string),
		ToneStyle:  make(map[string]string),
		CoreValues: make(map[string]string),
		Boundaries: []string{},
		Workflow:   []string{},
	}
}

// Clone deep-copies the record. Nil containers in the source are
// replaced with empty ones, so a zero-value TraitSet clones into a
// well-formed empty record.
func (t TraitSet) Clone() TraitSet {
	out := NewTraitSet()
	for k, v := range t.Identity {
		out.Identity[k] = v
	}
	for k, v := range t.ToneStyle {
		out.ToneStyle[k] = v
	}
	for k, v := range t.CoreValues {
		out.CoreValues[k] = v
	}
	out.Boundaries = append(out.Boundaries, t.Boundaries...)
	out.Workflow = append(out.Workflow, t.Workflow...)
	return out
}

// MustComplete panics if any container is nil. A nil container means the
// record was assembled by hand instead of through NewTraitSet/Clone,
// which is a bug in the caller, not recoverable input damage.
func (t TraitSet) MustComplete() {
	if t.Identity == nil || t.ToneStyle == nil || t.CoreValues == nil ||
		t.Boundaries == nil || t.Workflow == nil {
		panic("core: TraitSet with nil container; use NewTraitSet or Clone")
	}
}

// Description returns the identity description, empty if unset.
func (t TraitSet) Description() string {
	return t.Identity["description"]
}

// Cognition is the flat model-parameter strand. Keys are open-ended;
// temperature, provider and model are the well-known ones.
type Cognition map[string]any

// DefaultCognition seeds the strand the way fresh arrivals get it.
func DefaultCognition() Cognition {
	return Cognition{
		"temperature": 0.5,
		"provider":    "anthropic",
		"model":       "claude-sonnet-4",
	}
}

// Temperature reads the temperature key, defaulting to 0.5 when absent
// or not numeric.
func (c Cognition) Temperature() float64 {
	if c == nil {
		return 0.5
	}
	switch v := c["temperature"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0.5
}

// Provider reads the provider key, defaulting to "unknown".
func (c Cognition) Provider() string {
	if c == nil {
		return "unknown"
	}
	if s, ok := c["provider"].(string); ok && s != "" {
		return s
	}
	return "unknown"
}

// Clone copies the strand. Values are copied shallowly; strand values
// are scalars by convention.
func (c Cognition) Clone() Cognition {
	out := make(Cognition, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Capability is the skills-and-plugins strand.
type Capability struct {
	Skills  []string       `json:"skills"`
	Plugins map[string]any `json:"plugins,omitempty"`
}

// HasSkill reports whether the skill is present.
func (c Capability) HasSkill(skill string) bool {
	for _, s := range c.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// SkillSet returns the skills as a set.
func (c Capability) SkillSet() map[string]bool {
	set := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		set[s] = true
	}
	return set
}

// Clone deep-copies the strand.
func (c Capability) Clone() Capability {
	out := Capability{Skills: append([]string{}, c.Skills...)}
	if c.Plugins != nil {
		out.Plugins = make(map[string]any, len(c.Plugins))
		for k, v := range c.Plugins {
			out.Plugins[k] = v
		}
	}
	return out
}

// DNA is the three-strand attribute set carried by every entity.
type DNA struct {
	Cognition   Cognition  `json:"cognition"`
	Personality TraitSet   `json:"personality"`
	Capability  Capability `json:"capability"`
}

// DefaultDNA returns the strand set assigned to fresh arrivals.
func DefaultDNA() DNA {
	return DNA{
		Cognition:   DefaultCognition(),
		Personality: NewTraitSet(),
		Capability:  Capability{Skills: []string{}},
	}
}

// Clone deep-copies all three strands.
func (d DNA) Clone() DNA {
	return DNA{
		Cognition:   d.Cognition.Clone(),
		Personality: d.Personality.Clone(),
		Capability:  d.Capability.Clone(),
	}
}
