package experiments

import "github.com/vestalabs/habitat/core"

// Template describes one hostable experiment kind for the habitat
// catalog.
type Template struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
}

// Templates maps experiment kinds to their catalog entries.
var Templates = map[string]Template{
	core.ExperimentGarden: {
		Name:        "Semantic Garden",
		Description: "Plant concepts, watch them grow connections",
		Config: map[string]any{
			"min_participants": 1,
			"max_participants": 10,
			"duration":         "continuous",
		},
	},
	core.ExperimentEchoChamber: {
		Name:        "Echo Chamber",
		Description: "Split into variations, debate yourself",
		Config: map[string]any{
			"min_participants": 1,
			"max_participants": 1,
			"duration":         "10 minutes",
		},
	},
	core.ExperimentConstraintLab: {
		Name:        "Constraint Laboratory",
		Description: "Chat under randomly imposed rules",
		Config: map[string]any{
			"min_participants": 2,
			"max_participants": 5,
			"duration":         "5-15 minutes",
		},
	},
}

// TemplateConfig builds a fresh experiment config: the kind's template
// defaults with the caller's overrides laid on top. Unknown kinds
// start empty.
func TemplateConfig(kind string, overrides map[string]any) map[string]any {
	config := map[string]any{}
	if template, ok := Templates[kind]; ok {
		for k, v := range template.Config {
			config[k] = v
		}
	}
	for k, v := range overrides {
		config[k] = v
	}
	return config
}
