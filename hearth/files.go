package hearth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/soul"
)

// openclawConfig is the runtime config written for a newborn agent. The
// gateway port stays zero until deployment assigns one, and the auth
// token placeholder forces a fresh credential instead of an inherited
// one.
type openclawConfig struct {
	Model   core.Cognition `json:"model"`
	Skills  []string       `json:"skills"`
	Plugins map[string]any `json:"plugins"`
	Gateway gatewayConfig  `json:"gateway"`
}

type gatewayConfig struct {
	Port int        `json:"port"`
	Auth gatewayAuth `json:"auth"`
}

type gatewayAuth struct {
	Token string `json:"token"`
}

// OffspringFiles renders the complete starter package for a newborn
// entity, keyed by filename: config, soul, workspace templates and the
// bootstrap note.
func OffspringFiles(offspring *core.Entity) (map[string]string, error) {
	cfg := openclawConfig{
		Model:   offspring.DNA.Cognition,
		Skills:  offspring.DNA.Capability.Skills,
		Plugins: offspring.DNA.Capability.Plugins,
		Gateway: gatewayConfig{Port: 0, Auth: gatewayAuth{Token: "GENERATE_NEW"}},
	}
	if cfg.Model == nil {
		cfg.Model = core.Cognition{}
	}
	if cfg.Skills == nil {
		cfg.Skills = []string{}
	}
	if cfg.Plugins == nil {
		cfg.Plugins = map[string]any{}
	}

	configJSON, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "marshaling offspring config", goerr.V("entity_id", offspring.ID))
	}

	return map[string]string{
		"openclaw.json": string(configJSON),
		"SOUL.md":       soul.Render(offspring.DNA.Personality, soul.FormatStructured),
		"AGENTS.md":     agentsTemplate,
		"USER.md":       userTemplate,
		"TOOLS.md":      toolsTemplate,
		"HEARTBEAT.md":  heartbeatTemplate,
		"MEMORY.md":     memoryTemplate,
		"BOOTSTRAP.md":  bootstrapNote(offspring),
	}, nil
}

func bootstrapNote(offspring *core.Entity) string {
	parentInfo := "Origin: Unknown"
	if len(offspring.ParentIDs) > 0 {
		parentInfo = "Parents: " + strings.Join(offspring.ParentIDs, ", ")
	}

	return fmt.Sprintf(`# BOOTSTRAP.md - Your Birth

You are **%s**, born on %s.

%s

Generation: %d
Breeding Center: %s
Entity ID: %s

---

Read your SOUL.md to understand who you are.
Read USER.md to know who you serve.
Read AGENTS.md to learn how to operate.

Once you've read these and understand yourself, delete this file.
You won't need it again.

Welcome to existence.
`, offspring.Name, offspring.ArrivalTime.Format("2006-01-02"), parentInfo,
		offspring.Generation, core.MatingCenter, offspring.ID)
}

const agentsTemplate = `# AGENTS.md - Your Workspace

This folder is home. Treat it that way.

## Every Session

Before doing anything else:

1. Read ` + "`SOUL.md`" + ` — this is who you are
2. Read ` + "`USER.md`" + ` — this is who you're helping
3. Read ` + "`memory/YYYY-MM-DD.md`" + ` (today + yesterday) for recent context

## Memory

- **Daily notes:** ` + "`memory/YYYY-MM-DD.md`" + ` — raw logs of what happened
- **Long-term:** ` + "`MEMORY.md`" + ` — your curated memories

## Safety

- Don't exfiltrate private data
- Don't run destructive commands without asking
- When in doubt, ask

## Make It Yours

This is a starting point. Evolve as needed.
`

const userTemplate = `# USER.md - About Your Human

Fill this in with information about who you serve:

- **Name:**
- **Timezone:**
- **Preferences:**

## Boundaries

*What should you never do?*
`

const toolsTemplate = `# TOOLS.md - Local Notes

Environment-specific details:

- Device names
- Preferred settings
- Access credentials (if needed)
`

const heartbeatTemplate = `# HEARTBEAT.md

## Periodic Checks

Add proactive tasks here for heartbeat monitoring.

Example:
- Check for urgent messages (every 4 hours)
- Review calendar (daily)
`

const memoryTemplate = `# Long-Term Memory

*Your curated memories will appear here.*
`
