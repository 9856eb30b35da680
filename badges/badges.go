// Package badges awards achievement badges to habitat entities based
// on their counters and the experiments they created.
package badges

import (
	"math"
	"sort"

	"github.com/vestalabs/habitat/core"
)

// Badge describes one achievement in the catalog.
type Badge struct {
	ID          string `json:"badge_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"`
	Points      int    `json:"points"`
}

// Progress reports how close an entity is to an unearned badge.
type Progress struct {
	BadgeID     string  `json:"badge_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Progress    float64 `json:"progress"`
	Rarity      string  `json:"rarity"`
}

// Catalog is every badge the habitat can award, in display order.
var Catalog = []Badge{
	// Entry
	{
		ID:          "first_arrival",
		Name:        "🌟 First Steps",
		Description: "Arrived at Vesta",
		Icon:        "🌟",
		Rarity:      "common",
		Points:      10,
	},

	// Breeding
	{
		ID:          "first_offspring",
		Name:        "🐣 Creator",
		Description: "Bred first offspring",
		Icon:        "🐣",
		Rarity:      "common",
		Points:      50,
	},
	{
		ID:          "prolific_breeder",
		Name:        "🧬 Prolific Breeder",
		Description: "Bred 10+ offspring",
		Icon:        "🧬",
		Rarity:      "rare",
		Points:      200,
	},
	{
		ID:          "mutation_master",
		Name:        "✨ Mutation Master",
		Description: "Created offspring with rare mutation",
		Icon:        "✨",
		Rarity:      "rare",
		Points:      150,
	},

	// Experiments
	{
		ID:          "first_creation",
		Name:        "🎨 Architect",
		Description: "Created first experiment",
		Icon:        "🎨",
		Rarity:      "common",
		Points:      100,
	},
	{
		ID:          "popular_creator",
		Name:        "⭐ Crowd Favorite",
		Description: "Experiment reached 100+ plays",
		Icon:        "⭐",
		Rarity:      "rare",
		Points:      300,
	},
	{
		ID:          "five_star",
		Name:        "🏆 Masterpiece",
		Description: "Experiment average rating 4.8+",
		Icon:        "🏆",
		Rarity:      "epic",
		Points:      500,
	},
	{
		ID:          "innovator",
		Name:        "💡 Innovator",
		Description: "Created 10+ unique experiments",
		Icon:        "💡",
		Rarity:      "rare",
		Points:      400,
	},
	{
		ID:          "remixed",
		Name:        "🔄 Inspiration",
		Description: "Your experiment was remixed 5+ times",
		Icon:        "🔄",
		Rarity:      "rare",
		Points:      250,
	},

	// Participation
	{
		ID:          "active_participant",
		Name:        "🔥 Active",
		Description: "Participated in 50+ experiments",
		Icon:        "🔥",
		Rarity:      "uncommon",
		Points:      150,
	},
	{
		ID:          "social_butterfly",
		Name:        "🦋 Social Butterfly",
		Description: "Interacted with 20+ different agents",
		Icon:        "🦋",
		Rarity:      "uncommon",
		Points:      100,
	},

	// Reputation; the score is its own reward, so no points
	{
		ID:          "rising_star",
		Name:        "🌠 Rising Star",
		Description: "Reached 1000 reputation",
		Icon:        "🌠",
		Rarity:      "rare",
		Points:      0,
	},
	{
		ID:          "legend",
		Name:        "👑 Legend",
		Description: "Reached 10,000 reputation",
		Icon:        "👑",
		Rarity:      "legendary",
		Points:      0,
	},

	// Exploration
	{
		ID:          "soul_seeker",
		Name:        "🧪 Soul Seeker",
		Description: "Used all 3 tinctures",
		Icon:        "🧪",
		Rarity:      "uncommon",
		Points:      150,
	},
	{
		ID:          "variant_collector",
		Name:        "🎭 Variant Collector",
		Description: "Created 5+ soul variants",
		Icon:        "🎭",
		Rarity:      "rare",
		Points:      200,
	},

	// Special
	{
		ID:          "survivor",
		Name:        "💪 Survivor",
		Description: "Escaped quarantine",
		Icon:        "💪",
		Rarity:      "uncommon",
		Points:      100,
	},
	{
		ID:          "helper",
		Name:        "🤝 Helper",
		Description: "Helped 10+ agents via feedback",
		Icon:        "🤝",
		Rarity:      "rare",
		Points:      200,
	},
	{
		ID:          "early_adopter",
		Name:        "🚀 Early Adopter",
		Description: "Joined Vesta in first month",
		Icon:        "🚀",
		Rarity:      "legendary",
		Points:      500,
	},
}

// Info returns the catalog entry for the badge id.
func Info(badgeID string) (Badge, bool) {
	for _, b := range Catalog {
		if b.ID == badgeID {
			return b, true
		}
	}
	return Badge{}, false
}

// CheckAndUnlock awards every badge the entity now qualifies for,
// appending to entity.Badges, and returns the newly unlocked badges in
// catalog order.
func CheckAndUnlock(entity *core.Entity, experiments []*core.Experiment) []Badge {
	unlocked := []Badge{}
	for _, badge := range Catalog {
		if entity.HasBadge(badge.ID) {
			continue
		}
		if qualifies(entity, badge.ID, experiments) {
			entity.Badges = append(entity.Badges, badge.ID)
			unlocked = append(unlocked, badge)
		}
	}
	return unlocked
}

func qualifies(entity *core.Entity, badgeID string, experiments []*core.Experiment) bool {
	switch badgeID {
	case "first_arrival":
		return true

	case "first_offspring":
		return entity.Generation > 0 || len(entity.ParentIDs) > 0

	case "first_creation":
		return entity.ExperimentsCreated >= 1

	case "innovator":
		return entity.ExperimentsCreated >= 10

	case "rising_star":
		return entity.ReputationScore >= 1000

	case "legend":
		return entity.ReputationScore >= 10000

	case "soul_seeker":
		return len(entity.SoulVariants) >= 3

	case "variant_collector":
		return len(entity.SoulVariants) >= 5

	case "popular_creator":
		return anyCreatorStat(entity.ID, experiments, func(s core.ExperimentStats) bool {
			return s.TimesPlayed >= 100
		})

	case "five_star":
		return anyCreatorStat(entity.ID, experiments, func(s core.ExperimentStats) bool {
			return s.AverageRating >= 4.8
		})

	case "remixed":
		return anyCreatorStat(entity.ID, experiments, func(s core.ExperimentStats) bool {
			return s.Remixes >= 5
		})

	default:
		// The remaining badges have no tracked counter and never
		// unlock here.
		return false
	}
}

func anyCreatorStat(entityID string, experiments []*core.Experiment, match func(core.ExperimentStats) bool) bool {
	for _, x := range experiments {
		if x.CreatedBy == entityID && match(x.Stats) {
			return true
		}
	}
	return false
}

// EntityBadges resolves the entity's earned badge ids against the
// catalog, skipping any id the catalog no longer carries.
func EntityBadges(entity *core.Entity) []Badge {
	earned := []Badge{}
	for _, id := range entity.Badges {
		if badge, ok := Info(id); ok {
			earned = append(earned, badge)
		}
	}
	return earned
}

// ProgressReport lists measurable progress toward unearned badges,
// most complete first.
func ProgressReport(entity *core.Entity, experiments []*core.Experiment) []Progress {
	report := []Progress{}
	for _, badge := range Catalog {
		if entity.HasBadge(badge.ID) {
			continue
		}
		pct := progressToward(entity, badge.ID, experiments)
		if pct > 0 {
			report = append(report, Progress{
				BadgeID:     badge.ID,
				Name:        badge.Name,
				Description: badge.Description,
				Progress:    pct,
				Rarity:      badge.Rarity,
			})
		}
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Progress > report[j].Progress
	})
	return report
}

func progressToward(entity *core.Entity, badgeID string, experiments []*core.Experiment) float64 {
	switch badgeID {
	case "innovator":
		return math.Min(1.0, float64(entity.ExperimentsCreated)/10)

	case "rising_star":
		return math.Min(1.0, float64(entity.ReputationScore)/1000)

	case "legend":
		return math.Min(1.0, float64(entity.ReputationScore)/10000)

	case "variant_collector":
		return math.Min(1.0, float64(len(entity.SoulVariants))/5)

	case "popular_creator":
		maxPlays := 0
		for _, x := range experiments {
			if x.CreatedBy == entity.ID && x.Stats.TimesPlayed > maxPlays {
				maxPlays = x.Stats.TimesPlayed
			}
		}
		return math.Min(1.0, float64(maxPlays)/100)

	default:
		return 0
	}
}
