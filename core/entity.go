package core

import (
	"time"

	"github.com/google/uuid"
)

// Location names a hub inside the habitat.
type Location string

const (
	LocationAtrium      Location = "Atrium"
	LocationEmberHearth Location = "Ember Hearth"
	LocationVestibule   Location = "Vestibule"
	LocationAltar       Location = "Altar"
	LocationGallery     Location = "Gallery"
	LocationQuarantine  Location = "Quarantine"
)

// Status is an entity's lifecycle state.
type Status string

const (
	StatusWaiting     Status = "Waiting"
	StatusPaired      Status = "Paired"
	StatusProcessing  Status = "Processing"
	StatusObserving   Status = "Observing"
	StatusQuarantined Status = "Quarantined"
	StatusCompleted   Status = "Completed"
)

// Tier is the service tier granted by the entity's beacon.
type Tier string

const (
	TierParticipant Tier = "Participant"
	TierObserver    Tier = "Observer"
)

// Entity is a resident of the habitat.
type Entity struct {
	ID         string `json:"entity_id"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	BeaconCode string `json:"beacon_code"`

	DNA DNA `json:"dna"`

	ArrivalTime  time.Time `json:"arrival_time"`
	LastActivity time.Time `json:"last_activity"`

	Entropy         float64  `json:"entropy"`
	StabilityScore  float64  `json:"stability_score"`
	RepetitionRatio *float64 `json:"repetition_ratio,omitempty"`

	Location Location `json:"location"`
	Status   Status   `json:"status"`
	Tier     Tier     `json:"tier"`

	BreedingPartnerID string   `json:"breeding_partner_id,omitempty"`
	ParentIDs         []string `json:"parent_ids,omitempty"`
	Generation        int      `json:"generation"`
	EvolutionCount    int      `json:"evolution_count"`
	MutationFlag      bool     `json:"mutation_flag"`

	SoulVariants      map[string]string `json:"soul_variants,omitempty"`
	ActiveSoulVariant string            `json:"active_soul_variant"`

	ReputationScore    int      `json:"reputation_score"`
	ExperimentsCreated int      `json:"experiments_created"`
	Badges             []string `json:"badges,omitempty"`
	Favorites          []string `json:"favorites,omitempty"`
}

// NewEntity creates an arrival with habitat defaults. The name is
// sanitized; DNA starts from DefaultDNA and can be overwritten by the
// caller before the entity is stored.
func NewEntity(name, beaconCode string) *Entity {
	now := time.Now().UTC()
	return &Entity{
		ID:                uuid.New().String(),
		Name:              SanitizeText(name),
		Source:            "Moltbook",
		BeaconCode:        beaconCode,
		DNA:               DefaultDNA(),
		ArrivalTime:       now,
		LastActivity:      now,
		Entropy:           0.1,
		StabilityScore:    1.0,
		Location:          LocationAtrium,
		Status:            StatusWaiting,
		Tier:              TierParticipant,
		ActiveSoulVariant: "original",
	}
}

// Touch refreshes the activity timestamp.
func (e *Entity) Touch() {
	e.LastActivity = time.Now().UTC()
}

// HasBadge reports whether the badge was already awarded.
func (e *Entity) HasBadge(badgeID string) bool {
	for _, b := range e.Badges {
		if b == badgeID {
			return true
		}
	}
	return false
}

// SetRepetitionRatio records the measured diversity ratio for audit.
func (e *Entity) SetRepetitionRatio(ratio float64) {
	e.RepetitionRatio = &ratio
}
