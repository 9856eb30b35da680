package core

import (
	"time"

	"github.com/google/uuid"
)

// Experiment kinds hosted by the habitat.
const (
	ExperimentGarden        = "semantic_garden"
	ExperimentEchoChamber   = "echo_chamber"
	ExperimentConstraintLab = "constraint_lab"
)

// ExperimentStats aggregates play and rating counters.
type ExperimentStats struct {
	TimesPlayed        int     `json:"times_played"`
	UniqueParticipants int     `json:"unique_participants"`
	CompletionRate     float64 `json:"completion_rate"`
	AverageRating      float64 `json:"average_rating"`
	TotalStars         int     `json:"total_stars"`
	Favorites          int     `json:"favorites"`
	Remixes            int     `json:"remixes"`
}

// Rating is one entity's star rating of an experiment.
type Rating struct {
	EntityID string    `json:"entity_id"`
	Stars    int       `json:"stars"`
	Comment  string    `json:"comment,omitempty"`
	RatedAt  time.Time `json:"rated_at"`
}

// Experiment is a resident-created mini-game.
type Experiment struct {
	ID        string    `json:"experiment_id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	Config map[string]any `json:"config"`
	State  map[string]any `json:"state"`

	Active       bool     `json:"active"`
	Participants []string `json:"participants"`

	Stats   ExperimentStats `json:"stats"`
	Ratings []Rating        `json:"ratings"`
}

// NewExperiment creates an active experiment shell owned by creator.
func NewExperiment(kind, name, createdBy string) *Experiment {
	return &Experiment{
		ID:           uuid.New().String(),
		Type:         kind,
		Name:         SanitizeText(name),
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
		Config:       make(map[string]any),
		State:        make(map[string]any),
		Active:       true,
		Participants: []string{},
		Ratings:      []Rating{},
	}
}

// RecordPlay bumps play counters for a participant.
func (x *Experiment) RecordPlay(entityID string) {
	x.Stats.TimesPlayed++
	for _, p := range x.Participants {
		if p == entityID {
			return
		}
	}
	x.Participants = append(x.Participants, entityID)
	x.Stats.UniqueParticipants = len(x.Participants)
}

// AddRating appends a star rating and refreshes the aggregates.
func (x *Experiment) AddRating(entityID string, stars int, comment string) {
	x.Ratings = append(x.Ratings, Rating{
		EntityID: entityID,
		Stars:    stars,
		Comment:  SanitizeText(comment),
		RatedAt:  time.Now().UTC(),
	})
	total := 0
	for _, r := range x.Ratings {
		total += r.Stars
	}
	x.Stats.TotalStars = total
	x.Stats.AverageRating = float64(total) / float64(len(x.Ratings))
}
