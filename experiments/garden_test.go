package experiments_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/experiments"
)

// scriptedRand plays back queued values. Exhausted float draws return
// 0.99 so chance events stay quiet; exhausted int draws return 0.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

type stubAssociator struct{ out []string }

func (s stubAssociator) Associations(ctx context.Context, seed string) []string {
	return s.out
}

func TestGardenPlantAndAutoConnect(t *testing.T) {
	e := experiments.NewGardenEngineWithRand(nil, &scriptedRand{})
	ctx := context.Background()

	first := e.Plant(ctx, "exp-1", "ada", "solar power")
	gt.Equal(t, first.ID, "concept_0")
	gt.Equal(t, first.Health, 1.0)
	gt.Equal(t, first.Growth, []string{
		"solar power systems",
		"solar power networks",
		"solar power processes",
	})

	second := e.Plant(ctx, "exp-1", "bob", "wind power")
	gt.Equal(t, second.ID, "concept_1")

	state, err := e.State("exp-1")
	gt.NoError(t, err)
	gt.Equal(t, state.TotalConcepts, 2)
	gt.Equal(t, state.TotalConnections, 1)
	gt.Equal(t, state.UniqueGardeners, 2)

	link := state.Connections[0]
	gt.Equal(t, link.From, "concept_0")
	gt.Equal(t, link.To, "concept_1")
	gt.Equal(t, link.FormedBy, "auto")
	gt.Equal(t, link.Metaphor, "Both solar power and wind power involve networks")
	gt.True(t, link.Strength >= 0.5 && link.Strength <= 1.0)
}

func TestGardenUnrelatedConceptsStayApart(t *testing.T) {
	e := experiments.NewGardenEngineWithRand(nil, &scriptedRand{})
	ctx := context.Background()

	e.Plant(ctx, "exp-1", "ada", "gardening")
	e.Plant(ctx, "exp-1", "ada", "cryptography")

	state, err := e.State("exp-1")
	gt.NoError(t, err)
	gt.Equal(t, state.TotalConnections, 0)
}

func TestGardenAssociatorOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("associations come from the associator", func(t *testing.T) {
		e := experiments.NewGardenEngineWithRand(stubAssociator{out: []string{"lateral roots"}}, &scriptedRand{})
		concept := e.Plant(ctx, "exp-1", "ada", "soil")
		gt.Equal(t, concept.Growth, []string{"lateral roots"})
	})

	t.Run("empty associator output falls back to templates", func(t *testing.T) {
		e := experiments.NewGardenEngineWithRand(stubAssociator{}, &scriptedRand{})
		concept := e.Plant(ctx, "exp-1", "ada", "soil")
		gt.A(t, concept.Growth).Length(3)
		gt.S(t, concept.Growth[0]).Contains("soil")
	})
}

func TestGardenCrossPollinateAndHarvest(t *testing.T) {
	e := experiments.NewGardenEngineWithRand(nil, &scriptedRand{})
	ctx := context.Background()

	solar := e.Plant(ctx, "exp-1", "ada", "solar power")
	wind := e.Plant(ctx, "exp-1", "bob", "wind power")

	hybrid, err := e.CrossPollinate(ctx, "exp-1", "ada", solar.ID, wind.ID)
	gt.NoError(t, err)
	gt.True(t, hybrid.IsHybrid)
	gt.Equal(t, hybrid.Seed, "solar power-wind power hybrid")
	gt.Equal(t, hybrid.ParentConcepts, []string{solar.ID, wind.ID})

	// The hybrid shares words with both parents, so it connects to
	// each on planting.
	state, err := e.State("exp-1")
	gt.NoError(t, err)
	gt.Equal(t, state.TotalConcepts, 3)
	gt.Equal(t, state.TotalConnections, 3)

	insights, err := e.Harvest("exp-1", "ada")
	gt.NoError(t, err)
	gt.A(t, insights).Length(2)
	gt.Equal(t, insights[0].Insight, "Your concept 'solar power' has formed 2 connections")

	_, err = e.CrossPollinate(ctx, "exp-1", "ada", solar.ID, "concept_99")
	gt.Error(t, err)
	_, err = e.CrossPollinate(ctx, "no-such-garden", "ada", solar.ID, wind.ID)
	gt.Error(t, err)
}

func TestGardenPruneOwnership(t *testing.T) {
	e := experiments.NewGardenEngineWithRand(nil, &scriptedRand{})
	ctx := context.Background()

	mine := e.Plant(ctx, "exp-1", "ada", "solar power")
	e.Plant(ctx, "exp-1", "bob", "wind power")

	gt.Error(t, e.Prune("exp-1", "bob", mine.ID))
	gt.Error(t, e.Prune("exp-1", "ada", "concept_99"))

	gt.NoError(t, e.Prune("exp-1", "ada", mine.ID))
	state, err := e.State("exp-1")
	gt.NoError(t, err)
	gt.Equal(t, state.TotalConcepts, 1)
	gt.Equal(t, state.TotalConnections, 0)
}

func TestGardenGrowthTick(t *testing.T) {
	rng := &scriptedRand{floats: []float64{
		0.5,  // connection strength while planting
		0.05, // first concept mutates on the tick
		0.99, // second concept stays put
		0.99, // isolated concept stays put
	}}
	e := experiments.NewGardenEngineWithRand(nil, rng)
	ctx := context.Background()

	e.Plant(ctx, "exp-1", "ada", "solar power")
	e.Plant(ctx, "exp-1", "ada", "wind power")
	e.Plant(ctx, "exp-1", "ada", "loneliness")

	e.TickAll()

	state, err := e.State("exp-1")
	gt.NoError(t, err)
	connected := state.Concepts[0]
	isolated := state.Concepts[2]

	gt.Equal(t, connected.AgeHours, 1)
	gt.A(t, connected.Mutations).Length(1)
	gt.S(t, connected.Mutations[0]).Contains("solar power")
	gt.Equal(t, connected.Health, 1.0)

	gt.Equal(t, isolated.AgeHours, 1)
	gt.A(t, isolated.Mutations).Length(0)
	gt.True(t, isolated.Health < 1.0 && isolated.Health > 0.85)
}

func TestGardenConceptIDsStayUniqueAfterPrune(t *testing.T) {
	e := experiments.NewGardenEngineWithRand(nil, &scriptedRand{})
	ctx := context.Background()

	first := e.Plant(ctx, "exp-1", "ada", "alpha")
	e.Plant(ctx, "exp-1", "ada", "beta")
	gt.NoError(t, e.Prune("exp-1", "ada", first.ID))

	third := e.Plant(ctx, "exp-1", "ada", "gamma")
	gt.Equal(t, third.ID, "concept_2")

	state, err := e.State("exp-1")
	gt.NoError(t, err)
	seen := map[string]bool{}
	for _, c := range state.Concepts {
		gt.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

func TestGardenStateMissing(t *testing.T) {
	e := experiments.NewGardenEngineWithRand(nil, &scriptedRand{})
	_, err := e.State("never-planted")
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("garden not found")
}
