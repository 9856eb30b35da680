package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/storage"
)

func newHabitat(t *testing.T) *storage.HabitatDB {
	t.Helper()
	db, err := storage.NewHabitatDB(t.TempDir())
	gt.NoError(t, err)
	return db
}

func TestHabitatExperimentRoundTrip(t *testing.T) {
	db := newHabitat(t)

	garden := core.NewExperiment(core.ExperimentGarden, "Shared Garden", "creator-1")
	gt.NoError(t, db.SaveExperiment(garden))

	loaded, err := db.LoadExperiment(garden.ID)
	gt.NoError(t, err)
	gt.NotNil(t, loaded)
	gt.Equal(t, loaded.Name, "Shared Garden")
	gt.True(t, loaded.Active)

	missing, err := db.LoadExperiment("no-such-experiment")
	gt.NoError(t, err)
	gt.Nil(t, missing)
}

func TestHabitatExperimentFilters(t *testing.T) {
	db := newHabitat(t)

	garden := core.NewExperiment(core.ExperimentGarden, "Garden", "ada")
	chamber := core.NewExperiment(core.ExperimentEchoChamber, "Chamber", "ada")
	lab := core.NewExperiment(core.ExperimentConstraintLab, "Lab", "bob")
	chamber.Active = false
	for _, x := range []*core.Experiment{garden, chamber, lab} {
		gt.NoError(t, db.SaveExperiment(x))
	}

	active, err := db.LoadAllExperiments(true)
	gt.NoError(t, err)
	gt.A(t, active).Length(2)

	everything, err := db.LoadAllExperiments(false)
	gt.NoError(t, err)
	gt.A(t, everything).Length(3)

	byCreator, err := db.ExperimentsByCreator("ada")
	gt.NoError(t, err)
	gt.A(t, byCreator).Length(2)

	byType, err := db.ExperimentsByType(core.ExperimentEchoChamber)
	gt.NoError(t, err)
	gt.A(t, byType).Length(0)

	byType, err = db.ExperimentsByType(core.ExperimentGarden)
	gt.NoError(t, err)
	gt.A(t, byType).Length(1)
}

func TestHabitatRatingsRefreshAggregates(t *testing.T) {
	db := newHabitat(t)

	lab := core.NewExperiment(core.ExperimentConstraintLab, "Lab", "ada")
	gt.NoError(t, db.SaveExperiment(lab))

	gt.NoError(t, db.AddRating(lab.ID, "ent-1", 4, "fun"))
	gt.NoError(t, db.AddRating(lab.ID, "ent-2", 5, ""))

	loaded, err := db.LoadExperiment(lab.ID)
	gt.NoError(t, err)
	gt.NotNil(t, loaded)
	gt.A(t, loaded.Ratings).Length(2)
	gt.Equal(t, loaded.Stats.TotalStars, 9)
	gt.Equal(t, loaded.Stats.AverageRating, 4.5)

	gt.Error(t, db.AddRating("no-such-experiment", "ent-1", 3, ""))
}

func TestHabitatFavoritesAndRemixes(t *testing.T) {
	db := newHabitat(t)

	garden := core.NewExperiment(core.ExperimentGarden, "Garden", "ada")
	gt.NoError(t, db.SaveExperiment(garden))

	gt.NoError(t, db.FavoriteExperiment(garden.ID))
	gt.NoError(t, db.FavoriteExperiment(garden.ID))
	gt.NoError(t, db.IncrementRemixCount(garden.ID))

	loaded, err := db.LoadExperiment(garden.ID)
	gt.NoError(t, err)
	gt.Equal(t, loaded.Stats.Favorites, 2)
	gt.Equal(t, loaded.Stats.Remixes, 1)

	gt.Error(t, db.FavoriteExperiment("no-such-experiment"))
}

func TestHabitatInteractionFilters(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.NewHabitatDB(dir)
	gt.NoError(t, err)

	for i := 0; i < 5; i++ {
		gt.NoError(t, db.LogInteraction(storage.NewInteraction("exp-1", "ent-a", "planted_concept", nil)))
	}
	gt.NoError(t, db.LogInteraction(storage.NewInteraction("exp-2", "ent-b", "debate_round", nil)))
	gt.NoError(t, db.LogInteraction(storage.NewInteraction("exp-2", "ent-b", "debate_round", nil)))

	f, err := os.OpenFile(filepath.Join(dir, "interactions.jsonl"), os.O_APPEND|os.O_WRONLY, 0o644)
	gt.NoError(t, err)
	_, err = f.WriteString("not json at all\n")
	gt.NoError(t, err)
	f.Close()

	byExperiment, err := db.Interactions("exp-1", "", 100)
	gt.NoError(t, err)
	gt.A(t, byExperiment).Length(5)

	byEntity, err := db.Interactions("", "ent-b", 100)
	gt.NoError(t, err)
	gt.A(t, byEntity).Length(2)
	gt.Equal(t, byEntity[0].Action, "debate_round")

	tail, err := db.Interactions("", "", 3)
	gt.NoError(t, err)
	gt.A(t, tail).Length(2)
}

func TestHabitatLeaderboard(t *testing.T) {
	db := newHabitat(t)

	empty, err := db.Leaderboard(10)
	gt.NoError(t, err)
	gt.A(t, empty).Length(0)

	first := core.NewExperiment(core.ExperimentGarden, "Garden", "ada")
	first.Stats.TotalStars = 10
	first.Stats.Favorites = 2
	first.Stats.TimesPlayed = 4
	second := core.NewExperiment(core.ExperimentEchoChamber, "Chamber", "ada")
	second.Stats.Remixes = 1
	second.Stats.TimesPlayed = 3
	third := core.NewExperiment(core.ExperimentConstraintLab, "Lab", "bob")
	third.Stats.TotalStars = 30
	for _, x := range []*core.Experiment{first, second, third} {
		gt.NoError(t, db.SaveExperiment(x))
	}

	board, err := db.UpdateLeaderboard()
	gt.NoError(t, err)
	gt.A(t, board).Length(2)
	gt.Equal(t, board[0].EntityID, "bob")
	gt.Equal(t, board[0].ReputationScore, 30)
	gt.Equal(t, board[1].EntityID, "ada")
	gt.Equal(t, board[1].TotalExperiments, 2)
	gt.Equal(t, board[1].TotalPlays, 7)
	gt.Equal(t, board[1].ReputationScore, 10+2*2+1*5)

	top, err := db.Leaderboard(1)
	gt.NoError(t, err)
	gt.A(t, top).Length(1)
	gt.Equal(t, top[0].EntityID, "bob")
}

func TestHabitatTrendingFavorsFreshActivity(t *testing.T) {
	db := newHabitat(t)
	now := time.Now().UTC()

	older := core.NewExperiment(core.ExperimentGarden, "Old Garden", "ada")
	older.CreatedAt = now.Add(-5 * 24 * time.Hour)
	older.Stats.AverageRating = 4.0

	fresh := core.NewExperiment(core.ExperimentEchoChamber, "Fresh Chamber", "bob")
	fresh.CreatedAt = now.Add(-24 * time.Hour)
	fresh.Stats.AverageRating = 3.0

	idle := core.NewExperiment(core.ExperimentConstraintLab, "Idle Lab", "cyd")
	idle.CreatedAt = now.Add(-24 * time.Hour)
	idle.Stats.AverageRating = 5.0

	retired := core.NewExperiment(core.ExperimentGarden, "Retired", "dee")
	retired.Active = false
	for _, x := range []*core.Experiment{older, fresh, idle, retired} {
		gt.NoError(t, db.SaveExperiment(x))
	}

	logPlay := func(experimentID string, when time.Time) {
		gt.NoError(t, db.LogInteraction(storage.Interaction{
			Timestamp:    when,
			ExperimentID: experimentID,
			EntityID:     "player",
			Action:       "played",
		}))
	}
	for i := 0; i < 3; i++ {
		logPlay(older.ID, now.Add(-2*24*time.Hour))
	}
	logPlay(older.ID, now.Add(-9*24*time.Hour))
	logPlay(fresh.ID, now.Add(-time.Hour))
	logPlay(fresh.ID, now.Add(-2*time.Hour))

	// fresh: 2 plays * 3.0 * 1.5 newness / sqrt(2) beats
	// older: 3 plays * 4.0 / sqrt(6); idle has no plays at all.
	trending, err := db.TrendingExperiments(10)
	gt.NoError(t, err)
	gt.A(t, trending).Length(3)
	gt.Equal(t, trending[0].ID, fresh.ID)
	gt.Equal(t, trending[1].ID, older.ID)
	gt.Equal(t, trending[2].ID, idle.ID)

	capped, err := db.TrendingExperiments(2)
	gt.NoError(t, err)
	gt.A(t, capped).Length(2)
}
