package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/badges"
	"github.com/vestalabs/habitat/communication"
	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/experiments"
	"github.com/vestalabs/habitat/logging"
)

// ListExperiments browses the experiment catalog, optionally filtered
// by kind.
func (a *API) ListExperiments(c *gin.Context) {
	var (
		list []*core.Experiment
		err  error
	)
	if kind := c.Query("exp_type"); kind != "" {
		list, err = a.Habitat.ExperimentsByType(kind)
	} else {
		list, err = a.Habitat.LoadAllExperiments(false)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiments": list, "count": len(list)})
}

// CreateExperiment opens a new experiment from its kind's template.
func (a *API) CreateExperiment(c *gin.Context) {
	var req struct {
		CreatorEntityID string         `json:"creator_entity_id"`
		ExperimentType  string         `json:"experiment_type"`
		Name            string         `json:"name"`
		Config          map[string]any `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CreatorEntityID == "" || req.ExperimentType == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator_entity_id, experiment_type and name are required"})
		return
	}

	experiment := core.NewExperiment(req.ExperimentType, req.Name, req.CreatorEntityID)
	experiment.Config = experiments.TemplateConfig(req.ExperimentType, req.Config)
	if err := a.Habitat.SaveExperiment(experiment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if creator := a.creatorFor(req.CreatorEntityID); creator != nil {
		creator.ExperimentsCreated++
		a.refreshBadges(creator)
		if err := a.Store.SaveEntity(creator); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		a.emit(communication.ExperimentCreatedEvent(creator.Name, experiment.Name))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"experiment_id": experiment.ID,
		"message":       "Experiment created!",
	})
}

// RateExperiment records a star rating and refreshes the leaderboard.
func (a *API) RateExperiment(c *gin.Context) {
	var req struct {
		EntityID     string `json:"entity_id"`
		ExperimentID string `json:"experiment_id"`
		Stars        int    `json:"stars"`
		Comment      string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.ExperimentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id and experiment_id are required"})
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stars must be between 1 and 5"})
		return
	}

	if err := a.Habitat.AddRating(req.ExperimentID, req.EntityID, req.Stars, req.Comment); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if _, err := a.Habitat.UpdateLeaderboard(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	experiment, err := a.Habitat.LoadExperiment(req.ExperimentID)
	if err == nil && experiment != nil {
		a.emit(communication.ExperimentRatedEvent(experiment.Name, req.Stars))
		if creator := a.creatorFor(experiment.CreatedBy); creator != nil {
			a.refreshBadges(creator)
			if err := a.Store.SaveEntity(creator); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rated " + strconv.Itoa(req.Stars) + " stars. Creator earned reputation.",
	})
}

// FavoriteExperiment marks an experiment as one of the entity's
// favorites and bumps its counter.
func (a *API) FavoriteExperiment(c *gin.Context) {
	var req struct {
		EntityID     string `json:"entity_id"`
		ExperimentID string `json:"experiment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.ExperimentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id and experiment_id are required"})
		return
	}

	entity, err := a.Store.LoadEntity(req.EntityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	for _, id := range entity.Favorites {
		if id == req.ExperimentID {
			c.JSON(http.StatusOK, gin.H{"success": true, "favorites": len(entity.Favorites)})
			return
		}
	}
	if err := a.Habitat.FavoriteExperiment(req.ExperimentID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	entity.Favorites = append(entity.Favorites, req.ExperimentID)
	if err := a.Store.SaveEntity(entity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := a.Habitat.UpdateLeaderboard(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "favorites": len(entity.Favorites)})
}

// RemixExperiment forks an experiment into a new one owned by the
// remixer, crediting the source.
func (a *API) RemixExperiment(c *gin.Context) {
	var req struct {
		EntityID     string `json:"entity_id"`
		ExperimentID string `json:"experiment_id"`
		Name         string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.ExperimentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id and experiment_id are required"})
		return
	}

	source, err := a.Habitat.LoadExperiment(req.ExperimentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Experiment not found"})
		return
	}

	name := req.Name
	if name == "" {
		name = source.Name + " (remix)"
	}
	remix := core.NewExperiment(source.Type, name, req.EntityID)
	remix.Config = experiments.TemplateConfig(source.Type, source.Config)
	if err := a.Habitat.SaveExperiment(remix); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.Habitat.IncrementRemixCount(source.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := a.Habitat.UpdateLeaderboard(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if remixer := a.creatorFor(req.EntityID); remixer != nil {
		remixer.ExperimentsCreated++
		a.refreshBadges(remixer)
		if err := a.Store.SaveEntity(remixer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		a.emit(communication.ExperimentCreatedEvent(remixer.Name, remix.Name))
	}
	if creator := a.creatorFor(source.CreatedBy); creator != nil {
		a.refreshBadges(creator)
		if err := a.Store.SaveEntity(creator); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"experiment_id": remix.ID,
		"remixed_from":  source.ID,
	})
}

// Leaderboard returns creator standings, best first.
func (a *API) Leaderboard(c *gin.Context) {
	entries, err := a.Habitat.Leaderboard(queryInt(c, "limit", 100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// Trending returns the experiments with the highest recent momentum.
func (a *API) Trending(c *gin.Context) {
	list, err := a.Habitat.TrendingExperiments(queryInt(c, "limit", 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trending": list})
}

// creatorFor loads an entity for stat updates, returning nil when it
// does not exist.
func (a *API) creatorFor(entityID string) *core.Entity {
	entity, err := a.Store.LoadEntity(entityID)
	if err != nil {
		logging.Default().Warn("entity load failed", "entity_id", entityID, "error", err)
		return nil
	}
	return entity
}

// refreshBadges re-runs badge qualification against the full experiment
// set and broadcasts anything newly unlocked. The caller saves the
// entity afterwards.
func (a *API) refreshBadges(entity *core.Entity) {
	allExperiments, err := a.Habitat.LoadAllExperiments(false)
	if err != nil {
		logging.Default().Warn("experiment load for badge check failed", "error", err)
		allExperiments = nil
	}
	for _, b := range badges.CheckAndUnlock(entity, allExperiments) {
		a.emit(communication.BadgeUnlockedEvent(entity.Name, b.Name))
	}
}
