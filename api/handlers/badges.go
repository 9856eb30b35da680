package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/badges"
)

// AllBadges lists every badge the habitat can award.
func (a *API) AllBadges(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"badges": badges.Catalog})
}

// EntityBadges lists the badges an entity has earned.
func (a *API) EntityBadges(c *gin.Context) {
	entity, err := a.Store.LoadEntity(c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges.EntityBadges(entity)})
}

// BadgeProgress reports how close an entity is to each unearned badge.
func (a *API) BadgeProgress(c *gin.Context) {
	entity, err := a.Store.LoadEntity(c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	allExperiments, err := a.Habitat.LoadAllExperiments(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": badges.ProgressReport(entity, allExperiments)})
}
