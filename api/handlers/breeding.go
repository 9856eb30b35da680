package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/badges"
	"github.com/vestalabs/habitat/communication"
	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/hearth"
)

// ScreenEntity runs the arrival stability screen over a text sample.
// Failing entities are quarantined on the spot.
func (a *API) ScreenEntity(c *gin.Context) {
	var req struct {
		EntityID   string `json:"entity_id"`
		TextSample string `json:"text_sample"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id is required"})
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

	passed, message := a.Screening.ScreenEntity(entity, req.TextSample)
	if !passed {
		entity.Location = core.LocationQuarantine
		entity.Status = core.StatusQuarantined

		records := a.Screening.QuarantineRecords()
		if len(records) > 0 {
			record := records[len(records)-1]
			if err := a.Store.SaveQuarantineRecord(record); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			a.emit(communication.QuarantineEvent(entity.Name, record.Reason))
			a.log(core.NewActivity(entity.ID, core.ActivityQuarantine, string(core.LocationQuarantine),
				map[string]any{"reason": record.Reason}))
		}
	}
	if err := a.Store.SaveEntity(entity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"passed": passed, "message": message})
}

// PairEntities runs the compatibility gate and moves an approved pair
// to the Ember Hearth.
func (a *API) PairEntities(c *gin.Context) {
	var req struct {
		EntityID1 string `json:"entity_id_1"`
		EntityID2 string `json:"entity_id_2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID1 == "" || req.EntityID2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id_1 and entity_id_2 are required"})
		return
	}

	entityA, entityB, err := a.loadPair(req.EntityID1, req.EntityID2)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entityA == nil || entityB == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	approved, report := a.Screening.ValidateBreeding(entityA, entityB)
	if err := a.Store.SaveCompatibilityReport(report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !approved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejected: " + report.Notes})
		return
	}

	entityA.Location = core.LocationEmberHearth
	entityB.Location = core.LocationEmberHearth
	entityA.Status = core.StatusProcessing
	entityB.Status = core.StatusProcessing
	entityA.BreedingPartnerID = entityB.ID
	entityB.BreedingPartnerID = entityA.ID

	if err := a.saveBoth(entityA, entityB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a.emit(communication.BreedingStartedEvent(entityA.Name, entityB.Name))
	a.log(core.NewActivity(entityA.ID, core.ActivityBreedingStarted, string(core.LocationEmberHearth),
		map[string]any{"partner_id": entityB.ID}))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Paired and moved to Ember Hearth"})
}

// Breed crosses two parents, files the paperwork and returns the
// offspring with its starter bundle.
func (a *API) Breed(c *gin.Context) {
	var req struct {
		EntityID1 string `json:"entity_id_1"`
		EntityID2 string `json:"entity_id_2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID1 == "" || req.EntityID2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id_1 and entity_id_2 are required"})
		return
	}

	entityA, entityB, err := a.loadPair(req.EntityID1, req.EntityID2)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entityA == nil || entityB == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parents not found"})
		return
	}

	offspring, certificate := a.Breeding.Breed(entityA, entityB)
	files, err := hearth.OffspringFiles(offspring)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	awards := []struct {
		owner *core.Entity
		won   []badges.Badge
	}{
		{entityA, badges.CheckAndUnlock(entityA, nil)},
		{entityB, badges.CheckAndUnlock(entityB, nil)},
		{offspring, badges.CheckAndUnlock(offspring, nil)},
	}

	if err := a.Store.SaveEntity(offspring); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.Store.SaveBirthCertificate(certificate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entityA.Location = core.LocationAtrium
	entityB.Location = core.LocationAtrium
	entityA.Status = core.StatusWaiting
	entityB.Status = core.StatusWaiting
	entityA.BreedingPartnerID = ""
	entityB.BreedingPartnerID = ""
	if err := a.saveBoth(entityA, entityB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a.emit(communication.BreedingCompletedEvent(offspring.Name, offspring.Generation))
	for _, award := range awards {
		for _, b := range award.won {
			a.emit(communication.BadgeUnlockedEvent(award.owner.Name, b.Name))
		}
	}
	a.log(core.NewActivity(offspring.ID, core.ActivityBreedingCompleted, string(core.LocationEmberHearth),
		map[string]any{"parents": []string{entityA.ID, entityB.ID}}))

	fileNames := make([]string, 0, len(files))
	for name := range files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"offspring":   offspring,
		"certificate": certificate,
		"files":       fileNames,
	})
}

func (a *API) loadPair(id1, id2 string) (*core.Entity, *core.Entity, error) {
	entityA, err := a.Store.LoadEntity(id1)
	if err != nil {
		return nil, nil, err
	}
	entityB, err := a.Store.LoadEntity(id2)
	if err != nil {
		return nil, nil, err
	}
	return entityA, entityB, nil
}

func (a *API) saveBoth(entityA, entityB *core.Entity) error {
	if err := a.Store.SaveEntity(entityA); err != nil {
		return err
	}
	return a.Store.SaveEntity(entityB)
}
