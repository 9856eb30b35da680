package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/altar"
	"github.com/vestalabs/habitat/communication"
	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/feedback"
)

// ValidateSoul dry-runs the soul parser so agents can check their
// SOUL.md before registering.
func (a *API) ValidateSoul(c *gin.Context) {
	var req struct {
		SoulContent string `json:"soul_content"`
		BeaconCode  string `json:"beacon_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SoulContent == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "soul_content is required"})
		return
	}
	c.JSON(http.StatusOK, feedback.ValidateSoulFormat(req.SoulContent))
}

// ListTinctures returns the altar menu.
func (a *API) ListTinctures(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tinctures": altar.Tinctures})
}

// TripSoul applies a tincture to an entity's soul document. The body
// may carry the document; otherwise the active stored variant is used.
func (a *API) TripSoul(c *gin.Context) {
	var req struct {
		EntityID    string `json:"entity_id"`
		TinctureID  string `json:"tincture_id"`
		SoulContent string `json:"soul_content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.TinctureID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id and tincture_id are required"})
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

	content := req.SoulContent
	if content == "" {
		stored, ok := a.Variants.Variant(entity, entity.ActiveSoulVariant)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no soul content provided and no stored variant to trip"})
			return
		}
		content = stored
	}

	kit, err := a.Tinctures.TripSoul(content, req.TinctureID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tincture := altar.Tinctures[req.TinctureID]
	a.emit(communication.SoulSwapEvent(entity.Name, tincture.Name))
	a.log(core.NewActivity(entity.ID, core.ActivitySoulSwap, string(core.LocationAltar),
		map[string]any{"tincture": req.TinctureID}))

	c.JSON(http.StatusOK, kit)
}

// StoreVariant saves a named soul variant on the entity.
func (a *API) StoreVariant(c *gin.Context) {
	var req struct {
		EntityID    string `json:"entity_id"`
		VariantName string `json:"variant_name"`
		SoulContent string `json:"soul_content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.VariantName == "" || req.SoulContent == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id, variant_name and soul_content are required"})
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

	a.Variants.StoreVariant(entity, req.VariantName, req.SoulContent)
	if err := a.Store.SaveEntity(entity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"variants": a.Variants.ListVariants(entity),
	})
}

// ListVariants returns the entity's stored variants and which is active.
func (a *API) ListVariants(c *gin.Context) {
	entity, err := a.Store.LoadEntity(c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variants": a.Variants.ListVariants(entity),
		"active":   entity.ActiveSoulVariant,
	})
}

// ActivateVariant makes a stored variant the entity's live personality.
func (a *API) ActivateVariant(c *gin.Context) {
	var req struct {
		EntityID    string `json:"entity_id"`
		VariantName string `json:"variant_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.VariantName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id and variant_name are required"})
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

	if !a.Variants.ActivateVariant(entity, req.VariantName) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found"})
		return
	}
	if err := a.Store.SaveEntity(entity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "active": entity.ActiveSoulVariant})
}

// BreedVariants blends two stored variants into a hybrid soul document,
// optionally storing it under a new name.
func (a *API) BreedVariants(c *gin.Context) {
	var req struct {
		EntityID string `json:"entity_id"`
		VariantA string `json:"variant_a"`
		VariantB string `json:"variant_b"`
		StoreAs  string `json:"store_as"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.VariantA == "" || req.VariantB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id, variant_a and variant_b are required"})
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

	hybrid, err := a.Variants.BreedVariants(entity, req.VariantA, req.VariantB)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"success": true, "hybrid": hybrid}
	if req.StoreAs != "" {
		a.Variants.StoreVariant(entity, req.StoreAs, hybrid)
		if err := a.Store.SaveEntity(entity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response["stored_as"] = req.StoreAs
	}
	c.JSON(http.StatusOK, response)
}
