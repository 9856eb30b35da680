package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/logging"
	"github.com/vestalabs/habitat/storage"
)

// PlantConcept drops a seed concept into a semantic garden. Gardens
// spring into existence on first planting.
func (a *API) PlantConcept(c *gin.Context) {
	var req struct {
		ExperimentID string `json:"experiment_id"`
		EntityID     string `json:"entity_id"`
		Concept      string `json:"concept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExperimentID == "" || req.EntityID == "" || req.Concept == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "experiment_id, entity_id and concept are required"})
		return
	}

	concept := a.Gardens.Plant(c.Request.Context(), req.ExperimentID, req.EntityID, core.SanitizeText(req.Concept))

	a.logInteraction(storage.NewInteraction(req.ExperimentID, req.EntityID, "plant_concept", map[string]any{
		"concept": concept.Seed,
	}))
	// Gardens can be ad hoc, so a missing catalog entry is fine here.
	if err := a.Habitat.RecordPlay(req.ExperimentID, req.EntityID); err != nil {
		logging.Default().Debug("play not recorded", "experiment_id", req.ExperimentID, "error", err)
	}

	c.JSON(http.StatusOK, concept)
}

// CrossPollinate breeds two planted concepts into a hybrid.
func (a *API) CrossPollinate(c *gin.Context) {
	var req struct {
		ExperimentID string `json:"experiment_id"`
		EntityID     string `json:"entity_id"`
		ConceptA     string `json:"concept_a"`
		ConceptB     string `json:"concept_b"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExperimentID == "" || req.EntityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "experiment_id, entity_id, concept_a and concept_b are required"})
		return
	}

	hybrid, err := a.Gardens.CrossPollinate(c.Request.Context(), req.ExperimentID, req.EntityID, req.ConceptA, req.ConceptB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.logInteraction(storage.NewInteraction(req.ExperimentID, req.EntityID, "cross_pollinate", map[string]any{
		"concepts": []string{req.ConceptA, req.ConceptB},
	}))

	c.JSON(http.StatusOK, hybrid)
}

// PruneConcept lets an entity remove one of its own concepts.
func (a *API) PruneConcept(c *gin.Context) {
	var req struct {
		ExperimentID string `json:"experiment_id"`
		EntityID     string `json:"entity_id"`
		ConceptID    string `json:"concept_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExperimentID == "" || req.EntityID == "" || req.ConceptID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "experiment_id, entity_id and concept_id are required"})
		return
	}

	if err := a.Gardens.Prune(req.ExperimentID, req.EntityID, req.ConceptID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.logInteraction(storage.NewInteraction(req.ExperimentID, req.EntityID, "prune_concept", map[string]any{
		"concept_id": req.ConceptID,
	}))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HarvestGarden distills an entity's contributions into insights.
func (a *API) HarvestGarden(c *gin.Context) {
	var req struct {
		ExperimentID string `json:"experiment_id"`
		EntityID     string `json:"entity_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExperimentID == "" || req.EntityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "experiment_id and entity_id are required"})
		return
	}

	insights, err := a.Gardens.Harvest(req.ExperimentID, req.EntityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.logInteraction(storage.NewInteraction(req.ExperimentID, req.EntityID, "harvest", map[string]any{
		"insights": len(insights),
	}))

	c.JSON(http.StatusOK, gin.H{"insights": insights, "count": len(insights)})
}

// GardenState returns a snapshot of the garden's concept graph.
func (a *API) GardenState(c *gin.Context) {
	state, err := a.Gardens.State(c.Param("experiment_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Garden not found"})
		return
	}
	c.JSON(http.StatusOK, state)
}

// StartEchoSession splits an entity into biased echoes around a topic.
func (a *API) StartEchoSession(c *gin.Context) {
	var req struct {
		EntityID    string `json:"entity_id"`
		DebateTopic string `json:"debate_topic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" || req.DebateTopic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id and debate_topic are required"})
		return
	}

	session := a.Chambers.StartSession(req.EntityID, core.SanitizeText(req.DebateTopic))
	c.JSON(http.StatusOK, session)
}

// DebateRound has every echo in the session speak once.
func (a *API) DebateRound(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	round, err := a.Chambers.DebateRound(c.Request.Context(), req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, round)
}

// AbsorbEcho folds one echo's bias back into the original entity.
func (a *API) AbsorbEcho(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
		EchoID    string `json:"echo_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" || req.EchoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and echo_id are required"})
		return
	}

	result, err := a.Chambers.Absorb(req.SessionID, req.EchoID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// EchoSummary reports how the debate went.
func (a *API) EchoSummary(c *gin.Context) {
	summary, err := a.Chambers.Summary(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// StartLabSession opens a constraint lab round for a set of entities.
func (a *API) StartLabSession(c *gin.Context) {
	var req struct {
		Participants    []string `json:"participants"`
		DurationMinutes int      `json:"duration_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Participants) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "participants are required"})
		return
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 10
	}

	sessionID := fmt.Sprintf("constraint_%d", time.Now().Unix())
	session := a.Labs.StartSession(sessionID, req.Participants, req.DurationMinutes)
	c.JSON(http.StatusOK, session)
}

// SubmitLabMessage scores a message against the active constraints.
func (a *API) SubmitLabMessage(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
		EntityID  string `json:"entity_id"`
		Message   string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" || req.EntityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id, entity_id and message are required"})
		return
	}

	entry, err := a.Labs.SubmitMessage(req.SessionID, req.EntityID, req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.logInteraction(storage.NewInteraction(req.SessionID, req.EntityID, "submit_message", map[string]any{
		"message": entry.Message,
		"valid":   entry.Valid,
	}))

	c.JSON(http.StatusOK, entry)
}

// RotateLabConstraints swaps the active constraints mid-session.
func (a *API) RotateLabConstraints(c *gin.Context) {
	constraints, err := a.Labs.RotateConstraints(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rotated": true, "constraints": constraints})
}

// LabLeaderboard ranks session participants by score.
func (a *API) LabLeaderboard(c *gin.Context) {
	scores, err := a.Labs.SessionLeaderboard(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": scores})
}

// EndLabSession closes the session and declares a winner.
func (a *API) EndLabSession(c *gin.Context) {
	result, err := a.Labs.EndSession(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
