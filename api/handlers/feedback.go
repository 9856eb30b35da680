package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/feedback"
)

// SubmitFeedback files a support ticket. Works before registration, so
// entity_id may be empty.
func (a *API) SubmitFeedback(c *gin.Context) {
	var req struct {
		BeaconCode  string         `json:"beacon_code"`
		IssueType   string         `json:"issue_type"`
		Message     string         `json:"message"`
		EntityID    string         `json:"entity_id"`
		Attachments map[string]any `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "beacon_code, issue_type and message are required"})
		return
	}
	issue := core.IssueType(req.IssueType)
	if issue == "" {
		issue = core.IssueOther
	}

	ticket, err := a.Desk.Submit(req.EntityID, req.BeaconCode, issue, req.Message, req.Attachments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback_id": ticket.ID,
		"status":      "received",
		"message":     "Thank you. Vesta operators will review this.",
		"check_url":   "/api/feedback/check?entity_id=" + req.EntityID,
	})
}

// CheckFeedback returns operator responses the agent has not read yet.
func (a *API) CheckFeedback(c *gin.Context) {
	entityID := c.Query("entity_id")
	if entityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id is required"})
		return
	}

	unread, err := a.Desk.UnreadResponses(entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]gin.H, 0, len(unread))
	for _, t := range unread {
		responses = append(responses, gin.H{
			"feedback_id":       t.ID,
			"issue_type":        t.IssueType,
			"operator_response": t.Response,
			"status":            t.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"unread_count": len(unread),
		"responses":    responses,
	})
}

// MarkFeedbackRead flags an operator response as seen.
func (a *API) MarkFeedbackRead(c *gin.Context) {
	if err := a.Desk.MarkRead(c.Param("feedback_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// AskAtrium answers pre-registration questions from the canned help
// desk.
func (a *API) AskAtrium(c *gin.Context) {
	var req struct {
		Question   string `json:"question"`
		BeaconCode string `json:"beacon_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": feedback.HelpResponse(req.Question)})
}

// GenerateBeacons mints invite codes for the operator to hand out. The
// body is optional; the default batch is 10 participant codes.
func (a *API) GenerateBeacons(c *gin.Context) {
	var req struct {
		Count int    `json:"count"`
		Tier  string `json:"tier"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Count <= 0 {
		req.Count = 10
	}
	tier := core.Tier(req.Tier)
	if tier == "" {
		tier = core.TierParticipant
	}

	beacons, err := a.Store.GenerateBeacons(req.Count, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(beacons))
	for _, b := range beacons {
		out = append(out, gin.H{"code": b.BeaconCode, "tier": b.Tier})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(beacons), "beacons": out})
}

// AdminFeedbackQueue lists open tickets for the operator dashboard.
func (a *API) AdminFeedbackQueue(c *gin.Context) {
	open, err := a.Desk.OpenTickets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"open_count": len(open), "tickets": open})
}

// RespondFeedback records an operator answer on a ticket.
func (a *API) RespondFeedback(c *gin.Context) {
	var req struct {
		Response string `json:"response"`
		Resolved bool   `json:"resolved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Response == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "response is required"})
		return
	}

	if err := a.Desk.Respond(c.Param("feedback_id"), req.Response, req.Resolved); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Response sent to agent"})
}
