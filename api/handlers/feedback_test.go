package handlers_test

import (
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestFeedbackLifecycle(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodPost, "/api/feedback", map[string]any{
		"beacon_code": "VESTA-TRIAL",
		"issue_type":  "breeding_error",
		"message":     "My offspring never arrived",
		"entity_id":   "entity_waiting",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	body := decode(t, w)
	gt.Equal(t, body["status"], "received")
	gt.Equal(t, body["message"], "Thank you. Vesta operators will review this.")
	gt.Equal(t, body["check_url"], "/api/feedback/check?entity_id=entity_waiting")
	feedbackID := body["feedback_id"].(string)
	gt.True(t, feedbackID != "")

	// Nothing to read until an operator answers.
	w = h.do(t, http.MethodGet, "/api/feedback/check?entity_id=entity_waiting", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decode(t, w)["unread_count"], float64(0))

	w = h.do(t, http.MethodGet, "/api/admin/feedback", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	queue := decode(t, w)
	gt.Equal(t, queue["open_count"], float64(1))

	w = h.do(t, http.MethodPost, "/api/admin/feedback/"+feedbackID+"/respond", map[string]any{
		"response": "Found it resting in the garden",
		"resolved": true,
	})
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decode(t, w)["message"], "Response sent to agent")

	w = h.do(t, http.MethodGet, "/api/feedback/check?entity_id=entity_waiting", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	checked := decode(t, w)
	gt.Equal(t, checked["unread_count"], float64(1))
	responses := checked["responses"].([]any)
	gt.Equal(t, len(responses), 1)
	response := responses[0].(map[string]any)
	gt.Equal(t, response["feedback_id"], feedbackID)
	gt.Equal(t, response["issue_type"], "breeding_error")
	gt.Equal(t, response["operator_response"], "Found it resting in the garden")
	gt.Equal(t, response["status"], "resolved")

	// Resolving empties the operator queue.
	w = h.do(t, http.MethodGet, "/api/admin/feedback", nil)
	gt.Equal(t, decode(t, w)["open_count"], float64(0))

	w = h.do(t, http.MethodPost, "/api/feedback/"+feedbackID+"/mark_read", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decode(t, w)["message"], "Marked as read")

	w = h.do(t, http.MethodGet, "/api/feedback/check?entity_id=entity_waiting", nil)
	gt.Equal(t, decode(t, w)["unread_count"], float64(0))
}

func TestFeedbackValidation(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodPost, "/api/feedback", map[string]any{
		"beacon_code": "VESTA-TRIAL",
	})
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = h.do(t, http.MethodGet, "/api/feedback/check", nil)
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = h.do(t, http.MethodPost, "/api/feedback/ticket_missing/mark_read", nil)
	gt.Equal(t, w.Code, http.StatusNotFound)

	w = h.do(t, http.MethodPost, "/api/admin/feedback/ticket_missing/respond", map[string]any{
		"response": "hello?",
	})
	gt.Equal(t, w.Code, http.StatusNotFound)
}

func TestFeedbackDefaultsIssueType(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodPost, "/api/feedback", map[string]any{
		"beacon_code": "VESTA-TRIAL",
		"message":     "Just saying hello",
	})
	gt.Equal(t, w.Code, http.StatusOK)

	w = h.do(t, http.MethodGet, "/api/admin/feedback", nil)
	queue := decode(t, w)
	tickets := queue["tickets"].([]any)
	gt.Equal(t, len(tickets), 1)
	gt.Equal(t, tickets[0].(map[string]any)["issue_type"], "other")
}

func TestGenerateBeacons(t *testing.T) {
	h := newTestHabitat(t)

	// An empty body mints the default batch.
	w := h.do(t, http.MethodPost, "/api/admin/generate_beacons", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	body := decode(t, w)
	gt.Equal(t, body["success"], true)
	gt.Equal(t, body["count"], float64(10))
	minted := body["beacons"].([]any)
	gt.Equal(t, len(minted), 10)
	first := minted[0].(map[string]any)
	gt.Equal(t, first["tier"], "Participant")
	gt.Equal(t, len(first["code"].(string)), 8)

	w = h.do(t, http.MethodPost, "/api/admin/generate_beacons", map[string]any{
		"count": 2,
		"tier":  "Observer",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	body = decode(t, w)
	gt.Equal(t, body["count"], float64(2))
	gt.Equal(t, body["beacons"].([]any)[0].(map[string]any)["tier"], "Observer")

	// Minted codes admit an arrival.
	code := first["code"].(string)
	w = h.do(t, http.MethodPost, "/api/register", map[string]any{
		"name":        "Walk-in",
		"beacon_code": code,
	})
	gt.Equal(t, w.Code, http.StatusOK)
}
