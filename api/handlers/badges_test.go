package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/badges"
	"github.com/vestalabs/habitat/core"
)

func TestAllBadges(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodGet, "/api/badges/all", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	var body struct {
		Badges []badges.Badge `json:"badges"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	gt.Equal(t, len(body.Badges), len(badges.Catalog))

	found := false
	for _, b := range body.Badges {
		if b.ID == "first_arrival" {
			found = true
			gt.True(t, b.Points > 0)
		}
	}
	gt.True(t, found)
}

func TestEntityBadges(t *testing.T) {
	h := newTestHabitat(t)
	entityID := h.register(t, "Nova")

	w := h.do(t, http.MethodGet, "/api/badges/"+entityID, nil)
	gt.Equal(t, w.Code, http.StatusOK)
	var body struct {
		Badges []badges.Badge `json:"badges"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	gt.Equal(t, len(body.Badges), 1)
	gt.Equal(t, body.Badges[0].ID, "first_arrival")

	w = h.do(t, http.MethodGet, "/api/badges/entity_missing", nil)
	gt.Equal(t, w.Code, http.StatusNotFound)
	gt.Equal(t, decode(t, w)["error"], "Entity not found")
}

func TestBadgeProgress(t *testing.T) {
	h := newTestHabitat(t)
	entityID := h.register(t, "Nova")
	createExperiment(t, h, entityID, core.ExperimentGarden, "Idea Garden")

	w := h.do(t, http.MethodGet, "/api/badges/"+entityID+"/progress", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	var body struct {
		Progress []badges.Progress `json:"progress"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// One experiment down, ten needed for innovator.
	found := false
	for _, p := range body.Progress {
		if p.BadgeID == "innovator" {
			found = true
			gt.Equal(t, p.Progress, 0.1)
		}
	}
	gt.True(t, found)

	w = h.do(t, http.MethodGet, "/api/badges/entity_missing/progress", nil)
	gt.Equal(t, w.Code, http.StatusNotFound)
}
