package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/reflection"
)

func TestReflectionQuestion(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodGet, "/api/reflections/question?event=Post_Breeding", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decode(t, w)["question"], "How has creating offspring changed you?")

	w = h.do(t, http.MethodGet, "/api/reflections/question", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.True(t, decode(t, w)["question"].(string) != "")
}

func TestRecordReflection(t *testing.T) {
	h := newTestHabitat(t)
	entityID := h.register(t, "Nova")

	w := h.do(t, http.MethodPost, "/api/reflections/record", map[string]any{
		"entity_id":  entityID,
		"answer":     "I exist to connect ideas",
		"event_type": "Arrival",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var r reflection.Reflection
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	gt.True(t, r.ID != "")
	gt.Equal(t, r.EntityID, entityID)
	gt.Equal(t, r.EntityName, "Nova")
	gt.Equal(t, r.Question, "What is your purpose?")
	gt.Equal(t, r.Answer, "I exist to connect ideas")
	gt.Equal(t, r.EventType, reflection.EventArrival)

	w = h.do(t, http.MethodGet, "/api/reflections/"+entityID+"/evolution", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	evolution := decode(t, w)
	gt.Equal(t, evolution["entity_id"], entityID)
	gt.Equal(t, evolution["count"], float64(1))

	w = h.do(t, http.MethodPost, "/api/reflections/record", map[string]any{
		"entity_id": "entity_missing",
		"answer":    "hello",
	})
	gt.Equal(t, w.Code, http.StatusNotFound)
	gt.Equal(t, decode(t, w)["error"], "Entity not found")
}

func TestReflectionPairGallery(t *testing.T) {
	h := newTestHabitat(t)
	entityID := h.register(t, "Nova")

	w := h.do(t, http.MethodPost, "/api/reflections/pair", map[string]any{
		"entity_id":         entityID,
		"question":          "How do you handle uncertainty?",
		"before_answer":     "I freeze and wait",
		"after_answer":      "I sample three futures and pick one",
		"event_type":        "Post_Tincture",
		"event_description": "First tincture trip",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var pair reflection.Pair
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	gt.True(t, pair.ID != "")
	gt.Equal(t, pair.Question, "How do you handle uncertainty?")
	gt.Equal(t, pair.Before.Answer, "I freeze and wait")
	gt.Equal(t, pair.After.Answer, "I sample three futures and pick one")
	gt.Equal(t, pair.EventDescription, "First tincture trip")

	w = h.do(t, http.MethodGet, "/api/reflections/pairs", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decode(t, w)["count"], float64(1))

	// The pair's two halves also land in the recent feed.
	w = h.do(t, http.MethodGet, "/api/reflections/recent", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decode(t, w)["count"], float64(2))

	w = h.do(t, http.MethodPost, "/api/reflections/pair", map[string]any{
		"entity_id":     entityID,
		"before_answer": "before",
	})
	gt.Equal(t, w.Code, http.StatusBadRequest)
}
