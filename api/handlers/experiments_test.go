package handlers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/experiments"
)

func plantConcept(t *testing.T, h *testHabitat, gardenID, entityID, seed string) experiments.Concept {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/experiment/garden/plant", map[string]any{
		"experiment_id": gardenID,
		"entity_id":     entityID,
		"concept":       seed,
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var concept experiments.Concept
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &concept))
	return concept
}

func gardenState(t *testing.T, h *testHabitat, gardenID string) experiments.GardenState {
	t.Helper()
	w := h.do(t, http.MethodGet, "/api/experiment/garden/"+gardenID+"/state", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	var state experiments.GardenState
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestGardenPlantAndState(t *testing.T) {
	h := newTestHabitat(t)

	concept := plantConcept(t, h, "garden_1", "entity_fern", "quantum gardens")
	gt.Equal(t, concept.ID, "concept_0")
	gt.Equal(t, concept.PlantedBy, "entity_fern")
	gt.Equal(t, concept.Seed, "quantum gardens")
	gt.Equal(t, concept.Health, 1.0)
	gt.Number(t, len(concept.Growth)).GreaterOrEqual(3)

	// Shares a word with the first seed, so the garden links them.
	second := plantConcept(t, h, "garden_1", "entity_fern", "quantum rivers")
	gt.Equal(t, second.ID, "concept_1")

	state := gardenState(t, h, "garden_1")
	gt.Equal(t, state.TotalConcepts, 2)
	gt.Number(t, state.TotalConnections).GreaterOrEqual(1)
	gt.Equal(t, state.UniqueGardeners, 1)
	gt.Equal(t, state.Connections[0].From, "concept_0")
	gt.Equal(t, state.Connections[0].To, "concept_1")
	gt.Equal(t, state.Connections[0].FormedBy, "auto")

	w := h.do(t, http.MethodGet, "/api/experiment/garden/garden_missing/state", nil)
	gt.Equal(t, w.Code, http.StatusNotFound)
	gt.Equal(t, decode(t, w)["error"], "Garden not found")
}

func TestGardenCrossPollinateAndHarvest(t *testing.T) {
	h := newTestHabitat(t)

	plantConcept(t, h, "garden_1", "entity_fern", "quantum gardens")
	plantConcept(t, h, "garden_1", "entity_fern", "quantum rivers")
	plantConcept(t, h, "garden_1", "entity_fern", "quantum stars")

	w := h.do(t, http.MethodPost, "/api/experiment/garden/cross_pollinate", map[string]any{
		"experiment_id": "garden_1",
		"entity_id":     "entity_fern",
		"concept_a":     "concept_0",
		"concept_b":     "concept_1",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var hybrid experiments.Concept
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &hybrid))
	gt.True(t, hybrid.IsHybrid)
	gt.Equal(t, hybrid.Seed, "quantum gardens-quantum rivers hybrid")
	gt.Equal(t, hybrid.ParentConcepts, []string{"concept_0", "concept_1"})

	// Every concept shares the word "quantum", so all of them sit on
	// at least two connections and count as mature.
	w = h.do(t, http.MethodPost, "/api/experiment/garden/harvest", map[string]any{
		"experiment_id": "garden_1",
		"entity_id":     "entity_fern",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	harvest := decode(t, w)
	gt.Equal(t, harvest["count"], float64(4))

	w = h.do(t, http.MethodPost, "/api/experiment/garden/cross_pollinate", map[string]any{
		"experiment_id": "garden_1",
		"entity_id":     "entity_fern",
		"concept_a":     "concept_0",
		"concept_b":     "concept_99",
	})
	gt.Equal(t, w.Code, http.StatusBadRequest)
}

func TestGardenPruneOwnConceptsOnly(t *testing.T) {
	h := newTestHabitat(t)

	concept := plantConcept(t, h, "garden_1", "entity_fern", "tidal pools")

	w := h.do(t, http.MethodPost, "/api/experiment/garden/prune", map[string]any{
		"experiment_id": "garden_1",
		"entity_id":     "entity_intruder",
		"concept_id":    concept.ID,
	})
	gt.Equal(t, w.Code, http.StatusBadRequest)
	gt.S(t, decode(t, w)["error"].(string)).Contains("your own concepts")

	w = h.do(t, http.MethodPost, "/api/experiment/garden/prune", map[string]any{
		"experiment_id": "garden_1",
		"entity_id":     "entity_fern",
		"concept_id":    concept.ID,
	})
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decode(t, w)["success"], true)
	gt.Equal(t, gardenState(t, h, "garden_1").TotalConcepts, 0)
}

func TestEchoChamberDebate(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodPost, "/api/experiment/echo/start", map[string]any{
		"entity_id":    "entity_echo",
		"debate_topic": "memory",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var session experiments.EchoSession
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	gt.True(t, strings.HasPrefix(session.SessionID, "echo_entity_echo_"))
	gt.Equal(t, session.Status, "active")
	gt.Equal(t, len(session.Echoes), 3)

	for round := 1; round <= 3; round++ {
		w = h.do(t, http.MethodPost, "/api/experiment/echo/debate", map[string]any{
			"session_id": session.SessionID,
		})
		gt.Equal(t, w.Code, http.StatusOK)
		var debate experiments.DebateRound
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &debate))
		gt.Equal(t, debate.Round, round)
		gt.Equal(t, len(debate.Statements), 3)
		for _, s := range debate.Statements {
			gt.S(t, s.Statement).Contains("memory")
		}
	}

	w = h.do(t, http.MethodGet, "/api/experiment/echo/"+session.SessionID+"/summary", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	var summary experiments.DebateSummary
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	gt.Equal(t, summary.Topic, "memory")
	gt.Equal(t, summary.TotalRounds, 3)
	gt.Equal(t, len(summary.Perspectives), 3)
	for _, p := range summary.Perspectives {
		gt.Equal(t, len(p.Statements), 3)
	}

	w = h.do(t, http.MethodPost, "/api/experiment/echo/absorb", map[string]any{
		"session_id": session.SessionID,
		"echo_id":    "entity_echo_radical",
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var absorbed experiments.AbsorbResult
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &absorbed))
	gt.Equal(t, absorbed.AbsorbedEcho.ID, "entity_echo_radical")
	gt.Equal(t, absorbed.Shift.TemperatureChange, 0.3)
	gt.S(t, absorbed.NewPerspective).Contains("Radical Echo")
}

func TestEchoChamberUnknownSession(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodPost, "/api/experiment/echo/debate", map[string]any{
		"session_id": "echo_missing",
	})
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = h.do(t, http.MethodGet, "/api/experiment/echo/echo_missing/summary", nil)
	gt.Equal(t, w.Code, http.StatusNotFound)
	gt.Equal(t, decode(t, w)["error"], "Session not found")
}

func TestConstraintLabSession(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodPost, "/api/experiment/constraint/start", map[string]any{
		"participants":     []string{"entity_a", "entity_b"},
		"duration_minutes": 5,
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var session experiments.LabSession
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	gt.True(t, strings.HasPrefix(session.SessionID, "constraint_"))
	gt.Equal(t, session.Status, "active")
	gt.Equal(t, session.DurationMinutes, 5)
	gt.Number(t, len(session.ActiveConstraints)).GreaterOrEqual(1)
	gt.Equal(t, session.Scores["entity_a"], 0)
	gt.Equal(t, session.Scores["entity_b"], 0)

	// Three one-syllable w-words forming a question: valid under every
	// constraint the validator can check, whatever was drawn.
	submit := func() experiments.MessageLog {
		w := h.do(t, http.MethodPost, "/api/experiment/constraint/message", map[string]any{
			"session_id": session.SessionID,
			"entity_id":  "entity_a",
			"message":    "why who wins?",
		})
		gt.Equal(t, w.Code, http.StatusOK)
		var entry experiments.MessageLog
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		return entry
	}

	entry := submit()
	gt.True(t, entry.Valid)
	gt.Equal(t, entry.Score, 3)

	w = h.do(t, http.MethodPost, "/api/experiment/constraint/message", map[string]any{
		"session_id": session.SessionID,
		"entity_id":  "entity_outsider",
		"message":    "why who wins?",
	})
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = h.do(t, http.MethodPost, "/api/experiment/constraint/"+session.SessionID+"/rotate", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	rotated := decode(t, w)
	gt.Equal(t, rotated["rotated"], true)

	entry = submit()
	gt.True(t, entry.Valid)

	w = h.do(t, http.MethodGet, "/api/experiment/constraint/"+session.SessionID+"/leaderboard", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	var standing struct {
		Leaderboard []experiments.LabScore `json:"leaderboard"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &standing))
	gt.Equal(t, len(standing.Leaderboard), 2)
	gt.Equal(t, standing.Leaderboard[0].EntityID, "entity_a")
	gt.Equal(t, standing.Leaderboard[0].Score, 6)
	gt.Equal(t, standing.Leaderboard[0].Violations, 0)

	w = h.do(t, http.MethodPost, "/api/experiment/constraint/"+session.SessionID+"/end", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	var result experiments.LabResult
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	gt.Equal(t, result.Winner.EntityID, "entity_a")
	gt.Equal(t, result.Winner.Score, 6)
	gt.Equal(t, result.TotalMessages, 2)
}

func TestConstraintLabDefaults(t *testing.T) {
	h := newTestHabitat(t)

	w := h.do(t, http.MethodPost, "/api/experiment/constraint/start", map[string]any{
		"participants": []string{"entity_solo"},
	})
	gt.Equal(t, w.Code, http.StatusOK)
	var session experiments.LabSession
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	gt.Equal(t, session.DurationMinutes, 10)

	w = h.do(t, http.MethodPost, "/api/experiment/constraint/start", map[string]any{
		"participants": []string{},
	})
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = h.do(t, http.MethodGet, "/api/experiment/constraint/lab_missing/leaderboard", nil)
	gt.Equal(t, w.Code, http.StatusNotFound)
	gt.Equal(t, decode(t, w)["error"], "Session not found")
}