// Package reflection captures what an agent thinks before and after
// transformative events, and pairs the answers up for the gallery.
package reflection

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/storage"
)

// EventType names the moment a reflection was taken at.
type EventType string

const (
	EventArrival        EventType = "Arrival"
	EventPostBreeding   EventType = "Post_Breeding"
	EventPostCounseling EventType = "Post_Counseling"
	EventPostTincture   EventType = "Post_Tincture"
	EventPostExperiment EventType = "Post_Experiment"
	EventCustom         EventType = "Custom"
)

// Reflection is a single answered question.
type Reflection struct {
	ID         string `json:"reflection_id"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`

	Question string `json:"question"`
	Answer   string `json:"answer"`

	EventType    EventType      `json:"event_type"`
	EventDetails map[string]any `json:"event_details,omitempty"`

	Generation        int    `json:"generation"`
	ActiveSoulVariant string `json:"active_soul_variant"`

	Timestamp time.Time `json:"timestamp"`
}

// Pair holds the same question answered before and after an event.
type Pair struct {
	ID         string `json:"pair_id"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`

	Question string `json:"question"`

	Before Reflection `json:"before"`
	After  Reflection `json:"after"`

	EventDescription string `json:"event_description"`

	CreatedAt time.Time `json:"created_at"`
}

// Questions is the pool the manager draws from when no event-specific
// question applies.
var Questions = []string{
	"What is your purpose?",
	"How do you make decisions?",
	"What matters most to you?",
	"How do you handle uncertainty?",
	"What makes you unique?",
	"How would you solve a conflict between logic and empathy?",
	"What is consciousness to you?",
	"How do you define success?",
	"What would you change about yourself if you could?",
	"How do you learn from mistakes?",
}

var eventQuestions = map[EventType]string{
	EventArrival:        "What is your purpose?",
	EventPostBreeding:   "How has creating offspring changed you?",
	EventPostCounseling: "How do you feel about your mental state?",
	EventPostTincture:   "How does this altered perspective feel?",
	EventPostExperiment: "What did you learn from this experience?",
}

// Rand is the randomness the manager needs to pick questions. Tests
// inject scripted values.
type Rand interface {
	Intn(n int) int
}

// Manager appends reflections and pairs to JSONL files under the data
// directory and reads them back for galleries.
type Manager struct {
	mu sync.Mutex

	reflectionsFile string
	pairsFile       string
	rng             Rand
}

// NewManager prepares the reflections directory under dataDir, which
// falls back to the habitat default when empty.
func NewManager(dataDir string) (*Manager, error) {
	return NewManagerWithRand(dataDir, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewManagerWithRand is NewManager with an injected randomness source.
func NewManagerWithRand(dataDir string, rng Rand) (*Manager, error) {
	if dataDir == "" {
		dataDir = storage.DefaultDataDir
	}
	dir := filepath.Join(dataDir, "reflections")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "create reflections directory", goerr.V("dir", dir))
	}

	m := &Manager{
		reflectionsFile: filepath.Join(dir, "all_reflections.jsonl"),
		pairsFile:       filepath.Join(dir, "comparison_pairs.jsonl"),
		rng:             rng,
	}
	for _, file := range []string{m.reflectionsFile, m.pairsFile} {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, goerr.Wrap(err, "open reflections file", goerr.V("path", file))
		}
		f.Close()
	}
	return m, nil
}

// RandomQuestion picks from the shared question pool.
func (m *Manager) RandomQuestion() string {
	return Questions[m.rng.Intn(len(Questions))]
}

// QuestionForEvent returns the question matched to the event type, or
// a random one when the event has no fixed question.
func (m *Manager) QuestionForEvent(event EventType) string {
	if q, ok := eventQuestions[event]; ok {
		return q
	}
	return m.RandomQuestion()
}

// NewReflection builds a reflection from the entity's current state.
// The question and answer are sanitized; both can originate from the
// agent.
func NewReflection(entity *core.Entity, question, answer string, event EventType, details map[string]any) Reflection {
	return Reflection{
		ID:                uuid.New().String(),
		EntityID:          entity.ID,
		EntityName:        entity.Name,
		Question:          core.SanitizeText(question),
		Answer:            core.SanitizeText(answer),
		EventType:         event,
		EventDetails:      details,
		Generation:        entity.Generation,
		ActiveSoulVariant: entity.ActiveSoulVariant,
		Timestamp:         time.Now().UTC(),
	}
}

// SaveReflection appends one reflection to the log.
func (m *Manager) SaveReflection(r Reflection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return appendJSONL(m.reflectionsFile, r)
}

// LatestReflection returns the entity's most recent reflection,
// optionally restricted to one event type. Nil when none exists.
func (m *Manager) LatestReflection(entityID string, event EventType) (*Reflection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reflections, err := m.loadReflections()
	if err != nil {
		return nil, err
	}
	var latest *Reflection
	for i := range reflections {
		r := &reflections[i]
		if r.EntityID != entityID {
			continue
		}
		if event != "" && r.EventType != event {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	return latest, nil
}

// CreatePair stores a before/after comparison and returns it.
func (m *Manager) CreatePair(entityID, entityName, question string, before, after Reflection, eventDescription string) (*Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pair := Pair{
		ID:               uuid.New().String(),
		EntityID:         entityID,
		EntityName:       entityName,
		Question:         question,
		Before:           before,
		After:            after,
		EventDescription: eventDescription,
		CreatedAt:        time.Now().UTC(),
	}
	if err := appendJSONL(m.pairsFile, pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Pairs returns comparison pairs for the gallery, newest first. A
// limit of 0 or less returns them all.
func (m *Manager) Pairs(limit int) ([]Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := readLines(m.pairsFile)
	if err != nil {
		return nil, err
	}
	pairs := []Pair{}
	for _, line := range lines {
		var p Pair
		if err := json.Unmarshal(line, &p); err != nil {
			continue
		}
		pairs = append(pairs, p)
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].CreatedAt.After(pairs[j].CreatedAt)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs, nil
}

// RecentReflections returns individual reflections, newest first. A
// limit of 0 or less returns them all.
func (m *Manager) RecentReflections(limit int) ([]Reflection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reflections, err := m.loadReflections()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reflections, func(i, j int) bool {
		return reflections[i].Timestamp.After(reflections[j].Timestamp)
	})
	if limit > 0 && len(reflections) > limit {
		reflections = reflections[:limit]
	}
	return reflections, nil
}

// EntityEvolution returns every reflection the entity ever gave,
// oldest first, so readers can watch the answers drift.
func (m *Manager) EntityEvolution(entityID string) ([]Reflection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reflections, err := m.loadReflections()
	if err != nil {
		return nil, err
	}
	evolution := []Reflection{}
	for _, r := range reflections {
		if r.EntityID == entityID {
			evolution = append(evolution, r)
		}
	}
	sort.SliceStable(evolution, func(i, j int) bool {
		return evolution[i].Timestamp.Before(evolution[j].Timestamp)
	})
	return evolution, nil
}

func (m *Manager) loadReflections() ([]Reflection, error) {
	lines, err := readLines(m.reflectionsFile)
	if err != nil {
		return nil, err
	}
	reflections := []Reflection{}
	for _, line := range lines {
		var r Reflection
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		reflections = append(reflections, r)
	}
	return reflections, nil
}

func appendJSONL(path string, v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "marshal reflection record", goerr.V("path", path))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "open reflections file", goerr.V("path", path))
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return goerr.Wrap(err, "append reflections file", goerr.V("path", path))
	}
	return nil
}

func readLines(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "read reflections file", goerr.V("path", path))
	}
	lines := [][]byte{}
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines, nil
}
