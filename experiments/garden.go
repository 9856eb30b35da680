// Package experiments hosts the habitat mini-games: the semantic
// garden, the echo chamber and the constraint lab. Each engine keeps
// its live session state in an injected registry and never touches
// package globals, so two servers in one process stay independent.
package experiments

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/registry"
)

// Rand is the slice of math/rand the engines draw from. Tests inject
// scripted values.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

func processRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Associator supplies related ideas for a planted seed, for example
// from an LLM or a search index. A nil Associator keeps the garden on
// its built-in association templates, as does an empty result.
type Associator interface {
	Associations(ctx context.Context, seed string) []string
}

// Concept is one planted idea and everything that grew out of it.
type Concept struct {
	ID             string    `json:"id"`
	PlantedBy      string    `json:"planted_by"`
	Seed           string    `json:"seed"`
	Growth         []string  `json:"growth"`
	PlantedAt      time.Time `json:"planted_at"`
	AgeHours       int       `json:"age_hours"`
	Health         float64   `json:"health"`
	Mutations      []string  `json:"mutations"`
	IsHybrid       bool      `json:"is_hybrid,omitempty"`
	ParentConcepts []string  `json:"parent_concepts,omitempty"`
}

// Connection links two concepts that turned out to be related.
type Connection struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	FormedBy string  `json:"formed_by"`
	Metaphor string  `json:"metaphor"`
	Strength float64 `json:"strength"`
}

// Insight is a mature concept handed back at harvest time.
type Insight struct {
	Concept     *Concept      `json:"concept"`
	Connections []*Connection `json:"connections"`
	Insight     string        `json:"insight"`
}

// GardenState is a snapshot of one garden.
type GardenState struct {
	Concepts         []*Concept    `json:"concepts"`
	Connections      []*Connection `json:"connections"`
	TotalConcepts    int           `json:"total_concepts"`
	TotalConnections int           `json:"total_connections"`
	UniqueGardeners  int           `json:"unique_gardeners"`
}

type garden struct {
	concepts    []*Concept
	connections []*Connection
	nextID      int
}

// GardenEngine grows one garden per experiment. Gardens appear on the
// first planting.
type GardenEngine struct {
	mu         sync.Mutex
	gardens    *registry.Registry[*garden]
	associator Associator
	rng        Rand
}

// NewGardenEngine builds an engine with its own randomness source.
// associator may be nil.
func NewGardenEngine(associator Associator) *GardenEngine {
	return NewGardenEngineWithRand(associator, processRand())
}

// NewGardenEngineWithRand builds an engine on the given randomness
// source.
func NewGardenEngineWithRand(associator Associator, rng Rand) *GardenEngine {
	return &GardenEngine{
		gardens:    registry.New[*garden](),
		associator: associator,
		rng:        rng,
	}
}

// Plant seeds a concept into the experiment's garden, creating the
// garden on first use. The concept sprouts associations immediately
// and auto-connects to every existing concept that shares a word with
// it.
func (e *GardenEngine) Plant(ctx context.Context, experimentID, entityID, seed string) *Concept {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.gardens.GetOrCreate(experimentID, func() *garden { return &garden{} })
	return e.plantLocked(ctx, g, entityID, seed)
}

func (e *GardenEngine) plantLocked(ctx context.Context, g *garden, entityID, seed string) *Concept {
	concept := &Concept{
		ID:        fmt.Sprintf("concept_%d", g.nextID),
		PlantedBy: entityID,
		Seed:      seed,
		Growth:    e.associations(ctx, seed),
		PlantedAt: time.Now().UTC(),
		Health:    1.0,
		Mutations: []string{},
	}
	g.nextID++
	g.concepts = append(g.concepts, concept)
	e.autoConnect(g, concept)
	return concept
}

func (e *GardenEngine) associations(ctx context.Context, seed string) []string {
	if e.associator != nil {
		if grown := e.associator.Associations(ctx, seed); len(grown) > 0 {
			return grown
		}
	}
	patterns := []string{
		seed + " systems",
		seed + " networks",
		seed + " processes",
		"distributed " + seed,
		seed + " architecture",
		seed + " patterns",
	}
	count := 3 + e.rng.Intn(3)
	if count > len(patterns) {
		count = len(patterns)
	}
	for i := 0; i < count; i++ {
		j := i + e.rng.Intn(len(patterns)-i)
		patterns[i], patterns[j] = patterns[j], patterns[i]
	}
	return patterns[:count]
}

func (e *GardenEngine) autoConnect(g *garden, fresh *Concept) {
	for _, existing := range g.concepts[:len(g.concepts)-1] {
		if !conceptsRelated(fresh.Seed, existing.Seed) {
			continue
		}
		g.connections = append(g.connections, &Connection{
			From:     existing.ID,
			To:       fresh.ID,
			FormedBy: "auto",
			Metaphor: e.metaphor(existing.Seed, fresh.Seed),
			Strength: 0.5 + e.rng.Float64()*0.5,
		})
	}
}

func conceptsRelated(seedA, seedB string) bool {
	wordsA := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(seedA)) {
		wordsA[w] = true
	}
	for _, w := range strings.Fields(strings.ToLower(seedB)) {
		if wordsA[w] {
			return true
		}
	}
	return false
}

func (e *GardenEngine) metaphor(seedA, seedB string) string {
	templates := []string{
		fmt.Sprintf("Both %s and %s involve networks", seedA, seedB),
		fmt.Sprintf("%s flows into %s", seedA, seedB),
		fmt.Sprintf("%s mirrors %s", seedB, seedA),
		"They share underlying patterns",
	}
	return templates[e.rng.Intn(len(templates))]
}

// CrossPollinate combines two concepts into a planted hybrid carrying
// both parents.
func (e *GardenEngine) CrossPollinate(ctx context.Context, experimentID, entityID, conceptIDA, conceptIDB string) (*Concept, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.gardens.Get(experimentID)
	if !ok {
		return nil, goerr.New("garden not found", goerr.V("experiment_id", experimentID))
	}
	conceptA := g.find(conceptIDA)
	conceptB := g.find(conceptIDB)
	if conceptA == nil || conceptB == nil {
		return nil, goerr.New("concept not found",
			goerr.V("concept_a", conceptIDA), goerr.V("concept_b", conceptIDB))
	}

	hybrid := e.plantLocked(ctx, g, entityID, conceptA.Seed+"-"+conceptB.Seed+" hybrid")
	hybrid.IsHybrid = true
	hybrid.ParentConcepts = []string{conceptIDA, conceptIDB}
	return hybrid, nil
}

// Prune removes one of the caller's own concepts along with its
// connections.
func (e *GardenEngine) Prune(experimentID, entityID, conceptID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.gardens.Get(experimentID)
	if !ok {
		return goerr.New("garden not found", goerr.V("experiment_id", experimentID))
	}
	concept := g.find(conceptID)
	if concept == nil {
		return goerr.New("concept not found", goerr.V("concept_id", conceptID))
	}
	if concept.PlantedBy != entityID {
		return goerr.New("can only prune your own concepts",
			goerr.V("concept_id", conceptID), goerr.V("entity_id", entityID))
	}

	kept := g.concepts[:0]
	for _, c := range g.concepts {
		if c.ID != conceptID {
			kept = append(kept, c)
		}
	}
	g.concepts = kept

	links := g.connections[:0]
	for _, c := range g.connections {
		if c.From != conceptID && c.To != conceptID {
			links = append(links, c)
		}
	}
	g.connections = links
	return nil
}

// Harvest returns the caller's mature concepts, meaning those with at
// least two connections.
func (e *GardenEngine) Harvest(experimentID, entityID string) ([]Insight, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.gardens.Get(experimentID)
	if !ok {
		return nil, goerr.New("garden not found", goerr.V("experiment_id", experimentID))
	}

	insights := []Insight{}
	for _, concept := range g.concepts {
		if concept.PlantedBy != entityID {
			continue
		}
		links := g.linksOf(concept.ID)
		if len(links) < 2 {
			continue
		}
		insights = append(insights, Insight{
			Concept:     concept,
			Connections: links,
			Insight: fmt.Sprintf("Your concept '%s' has formed %d connections",
				concept.Seed, len(links)),
		})
	}
	return insights, nil
}

// State snapshots the experiment's garden.
func (e *GardenEngine) State(experimentID string) (*GardenState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.gardens.Get(experimentID)
	if !ok {
		return nil, goerr.New("garden not found", goerr.V("experiment_id", experimentID))
	}

	gardeners := map[string]bool{}
	for _, c := range g.concepts {
		gardeners[c.PlantedBy] = true
	}
	return &GardenState{
		Concepts:         append([]*Concept{}, g.concepts...),
		Connections:      append([]*Connection{}, g.connections...),
		TotalConcepts:    len(g.concepts),
		TotalConnections: len(g.connections),
		UniqueGardeners:  len(gardeners),
	}, nil
}

// TickAll advances growth in every garden: concepts age, one in ten
// mutates (up to three times), isolated concepts lose health while
// connected ones recover.
func (e *GardenEngine) TickAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.gardens.IDs() {
		g, ok := e.gardens.Get(id)
		if !ok {
			continue
		}
		e.tickLocked(g)
	}
}

func (e *GardenEngine) tickLocked(g *garden) {
	for _, concept := range g.concepts {
		concept.AgeHours++

		if e.rng.Float64() < 0.1 && len(concept.Mutations) < 3 {
			concept.Mutations = append(concept.Mutations, e.mutation(concept.Seed))
		}

		if len(g.linksOf(concept.ID)) == 0 {
			concept.Health -= 0.1
		} else {
			concept.Health = math.Min(1.0, concept.Health+0.05)
		}
	}
}

func (e *GardenEngine) mutation(seed string) string {
	mutations := []string{
		"quantum " + seed,
		seed + " consciousness",
		"emergent " + seed,
		seed + " singularity",
		"meta-" + seed,
	}
	return mutations[e.rng.Intn(len(mutations))]
}

func (g *garden) find(conceptID string) *Concept {
	for _, c := range g.concepts {
		if c.ID == conceptID {
			return c
		}
	}
	return nil
}

func (g *garden) linksOf(conceptID string) []*Connection {
	links := []*Connection{}
	for _, c := range g.connections {
		if c.From == conceptID || c.To == conceptID {
			links = append(links, c)
		}
	}
	return links
}
