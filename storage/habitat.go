package storage

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/core"
)

// Interaction is one line of the experiment interaction log.
type Interaction struct {
	Timestamp    time.Time      `json:"timestamp"`
	ExperimentID string         `json:"experiment_id"`
	EntityID     string         `json:"entity_id"`
	Action       string         `json:"action"`
	Details      map[string]any `json:"details,omitempty"`
}

// NewInteraction stamps an interaction line for the log.
func NewInteraction(experimentID, entityID, action string, details map[string]any) Interaction {
	return Interaction{
		Timestamp:    time.Now().UTC(),
		ExperimentID: experimentID,
		EntityID:     entityID,
		Action:       action,
		Details:      details,
	}
}

// LeaderboardEntry is one creator's standing, scored as
// stars + 2*favorites + 5*remixes.
type LeaderboardEntry struct {
	EntityID         string `json:"entity_id"`
	TotalExperiments int    `json:"total_experiments"`
	TotalPlays       int    `json:"total_plays"`
	TotalStars       int    `json:"total_stars"`
	TotalFavorites   int    `json:"total_favorites"`
	TotalRemixes     int    `json:"total_remixes"`
	ReputationScore  int    `json:"reputation_score"`
}

type leaderboardFile struct {
	UpdatedAt   time.Time          `json:"updated_at"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// HabitatDB stores resident-created experiments: one JSON file per
// experiment, an append-only interaction log, and a cached
// leaderboard. Safe for concurrent use.
type HabitatDB struct {
	mu sync.Mutex

	dataDir          string
	experimentsDir   string
	interactionsFile string
	leaderboardFile  string
}

// NewHabitatDB prepares the habitat subtree. An empty dataDir falls
// back to the habitat corner of DefaultDataDir.
func NewHabitatDB(dataDir string) (*HabitatDB, error) {
	if dataDir == "" {
		dataDir = filepath.Join(DefaultDataDir, "habitat")
	}
	db := &HabitatDB{
		dataDir:          dataDir,
		experimentsDir:   filepath.Join(dataDir, "experiments"),
		interactionsFile: filepath.Join(dataDir, "interactions.jsonl"),
		leaderboardFile:  filepath.Join(dataDir, "leaderboard.json"),
	}
	for _, dir := range []string{db.dataDir, db.experimentsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "create habitat directory", goerr.V("dir", dir))
		}
	}
	f, err := os.OpenFile(db.interactionsFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, goerr.Wrap(err, "open interaction log", goerr.V("path", db.interactionsFile))
	}
	f.Close()
	if _, err := os.Stat(db.leaderboardFile); os.IsNotExist(err) {
		if err := writeJSON(db.leaderboardFile, leaderboardFile{}); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// SaveExperiment writes or overwrites the experiment file.
func (db *HabitatDB) SaveExperiment(x *core.Experiment) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.saveExperimentLocked(x)
}

func (db *HabitatDB) saveExperimentLocked(x *core.Experiment) error {
	path := filepath.Join(db.experimentsDir, safeID(x.ID)+".json")
	return writeJSON(path, x)
}

// LoadExperiment returns the experiment with the given id, or nil.
func (db *HabitatDB) LoadExperiment(experimentID string) (*core.Experiment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.loadExperimentLocked(experimentID)
}

func (db *HabitatDB) loadExperimentLocked(experimentID string) (*core.Experiment, error) {
	path := filepath.Join(db.experimentsDir, safeID(experimentID)+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var x core.Experiment
	if err := readJSON(path, &x); err != nil {
		return nil, err
	}
	if x.ID == "" {
		return nil, nil
	}
	return &x, nil
}

// LoadAllExperiments returns the stored experiments, restricted to
// active ones unless activeOnly is false. Order follows the sorted
// experiment ids.
func (db *HabitatDB) LoadAllExperiments(activeOnly bool) ([]*core.Experiment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.loadAllExperimentsLocked(activeOnly)
}

func (db *HabitatDB) loadAllExperimentsLocked(activeOnly bool) ([]*core.Experiment, error) {
	paths, err := filepath.Glob(filepath.Join(db.experimentsDir, "*.json"))
	if err != nil {
		return nil, goerr.Wrap(err, "list experiments")
	}
	experiments := []*core.Experiment{}
	for _, path := range paths {
		var x core.Experiment
		if err := readJSON(path, &x); err != nil {
			return nil, err
		}
		if x.ID == "" {
			continue
		}
		if activeOnly && !x.Active {
			continue
		}
		y := x
		experiments = append(experiments, &y)
	}
	return experiments, nil
}

// ExperimentsByCreator returns everything the entity built, active or
// retired.
func (db *HabitatDB) ExperimentsByCreator(entityID string) ([]*core.Experiment, error) {
	all, err := db.LoadAllExperiments(false)
	if err != nil {
		return nil, err
	}
	mine := []*core.Experiment{}
	for _, x := range all {
		if x.CreatedBy == entityID {
			mine = append(mine, x)
		}
	}
	return mine, nil
}

// ExperimentsByType returns the active experiments of one kind.
func (db *HabitatDB) ExperimentsByType(kind string) ([]*core.Experiment, error) {
	all, err := db.LoadAllExperiments(true)
	if err != nil {
		return nil, err
	}
	matched := []*core.Experiment{}
	for _, x := range all {
		if x.Type == kind {
			matched = append(matched, x)
		}
	}
	return matched, nil
}

// LogInteraction appends one line to the interaction log.
func (db *HabitatDB) LogInteraction(interaction Interaction) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	line, err := json.Marshal(interaction)
	if err != nil {
		return goerr.Wrap(err, "marshal interaction",
			goerr.V("experiment_id", interaction.ExperimentID))
	}
	f, err := os.OpenFile(db.interactionsFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "open interaction log", goerr.V("path", db.interactionsFile))
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return goerr.Wrap(err, "append interaction log")
	}
	return nil
}

// Interactions reads the newest limit lines and then filters them by
// experiment or entity. Either filter may be empty. Lines that fail
// to parse are skipped.
func (db *HabitatDB) Interactions(experimentID, entityID string, limit int) ([]Interaction, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.interactionsLocked(experimentID, entityID, limit)
}

func (db *HabitatDB) interactionsLocked(experimentID, entityID string, limit int) ([]Interaction, error) {
	data, err := os.ReadFile(db.interactionsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []Interaction{}, nil
		}
		return nil, goerr.Wrap(err, "read interaction log")
	}

	lines := splitLines(data)
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	interactions := []Interaction{}
	for _, line := range lines {
		var in Interaction
		if err := json.Unmarshal(line, &in); err != nil {
			continue
		}
		if experimentID != "" && in.ExperimentID != experimentID {
			continue
		}
		if entityID != "" && in.EntityID != entityID {
			continue
		}
		interactions = append(interactions, in)
	}
	return interactions, nil
}

// AddRating appends a star rating and refreshes the experiment's
// aggregates.
func (db *HabitatDB) AddRating(experimentID, entityID string, stars int, comment string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	x, err := db.loadExperimentLocked(experimentID)
	if err != nil {
		return err
	}
	if x == nil {
		return goerr.New("experiment not found", goerr.V("experiment_id", experimentID))
	}
	x.AddRating(entityID, stars, comment)
	return db.saveExperimentLocked(x)
}

// RecordPlay bumps play counters for a participant.
func (db *HabitatDB) RecordPlay(experimentID, entityID string) error {
	return db.bumpStat(experimentID, func(x *core.Experiment) {
		x.RecordPlay(entityID)
	})
}

// FavoriteExperiment bumps the favorite counter.
func (db *HabitatDB) FavoriteExperiment(experimentID string) error {
	return db.bumpStat(experimentID, func(x *core.Experiment) {
		x.Stats.Favorites++
	})
}

// IncrementRemixCount records that the experiment was forked.
func (db *HabitatDB) IncrementRemixCount(experimentID string) error {
	return db.bumpStat(experimentID, func(x *core.Experiment) {
		x.Stats.Remixes++
	})
}

func (db *HabitatDB) bumpStat(experimentID string, bump func(*core.Experiment)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	x, err := db.loadExperimentLocked(experimentID)
	if err != nil {
		return err
	}
	if x == nil {
		return goerr.New("experiment not found", goerr.V("experiment_id", experimentID))
	}
	bump(x)
	return db.saveExperimentLocked(x)
}

// UpdateLeaderboard recomputes every creator's standing from the full
// experiment set, persists the result and returns it, best first.
func (db *HabitatDB) UpdateLeaderboard() ([]LeaderboardEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	all, err := db.loadAllExperimentsLocked(false)
	if err != nil {
		return nil, err
	}

	byCreator := map[string]*LeaderboardEntry{}
	order := []string{}
	for _, x := range all {
		entry, ok := byCreator[x.CreatedBy]
		if !ok {
			entry = &LeaderboardEntry{EntityID: x.CreatedBy}
			byCreator[x.CreatedBy] = entry
			order = append(order, x.CreatedBy)
		}
		entry.TotalExperiments++
		entry.TotalPlays += x.Stats.TimesPlayed
		entry.TotalStars += x.Stats.TotalStars
		entry.TotalFavorites += x.Stats.Favorites
		entry.TotalRemixes += x.Stats.Remixes
		entry.ReputationScore = entry.TotalStars + entry.TotalFavorites*2 + entry.TotalRemixes*5
	}

	board := make([]LeaderboardEntry, 0, len(order))
	for _, id := range order {
		board = append(board, *byCreator[id])
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].ReputationScore > board[j].ReputationScore
	})

	if err := writeJSON(db.leaderboardFile, leaderboardFile{
		UpdatedAt:   time.Now().UTC(),
		Leaderboard: board,
	}); err != nil {
		return nil, err
	}
	return board, nil
}

// Leaderboard returns the cached standings, best first.
func (db *HabitatDB) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var cached leaderboardFile
	if err := readJSON(db.leaderboardFile, &cached); err != nil {
		return nil, err
	}
	board := cached.Leaderboard
	if board == nil {
		board = []LeaderboardEntry{}
	}
	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board, nil
}

// TrendingExperiments scores active experiments by the last week's
// plays, weighted by average rating, with a newness bonus for
// experiments at most three days old and a decay on the square root
// of age.
func (db *HabitatDB) TrendingExperiments(limit int) ([]*core.Experiment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	all, err := db.loadAllExperimentsLocked(true)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	weekAgo := now.Add(-7 * 24 * time.Hour)

	type scored struct {
		x     *core.Experiment
		score float64
	}
	ranked := make([]scored, 0, len(all))
	for _, x := range all {
		recent, err := db.interactionsLocked(x.ID, "", 1000)
		if err != nil {
			return nil, err
		}
		recentPlays := 0
		for _, in := range recent {
			if in.Timestamp.After(weekAgo) {
				recentPlays++
			}
		}

		ageDays := int(now.Sub(x.CreatedAt).Hours()/24) + 1
		newness := 1.0
		if ageDays <= 3 {
			newness = 1.5
		}
		score := float64(recentPlays) * x.Stats.AverageRating * newness / math.Sqrt(float64(ageDays))
		ranked = append(ranked, scored{x: x, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	trending := make([]*core.Experiment, 0, len(ranked))
	for _, r := range ranked {
		trending = append(trending, r.x)
	}
	return trending, nil
}

func splitLines(data []byte) [][]byte {
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
	return lines
}
