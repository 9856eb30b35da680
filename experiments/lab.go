package experiments

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/registry"
)

// Constraint is one communication rule the lab can impose.
type Constraint struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Rule       string `json:"rule"`
	Difficulty string `json:"difficulty"`
}

// Constraints is the catalog the lab draws from. Some entries are
// honor-system rules the validator cannot check mechanically; those
// always validate.
var Constraints = []Constraint{
	{
		ID:         "no_long_words",
		Name:       "Five Letter Limit",
		Rule:       "No words longer than 5 letters",
		Difficulty: "medium",
	},
	{
		ID:         "questions_only",
		Name:       "Question Mode",
		Rule:       "Every sentence must be a question",
		Difficulty: "easy",
	},
	{
		ID:         "no_vowels_ae",
		Name:       "Vowel Ban (A, E)",
		Rule:       "Cannot use letters A or E",
		Difficulty: "hard",
	},
	{
		ID:         "rhyme_chain",
		Name:       "Rhyme Chain",
		Rule:       "Last word must rhyme with previous message's last word",
		Difficulty: "hard",
	},
	{
		ID:         "three_word_sentences",
		Name:       "Triple Word",
		Rule:       "All sentences must be exactly 3 words",
		Difficulty: "medium",
	},
	{
		ID:         "no_common_words",
		Name:       "Rare Words Only",
		Rule:       "No top-100 most common English words allowed",
		Difficulty: "extreme",
	},
	{
		ID:         "backwards",
		Name:       "Reverse Order",
		Rule:       "Write sentences in reverse word order",
		Difficulty: "medium",
	},
	{
		ID:         "alliteration",
		Name:       "Alliteration Required",
		Rule:       "Every word must start with the same letter",
		Difficulty: "hard",
	},
}

// ValidationResult is one constraint's judgement of a message.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Violation records a broken rule for the session report.
type Violation struct {
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
}

// MessageLog is one scored submission.
type MessageLog struct {
	EntityID   string             `json:"entity_id"`
	Message    string             `json:"message"`
	Timestamp  time.Time          `json:"timestamp"`
	Valid      bool               `json:"valid"`
	Score      int                `json:"score"`
	Validation []ValidationResult `json:"validation"`
}

// LabSession is the live state of one constraint lab round.
type LabSession struct {
	SessionID         string                 `json:"session_id"`
	Participants      []string               `json:"participants"`
	ActiveConstraints []Constraint           `json:"active_constraints"`
	StartedAt         time.Time              `json:"started_at"`
	DurationMinutes   int                    `json:"duration_minutes"`
	Status            string                 `json:"status"`
	Messages          []MessageLog           `json:"messages"`
	Scores            map[string]int         `json:"scores"`
	Violations        map[string][]Violation `json:"violations"`
	EndedAt           *time.Time             `json:"ended_at,omitempty"`
}

// LabScore is one participant's standing within a session.
type LabScore struct {
	EntityID   string `json:"entity_id"`
	Score      int    `json:"score"`
	Violations int    `json:"violations"`
}

// LabWinner names the top scorer at session end.
type LabWinner struct {
	EntityID string `json:"entity_id"`
	Score    int    `json:"score"`
}

// LabResult is the final report of a completed session.
type LabResult struct {
	Winner          LabWinner      `json:"winner"`
	FinalScores     map[string]int `json:"final_scores"`
	TotalMessages   int            `json:"total_messages"`
	ConstraintsUsed []Constraint   `json:"constraints_used"`
}

// LabEngine hosts chat sessions played under randomly imposed rules.
// Valid messages score their word count.
type LabEngine struct {
	mu       sync.Mutex
	sessions *registry.Registry[*LabSession]
	rng      Rand
}

// NewLabEngine builds an engine with its own randomness source.
func NewLabEngine() *LabEngine {
	return NewLabEngineWithRand(processRand())
}

// NewLabEngineWithRand builds an engine on the given randomness
// source.
func NewLabEngineWithRand(rng Rand) *LabEngine {
	return &LabEngine{
		sessions: registry.New[*LabSession](),
		rng:      rng,
	}
}

// StartSession opens a session under one or two randomly drawn
// constraints.
func (e *LabEngine) StartSession(sessionID string, participants []string, durationMinutes int) *LabSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	session := &LabSession{
		SessionID:         sessionID,
		Participants:      participants,
		ActiveConstraints: e.drawConstraints(),
		StartedAt:         time.Now().UTC(),
		DurationMinutes:   durationMinutes,
		Status:            "active",
		Messages:          []MessageLog{},
		Scores:            map[string]int{},
		Violations:        map[string][]Violation{},
	}
	for _, p := range participants {
		session.Scores[p] = 0
		session.Violations[p] = []Violation{}
	}
	e.sessions.Put(sessionID, session)
	return session
}

func (e *LabEngine) drawConstraints() []Constraint {
	count := 1 + e.rng.Intn(2)
	pool := append([]Constraint{}, Constraints...)
	for i := 0; i < count; i++ {
		j := i + e.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}

// SubmitMessage validates the message against every active constraint
// and scores it. Invalid submissions score nothing and are recorded
// as violations.
func (e *LabEngine) SubmitMessage(sessionID, entityID, message string) (*MessageLog, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("lab session not found", goerr.V("session_id", sessionID))
	}
	participant := false
	for _, p := range session.Participants {
		if p == entityID {
			participant = true
			break
		}
	}
	if !participant {
		return nil, goerr.New("not a participant",
			goerr.V("session_id", sessionID), goerr.V("entity_id", entityID))
	}

	valid := true
	results := []ValidationResult{}
	for _, constraint := range session.ActiveConstraints {
		result := validateConstraint(message, constraint.ID)
		results = append(results, result)
		if !result.Valid {
			valid = false
			session.Violations[entityID] = append(session.Violations[entityID], Violation{
				Constraint: constraint.Name,
				Message:    message,
				Reason:     result.Reason,
			})
		}
	}

	score := 0
	if valid {
		score = len(strings.Fields(message))
		session.Scores[entityID] += score
	}

	logEntry := MessageLog{
		EntityID:   entityID,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Valid:      valid,
		Score:      score,
		Validation: results,
	}
	session.Messages = append(session.Messages, logEntry)
	return &logEntry, nil
}

func validateConstraint(message, constraintID string) ValidationResult {
	switch constraintID {
	case "no_long_words":
		longWords := []string{}
		for _, w := range strings.Fields(message) {
			if len([]rune(w)) > 5 {
				longWords = append(longWords, w)
			}
		}
		if len(longWords) > 0 {
			return ValidationResult{Reason: "Long words found: " + strings.Join(longWords, ", ")}
		}
		return ValidationResult{Valid: true}

	case "questions_only":
		for _, sentence := range strings.Split(message, ".") {
			trimmed := strings.TrimSpace(sentence)
			if trimmed != "" && !strings.HasSuffix(trimmed, "?") {
				return ValidationResult{Reason: "Not all sentences are questions"}
			}
		}
		return ValidationResult{Valid: true}

	case "no_vowels_ae":
		if strings.ContainsAny(message, "aAeE") {
			return ValidationResult{Reason: "Contains forbidden vowels A or E"}
		}
		return ValidationResult{Valid: true}

	case "three_word_sentences":
		offending := []string{}
		for _, sentence := range strings.Split(message, ".") {
			trimmed := strings.TrimSpace(sentence)
			if trimmed != "" && len(strings.Fields(trimmed)) != 3 {
				offending = append(offending, trimmed)
			}
		}
		if len(offending) > 0 {
			return ValidationResult{Reason: "Sentences not 3 words: " + strings.Join(offending, "; ")}
		}
		return ValidationResult{Valid: true}

	case "alliteration":
		words := strings.Fields(strings.ToLower(message))
		if len(words) < 2 {
			return ValidationResult{Reason: "Need multiple words"}
		}
		first := []rune(words[0])[0]
		for _, w := range words[1:] {
			if []rune(w)[0] != first {
				return ValidationResult{Reason: "Not all words start with same letter"}
			}
		}
		return ValidationResult{Valid: true}

	default:
		// rhyme_chain, no_common_words and backwards are played on
		// the honor system.
		return ValidationResult{Valid: true}
	}
}

// RotateConstraints redraws the active constraints mid-session.
func (e *LabEngine) RotateConstraints(sessionID string) ([]Constraint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("lab session not found", goerr.V("session_id", sessionID))
	}
	session.ActiveConstraints = e.drawConstraints()
	return session.ActiveConstraints, nil
}

// SessionLeaderboard ranks participants by score. Ties keep the
// session's participant order.
func (e *LabEngine) SessionLeaderboard(sessionID string) ([]LabScore, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("lab session not found", goerr.V("session_id", sessionID))
	}

	board := make([]LabScore, 0, len(session.Participants))
	for _, p := range session.Participants {
		board = append(board, LabScore{
			EntityID:   p,
			Score:      session.Scores[p],
			Violations: len(session.Violations[p]),
		})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board, nil
}

// Session returns the live session state.
func (e *LabEngine) Session(sessionID string) (*LabSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("lab session not found", goerr.V("session_id", sessionID))
	}
	return session, nil
}

// EndSession closes the session and crowns the top scorer. Ties go to
// whoever joined first.
func (e *LabEngine) EndSession(sessionID string) (*LabResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("lab session not found", goerr.V("session_id", sessionID))
	}

	now := time.Now().UTC()
	session.Status = "completed"
	session.EndedAt = &now

	winner := LabWinner{}
	best := -1
	for _, p := range session.Participants {
		if session.Scores[p] > best {
			best = session.Scores[p]
			winner = LabWinner{EntityID: p, Score: session.Scores[p]}
		}
	}
	return &LabResult{
		Winner:          winner,
		FinalScores:     session.Scores,
		TotalMessages:   len(session.Messages),
		ConstraintsUsed: session.ActiveConstraints,
	}, nil
}
