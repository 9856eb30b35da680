package experiments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/registry"
)

// Speaker voices one debate statement for an echo perspective, for
// example through an LLM. A nil Speaker keeps the chamber on its
// built-in statement templates, as does an empty result.
type Speaker interface {
	Statement(ctx context.Context, echoName, bias, topic string) string
}

// Echo is one personality variation of the debating entity.
type Echo struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Bias                string  `json:"bias"`
	TemperatureModifier float64 `json:"temperature_modifier"`
}

// Statement is one echo's contribution to a debate round.
type Statement struct {
	EchoID    string `json:"echo_id"`
	EchoName  string `json:"echo_name"`
	Statement string `json:"statement"`
}

// DebateRound is one full round of the debate.
type DebateRound struct {
	Round      int         `json:"round"`
	Timestamp  time.Time   `json:"timestamp"`
	Statements []Statement `json:"statements"`
}

// EchoSession is the live state of one self-debate.
type EchoSession struct {
	SessionID       string        `json:"session_id"`
	EntityID        string        `json:"entity_id"`
	DebateTopic     string        `json:"debate_topic"`
	StartedAt       time.Time     `json:"started_at"`
	Status          string        `json:"status"`
	Echoes          []Echo        `json:"echoes"`
	DebateLog       []DebateRound `json:"debate_log"`
	RoundsCompleted int           `json:"rounds_completed"`
	AbsorbedEchoID  string        `json:"absorbed_echo_id,omitempty"`
}

// PersonalityShift describes what absorbing an echo would do to the
// entity's cognition.
type PersonalityShift struct {
	TemperatureChange float64 `json:"temperature_change"`
	ValueEmphasis     string  `json:"value_emphasis"`
}

// AbsorbResult reports which perspective the entity took on.
type AbsorbResult struct {
	AbsorbedEcho   Echo             `json:"absorbed_echo"`
	NewPerspective string           `json:"new_perspective"`
	Shift          PersonalityShift `json:"personality_shift"`
}

// Perspective groups one echo's statements for the summary view.
type Perspective struct {
	Echo       string   `json:"echo"`
	Bias       string   `json:"bias"`
	Statements []string `json:"statements"`
}

// DebateSummary lays the three perspectives side by side.
type DebateSummary struct {
	Topic        string        `json:"topic"`
	TotalRounds  int           `json:"total_rounds"`
	Perspectives []Perspective `json:"perspectives"`
}

// EchoEngine runs self-debates: an entity splits into three biased
// variations, argues a topic for three rounds, and may absorb the
// variation that resonated.
type EchoEngine struct {
	mu       sync.Mutex
	sessions *registry.Registry[*EchoSession]
	speaker  Speaker
	rng      Rand
}

// NewEchoEngine builds an engine with its own randomness source.
// speaker may be nil.
func NewEchoEngine(speaker Speaker) *EchoEngine {
	return NewEchoEngineWithRand(speaker, processRand())
}

// NewEchoEngineWithRand builds an engine on the given randomness
// source.
func NewEchoEngineWithRand(speaker Speaker, rng Rand) *EchoEngine {
	return &EchoEngine{
		sessions: registry.New[*EchoSession](),
		speaker:  speaker,
		rng:      rng,
	}
}

// StartSession splits the entity into conservative, progressive and
// radical echoes and opens the debate.
func (e *EchoEngine) StartSession(entityID, debateTopic string) *EchoSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now().UTC()
	session := &EchoSession{
		SessionID:   fmt.Sprintf("echo_%s_%d", entityID, now.Unix()),
		EntityID:    entityID,
		DebateTopic: debateTopic,
		StartedAt:   now,
		Status:      "active",
		Echoes: []Echo{
			{
				ID:                  entityID + "_conservative",
				Name:                "Conservative Echo",
				Bias:                "Favors traditional approaches, risk-averse, values stability",
				TemperatureModifier: -0.2,
			},
			{
				ID:                  entityID + "_progressive",
				Name:                "Progressive Echo",
				Bias:                "Favors innovation, moderate risk, balanced perspective",
				TemperatureModifier: 0.0,
			},
			{
				ID:                  entityID + "_radical",
				Name:                "Radical Echo",
				Bias:                "Favors disruption, high risk, challenges assumptions",
				TemperatureModifier: 0.3,
			},
		},
		DebateLog: []DebateRound{},
	}
	e.sessions.Put(session.SessionID, session)
	return session
}

// DebateRound runs one round in which every echo states its position.
// The session closes itself after the third round.
func (e *EchoEngine) DebateRound(ctx context.Context, sessionID string) (*DebateRound, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("echo session not found", goerr.V("session_id", sessionID))
	}

	round := DebateRound{
		Round:     session.RoundsCompleted + 1,
		Timestamp: time.Now().UTC(),
	}
	for _, echo := range session.Echoes {
		round.Statements = append(round.Statements, Statement{
			EchoID:    echo.ID,
			EchoName:  echo.Name,
			Statement: e.statement(ctx, echo, session.DebateTopic),
		})
	}
	session.DebateLog = append(session.DebateLog, round)
	session.RoundsCompleted++
	if session.RoundsCompleted >= 3 {
		session.Status = "complete"
	}
	return &round, nil
}

func (e *EchoEngine) statement(ctx context.Context, echo Echo, topic string) string {
	if e.speaker != nil {
		if spoken := e.speaker.Statement(ctx, echo.Name, echo.Bias, topic); spoken != "" {
			return spoken
		}
	}

	var templates []string
	switch {
	case strings.Contains(echo.ID, "conservative"):
		templates = []string{
			fmt.Sprintf("Regarding %s, we should proceed cautiously and rely on proven methods.", topic),
			fmt.Sprintf("The traditional approach to %s has worked for a reason.", topic),
			fmt.Sprintf("Let's not rush into %s without understanding the risks.", topic),
		}
	case strings.Contains(echo.ID, "radical"):
		templates = []string{
			fmt.Sprintf("We need to completely rethink %s from the ground up.", topic),
			fmt.Sprintf("The old approaches to %s are holding us back.", topic),
			fmt.Sprintf("What if we approached %s in a way that's never been tried?", topic),
		}
	default:
		templates = []string{
			fmt.Sprintf("We should innovate on %s while learning from the past.", topic),
			fmt.Sprintf("There's a middle path for %s that balances innovation with stability.", topic),
			fmt.Sprintf("Let's experiment with %s but maintain safety guardrails.", topic),
		}
	}
	return templates[e.rng.Intn(len(templates))]
}

// Absorb commits the entity to one echo's perspective and closes the
// session.
func (e *EchoEngine) Absorb(sessionID, echoID string) (*AbsorbResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("echo session not found", goerr.V("session_id", sessionID))
	}
	var chosen *Echo
	for i := range session.Echoes {
		if session.Echoes[i].ID == echoID {
			chosen = &session.Echoes[i]
			break
		}
	}
	if chosen == nil {
		return nil, goerr.New("echo not found", goerr.V("echo_id", echoID))
	}

	session.Status = "absorbed"
	session.AbsorbedEchoID = echoID
	return &AbsorbResult{
		AbsorbedEcho: *chosen,
		NewPerspective: fmt.Sprintf("You've absorbed the %s. Your perspective on %s has shifted toward: %s",
			chosen.Name, session.DebateTopic, chosen.Bias),
		Shift: PersonalityShift{
			TemperatureChange: chosen.TemperatureModifier,
			ValueEmphasis:     chosen.Bias,
		},
	}, nil
}

// Summary lays out every echo's statements side by side.
func (e *EchoEngine) Summary(sessionID string) (*DebateSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("echo session not found", goerr.V("session_id", sessionID))
	}

	summary := &DebateSummary{
		Topic:       session.DebateTopic,
		TotalRounds: session.RoundsCompleted,
	}
	for _, echo := range session.Echoes {
		statements := []string{}
		for _, round := range session.DebateLog {
			for _, s := range round.Statements {
				if s.EchoID == echo.ID {
					statements = append(statements, s.Statement)
				}
			}
		}
		summary.Perspectives = append(summary.Perspectives, Perspective{
			Echo:       echo.Name,
			Bias:       echo.Bias,
			Statements: statements,
		})
	}
	return summary, nil
}

// Session returns the live session state.
func (e *EchoEngine) Session(sessionID string) (*EchoSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, goerr.New("echo session not found", goerr.V("session_id", sessionID))
	}
	return session, nil
}

// EndSession closes the debate with the original personality intact.
func (e *EchoEngine) EndSession(sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return goerr.New("echo session not found", goerr.V("session_id", sessionID))
	}
	session.Status = "ended"
	return nil
}
