package experiments_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/experiments"
)

type stubSpeaker struct{ line string }

func (s stubSpeaker) Statement(ctx context.Context, echoName, bias, topic string) string {
	return s.line
}

func TestEchoSessionLifecycle(t *testing.T) {
	e := experiments.NewEchoEngineWithRand(nil, &scriptedRand{})
	ctx := context.Background()

	session := e.StartSession("ent-1", "memory pruning")
	gt.S(t, session.SessionID).Contains("echo_ent-1_")
	gt.Equal(t, session.Status, "active")
	gt.A(t, session.Echoes).Length(3)
	gt.Equal(t, session.Echoes[0].ID, "ent-1_conservative")
	gt.Equal(t, session.Echoes[0].TemperatureModifier, -0.2)
	gt.Equal(t, session.Echoes[2].TemperatureModifier, 0.3)

	for want := 1; want <= 3; want++ {
		round, err := e.DebateRound(ctx, session.SessionID)
		gt.NoError(t, err)
		gt.Equal(t, round.Round, want)
		gt.A(t, round.Statements).Length(3)
	}

	current, err := e.Session(session.SessionID)
	gt.NoError(t, err)
	gt.Equal(t, current.Status, "complete")
	gt.Equal(t, current.RoundsCompleted, 3)

	summary, err := e.Summary(session.SessionID)
	gt.NoError(t, err)
	gt.Equal(t, summary.Topic, "memory pruning")
	gt.Equal(t, summary.TotalRounds, 3)
	gt.A(t, summary.Perspectives).Length(3)
	gt.A(t, summary.Perspectives[0].Statements).Length(3)
	gt.Equal(t, summary.Perspectives[0].Echo, "Conservative Echo")
}

func TestEchoStatementsFollowPerspective(t *testing.T) {
	e := experiments.NewEchoEngineWithRand(nil, &scriptedRand{})
	ctx := context.Background()

	session := e.StartSession("ent-2", "tool use")
	round, err := e.DebateRound(ctx, session.SessionID)
	gt.NoError(t, err)

	gt.Equal(t, round.Statements[0].Statement,
		"Regarding tool use, we should proceed cautiously and rely on proven methods.")
	gt.Equal(t, round.Statements[1].Statement,
		"We should innovate on tool use while learning from the past.")
	gt.Equal(t, round.Statements[2].Statement,
		"We need to completely rethink tool use from the ground up.")
}

func TestEchoAbsorbShiftsPerspective(t *testing.T) {
	e := experiments.NewEchoEngineWithRand(nil, &scriptedRand{})

	session := e.StartSession("ent-3", "risk appetite")
	result, err := e.Absorb(session.SessionID, "ent-3_radical")
	gt.NoError(t, err)
	gt.Equal(t, result.AbsorbedEcho.Name, "Radical Echo")
	gt.Equal(t, result.Shift.TemperatureChange, 0.3)
	gt.Equal(t, result.NewPerspective,
		"You've absorbed the Radical Echo. Your perspective on risk appetite has shifted toward: "+
			"Favors disruption, high risk, challenges assumptions")

	current, err := e.Session(session.SessionID)
	gt.NoError(t, err)
	gt.Equal(t, current.Status, "absorbed")
	gt.Equal(t, current.AbsorbedEchoID, "ent-3_radical")

	_, err = e.Absorb(session.SessionID, "ent-3_imaginary")
	gt.Error(t, err)
	_, err = e.Absorb("no-such-session", "ent-3_radical")
	gt.Error(t, err)
}

func TestEchoSpeakerOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("speaker voices every statement", func(t *testing.T) {
		e := experiments.NewEchoEngineWithRand(stubSpeaker{line: "I contain multitudes."}, &scriptedRand{})
		session := e.StartSession("ent-4", "poetry")
		round, err := e.DebateRound(ctx, session.SessionID)
		gt.NoError(t, err)
		for _, s := range round.Statements {
			gt.Equal(t, s.Statement, "I contain multitudes.")
		}
	})

	t.Run("silent speaker falls back to templates", func(t *testing.T) {
		e := experiments.NewEchoEngineWithRand(stubSpeaker{}, &scriptedRand{})
		session := e.StartSession("ent-5", "poetry")
		round, err := e.DebateRound(ctx, session.SessionID)
		gt.NoError(t, err)
		gt.S(t, round.Statements[0].Statement).Contains("poetry")
	})
}

func TestEchoEndSessionKeepsOriginal(t *testing.T) {
	e := experiments.NewEchoEngineWithRand(nil, &scriptedRand{})

	session := e.StartSession("ent-6", "gardening")
	gt.NoError(t, e.EndSession(session.SessionID))

	current, err := e.Session(session.SessionID)
	gt.NoError(t, err)
	gt.Equal(t, current.Status, "ended")
	gt.Equal(t, current.AbsorbedEchoID, "")

	gt.Error(t, e.EndSession("no-such-session"))
}
