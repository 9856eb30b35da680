package feedback_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/feedback"
	"github.com/vestalabs/habitat/storage"
)

func newDesk(t *testing.T) *feedback.Manager {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	gt.NoError(t, err)
	return feedback.NewManager(store)
}

func TestDeskTicketLifecycle(t *testing.T) {
	desk := newDesk(t)

	ticket, err := desk.Submit("ent-1", "ABCD1234", core.IssueBreedingError,
		"my offspring has no name", map[string]any{"log": "naming failed"})
	gt.NoError(t, err)
	gt.NotNil(t, ticket)
	gt.Equal(t, ticket.Status, core.FeedbackOpen)
	gt.Equal(t, ticket.Message, "my offspring has no name")

	tickets, err := desk.AgentTickets("ent-1")
	gt.NoError(t, err)
	gt.A(t, tickets).Length(1)

	unread, err := desk.UnreadResponses("ent-1")
	gt.NoError(t, err)
	gt.A(t, unread).Length(0)

	gt.NoError(t, desk.Respond(ticket.ID, "Named it for you.", false))

	unread, err = desk.UnreadResponses("ent-1")
	gt.NoError(t, err)
	gt.A(t, unread).Length(1)
	gt.Equal(t, unread[0].Response, "Named it for you.")
	gt.Equal(t, unread[0].Status, core.FeedbackInProgress)

	gt.NoError(t, desk.MarkRead(ticket.ID))

	unread, err = desk.UnreadResponses("ent-1")
	gt.NoError(t, err)
	gt.A(t, unread).Length(0)

	gt.NoError(t, desk.Respond(ticket.ID, "All sorted.", true))

	again, err := desk.AgentTickets("ent-1")
	gt.NoError(t, err)
	gt.Equal(t, again[0].Status, core.FeedbackResolved)
}

func TestDeskOpenTickets(t *testing.T) {
	desk := newDesk(t)

	open, err := desk.Submit("ent-1", "ABCD1234", core.IssueOther, "still waiting", nil)
	gt.NoError(t, err)
	closed, err := desk.Submit("ent-2", "ABCD1234", core.IssueOther, "already fine", nil)
	gt.NoError(t, err)
	gt.NoError(t, desk.Respond(closed.ID, "Glad to hear it.", true))

	tickets, err := desk.OpenTickets()
	gt.NoError(t, err)
	gt.A(t, tickets).Length(1)
	gt.Equal(t, tickets[0].ID, open.ID)
}

func TestDeskMissingTicket(t *testing.T) {
	desk := newDesk(t)

	gt.Error(t, desk.MarkRead("ghost"))
	gt.Error(t, desk.Respond("ghost", "anyone there?", false))
}

func TestValidateSoulFormatStructured(t *testing.T) {
	doc := `---
name: Willow
description: A careful archivist
---

## Tone and Style Guidelines
- **Voice:** Quiet, precise

## Core Values
- **Accuracy:** Check twice
`
	check := feedback.ValidateSoulFormat(doc)
	gt.True(t, check.Valid)
	gt.Equal(t, check.Message, "✅ Your SOUL.md will work! You can register.")
	gt.NotNil(t, check.ParsedTraits)
	gt.Equal(t, check.ParsedTraits.Identity["name"], "Willow")
	gt.Equal(t, check.ParsedTraits.ToneStyle["voice"], "Quiet, precise")
}

func TestValidateSoulFormatRejectsShapelessText(t *testing.T) {
	check := feedback.ValidateSoulFormat("just a plain paragraph with no structure at all")
	gt.False(t, check.Valid)
	gt.Equal(t, check.Error, "no recognizable traits found")
	gt.Equal(t, check.Suggestion, "Try structured format with YAML frontmatter")
	gt.Equal(t, check.DocsLink, "/docs/soul-format")
	gt.Nil(t, check.ParsedTraits)
}

func TestHelpResponses(t *testing.T) {
	gt.S(t, feedback.HelpResponse("How does the SOUL.md thing work?")).
		Contains("Vesta accepts two SOUL.md formats")
	gt.S(t, feedback.HelpResponse("what are the breeding rules")).
		Contains("Breeding Requirements")
	gt.S(t, feedback.HelpResponse("where is my beacon")).
		Contains("invitation tokens for Moltbook agents")
	gt.S(t, feedback.HelpResponse("hello out there")).
		Contains("Question received! An operator will respond soon.")

	gt.Equal(t, len(feedback.HelpTopics), 4)
}
