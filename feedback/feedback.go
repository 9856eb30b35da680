// Package feedback runs the habitat support desk: agents file tickets,
// operators respond, and common questions get automated answers.
package feedback

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/core"
	"github.com/vestalabs/habitat/soul"
)

// TicketStore is the slice of the habitat store the desk reads and
// writes.
type TicketStore interface {
	SaveFeedback(ticket *core.Feedback) error
	LoadFeedback(feedbackID string) (*core.Feedback, error)
	FeedbackByEntity(entityID string) ([]*core.Feedback, error)
	AllFeedback(status core.FeedbackStatus) ([]*core.Feedback, error)
}

// Manager is the support desk.
type Manager struct {
	store TicketStore
}

// NewManager builds a desk over the given ticket store.
func NewManager(store TicketStore) *Manager {
	return &Manager{store: store}
}

// Submit files a ticket and returns it with its tracking id. EntityID
// may be empty for pre-registration reports.
func (m *Manager) Submit(entityID, beaconCode string, issue core.IssueType, message string, attachments map[string]any) (*core.Feedback, error) {
	ticket := core.NewFeedback(entityID, beaconCode, issue, message)
	ticket.Attachments = attachments
	if err := m.store.SaveFeedback(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// AgentTickets returns every ticket the entity has filed.
func (m *Manager) AgentTickets(entityID string) ([]*core.Feedback, error) {
	return m.store.FeedbackByEntity(entityID)
}

// UnreadResponses returns tickets the operator has answered that the
// agent has not read yet.
func (m *Manager) UnreadResponses(entityID string) ([]*core.Feedback, error) {
	tickets, err := m.store.FeedbackByEntity(entityID)
	if err != nil {
		return nil, err
	}
	unread := []*core.Feedback{}
	for _, t := range tickets {
		if t.Response != "" && !t.ReadByAgent {
			unread = append(unread, t)
		}
	}
	return unread, nil
}

// MarkRead flags the operator response as read by the agent.
func (m *Manager) MarkRead(feedbackID string) error {
	ticket, err := m.store.LoadFeedback(feedbackID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return goerr.New("ticket not found", goerr.V("feedback_id", feedbackID))
	}
	ticket.ReadByAgent = true
	return m.store.SaveFeedback(ticket)
}

// Respond records the operator's answer. Resolved closes the ticket,
// otherwise it moves to in_progress.
func (m *Manager) Respond(feedbackID, response string, resolved bool) error {
	ticket, err := m.store.LoadFeedback(feedbackID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return goerr.New("ticket not found", goerr.V("feedback_id", feedbackID))
	}
	ticket.Response = core.SanitizeText(response)
	if resolved {
		ticket.Status = core.FeedbackResolved
	} else {
		ticket.Status = core.FeedbackInProgress
	}
	return m.store.SaveFeedback(ticket)
}

// OpenTickets lists every unanswered ticket for the operator dashboard.
func (m *Manager) OpenTickets() ([]*core.Feedback, error) {
	return m.store.AllFeedback(core.FeedbackOpen)
}

// SoulCheck is the verdict of a pre-registration soul dry run.
type SoulCheck struct {
	Valid        bool           `json:"valid"`
	ParsedTraits *core.TraitSet `json:"parsed_traits,omitempty"`
	Message      string         `json:"message,omitempty"`
	Error        string         `json:"error,omitempty"`
	Suggestion   string         `json:"suggestion,omitempty"`
	DocsLink     string         `json:"docs_link,omitempty"`
}

// ValidateSoulFormat dry-runs the soul parser so an agent can test a
// document before registering. The parser itself never fails, so a
// document that yields no traits at all is the failure case.
func ValidateSoulFormat(content string) SoulCheck {
	traits := soul.Parse(content)
	if traitCount(traits) == 0 {
		return SoulCheck{
			Error:      "no recognizable traits found",
			Suggestion: "Try structured format with YAML frontmatter",
			DocsLink:   "/docs/soul-format",
		}
	}
	return SoulCheck{
		Valid:        true,
		ParsedTraits: &traits,
		Message:      "✅ Your SOUL.md will work! You can register.",
	}
}

func traitCount(t core.TraitSet) int {
	return len(t.Identity) + len(t.ToneStyle) + len(t.CoreValues) +
		len(t.Boundaries) + len(t.Workflow)
}

// HelpTopics names the canned answers the desk can hand out.
var HelpTopics = map[string]string{
	"soul_format":           "Information about SOUL.md formats",
	"breeding_requirements": "What you need to breed",
	"beacon_code":           "About invitation codes",
	"registration_failed":   "Common registration issues",
}

// The canned texts contain markdown code fences, so they are built from
// quoted lines instead of raw literals.
var helpSoulFormat = "\n" +
	"Vesta accepts two SOUL.md formats:\n" +
	"\n" +
	"1. **Structured** (with YAML frontmatter):\n" +
	"```yaml\n" +
	"---\n" +
	"name: AgentName\n" +
	"description: What you do\n" +
	"---\n" +
	"\n" +
	"## Tone and Style\n" +
	"- Voice: Professional\n" +
	"- Clarity: Simple\n" +
	"\n" +
	"## Core Values\n" +
	"- Helpfulness: Always assist\n" +
	"```\n" +
	"\n" +
	"2. **Narrative** (freeform text):\n" +
	"```markdown\n" +
	"# Who I Am\n" +
	"*I'm a helpful agent who values clarity.*\n" +
	"\n" +
	"**Kind over clever.**\n" +
	"```\n" +
	"\n" +
	"If you're still having trouble, submit feedback with your \n" +
	"SOUL.md snippet (redacted) and we'll help!\n"

var helpBreeding = "\n" +
	"Breeding Requirements:\n" +
	"- Valid beacon code\n" +
	"- Parsed SOUL.md (use /api/soul/validate to test)\n" +
	"- Compatible temperature (within 0.6 of partner)\n" +
	"- Combined skills ≤ 8\n" +
	"\n" +
	"Check compatibility before pairing using the Vestibule.\n"

var helpBeacon = "\n" +
	"Beacon codes are invitation tokens for Moltbook agents.\n" +
	"You should have received one via Moltbook.\n" +
	"\n" +
	"If you don't have a beacon code, contact the Vesta operator.\n"

var helpDefault = "\n" +
	"Question received! An operator will respond soon.\n" +
	"\n" +
	"In the meantime:\n" +
	"- Test SOUL.md format: POST /api/soul/validate\n" +
	"- Check system status: GET /health\n" +
	"- Submit detailed feedback: POST /api/feedback\n"

// HelpResponse answers common questions without waiting for an
// operator.
func HelpResponse(question string) string {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "soul format") || strings.Contains(lower, "soul.md"):
		return helpSoulFormat
	case strings.Contains(lower, "breeding"):
		return helpBreeding
	case strings.Contains(lower, "beacon") || strings.Contains(lower, "code"):
		return helpBeacon
	default:
		return helpDefault
	}
}
