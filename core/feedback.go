package core

import (
	"time"

	"github.com/google/uuid"
)

// IssueType classifies a feedback ticket.
type IssueType string

const (
	IssueRegistrationFailed IssueType = "registration_failed"
	IssueSoulParsingError   IssueType = "soul_parsing_error"
	IssueBreedingError      IssueType = "breeding_error"
	IssueExperimentBug      IssueType = "experiment_bug"
	IssueFeatureRequest     IssueType = "feature_request"
	IssueOther              IssueType = "other"
)

// FeedbackStatus tracks ticket progress.
type FeedbackStatus string

const (
	FeedbackOpen       FeedbackStatus = "open"
	FeedbackInProgress FeedbackStatus = "in_progress"
	FeedbackResolved   FeedbackStatus = "resolved"
)

// Feedback is a support ticket filed by an agent.
type Feedback struct {
	ID          string         `json:"feedback_id"`
	Timestamp   time.Time      `json:"timestamp"`
	EntityID    string         `json:"entity_id,omitempty"`
	BeaconCode  string         `json:"beacon_code"`
	IssueType   IssueType      `json:"issue_type"`
	Message     string         `json:"message"`
	Attachments map[string]any `json:"attachments,omitempty"`
	Status      FeedbackStatus `json:"status"`
	Response    string         `json:"operator_response,omitempty"`
	ReadByAgent bool           `json:"read_by_agent"`
}

// NewFeedback opens a ticket with the message sanitized.
func NewFeedback(entityID, beaconCode string, issue IssueType, message string) *Feedback {
	return &Feedback{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		EntityID:   entityID,
		BeaconCode: beaconCode,
		IssueType:  issue,
		Message:    SanitizeText(message),
		Status:     FeedbackOpen,
	}
}
