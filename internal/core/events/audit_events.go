package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAudit = "audit.recorded"

	EventTypeFeedbackSubmitted = "feedback.submitted"
	EventTypeFeedbackChanged   = "feedback.changed"
)

// AuditEvent carries one security-relevant outcome (login, refresh, register...).
type AuditEvent struct {
	BaseEvent
	Action    string                 `json:"action"`
	UserID    string                 `json:"user_id,omitempty"`
	IP        string                 `json:"ip,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func NewAuditEvent(action, userID, ip, userAgent string, success bool, errMsg string, metadata map[string]interface{}) *AuditEvent {
	return &AuditEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAudit,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"action":  action,
				"user_id": userID,
				"success": success,
			},
		},
		Action:    action,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Success:   success,
		Error:     errMsg,
		Metadata:  metadata,
	}
}

// FeedbackEvent signals that the rating set of a company changed.
type FeedbackEvent struct {
	BaseEvent
	FeedbackID string `json:"feedback_id"`
	CompanyID  string `json:"company_id"`
	Rating     int    `json:"rating"`
}

func NewFeedbackSubmittedEvent(feedbackID, companyID string, rating int) *FeedbackEvent {
	return newFeedbackEvent(EventTypeFeedbackSubmitted, feedbackID, companyID, rating)
}

func NewFeedbackChangedEvent(feedbackID, companyID string, rating int) *FeedbackEvent {
	return newFeedbackEvent(EventTypeFeedbackChanged, feedbackID, companyID, rating)
}

func newFeedbackEvent(eventType, feedbackID, companyID string, rating int) *FeedbackEvent {
	return &FeedbackEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"feedback_id": feedbackID,
				"company_id":  companyID,
				"rating":      rating,
			},
		},
		FeedbackID: feedbackID,
		CompanyID:  companyID,
		Rating:     rating,
	}
}
