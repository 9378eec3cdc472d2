package models

import (
	"time"

	id "onboard/pkg/domain"
)

type EventType string

const (
	EventSubmitted   EventType = "application.submitted"
	EventResubmitted EventType = "application.resubmitted"
	EventApproved    EventType = "application.approved"
	EventRejected    EventType = "application.rejected"
)

// LifecycleEvent is published after every persisted status change.
type LifecycleEvent struct {
	Type          EventType        `json:"type"`
	ApplicationID id.ApplicationID `json:"applicationId"`
	UserID        id.UserID        `json:"userId"`
	Status        Status           `json:"status"`
	Feedback      string           `json:"feedback,omitempty"`
	ReviewerID    string           `json:"reviewerId,omitempty"`
	Version       int64            `json:"version"`
	OccurredAt    time.Time        `json:"occurredAt"`
}

// NewLifecycleEvent snapshots app after a transition.
func NewLifecycleEvent(t EventType, app *Application, reviewer id.UserID, now time.Time) LifecycleEvent {
	ev := LifecycleEvent{
		Type:          t,
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Status:        app.Status,
		Feedback:      app.RejectionFeedback,
		Version:       app.Version,
		OccurredAt:    now,
	}
	if !reviewer.IsNil() {
		ev.ReviewerID = reviewer.String()
	}
	return ev
}
