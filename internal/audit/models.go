package audit

import (
	"time"

	id "onboard/pkg/domain"
)

// Event captures one state-changing action on an onboarding record. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	ActorID   id.UserID // who acted
	OwnerID   id.UserID // whose application
	Subject   string    // application ID
	Action    Action
	Decision  string
	Reason    string
	Client    string // browser and OS parsed from the User-Agent
	IPPrefix  string // anonymized network prefix
	RequestID string
}

type Action string

const (
	ActionApplicationSubmitted   Action = "application_submitted"
	ActionApplicationResubmitted Action = "application_resubmitted"
	ActionApplicationApproved    Action = "application_approved"
	ActionApplicationRejected    Action = "application_rejected"
	ActionUserRegistered         Action = "user_registered"
	ActionUploadOrphaned         Action = "upload_orphaned"
)
