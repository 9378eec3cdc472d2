package models

import (
	"fmt"
	"strings"
	"time"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

type Address struct {
	AddressOne string
	AddressTwo string
	City       string
	State      string
	ZipCode    string
}

// Contact is a reference or emergency contact.
type Contact struct {
	FirstName    string
	LastName     string
	MiddleName   string
	Phone        string
	Email        string
	Relationship string
}

type PersonalInfo struct {
	FirstName      string
	LastName       string
	MiddleName     string
	PreferredName  string
	ProfilePicture string
	Address        Address
	CellPhone      string
	WorkPhone      string
	Email          string
	SSN            string
	DateOfBirth    time.Time
	Gender         Gender
}

// FullName joins first, middle and last names.
func (p PersonalInfo) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != "" {
		parts = append(parts, p.MiddleName)
	}
	parts = append(parts, p.LastName)
	return strings.Join(parts, " ")
}

// Draft is the validated content of a submission before documents are merged in.
type Draft struct {
	Personal          PersonalInfo
	Citizenship       Citizenship
	Reference         *Contact
	EmergencyContacts []Contact
	Documents         []Document // persisted documents the form listed
}

// Application is the onboarding record of one user. There is at most one per
// user. Version increases on every persisted change.
type Application struct {
	ID                id.ApplicationID
	UserID            id.UserID
	Status            Status
	RejectionFeedback string
	Version           int64
	Personal          PersonalInfo
	Citizenship       Citizenship
	Reference         *Contact
	EmergencyContacts []Contact
	Documents         []Document
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewApplication builds a first submission. The status is always pending.
func NewApplication(appID id.ApplicationID, userID id.UserID, draft Draft, docs []Document, now time.Time) (*Application, error) {
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application ID required")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID required")
	}
	if draft.Citizenship == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "citizenship required")
	}
	a := &Application{
		ID:        appID,
		UserID:    userID,
		Status:    StatusPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.apply(draft, docs)
	return a, nil
}

// Resubmit replaces the content of a pending or rejected record and puts it
// back to pending. Rejection feedback stays for display until approval.
func (a *Application) Resubmit(draft Draft, docs []Document, now time.Time) error {
	if a.Status == StatusApproved {
		return dErrors.New(dErrors.CodeInvariantViolation, "approved application cannot be resubmitted")
	}
	if draft.Citizenship == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "citizenship required")
	}
	a.apply(draft, docs)
	a.Status = StatusPending
	a.UpdatedAt = now
	return nil
}

// Approve moves a pending record to approved and clears prior feedback.
func (a *Application) Approve(now time.Time) error {
	if a.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("cannot approve application in status %s", a.Status))
	}
	a.Status = StatusApproved
	a.RejectionFeedback = ""
	a.UpdatedAt = now
	return nil
}

// Reject moves a pending record to rejected with the reviewer's feedback.
func (a *Application) Reject(feedback string, now time.Time) error {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return dErrors.NewValidation("feedback is required",
			dErrors.FieldError{Field: "feedback", Message: "feedback is required"})
	}
	if a.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("cannot reject application in status %s", a.Status))
	}
	a.Status = StatusRejected
	a.RejectionFeedback = feedback
	a.UpdatedAt = now
	return nil
}

// IsReviewable reports whether HR may approve or reject the record.
func (a *Application) IsReviewable() bool {
	return a.Status == StatusPending
}

// WorkAuthorization returns the visa details when the applicant is not a
// permanent resident.
func (a *Application) WorkAuthorization() (WorkAuthorization, bool) {
	w, ok := a.Citizenship.(WorkAuthorization)
	return w, ok
}

// Clone returns a deep copy so stores never share slices with callers.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	if a.Reference != nil {
		ref := *a.Reference
		c.Reference = &ref
	}
	c.EmergencyContacts = append([]Contact(nil), a.EmergencyContacts...)
	c.Documents = append(make([]Document, 0, len(a.Documents)), a.Documents...)
	return &c
}

func (a *Application) apply(draft Draft, docs []Document) {
	a.Personal = draft.Personal
	a.Citizenship = draft.Citizenship
	a.Reference = draft.Reference
	a.EmergencyContacts = append([]Contact(nil), draft.EmergencyContacts...)
	a.Documents = MergeDocuments(docs)
}
