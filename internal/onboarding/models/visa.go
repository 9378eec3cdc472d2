package models

import (
	"time"

	id "onboard/pkg/domain"
)

// VisaStatus summarises the work authorization of an application.
type VisaStatus struct {
	UserID         id.UserID
	Name           string
	Status         Status
	Applicable     bool
	Type           WorkAuthorizationType
	Label          string
	StartDate      time.Time
	ExpirationDate time.Time
	DaysRemaining  int
	Expired        bool
	Documents      []Document
}

// VisaStatus derives the visa summary as of now. Residents get Applicable false.
func (a *Application) VisaStatus(now time.Time) VisaStatus {
	vs := VisaStatus{
		UserID:    a.UserID,
		Name:      a.Personal.FullName(),
		Status:    a.Status,
		Documents: VisaDocuments(a.Documents),
	}
	w, ok := a.WorkAuthorization()
	if !ok {
		return vs
	}
	vs.Applicable = true
	vs.Type = w.Type
	vs.Label = w.Label()
	vs.StartDate = w.StartDate
	vs.ExpirationDate = w.ExpirationDate
	vs.DaysRemaining = w.DaysRemaining(now)
	vs.Expired = vs.DaysRemaining < 0
	return vs
}
