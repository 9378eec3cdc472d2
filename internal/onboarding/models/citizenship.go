package models

import (
	"time"
)

type ResidentType string

const (
	ResidentGreenCard ResidentType = "green_card"
	ResidentCitizen   ResidentType = "citizen"
)

// CitizenshipTypeWorkAuthorization is the wire value of citizenshipStatus.type
// for non-residents.
const CitizenshipTypeWorkAuthorization = "work_authorization"

type WorkAuthorizationType string

const (
	WorkAuthH1B   WorkAuthorizationType = "H1-B"
	WorkAuthH4    WorkAuthorizationType = "H4"
	WorkAuthL2    WorkAuthorizationType = "L2"
	WorkAuthF1    WorkAuthorizationType = "F1"
	WorkAuthOther WorkAuthorizationType = "other"
)

func (t WorkAuthorizationType) IsValid() bool {
	switch t {
	case WorkAuthH1B, WorkAuthH4, WorkAuthL2, WorkAuthF1, WorkAuthOther:
		return true
	}
	return false
}

// Citizenship is either a ResidentStatus or a WorkAuthorization. Each variant
// carries only the fields legal for it; consumers switch over the two.
type Citizenship interface {
	isCitizenship()
}

// ResidentStatus covers permanent residents and citizens.
type ResidentStatus struct {
	Type ResidentType
}

// WorkAuthorization covers non-residents working under a visa.
type WorkAuthorization struct {
	Type           WorkAuthorizationType
	Other          string // free-text title, set only when Type is other
	StartDate      time.Time
	ExpirationDate time.Time
}

func (ResidentStatus) isCitizenship()    {}
func (WorkAuthorization) isCitizenship() {}

// Label is the human-readable visa title.
func (w WorkAuthorization) Label() string {
	if w.Type == WorkAuthOther && w.Other != "" {
		return w.Other
	}
	return string(w.Type)
}

// DaysRemaining counts whole days from now until expiration; negative once expired.
func (w WorkAuthorization) DaysRemaining(now time.Time) int {
	today := now.UTC().Truncate(24 * time.Hour)
	exp := w.ExpirationDate.UTC().Truncate(24 * time.Hour)
	return int(exp.Sub(today).Hours() / 24)
}
