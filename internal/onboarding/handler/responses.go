package handler

import (
	"time"

	"onboard/internal/audit"
	"onboard/internal/onboarding/models"
	"onboard/internal/platform/privacy"
	schema "onboard/pkg/validation"
)

// Actions offered on a pending application.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type AddressResponse struct {
	AddressOne string `json:"addressOne"`
	AddressTwo string `json:"addressTwo,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zipCode"`
}

type ContactResponse struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MiddleName   string `json:"middleName,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

type CitizenshipResponse struct {
	IsPermanentResident    bool   `json:"isPermanentResident"`
	Type                   string `json:"type"`
	WorkAuthorizationType  string `json:"workAuthorizationType,omitempty"`
	WorkAuthorizationOther string `json:"workAuthorizationOther,omitempty"`
	StartDate              string `json:"startDate,omitempty"`
	ExpirationDate         string `json:"expirationDate,omitempty"`
}

type DocumentResponse struct {
	Type       string    `json:"type"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl"`
	UploadDate time.Time `json:"uploadDate"`
}

// ApplicationResponse is the full record. Actions is only set on the HR
// detail view.
type ApplicationResponse struct {
	ID                string              `json:"id"`
	UserID            string              `json:"userId"`
	Status            string              `json:"status"`
	RejectionFeedback string              `json:"rejectionFeedback,omitempty"`
	Version           int64               `json:"version"`
	FirstName         string              `json:"firstName"`
	LastName          string              `json:"lastName"`
	MiddleName        string              `json:"middleName,omitempty"`
	PreferredName     string              `json:"preferredName,omitempty"`
	ProfilePicture    string              `json:"profilePicture,omitempty"`
	Address           AddressResponse     `json:"address"`
	CellPhone         string              `json:"cellPhone"`
	WorkPhone         string              `json:"workPhone,omitempty"`
	Email             string              `json:"email"`
	SSN               string              `json:"ssn"`
	DateOfBirth       string              `json:"dateOfBirth"`
	Gender            string              `json:"gender"`
	CitizenshipStatus CitizenshipResponse `json:"citizenshipStatus"`
	Reference         *ContactResponse    `json:"reference,omitempty"`
	EmergencyContacts []ContactResponse   `json:"emergencyContacts"`
	Documents         []DocumentResponse  `json:"documents"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
	Actions           []string            `json:"actions,omitempty"`
}

// NeverSubmittedResponse answers GET /onboarding/application before the
// first submission.
type NeverSubmittedResponse struct {
	Status string `json:"status"`
}

// ApplicationSummary is one row of the HR listing.
type ApplicationSummary struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Status            string    `json:"status"`
	WorkAuthorization string    `json:"workAuthorization"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// EmployeeProfile is one row of the HR employee directory. The SSN is masked;
// the full value is only on the application detail.
type EmployeeProfile struct {
	UserID            string `json:"userId"`
	ApplicationID     string `json:"applicationId"`
	Name              string `json:"name"`
	PreferredName     string `json:"preferredName,omitempty"`
	ProfilePicture    string `json:"profilePicture,omitempty"`
	SSN               string `json:"ssn"`
	Email             string `json:"email"`
	CellPhone         string `json:"cellPhone"`
	WorkAuthorization string `json:"workAuthorization"`
}

// VisaResponse reports work authorization; Status is "active", "expired" or
// "not_applicable".
type VisaResponse struct {
	UserID            string             `json:"userId"`
	Name              string             `json:"name"`
	ApplicationStatus string             `json:"applicationStatus"`
	Status            string             `json:"status"`
	Type              string             `json:"type,omitempty"`
	Label             string             `json:"label,omitempty"`
	StartDate         string             `json:"startDate,omitempty"`
	ExpirationDate    string             `json:"expirationDate,omitempty"`
	DaysRemaining     *int               `json:"daysRemaining,omitempty"`
	Documents         []DocumentResponse `json:"documents"`
}

// HistoryEntry is one audit event of an application.
type HistoryEntry struct {
	Action    string    `json:"action"`
	ActorID   string    `json:"actorId,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Client    string    `json:"client,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func toApplicationResponse(app *models.Application) *ApplicationResponse {
	p := app.Personal
	resp := &ApplicationResponse{
		ID:                app.ID.String(),
		UserID:            app.UserID.String(),
		Status:            string(app.Status),
		RejectionFeedback: app.RejectionFeedback,
		Version:           app.Version,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		MiddleName:        p.MiddleName,
		PreferredName:     p.PreferredName,
		ProfilePicture:    p.ProfilePicture,
		Address: AddressResponse{
			AddressOne: p.Address.AddressOne,
			AddressTwo: p.Address.AddressTwo,
			City:       p.Address.City,
			State:      p.Address.State,
			ZipCode:    p.Address.ZipCode,
		},
		CellPhone:         p.CellPhone,
		WorkPhone:         p.WorkPhone,
		Email:             p.Email,
		SSN:               p.SSN,
		DateOfBirth:       formatDate(p.DateOfBirth),
		Gender:            string(p.Gender),
		CitizenshipStatus: toCitizenshipResponse(app.Citizenship),
		EmergencyContacts: make([]ContactResponse, 0, len(app.EmergencyContacts)),
		Documents:         toDocumentResponses(app.Documents),
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
	if app.Reference != nil {
		ref := toContactResponse(*app.Reference)
		resp.Reference = &ref
	}
	for _, c := range app.EmergencyContacts {
		resp.EmergencyContacts = append(resp.EmergencyContacts, toContactResponse(c))
	}
	return resp
}

func toDetailResponse(app *models.Application) *ApplicationResponse {
	resp := toApplicationResponse(app)
	if app.IsReviewable() {
		resp.Actions = []string{ActionApprove, ActionReject}
	}
	return resp
}

func toCitizenshipResponse(c models.Citizenship) CitizenshipResponse {
	switch v := c.(type) {
	case models.ResidentStatus:
		return CitizenshipResponse{IsPermanentResident: true, Type: string(v.Type)}
	case models.WorkAuthorization:
		return CitizenshipResponse{
			IsPermanentResident:    false,
			Type:                   models.CitizenshipTypeWorkAuthorization,
			WorkAuthorizationType:  string(v.Type),
			WorkAuthorizationOther: v.Other,
			StartDate:              formatDate(v.StartDate),
			ExpirationDate:         formatDate(v.ExpirationDate),
		}
	default:
		return CitizenshipResponse{}
	}
}

// workAuthorizationLabel names the citizenship of a record for listings.
func workAuthorizationLabel(c models.Citizenship) string {
	switch v := c.(type) {
	case models.ResidentStatus:
		return string(v.Type)
	case models.WorkAuthorization:
		return v.Label()
	default:
		return ""
	}
}

func toContactResponse(c models.Contact) ContactResponse {
	return ContactResponse{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		MiddleName:   c.MiddleName,
		Phone:        c.Phone,
		Email:        c.Email,
		Relationship: c.Relationship,
	}
}

func toDocumentResponses(docs []models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentResponse{
			Type:       string(d.Type),
			FileName:   d.FileName,
			FileURL:    d.FileURL,
			UploadDate: d.UploadDate,
		})
	}
	return out
}

func toSummaries(apps []*models.Application) []ApplicationSummary {
	out := make([]ApplicationSummary, 0, len(apps))
	for _, app := range apps {
		out = append(out, ApplicationSummary{
			ID:                app.ID.String(),
			UserID:            app.UserID.String(),
			Name:              app.Personal.FullName(),
			Email:             app.Personal.Email,
			Status:            string(app.Status),
			WorkAuthorization: workAuthorizationLabel(app.Citizenship),
			UpdatedAt:         app.UpdatedAt,
		})
	}
	return out
}

func toEmployeeProfiles(apps []*models.Application) []EmployeeProfile {
	out := make([]EmployeeProfile, 0, len(apps))
	for _, app := range apps {
		out = append(out, EmployeeProfile{
			UserID:            app.UserID.String(),
			ApplicationID:     app.ID.String(),
			Name:              app.Personal.FullName(),
			PreferredName:     app.Personal.PreferredName,
			ProfilePicture:    app.Personal.ProfilePicture,
			SSN:               privacy.MaskSSN(app.Personal.SSN),
			Email:             app.Personal.Email,
			CellPhone:         app.Personal.CellPhone,
			WorkAuthorization: workAuthorizationLabel(app.Citizenship),
		})
	}
	return out
}

func toVisaResponse(vs models.VisaStatus) VisaResponse {
	resp := VisaResponse{
		UserID:            vs.UserID.String(),
		Name:              vs.Name,
		ApplicationStatus: string(vs.Status),
		Status:            "not_applicable",
		Documents:         toDocumentResponses(vs.Documents),
	}
	if !vs.Applicable {
		return resp
	}
	resp.Status = "active"
	if vs.Expired {
		resp.Status = "expired"
	}
	days := vs.DaysRemaining
	resp.Type = string(vs.Type)
	resp.Label = vs.Label
	resp.StartDate = formatDate(vs.StartDate)
	resp.ExpirationDate = formatDate(vs.ExpirationDate)
	resp.DaysRemaining = &days
	return resp
}

func toVisaResponses(list []models.VisaStatus) []VisaResponse {
	out := make([]VisaResponse, 0, len(list))
	for _, vs := range list {
		out = append(out, toVisaResponse(vs))
	}
	return out
}

func toHistory(events []audit.Event) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(events))
	for _, ev := range events {
		entry := HistoryEntry{
			Action:    string(ev.Action),
			Decision:  ev.Decision,
			Reason:    ev.Reason,
			Client:    ev.Client,
			Timestamp: ev.Timestamp,
		}
		if !ev.ActorID.IsNil() {
			entry.ActorID = ev.ActorID.String()
		}
		out = append(out, entry)
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(schema.DateLayout)
}
