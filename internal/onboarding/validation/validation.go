// Package validation checks onboarding submissions: the form schema, the
// citizenship rules for each variant and the required documents.
package validation

import (
	"time"

	"onboard/internal/onboarding/models"
	dErrors "onboard/pkg/domain-errors"
	schema "onboard/pkg/validation"
)

const citizenshipPrefix = "citizenshipStatus."

// CheckForm validates the schema and citizenship of form and converts it into
// a Draft. It performs no I/O. All field failures are returned together.
// Listed documents are copied unverified and without an upload date; the
// caller resolves them before they count.
func CheckForm(form *models.ApplicationForm, now time.Time) (models.Draft, error) {
	fields := schema.Fields(form)

	var citizenship models.Citizenship
	if form.CitizenshipStatus.IsPermanentResident != nil {
		var cFields []dErrors.FieldError
		citizenship, cFields = CheckCitizenship(form.CitizenshipStatus)
		fields = append(fields, cFields...)
	}

	dob, err := schema.ParseDate(form.DateOfBirth)
	if err == nil && !dob.Before(now) {
		fields = append(fields, dErrors.FieldError{Field: "dateOfBirth", Message: "must be in the past"})
	}

	if len(fields) > 0 {
		return models.Draft{}, dErrors.NewValidation("application is invalid", fields...)
	}

	draft := models.Draft{
		Personal: models.PersonalInfo{
			FirstName:      form.FirstName,
			LastName:       form.LastName,
			MiddleName:     form.MiddleName,
			PreferredName:  form.PreferredName,
			ProfilePicture: form.ProfilePicture,
			Address: models.Address{
				AddressOne: form.Address.AddressOne,
				AddressTwo: form.Address.AddressTwo,
				City:       form.Address.City,
				State:      form.Address.State,
				ZipCode:    form.Address.ZipCode,
			},
			CellPhone:   form.CellPhone,
			WorkPhone:   form.WorkPhone,
			Email:       form.Email,
			SSN:         form.SSN,
			DateOfBirth: dob,
			Gender:      models.Gender(form.Gender),
		},
		Citizenship:       citizenship,
		EmergencyContacts: make([]models.Contact, 0, len(form.EmergencyContacts)),
		Documents:         make([]models.Document, 0, len(form.Documents)),
	}
	if form.Reference != nil {
		ref := toContact(*form.Reference)
		draft.Reference = &ref
	}
	for _, c := range form.EmergencyContacts {
		draft.EmergencyContacts = append(draft.EmergencyContacts, toContact(c))
	}
	for _, d := range form.Documents {
		draft.Documents = append(draft.Documents, models.Document{
			Type:     models.DocumentType(d.Type),
			FileName: d.FileName,
			FileURL:  d.FileURL,
		})
	}
	return draft, nil
}

// CheckCitizenship resolves the wire form into exactly one variant. Fields that
// do not belong to the chosen variant are dropped.
func CheckCitizenship(form models.CitizenshipForm) (models.Citizenship, []dErrors.FieldError) {
	if form.IsPermanentResident == nil {
		return nil, []dErrors.FieldError{{Field: citizenshipPrefix + "isPermanentResident", Message: "is required"}}
	}

	if *form.IsPermanentResident {
		switch t := models.ResidentType(form.Type); t {
		case models.ResidentGreenCard, models.ResidentCitizen:
			return models.ResidentStatus{Type: t}, nil
		default:
			return nil, []dErrors.FieldError{{Field: citizenshipPrefix + "type", Message: "must be one of [green_card citizen]"}}
		}
	}

	var fields []dErrors.FieldError
	if form.Type != "" && form.Type != models.CitizenshipTypeWorkAuthorization {
		fields = append(fields, dErrors.FieldError{Field: citizenshipPrefix + "type", Message: "must be work_authorization"})
	}

	wa := models.WorkAuthorization{Type: models.WorkAuthorizationType(form.WorkAuthorizationType)}
	switch {
	case form.WorkAuthorizationType == "":
		fields = append(fields, dErrors.FieldError{Field: citizenshipPrefix + "workAuthorizationType", Message: "is required"})
	case !wa.Type.IsValid():
		fields = append(fields, dErrors.FieldError{Field: citizenshipPrefix + "workAuthorizationType", Message: "must be one of [H1-B H4 L2 F1 other]"})
	case wa.Type == models.WorkAuthOther:
		if form.WorkAuthorizationOther == "" {
			fields = append(fields, dErrors.FieldError{Field: citizenshipPrefix + "workAuthorizationOther", Message: "is required"})
		}
		wa.Other = form.WorkAuthorizationOther
	}

	var startOK, expOK bool
	wa.StartDate, startOK = requireDate(&fields, "startDate", form.StartDate)
	wa.ExpirationDate, expOK = requireDate(&fields, "expirationDate", form.ExpirationDate)
	if startOK && expOK && !wa.ExpirationDate.After(wa.StartDate) {
		fields = append(fields, dErrors.FieldError{Field: citizenshipPrefix + "expirationDate", Message: "must be after startDate"})
	}

	if len(fields) > 0 {
		return nil, fields
	}
	return wa, nil
}

func requireDate(fields *[]dErrors.FieldError, name, value string) (time.Time, bool) {
	if value == "" {
		*fields = append(*fields, dErrors.FieldError{Field: citizenshipPrefix + name, Message: "is required"})
		return time.Time{}, false
	}
	t, err := schema.ParseDate(value)
	if err != nil {
		*fields = append(*fields, dErrors.FieldError{Field: citizenshipPrefix + name, Message: "must be a date (YYYY-MM-DD)"})
		return time.Time{}, false
	}
	return t, true
}

// CheckDocuments enforces the required documents for c. A requirement is met
// by a document of that type in any of the sets: persisted on the record,
// listed in the form and resolved to a stored file, or staged for upload. Failures are attached to the
// "documents" field.
func CheckDocuments(c models.Citizenship, persisted, listed []models.Document, staged models.StagedDocuments) error {
	present := make(map[models.DocumentType]bool)
	for _, set := range [][]models.Document{persisted, listed} {
		for _, d := range set {
			present[d.Type] = true
		}
	}
	for _, d := range staged {
		present[d.Type] = true
	}

	var fields []dErrors.FieldError
	for _, req := range models.RequiredDocuments(c) {
		if !present[req.Type] {
			fields = append(fields, dErrors.FieldError{Field: "documents", Message: req.Message})
		}
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields[0].Message, fields...)
	}
	return nil
}

func toContact(c models.ContactForm) models.Contact {
	return models.Contact{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		MiddleName:   c.MiddleName,
		Phone:        c.Phone,
		Email:        c.Email,
		Relationship: c.Relationship,
	}
}
