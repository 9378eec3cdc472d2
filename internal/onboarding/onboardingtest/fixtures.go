// Package onboardingtest holds submission fixtures shared by onboarding tests.
package onboardingtest

import (
	"strings"

	"onboard/internal/onboarding/models"
)

// CitizenForm returns a complete, valid submission for a citizen. It lists no
// documents, so a driver's license must be staged, listed or already on the
// record.
func CitizenForm() *models.ApplicationForm {
	yes := true
	return &models.ApplicationForm{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address: models.AddressForm{
			AddressOne: "12 St James's Square",
			City:       "London",
			State:      "NY",
			ZipCode:    "10001",
		},
		CellPhone:   "+1 212-555-0100",
		Email:       "ada@example.com",
		SSN:         "123-45-6789",
		DateOfBirth: "1990-12-10",
		Gender:      "female",
		CitizenshipStatus: models.CitizenshipForm{
			IsPermanentResident: &yes,
			Type:                "citizen",
		},
	}
}

// VisaForm returns a valid submission for a work authorization holder of the
// given type. It lists no documents.
func VisaForm(waType string) *models.ApplicationForm {
	no := false
	f := CitizenForm()
	f.CitizenshipStatus = models.CitizenshipForm{
		IsPermanentResident:   &no,
		Type:                  models.CitizenshipTypeWorkAuthorization,
		WorkAuthorizationType: waType,
		StartDate:             "2025-06-01",
		ExpirationDate:        "2028-06-01",
	}
	if waType == string(models.WorkAuthOther) {
		f.CitizenshipStatus.WorkAuthorizationOther = "TN"
	}
	return f
}

// Listed returns a form entry that references a file by URL.
func Listed(t models.DocumentType, name, url string) models.DocumentForm {
	return models.DocumentForm{Type: string(t), FileName: name, FileURL: url}
}

// Staged returns a staged file with small text content.
func Staged(t models.DocumentType, name string) models.StagedDocument {
	return models.StagedDocument{Type: t, FileName: name, Content: strings.NewReader("%PDF-1.4 " + name)}
}
