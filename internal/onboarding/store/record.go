package store

import (
	"fmt"
	"time"

	"onboard/internal/onboarding/models"
)

// formRecord is the stored shape of the applicant-provided content. Postgres
// keeps it in a JSONB column; Mongo inlines it into the document.
type formRecord struct {
	FirstName         string            `json:"firstName" bson:"firstName"`
	LastName          string            `json:"lastName" bson:"lastName"`
	MiddleName        string            `json:"middleName,omitempty" bson:"middleName,omitempty"`
	PreferredName     string            `json:"preferredName,omitempty" bson:"preferredName,omitempty"`
	ProfilePicture    string            `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	Address           addressRecord     `json:"address" bson:"address"`
	CellPhone         string            `json:"cellPhone" bson:"cellPhone"`
	WorkPhone         string            `json:"workPhone,omitempty" bson:"workPhone,omitempty"`
	Email             string            `json:"email" bson:"email"`
	SSN               string            `json:"ssn" bson:"ssn"`
	DateOfBirth       time.Time         `json:"dateOfBirth" bson:"dateOfBirth"`
	Gender            string            `json:"gender" bson:"gender"`
	CitizenshipStatus citizenshipRecord `json:"citizenshipStatus" bson:"citizenshipStatus"`
	Reference         *contactRecord    `json:"reference,omitempty" bson:"reference,omitempty"`
	EmergencyContacts []contactRecord   `json:"emergencyContacts" bson:"emergencyContacts"`
}

type addressRecord struct {
	AddressOne string `json:"addressOne" bson:"addressOne"`
	AddressTwo string `json:"addressTwo,omitempty" bson:"addressTwo,omitempty"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	ZipCode    string `json:"zipCode" bson:"zipCode"`
}

type contactRecord struct {
	FirstName    string `json:"firstName" bson:"firstName"`
	LastName     string `json:"lastName" bson:"lastName"`
	MiddleName   string `json:"middleName,omitempty" bson:"middleName,omitempty"`
	Phone        string `json:"phone" bson:"phone"`
	Email        string `json:"email" bson:"email"`
	Relationship string `json:"relationship" bson:"relationship"`
}

// citizenshipRecord flattens the citizenship variants into the stored shape.
type citizenshipRecord struct {
	IsPermanentResident    bool       `json:"isPermanentResident" bson:"isPermanentResident"`
	Type                   string     `json:"type" bson:"type"`
	WorkAuthorizationType  string     `json:"workAuthorizationType,omitempty" bson:"workAuthorizationType,omitempty"`
	WorkAuthorizationOther string     `json:"workAuthorizationOther,omitempty" bson:"workAuthorizationOther,omitempty"`
	StartDate              *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	ExpirationDate         *time.Time `json:"expirationDate,omitempty" bson:"expirationDate,omitempty"`
}

type documentRecord struct {
	Type       string    `json:"type" bson:"type"`
	FileName   string    `json:"fileName" bson:"fileName"`
	FileURL    string    `json:"fileUrl" bson:"fileUrl"`
	UploadDate time.Time `json:"uploadDate" bson:"uploadDate"`
}

func toFormRecord(app *models.Application) formRecord {
	p := app.Personal
	rec := formRecord{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		MiddleName:     p.MiddleName,
		PreferredName:  p.PreferredName,
		ProfilePicture: p.ProfilePicture,
		Address: addressRecord{
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
		DateOfBirth:       p.DateOfBirth,
		Gender:            string(p.Gender),
		CitizenshipStatus: toCitizenshipRecord(app.Citizenship),
		EmergencyContacts: make([]contactRecord, 0, len(app.EmergencyContacts)),
	}
	if app.Reference != nil {
		ref := toContactRecord(*app.Reference)
		rec.Reference = &ref
	}
	for _, c := range app.EmergencyContacts {
		rec.EmergencyContacts = append(rec.EmergencyContacts, toContactRecord(c))
	}
	return rec
}

// applyTo copies the stored content onto app.
func (r formRecord) applyTo(app *models.Application) error {
	citizenship, err := r.CitizenshipStatus.toModel()
	if err != nil {
		return err
	}
	app.Personal = models.PersonalInfo{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		MiddleName:     r.MiddleName,
		PreferredName:  r.PreferredName,
		ProfilePicture: r.ProfilePicture,
		Address: models.Address{
			AddressOne: r.Address.AddressOne,
			AddressTwo: r.Address.AddressTwo,
			City:       r.Address.City,
			State:      r.Address.State,
			ZipCode:    r.Address.ZipCode,
		},
		CellPhone:   r.CellPhone,
		WorkPhone:   r.WorkPhone,
		Email:       r.Email,
		SSN:         r.SSN,
		DateOfBirth: r.DateOfBirth.UTC(),
		Gender:      models.Gender(r.Gender),
	}
	app.Citizenship = citizenship
	app.Reference = nil
	if r.Reference != nil {
		ref := r.Reference.toModel()
		app.Reference = &ref
	}
	app.EmergencyContacts = make([]models.Contact, 0, len(r.EmergencyContacts))
	for _, c := range r.EmergencyContacts {
		app.EmergencyContacts = append(app.EmergencyContacts, c.toModel())
	}
	return nil
}

func toContactRecord(c models.Contact) contactRecord {
	return contactRecord{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		MiddleName:   c.MiddleName,
		Phone:        c.Phone,
		Email:        c.Email,
		Relationship: c.Relationship,
	}
}

func (c contactRecord) toModel() models.Contact {
	return models.Contact{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		MiddleName:   c.MiddleName,
		Phone:        c.Phone,
		Email:        c.Email,
		Relationship: c.Relationship,
	}
}

func toCitizenshipRecord(c models.Citizenship) citizenshipRecord {
	switch v := c.(type) {
	case models.ResidentStatus:
		return citizenshipRecord{IsPermanentResident: true, Type: string(v.Type)}
	case models.WorkAuthorization:
		start, exp := v.StartDate, v.ExpirationDate
		return citizenshipRecord{
			Type:                   models.CitizenshipTypeWorkAuthorization,
			WorkAuthorizationType:  string(v.Type),
			WorkAuthorizationOther: v.Other,
			StartDate:              &start,
			ExpirationDate:         &exp,
		}
	default:
		return citizenshipRecord{}
	}
}

func (r citizenshipRecord) toModel() (models.Citizenship, error) {
	if r.IsPermanentResident {
		return models.ResidentStatus{Type: models.ResidentType(r.Type)}, nil
	}
	if r.WorkAuthorizationType == "" {
		return nil, fmt.Errorf("stored citizenship has no work authorization type")
	}
	wa := models.WorkAuthorization{
		Type:  models.WorkAuthorizationType(r.WorkAuthorizationType),
		Other: r.WorkAuthorizationOther,
	}
	if r.StartDate != nil {
		wa.StartDate = r.StartDate.UTC()
	}
	if r.ExpirationDate != nil {
		wa.ExpirationDate = r.ExpirationDate.UTC()
	}
	return wa, nil
}

func toDocumentRecords(docs []models.Document) []documentRecord {
	out := make([]documentRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentRecord{
			Type:       string(d.Type),
			FileName:   d.FileName,
			FileURL:    d.FileURL,
			UploadDate: d.UploadDate,
		})
	}
	return out
}

func fromDocumentRecords(recs []documentRecord) []models.Document {
	out := make([]models.Document, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.Document{
			Type:       models.DocumentType(r.Type),
			FileName:   r.FileName,
			FileURL:    r.FileURL,
			UploadDate: r.UploadDate.UTC(),
		})
	}
	return out
}
