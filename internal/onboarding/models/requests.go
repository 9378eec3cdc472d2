package models

import (
	"strings"
)

// ApplicationForm is the submission payload. Tags cover the schema;
// citizenship and document rules are checked by the validation package.
type ApplicationForm struct {
	FirstName         string          `json:"firstName" validate:"required,notblank,max=100"`
	LastName          string          `json:"lastName" validate:"required,notblank,max=100"`
	MiddleName        string          `json:"middleName,omitempty" validate:"max=100"`
	PreferredName     string          `json:"preferredName,omitempty" validate:"max=100"`
	ProfilePicture    string          `json:"profilePicture,omitempty" validate:"max=2048"`
	Address           AddressForm     `json:"address"`
	CellPhone         string          `json:"cellPhone" validate:"required,phone"`
	WorkPhone         string          `json:"workPhone,omitempty" validate:"omitempty,phone"`
	Email             string          `json:"email" validate:"required,email,max=255"`
	SSN               string          `json:"ssn" validate:"required,ssn"`
	DateOfBirth       string          `json:"dateOfBirth" validate:"required,date"`
	Gender            string          `json:"gender" validate:"required,oneof=male female prefer_not_to_say"`
	CitizenshipStatus CitizenshipForm `json:"citizenshipStatus"`
	Reference         *ContactForm    `json:"reference,omitempty" validate:"omitempty"`
	EmergencyContacts []ContactForm   `json:"emergencyContacts,omitempty" validate:"max=10,dive"`
	Documents         []DocumentForm  `json:"documents,omitempty" validate:"max=20,dive"`
}

type AddressForm struct {
	AddressOne string `json:"addressOne" validate:"required,notblank,max=200"`
	AddressTwo string `json:"addressTwo,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,notblank,max=100"`
	State      string `json:"state" validate:"required,notblank,max=100"`
	ZipCode    string `json:"zipCode" validate:"required,notblank,max=20"`
}

// CitizenshipForm mirrors the wire shape. Which of its fields are legal
// depends on IsPermanentResident.
type CitizenshipForm struct {
	IsPermanentResident    *bool  `json:"isPermanentResident" validate:"required"`
	Type                   string `json:"type,omitempty"`
	WorkAuthorizationType  string `json:"workAuthorizationType,omitempty"`
	WorkAuthorizationOther string `json:"workAuthorizationOther,omitempty"`
	StartDate              string `json:"startDate,omitempty"`
	ExpirationDate         string `json:"expirationDate,omitempty"`
}

type ContactForm struct {
	FirstName    string `json:"firstName" validate:"required,notblank,max=100"`
	LastName     string `json:"lastName" validate:"required,notblank,max=100"`
	MiddleName   string `json:"middleName,omitempty" validate:"max=100"`
	Phone        string `json:"phone" validate:"required,phone"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Relationship string `json:"relationship" validate:"required,notblank,max=100"`
}

// DocumentForm references a file that was uploaded earlier. UploadDate is
// accepted so clients can echo a response back; the stored date wins.
type DocumentForm struct {
	Type       string `json:"type" validate:"required,oneof=driver_license work_authorization opt_receipt other"`
	FileName   string `json:"fileName" validate:"required,notblank,max=255"`
	FileURL    string `json:"fileUrl" validate:"required,notblank,max=2048"`
	UploadDate string `json:"uploadDate,omitempty" validate:"omitempty,date"`
}

// Normalize trims every string and lowercases email addresses.
func (f *ApplicationForm) Normalize() {
	for _, s := range []*string{
		&f.FirstName, &f.LastName, &f.MiddleName, &f.PreferredName, &f.ProfilePicture,
		&f.CellPhone, &f.WorkPhone, &f.SSN, &f.DateOfBirth, &f.Gender,
	} {
		*s = strings.TrimSpace(*s)
	}
	f.Email = normalizeEmail(f.Email)
	f.Address.normalize()
	f.CitizenshipStatus.normalize()
	if f.Reference != nil {
		f.Reference.normalize()
	}
	for i := range f.EmergencyContacts {
		f.EmergencyContacts[i].normalize()
	}
	for i := range f.Documents {
		d := &f.Documents[i]
		d.Type = strings.TrimSpace(d.Type)
		d.FileName = strings.TrimSpace(d.FileName)
		d.FileURL = strings.TrimSpace(d.FileURL)
		d.UploadDate = strings.TrimSpace(d.UploadDate)
	}
}

func (a *AddressForm) normalize() {
	for _, s := range []*string{&a.AddressOne, &a.AddressTwo, &a.City, &a.State, &a.ZipCode} {
		*s = strings.TrimSpace(*s)
	}
}

func (c *CitizenshipForm) normalize() {
	for _, s := range []*string{&c.Type, &c.WorkAuthorizationType, &c.WorkAuthorizationOther, &c.StartDate, &c.ExpirationDate} {
		*s = strings.TrimSpace(*s)
	}
}

func (c *ContactForm) normalize() {
	for _, s := range []*string{&c.FirstName, &c.LastName, &c.MiddleName, &c.Phone, &c.Relationship} {
		*s = strings.TrimSpace(*s)
	}
	c.Email = normalizeEmail(c.Email)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RejectRequest carries the reviewer's feedback.
type RejectRequest struct {
	Feedback string `json:"feedback"`
}

func (r *RejectRequest) Normalize() {
	r.Feedback = strings.TrimSpace(r.Feedback)
}
