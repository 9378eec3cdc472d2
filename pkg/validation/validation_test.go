package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

type contact struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type sample struct {
	Email    string    `json:"email" validate:"required,email"`
	SSN      string    `json:"ssn" validate:"required,ssn"`
	Born     string    `json:"dateOfBirth" validate:"required,date"`
	Name     string    `json:"name" validate:"notblank"`
	Contacts []contact `json:"emergencyContacts" validate:"dive"`
}

func valid() sample {
	return sample{
		Email:    "ada@example.com",
		SSN:      "123-45-6789",
		Born:     "1990-04-12",
		Name:     "Ada",
		Contacts: []contact{{Phone: "+1 (555) 010-2000"}},
	}
}

func TestFieldsPassesValidInput(t *testing.T) {
	in := valid()
	assert.Empty(t, Fields(&in))
	assert.NoError(t, Validate(&in))
}

func TestFieldsUsesJSONPaths(t *testing.T) {
	in := valid()
	in.Email = "nope"
	in.Contacts = append(in.Contacts, contact{Phone: "12"})

	fields := Fields(&in)

	require.Len(t, fields, 2)
	assert.Equal(t, dErrors.FieldError{Field: "email", Message: "must be a valid email"}, fields[0])
	assert.Equal(t, "emergencyContacts[1].phone", fields[1].Field)
	assert.Equal(t, "must be a valid phone number", fields[1].Message)
}

func TestCustomTags(t *testing.T) {
	cases := map[string]func(*sample){
		"ssn too short":   func(s *sample) { s.SSN = "123-45-678" },
		"ssn letters":     func(s *sample) { s.SSN = "abc-de-fghi" },
		"date wrong form": func(s *sample) { s.Born = "12/04/1990" },
		"blank name":      func(s *sample) { s.Name = "   " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid()
			mutate(&in)
			err := Validate(&in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	t.Run("ssn without separators", func(t *testing.T) {
		in := valid()
		in.SSN = "123456789"
		assert.NoError(t, Validate(&in))
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2027-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), d)

	ts, err := ParseDate("2027-01-31T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}
