package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

// ApplicationModelSuite tests the application record's lifecycle and
// document helpers.
type ApplicationModelSuite struct {
	suite.Suite
	now time.Time
}

func TestApplicationModelSuite(t *testing.T) {
	suite.Run(t, new(ApplicationModelSuite))
}

func (s *ApplicationModelSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ApplicationModelSuite) draft() Draft {
	return Draft{
		Personal:    PersonalInfo{FirstName: "Ada", LastName: "Lovelace"},
		Citizenship: ResidentStatus{Type: ResidentCitizen},
		Documents: []Document{
			{Type: DocumentDriverLicense, FileName: "dl.pdf", FileURL: "/files/u/dl.pdf"},
		},
	}
}

func (s *ApplicationModelSuite) newApplication(status Status) *Application {
	app, err := NewApplication(id.NewApplicationID(), id.NewUserID(), s.draft(), s.draft().Documents, s.now)
	s.Require().NoError(err)
	app.Status = status
	return app
}

func (s *ApplicationModelSuite) TestNewApplication() {
	s.Run("first submission is pending at version one", func() {
		app := s.newApplication(StatusPending)
		s.Equal(StatusPending, app.Status)
		s.Equal(int64(1), app.Version)
		s.Equal(s.now, app.CreatedAt)
		s.Len(app.Documents, 1)
	})

	s.Run("missing citizenship is an invariant violation", func() {
		d := s.draft()
		d.Citizenship = nil
		_, err := NewApplication(id.NewApplicationID(), id.NewUserID(), d, nil, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("nil user is an invariant violation", func() {
		_, err := NewApplication(id.NewApplicationID(), id.UserID{}, s.draft(), nil, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("documents are never nil", func() {
		app, err := NewApplication(id.NewApplicationID(), id.NewUserID(), s.draft(), nil, s.now)
		s.Require().NoError(err)
		s.NotNil(app.Documents)
		s.Empty(app.Documents)
	})
}

// TestLifecycle covers the review transitions and the states that forbid them.
func (s *ApplicationModelSuite) TestLifecycle() {
	s.Run("approve pending succeeds and clears feedback", func() {
		app := s.newApplication(StatusPending)
		app.RejectionFeedback = "old note"
		later := s.now.Add(time.Hour)

		s.Require().NoError(app.Approve(later))
		s.Equal(StatusApproved, app.Status)
		s.Empty(app.RejectionFeedback)
		s.Equal(later, app.UpdatedAt)
	})

	for _, st := range []Status{StatusApproved, StatusRejected} {
		s.Run("approve from "+string(st)+" is an invariant violation", func() {
			app := s.newApplication(st)
			err := app.Approve(s.now)
			s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			s.Equal(st, app.Status)
		})
	}

	s.Run("reject pending stores trimmed feedback", func() {
		app := s.newApplication(StatusPending)
		s.Require().NoError(app.Reject("  Missing signature ", s.now))
		s.Equal(StatusRejected, app.Status)
		s.Equal("Missing signature", app.RejectionFeedback)
	})

	s.Run("reject requires feedback", func() {
		app := s.newApplication(StatusPending)
		err := app.Reject("   ", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("feedback", dErrors.FieldsOf(err)[0].Field)
		s.Equal(StatusPending, app.Status)
	})

	s.Run("reject from rejected is an invariant violation", func() {
		app := s.newApplication(StatusRejected)
		err := app.Reject("again", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("resubmit from rejected returns to pending and keeps feedback text", func() {
		app := s.newApplication(StatusPending)
		s.Require().NoError(app.Reject("Missing signature", s.now))

		s.Require().NoError(app.Resubmit(s.draft(), app.Documents, s.now.Add(time.Minute)))
		s.Equal(StatusPending, app.Status)
		s.Equal("Missing signature", app.RejectionFeedback)
		s.True(app.IsReviewable())
	})

	s.Run("resubmit approved is an invariant violation", func() {
		app := s.newApplication(StatusApproved)
		err := app.Resubmit(s.draft(), nil, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Equal(StatusApproved, app.Status)
	})
}

func (s *ApplicationModelSuite) TestClone() {
	app := s.newApplication(StatusPending)
	app.Reference = &Contact{FirstName: "Grace"}
	app.EmergencyContacts = []Contact{{FirstName: "Alan"}}

	c := app.Clone()
	c.Reference.FirstName = "changed"
	c.EmergencyContacts[0].FirstName = "changed"
	c.Documents[0].FileName = "changed"

	s.Equal("Grace", app.Reference.FirstName)
	s.Equal("Alan", app.EmergencyContacts[0].FirstName)
	s.Equal("dl.pdf", app.Documents[0].FileName)
}

func (s *ApplicationModelSuite) TestMergeDocuments() {
	a := Document{Type: DocumentDriverLicense, FileName: "a", FileURL: "/a"}
	b := Document{Type: DocumentOPTReceipt, FileName: "b", FileURL: "/b"}
	aAgain := Document{Type: DocumentOther, FileName: "a-renamed", FileURL: "/a"}

	s.Run("same url is kept once with the first occurrence", func() {
		merged := MergeDocuments([]Document{a}, []Document{aAgain, b})
		s.Equal([]Document{a, b}, merged)
	})

	s.Run("merging twice is idempotent", func() {
		once := MergeDocuments([]Document{a, b}, []Document{a})
		twice := MergeDocuments(once, []Document{a, b})
		s.Equal(once, twice)
	})

	s.Run("empty input yields an empty slice", func() {
		merged := MergeDocuments()
		s.NotNil(merged)
		s.Empty(merged)
	})
}

func (s *ApplicationModelSuite) TestStage() {
	var staged StagedDocuments
	staged = staged.Stage(StagedDocument{Type: DocumentDriverLicense, FileName: "first.pdf"})
	staged = staged.Stage(StagedDocument{Type: DocumentOPTReceipt, FileName: "opt.pdf"})
	staged = staged.Stage(StagedDocument{Type: DocumentDriverLicense, FileName: "second.pdf"})

	s.Require().Len(staged, 2)
	s.Equal("opt.pdf", staged[0].FileName)
	s.Equal("second.pdf", staged[1].FileName)
}

func (s *ApplicationModelSuite) TestRequiredDocuments() {
	types := func(c Citizenship) []DocumentType {
		var out []DocumentType
		for _, r := range RequiredDocuments(c) {
			out = append(out, r.Type)
		}
		return out
	}

	s.Equal([]DocumentType{DocumentDriverLicense}, types(ResidentStatus{Type: ResidentGreenCard}))
	s.Equal([]DocumentType{DocumentDriverLicense, DocumentOPTReceipt}, types(WorkAuthorization{Type: WorkAuthF1}))
	for _, t := range []WorkAuthorizationType{WorkAuthH1B, WorkAuthH4, WorkAuthL2, WorkAuthOther} {
		s.Equal([]DocumentType{DocumentDriverLicense, DocumentWorkAuthorization}, types(WorkAuthorization{Type: t}), string(t))
	}
}

func (s *ApplicationModelSuite) TestVisaStatus() {
	s.Run("resident is not applicable", func() {
		vs := s.newApplication(StatusApproved).VisaStatus(s.now)
		s.False(vs.Applicable)
		s.Equal("Ada Lovelace", vs.Name)
	})

	s.Run("work authorization reports days remaining", func() {
		app := s.newApplication(StatusApproved)
		app.Citizenship = WorkAuthorization{
			Type:           WorkAuthOther,
			Other:          "TN",
			StartDate:      s.now.AddDate(-1, 0, 0),
			ExpirationDate: s.now.AddDate(0, 0, 10),
		}
		app.Documents = append(app.Documents, Document{Type: DocumentWorkAuthorization, FileURL: "/w"})

		vs := app.VisaStatus(s.now)
		s.True(vs.Applicable)
		s.Equal("TN", vs.Label)
		s.Equal(10, vs.DaysRemaining)
		s.False(vs.Expired)
		s.Len(vs.Documents, 1)
	})

	s.Run("expired visa is flagged", func() {
		w := WorkAuthorization{Type: WorkAuthH1B, ExpirationDate: s.now.AddDate(0, 0, -2)}
		s.Equal(-2, w.DaysRemaining(s.now))
	})
}

func (s *ApplicationModelSuite) TestParseStatus() {
	st, err := ParseStatus("rejected")
	s.Require().NoError(err)
	s.Equal(StatusRejected, st)

	_, err = ParseStatus("never_submitted")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ApplicationModelSuite) TestNormalize() {
	form := ApplicationForm{
		FirstName: "  Ada ",
		Email:     " ADA@Example.COM ",
		Reference: &ContactForm{Email: "X@Y.io "},
	}
	form.Normalize()
	s.Equal("Ada", form.FirstName)
	s.Equal("ada@example.com", form.Email)
	s.Equal("x@y.io", form.Reference.Email)
	s.False(strings.HasSuffix(form.Reference.Email, " "))
}
