package store

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"onboard/internal/onboarding/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
	"onboard/pkg/testutil"
)

type applicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	Update(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Application, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Application, error)
}

// StoreContractSuite is the behaviour every application store shares. Backend
// suites embed it and set store in SetupTest.
type StoreContractSuite struct {
	suite.Suite
	store applicationStore
	ctx   context.Context
	base  time.Time
}

// resetContract is called from each backend's SetupTest.
func (s *StoreContractSuite) resetContract(store applicationStore) {
	s.store = store
	s.ctx = context.Background()
	s.base = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
}

// newApplication builds a visa holder record; times are millisecond precise
// so every backend round-trips them exactly.
func (s *StoreContractSuite) newApplication(updated time.Time) *models.Application {
	draft := models.Draft{
		Personal: models.PersonalInfo{
			FirstName:   "Grace",
			LastName:    "Hopper",
			Address:     models.Address{AddressOne: "1 Navy Way", City: "Arlington", State: "VA", ZipCode: "22202"},
			CellPhone:   "+1 703 555 0100",
			Email:       "grace@example.com",
			SSN:         "123-45-6789",
			DateOfBirth: time.Date(1990, 12, 9, 0, 0, 0, 0, time.UTC),
			Gender:      models.GenderFemale,
		},
		Citizenship: models.WorkAuthorization{
			Type:           models.WorkAuthOther,
			Other:          "TN",
			StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			ExpirationDate: time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Reference:         &models.Contact{FirstName: "Alan", LastName: "Turing", Phone: "+44 20 5550 0100", Email: "alan@example.com", Relationship: "mentor"},
		EmergencyContacts: []models.Contact{{FirstName: "Mary", LastName: "Hopper", Phone: "+1 703 555 0101", Email: "m@example.com", Relationship: "sister"}},
	}
	docs := []models.Document{
		{Type: models.DocumentDriverLicense, FileName: "dl.pdf", FileURL: "/files/g/dl.pdf", UploadDate: s.base},
		{Type: models.DocumentWorkAuthorization, FileName: "tn.pdf", FileURL: "/files/g/tn.pdf", UploadDate: s.base},
	}
	app, err := models.NewApplication(id.NewApplicationID(), id.NewUserID(), draft, docs, s.base)
	s.Require().NoError(err)
	app.UpdatedAt = updated
	return app
}

func (s *StoreContractSuite) TestCreateAndFind() {
	s.Run("round trips every field", func() {
		app := s.newApplication(s.base)
		s.Require().NoError(s.store.Create(s.ctx, app))

		byID, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(app, byID)

		byUser, err := s.store.FindByUserID(s.ctx, app.UserID)
		s.Require().NoError(err)
		s.Equal(app.ID, byUser.ID)
	})

	s.Run("resident citizenship round trips", func() {
		app := s.newApplication(s.base)
		app.Citizenship = models.ResidentStatus{Type: models.ResidentGreenCard}
		s.Require().NoError(s.store.Create(s.ctx, app))

		got, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.ResidentStatus{Type: models.ResidentGreenCard}, got.Citizenship)
	})

	s.Run("second record for the same user is rejected", func() {
		app := s.newApplication(s.base)
		s.Require().NoError(s.store.Create(s.ctx, app))

		dup := s.newApplication(s.base)
		dup.UserID = app.UserID
		s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyUsed)
	})

	s.Run("missing record is not found", func() {
		_, err := s.store.FindByID(s.ctx, id.NewApplicationID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByUserID(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreContractSuite) TestVersionedUpdate() {
	s.Run("update bumps version and persists the transition", func() {
		app := s.newApplication(s.base)
		s.Require().NoError(s.store.Create(s.ctx, app))

		s.Require().NoError(app.Reject("Missing signature", s.base.Add(time.Minute)))
		s.Require().NoError(s.store.Update(s.ctx, app))
		s.Equal(int64(2), app.Version)

		got, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, got.Status)
		s.Equal("Missing signature", got.RejectionFeedback)
		s.Equal(int64(2), got.Version)
	})

	s.Run("stale version conflicts", func() {
		app := s.newApplication(s.base)
		s.Require().NoError(s.store.Create(s.ctx, app))

		first, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		second, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)

		s.Require().NoError(first.Approve(s.base))
		s.Require().NoError(s.store.Update(s.ctx, first))

		s.Require().NoError(second.Reject("late", s.base))
		s.ErrorIs(s.store.Update(s.ctx, second), sentinel.ErrConflict)

		got, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, got.Status)
	})

	s.Run("unknown record is not found", func() {
		app := s.newApplication(s.base)
		s.ErrorIs(s.store.Update(s.ctx, app), sentinel.ErrNotFound)
	})

	s.Run("concurrent decisions admit exactly one writer", func() {
		app := s.newApplication(s.base)
		s.Require().NoError(s.store.Create(s.ctx, app))

		res := testutil.RunConcurrent(8, func(int) error {
			loaded, err := s.store.FindByID(s.ctx, app.ID)
			if err != nil {
				return err
			}
			if loaded.Version != 1 {
				return sentinel.ErrConflict
			}
			if err := loaded.Approve(s.base); err != nil {
				return err
			}
			return s.store.Update(s.ctx, loaded)
		})
		s.Equal(int32(1), res.Successes)
		s.Equal(int32(7), res.Conflicts+res.Errors)
	})
}

func (s *StoreContractSuite) TestListByStatus() {
	older := s.newApplication(s.base.Add(time.Hour))
	newer := s.newApplication(s.base.Add(2 * time.Hour))
	approved := s.newApplication(s.base.Add(3 * time.Hour))
	approved.Status = models.StatusApproved
	for _, app := range []*models.Application{older, newer, approved} {
		s.Require().NoError(s.store.Create(s.ctx, app))
	}

	pending, err := s.store.ListByStatus(s.ctx, models.StatusPending)
	s.Require().NoError(err)
	var ids []id.ApplicationID
	for _, app := range pending {
		if app.ID == older.ID || app.ID == newer.ID {
			ids = append(ids, app.ID)
		}
		s.Equal(models.StatusPending, app.Status)
	}
	s.Equal([]id.ApplicationID{newer.ID, older.ID}, ids)

	rejected, err := s.store.ListByStatus(s.ctx, models.StatusRejected)
	s.Require().NoError(err)
	s.NotNil(rejected)
}
