package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"onboard/internal/audit"
	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/onboardingtest"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

func (s *ServiceSuite) TestSubmitValidation() {
	s.Run("non resident without visa type fails before any I/O", func() {
		form := onboardingtest.VisaForm("")
		staged := models.StagedDocuments{onboardingtest.Staged(models.DocumentDriverLicense, "dl.pdf")}

		_, err := s.service.Submit(s.ctx, s.userID, form, staged)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("citizenshipStatus.workAuthorizationType", dErrors.FieldsOf(err)[0].Field)
	})

	s.Run("unknown staged type fails before any I/O", func() {
		staged := models.StagedDocuments{onboardingtest.Staged("passport", "p.pdf")}
		_, err := s.service.Submit(s.ctx, s.userID, onboardingtest.CitizenForm(), staged)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing driver license in every source fails without upload", func() {
		s.expectGuard()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Submit(s.ctx, s.userID, onboardingtest.CitizenForm(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal([]dErrors.FieldError{{Field: "documents", Message: "Driver's license is required"}}, dErrors.FieldsOf(err))
	})

	s.Run("F1 without OPT receipt fails without upload", func() {
		form := onboardingtest.VisaForm("F1")
		staged := models.StagedDocuments{onboardingtest.Staged(models.DocumentDriverLicense, "dl.pdf")}
		s.expectGuard()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Submit(s.ctx, s.userID, form, staged)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("OPT Receipt is required for F1 visa holders", dErrors.FieldsOf(err)[0].Message)
	})
}

func (s *ServiceSuite) TestSubmitListedDocumentsMustResolve() {
	for name, url := range map[string]string{
		"invented url":            "https://attacker.example/not-a-file.pdf",
		"another employee's file": "/files/" + id.NewUserID().String() + "/license.pdf",
	} {
		s.Run(name+" does not satisfy the license rule", func() {
			form := onboardingtest.CitizenForm()
			form.Documents = []models.DocumentForm{onboardingtest.Listed(models.DocumentDriverLicense, "license.pdf", url)}
			s.expectGuard()
			s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
			s.mockUp.EXPECT().Lookup(gomock.Any(), s.userID, url).Return(models.Document{}, sentinel.ErrNotFound)

			_, err := s.service.Submit(s.ctx, s.userID, form, nil)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal([]dErrors.FieldError{{Field: "documents", Message: "license.pdf is not a file you uploaded"}}, dErrors.FieldsOf(err))
		})
	}

	s.Run("unreachable file storage is unavailable", func() {
		form := onboardingtest.CitizenForm()
		form.Documents = []models.DocumentForm{onboardingtest.Listed(models.DocumentDriverLicense, "license.pdf", "/files/x/license.pdf")}
		s.expectGuard()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
		s.mockUp.EXPECT().Lookup(gomock.Any(), s.userID, "/files/x/license.pdf").Return(models.Document{}, errors.New("disk gone"))

		_, err := s.service.Submit(s.ctx, s.userID, form, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *ServiceSuite) TestSubmitFirstTime() {
	s.Run("citizen listing an own upload is persisted pending with the stored date", func() {
		form := onboardingtest.CitizenForm()
		s.expectGuard()
		s.expectSideEffects()
		license := s.listOwnLicense(form)
		form.Documents[0].UploadDate = "1999-01-01"
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, app *models.Application) error {
				s.Equal(models.StatusPending, app.Status)
				s.Equal(int64(1), app.Version)
				return nil
			})

		app, err := s.service.Submit(s.ctx, s.userID, form, nil)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, app.Status)
		s.Equal(s.now, app.CreatedAt)
		s.Equal([]models.Document{license}, app.Documents)
	})

	s.Run("F1 uploads staged files in order and appends them", func() {
		form := onboardingtest.VisaForm("F1")
		dl := onboardingtest.Staged(models.DocumentDriverLicense, "dl.pdf")
		opt := onboardingtest.Staged(models.DocumentOPTReceipt, "opt.pdf")

		s.expectGuard()
		s.expectSideEffects()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
		gomock.InOrder(
			s.mockUp.EXPECT().Upload(gomock.Any(), s.userID, dl).Return(s.uploaded(dl), nil),
			s.mockUp.EXPECT().Upload(gomock.Any(), s.userID, opt).Return(s.uploaded(opt), nil),
		)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		app, err := s.service.Submit(s.ctx, s.userID, form, models.StagedDocuments{dl, opt})
		s.Require().NoError(err)
		s.Require().Len(app.Documents, 2)
		s.Equal(models.DocumentDriverLicense, app.Documents[0].Type)
		s.Equal(models.DocumentOPTReceipt, app.Documents[1].Type)
		s.IsType(models.WorkAuthorization{}, app.Citizenship)
	})

	s.Run("lost create race is a conflict", func() {
		form := onboardingtest.CitizenForm()
		s.expectGuard()
		s.listOwnLicense(form)
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.Submit(s.ctx, s.userID, form, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestSubmitUploadFailure() {
	form := onboardingtest.VisaForm("H1-B")
	dl := onboardingtest.Staged(models.DocumentDriverLicense, "dl.pdf")
	wa := onboardingtest.Staged(models.DocumentWorkAuthorization, "h1b.pdf")

	s.expectGuard()
	s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
	gomock.InOrder(
		s.mockUp.EXPECT().Upload(gomock.Any(), s.userID, dl).Return(s.uploaded(dl), nil),
		s.mockUp.EXPECT().Upload(gomock.Any(), s.userID, wa).Return(models.Document{}, errors.New("503 from storage")),
	)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, ev audit.Event) error {
		s.Equal(audit.ActionUploadOrphaned, ev.Action)
		s.Equal(s.uploaded(dl).FileURL, ev.Subject)
		return nil
	})

	_, err := s.service.Submit(s.ctx, s.userID, form, models.StagedDocuments{dl, wa})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUploadFailed))
	s.Contains(err.Error(), "h1b.pdf")
}

func (s *ServiceSuite) TestSubmitRefusedFileKeepsValidationCode() {
	form := onboardingtest.CitizenForm()
	dl := onboardingtest.Staged(models.DocumentDriverLicense, "dl.txt")

	s.expectGuard()
	s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
	s.mockUp.EXPECT().Upload(gomock.Any(), s.userID, dl).
		Return(models.Document{}, dErrors.NewValidation("only PDF, PNG and JPEG files are accepted"))

	_, err := s.service.Submit(s.ctx, s.userID, form, models.StagedDocuments{dl})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitPersistFailureReportsOrphans() {
	dl := onboardingtest.Staged(models.DocumentDriverLicense, "dl.pdf")
	form := onboardingtest.CitizenForm()

	s.expectGuard()
	s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
	s.mockUp.EXPECT().Upload(gomock.Any(), s.userID, dl).Return(s.uploaded(dl), nil)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, ev audit.Event) error {
		s.Equal(audit.ActionUploadOrphaned, ev.Action)
		s.Equal(string(dErrors.CodePersistFailed), ev.Reason)
		return nil
	})

	_, err := s.service.Submit(s.ctx, s.userID, form, models.StagedDocuments{dl})
	s.True(dErrors.HasCode(err, dErrors.CodePersistFailed))
}

func (s *ServiceSuite) TestResubmit() {
	license := models.Document{
		Type:       models.DocumentDriverLicense,
		FileName:   "license.pdf",
		FileURL:    "/files/" + s.userID.String() + "/license.pdf",
		UploadDate: s.now.Add(-48 * time.Hour),
	}

	s.Run("rejected record returns to pending without re-upload", func() {
		current := s.existing(models.StatusRejected, license)
		current.RejectionFeedback = "Missing signature"

		s.expectGuard()
		s.expectSideEffects()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(current, nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, app *models.Application) error {
			s.Equal(int64(3), app.Version, "update is conditional on the version read")
			app.Version++
			return nil
		})

		form := onboardingtest.CitizenForm()
		form.Documents = []models.DocumentForm{onboardingtest.Listed(models.DocumentDriverLicense, "renamed.pdf", license.FileURL)}

		app, err := s.service.Submit(s.ctx, s.userID, form, nil)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, app.Status)
		s.Equal("Missing signature", app.RejectionFeedback)
		s.Equal(int64(4), app.Version)
		s.Equal([]models.Document{license}, app.Documents, "a url already on the record keeps the stored entry")
	})

	s.Run("persisted license satisfies the rule when the form omits it", func() {
		form := onboardingtest.CitizenForm()

		s.expectGuard()
		s.expectSideEffects()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(s.existing(models.StatusRejected, license), nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		app, err := s.service.Submit(s.ctx, s.userID, form, nil)
		s.Require().NoError(err)
		s.Equal([]models.Document{license}, app.Documents)
	})

	s.Run("approved record cannot be resubmitted", func() {
		s.expectGuard()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(s.existing(models.StatusApproved, license), nil)

		_, err := s.service.Submit(s.ctx, s.userID, onboardingtest.CitizenForm(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("version conflict surfaces as conflict", func() {
		s.expectGuard()
		s.mockStore.EXPECT().FindByUserID(gomock.Any(), s.userID).Return(s.existing(models.StatusPending, license), nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := s.service.Submit(s.ctx, s.userID, onboardingtest.CitizenForm(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestSubmitInFlight() {
	s.Run("held guard rejects a duplicate submission", func() {
		s.mockGuard.EXPECT().Acquire(gomock.Any(), s.userID.String()).Return("", sentinel.ErrConflict)

		_, err := s.service.Submit(s.ctx, s.userID, onboardingtest.CitizenForm(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unreachable guard is unavailable", func() {
		s.mockGuard.EXPECT().Acquire(gomock.Any(), s.userID.String()).Return("", sentinel.ErrUnavailable)

		_, err := s.service.Submit(s.ctx, s.userID, onboardingtest.CitizenForm(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
