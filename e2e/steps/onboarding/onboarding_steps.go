//go:build e2e

package onboarding

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/onboardingtest"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path, actor string, body any) error
	POSTMultipart(path, actor string, application any, files map[string][]byte) error
	GET(path, actor string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	SetApplicationID(actor, applicationID string)
	ApplicationID(actor string) string
}

var pdf = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

// RegisterSteps registers onboarding workflow step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &onboardingSteps{tc: tc}

	ctx.Step(`^"([^"]*)" submits a citizen application with a driver license file$`, steps.submitCitizen)
	ctx.Step(`^"([^"]*)" submits an? "([^"]*)" application with only a driver license file$`, steps.submitVisaHolder)
	ctx.Step(`^"([^"]*)" submits a citizen application listing the file "([^"]*)"$`, steps.submitListing)
	ctx.Step(`^"([^"]*)" resubmits the application without new files$`, steps.resubmit)
	ctx.Step(`^"([^"]*)" views their application$`, steps.viewOwn)
	ctx.Step(`^"([^"]*)" lists pending applications$`, steps.listPending)
	ctx.Step(`^HR rejects the application of "([^"]*)" with feedback "([^"]*)"$`, steps.reject)
	ctx.Step(`^HR approves the application of "([^"]*)"$`, steps.approve)
}

type onboardingSteps struct {
	tc TestContext
}

func (s *onboardingSteps) submitCitizen(ctx context.Context, actor string) error {
	return s.submit(actor, onboardingtest.CitizenForm(), map[string][]byte{string(models.DocumentDriverLicense): pdf})
}

func (s *onboardingSteps) submitVisaHolder(ctx context.Context, actor, visaType string) error {
	return s.submit(actor, onboardingtest.VisaForm(visaType), map[string][]byte{string(models.DocumentDriverLicense): pdf})
}

func (s *onboardingSteps) resubmit(ctx context.Context, actor string) error {
	return s.tc.POST("/onboarding/application", actor, onboardingtest.CitizenForm())
}

func (s *onboardingSteps) submitListing(ctx context.Context, actor, fileURL string) error {
	form := onboardingtest.CitizenForm()
	form.Documents = []models.DocumentForm{onboardingtest.Listed(models.DocumentDriverLicense, "license.pdf", fileURL)}
	return s.tc.POST("/onboarding/application", actor, form)
}

func (s *onboardingSteps) submit(actor string, form *models.ApplicationForm, files map[string][]byte) error {
	if err := s.tc.POSTMultipart("/onboarding/application", actor, form, files); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status >= 300 {
		return nil
	}
	appID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SetApplicationID(actor, fmt.Sprint(appID))
	return nil
}

func (s *onboardingSteps) viewOwn(ctx context.Context, actor string) error {
	return s.tc.GET("/onboarding/application", actor)
}

func (s *onboardingSteps) listPending(ctx context.Context, actor string) error {
	return s.tc.GET("/hr/applications?status=pending", actor)
}

func (s *onboardingSteps) reject(ctx context.Context, owner, feedback string) error {
	appID, err := s.applicationOf(owner)
	if err != nil {
		return err
	}
	return s.tc.POST("/hr/applications/"+appID+"/reject", "HR", models.RejectRequest{Feedback: feedback})
}

func (s *onboardingSteps) approve(ctx context.Context, owner string) error {
	appID, err := s.applicationOf(owner)
	if err != nil {
		return err
	}
	return s.tc.POST("/hr/applications/"+appID+"/approve", "HR", nil)
}

func (s *onboardingSteps) applicationOf(owner string) (string, error) {
	appID := s.tc.ApplicationID(owner)
	if appID == "" {
		return "", fmt.Errorf("%s has no submitted application", owner)
	}
	return appID, nil
}
