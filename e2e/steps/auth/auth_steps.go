//go:build e2e

package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path, actor string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetToken(actor, token string)
	HRCredentials() (string, string)
}

const employeePassword = "employee-password-e2e"

// RegisterSteps registers account step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^a new employee "([^"]*)" is logged in$`, steps.newEmployeeLoggedIn)
	ctx.Step(`^HR is logged in$`, steps.hrLoggedIn)
}

type authSteps struct {
	tc TestContext
}

// newEmployeeLoggedIn registers a fresh account so scenarios can rerun
// against the same server.
func (s *authSteps) newEmployeeLoggedIn(ctx context.Context, actor string) error {
	email := fmt.Sprintf("%s+%s@example.com", actor, uuid.NewString()[:8])
	creds := map[string]string{"email": email, "password": employeePassword}
	if err := s.tc.POST("/auth/register", "", creds); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != http.StatusCreated {
		return fmt.Errorf("register %s: status %d: %s", email, status, s.tc.GetLastResponseBody())
	}
	return s.login(actor, email, employeePassword)
}

func (s *authSteps) hrLoggedIn(ctx context.Context) error {
	email, password := s.tc.HRCredentials()
	return s.login("HR", email, password)
}

func (s *authSteps) login(actor, email, password string) error {
	if err := s.tc.POST("/auth/login", "", map[string]string{"email": email, "password": password}); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != http.StatusOK {
		return fmt.Errorf("login %s: status %d: %s", email, status, s.tc.GetLastResponseBody())
	}
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	s.tc.SetToken(actor, fmt.Sprint(token))
	return nil
}
