//go:build e2e

package e2e

import (
	"github.com/cucumber/godog"

	"onboard/e2e/steps/auth"
	"onboard/e2e/steps/common"
	"onboard/e2e/steps/onboarding"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	onboarding.RegisterSteps(ctx, tc)
}
