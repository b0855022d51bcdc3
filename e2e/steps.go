package e2e

import (
	"github.com/cucumber/godog"

	"hadir/e2e/steps/attendance"
	"hadir/e2e/steps/auth"
	"hadir/e2e/steps/common"
)

// RegisterSteps wires all step definitions onto the scenario context.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	attendance.RegisterSteps(ctx, tc)
}
