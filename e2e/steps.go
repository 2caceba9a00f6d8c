package e2e

import (
	"github.com/cucumber/godog"

	"gfde/e2e/steps/federation"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(tc.reset)

	// Register federation steps (seeding, queries, assertions)
	federation.RegisterSteps(ctx, tc)
}
