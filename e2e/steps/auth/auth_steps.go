package auth

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	SetAccessToken(token string)
	SetDeviceID(id string)
}

// RegisterSteps registers login and identity steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, steps.login)
	ctx.Step(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, steps.loginAndSaveToken)
	ctx.Step(`^I save the session token$`, steps.saveToken)
	ctx.Step(`^my device id is "([^"]*)"$`, steps.setDeviceID)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) login(email, password string) error {
	return s.tc.POST("/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
}

func (s *authSteps) loginAndSaveToken(email, password string) error {
	if err := s.login(email, password); err != nil {
		return err
	}
	return s.saveToken()
}

func (s *authSteps) saveToken() error {
	v, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	token, ok := v.(string)
	if !ok || token == "" {
		return fmt.Errorf("token field is not a non-empty string: %v", v)
	}
	s.tc.SetAccessToken(token)
	return nil
}

func (s *authSteps) setDeviceID(id string) error {
	s.tc.SetDeviceID(id)
	return nil
}
