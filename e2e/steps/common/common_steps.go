package common

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	GET(path string) error
	LastStatus() int
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers generic request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status is (\d+)$`, steps.statusIs)
	ctx.Step(`^the response field "([^"]*)" is "([^"]*)"$`, steps.fieldEquals)
	ctx.Step(`^the response field "([^"]*)" is present$`, steps.fieldPresent)
	ctx.Step(`^the error message contains "([^"]*)"$`, steps.errorContains)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) get(path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) statusIs(want int) error {
	if got := s.tc.LastStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *commonSteps) fieldEquals(field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprintf("%v", v); got != want {
		return fmt.Errorf("field %q: expected %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) fieldPresent(field string) error {
	_, err := s.tc.GetResponseField(field)
	return err
}

func (s *commonSteps) errorContains(fragment string) error {
	v, err := s.tc.GetResponseField("error_description")
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("%v", v)
	if !strings.Contains(msg, fragment) {
		return fmt.Errorf("error %q does not contain %q", msg, fragment)
	}
	return nil
}
