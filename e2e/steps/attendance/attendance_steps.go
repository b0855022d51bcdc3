package attendance

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers check-in/check-out steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &attendanceSteps{tc: tc}

	ctx.Step(`^I check in at latitude ([\-0-9.]+) and longitude ([\-0-9.]+)$`, steps.checkIn)
	ctx.Step(`^I check in at latitude ([\-0-9.]+) and longitude ([\-0-9.]+) with a mocked location$`, steps.checkInMocked)
	ctx.Step(`^I check out at latitude ([\-0-9.]+) and longitude ([\-0-9.]+)$`, steps.checkOut)
	ctx.Step(`^I request today's attendance$`, steps.today)
	ctx.Step(`^today's record has status "([^"]*)"$`, steps.todayStatus)
}

type attendanceSteps struct {
	tc TestContext
}

func (s *attendanceSteps) punch(path string, lat, lng string, mock bool) error {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return err
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return err
	}
	return s.tc.POST(path, map[string]any{
		"latitude":       latitude,
		"longitude":      longitude,
		"isMockLocation": mock,
	})
}

func (s *attendanceSteps) checkIn(lat, lng string) error {
	return s.punch("/attendance/check-in", lat, lng, false)
}

func (s *attendanceSteps) checkInMocked(lat, lng string) error {
	return s.punch("/attendance/check-in", lat, lng, true)
}

func (s *attendanceSteps) checkOut(lat, lng string) error {
	return s.punch("/attendance/check-out", lat, lng, false)
}

func (s *attendanceSteps) today() error {
	return s.tc.GET("/attendance/today")
}

func (s *attendanceSteps) todayStatus(want string) error {
	v, err := s.tc.GetResponseField("record.status")
	if err != nil {
		return err
	}
	if got := fmt.Sprintf("%v", v); got != want {
		return fmt.Errorf("today's status: expected %q, got %q", want, got)
	}
	return nil
}
