// Package branch manages branch offices and departments, and resolves the
// effective work schedule for a user. Department overrides win over branch
// defaults field by field.
package branch

import (
	"fmt"
	"time"

	id "hadir/pkg/domain"
)

// Branch is one office location with its geofence and default schedule.
// WorkStart and WorkEnd are wall-clock times in "HH:MM" form, interpreted in
// the branch timezone.
type Branch struct {
	ID                  id.BranchID `json:"id"`
	Name                string      `json:"name"`
	Latitude            float64     `json:"latitude"`
	Longitude           float64     `json:"longitude"`
	GeofenceRadiusM     int         `json:"geofenceRadiusMeters"`
	WorkStart           string      `json:"workStart"`
	WorkEnd             string      `json:"workEnd"`
	LateGraceMinutes    int         `json:"lateGraceMinutes"`
	EarlyCheckInMinutes int         `json:"earlyCheckInMinutes"`
	Timezone            string      `json:"timezone,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// Department belongs to a branch and may override its work hours. Empty
// override fields inherit the branch value.
type Department struct {
	ID        id.DepartmentID `json:"id"`
	BranchID  id.BranchID     `json:"branchId"`
	Name      string          `json:"name"`
	WorkStart string          `json:"workStart,omitempty"`
	WorkEnd   string          `json:"workEnd,omitempty"`
}

// Schedule is the resolved policy for one user on one day. Minutes are
// minutes after local midnight.
type Schedule struct {
	Branch              Branch
	WorkStartMinutes    int
	WorkEndMinutes      int
	LateGraceMinutes    int
	EarlyCheckInMinutes int
	Location            *time.Location
}

// GraceEndMinutes is the last on-time check-in minute.
func (s Schedule) GraceEndMinutes() int {
	return s.WorkStartMinutes + s.LateGraceMinutes
}

// EarliestCheckInMinutes is the first accepted check-in minute.
func (s Schedule) EarliestCheckInMinutes() int {
	return s.WorkStartMinutes - s.EarlyCheckInMinutes
}

// ExpectedWorkMinutes is the scheduled shift length.
func (s Schedule) ExpectedWorkMinutes() int {
	return s.WorkEndMinutes - s.WorkStartMinutes
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", v, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", v)
	}
	return h*60 + m, nil
}
