// Package attendance implements the check-in/check-out policy engine and its
// day-scoped records.
package attendance

import (
	"time"

	id "hadir/pkg/domain"
)

// Status classifies a day's attendance record.
type Status string

const (
	StatusPresent      Status = "PRESENT"
	StatusLate         Status = "LATE"
	StatusEarlyLeave   Status = "EARLY_LEAVE"
	StatusAbsent       Status = "ABSENT"
	StatusOnLeave      Status = "ON_LEAVE"
	StatusWorkFromHome Status = "WORK_FROM_HOME"
)

// Record is the single attendance row for one user on one calendar day. The
// day is the user's branch-local date; the (UserID, Day) pair is unique.
type Record struct {
	ID                 id.AttendanceID `json:"id"`
	UserID             id.UserID       `json:"userId"`
	BranchID           id.BranchID     `json:"branchId"`
	Day                time.Time       `json:"day"`
	CheckInAt          time.Time       `json:"checkInAt,omitzero"`
	CheckOutAt         time.Time       `json:"checkOutAt,omitzero"`
	CheckInLatitude    float64         `json:"checkInLatitude"`
	CheckInLongitude   float64         `json:"checkInLongitude"`
	CheckInDistanceM   float64         `json:"checkInDistanceMeters"`
	CheckOutLatitude   float64         `json:"checkOutLatitude"`
	CheckOutLongitude  float64         `json:"checkOutLongitude"`
	CheckOutDistanceM  float64         `json:"checkOutDistanceMeters"`
	Status             Status          `json:"status"`
	LateMinutes        int             `json:"lateMinutes"`
	EarlyLeaveMinutes  int             `json:"earlyLeaveMinutes"`
	WorkingMinutes     int             `json:"workingMinutes"`
	OvertimeMinutes    int             `json:"overtimeMinutes"`
	IsWorkFromHome     bool            `json:"isWorkFromHome"`
	DeviceInfo         string          `json:"deviceInfo,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// CheckedIn reports whether the record has a check-in.
func (r Record) CheckedIn() bool { return !r.CheckInAt.IsZero() }

// CheckedOut reports whether the record has a check-out.
func (r Record) CheckedOut() bool { return !r.CheckOutAt.IsZero() }

// PunchInput is the client payload for a check-in or check-out.
type PunchInput struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	IsMockLocation bool      `json:"isMockLocation"`
	DeviceInfo     string    `json:"deviceInfo"`
	FaceEmbedding  []float64 `json:"faceEmbedding"`
	FaceImage      []byte    `json:"faceImage"`
}

// PunchResult is the record plus flags derived for the client.
type PunchResult struct {
	Record            Record `json:"record"`
	IsLate            bool   `json:"isLate"`
	IsEarlyLeave      bool   `json:"isEarlyLeave"`
	LateMinutes       int    `json:"lateMinutes"`
	EarlyLeaveMinutes int    `json:"earlyLeaveMinutes"`
	FaceEnrolled      bool   `json:"faceEnrolled,omitempty"`
}

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	From     time.Time
	To       time.Time
	Status   Status
	Page     int
	PageSize int
}

// MonthlyStats aggregates one user's month.
type MonthlyStats struct {
	Year                 int `json:"year"`
	Month                int `json:"month"`
	PresentDays          int `json:"presentDays"`
	LateDays             int `json:"lateDays"`
	EarlyLeaveDays       int `json:"earlyLeaveDays"`
	AbsentDays           int `json:"absentDays"`
	WorkFromHomeDays     int `json:"workFromHomeDays"`
	OnLeaveDays          int `json:"onLeaveDays"`
	TotalWorkingMinutes  int `json:"totalWorkingMinutes"`
	TotalOvertimeMinutes int `json:"totalOvertimeMinutes"`
	TotalLateMinutes     int `json:"totalLateMinutes"`
}

// DailySnapshot is the admin dashboard view of one day.
type DailySnapshot struct {
	Day          string `json:"day"`
	Headcount    int    `json:"headcount"`
	Present      int    `json:"present"`
	Late         int    `json:"late"`
	EarlyLeave   int    `json:"earlyLeave"`
	WorkFromHome int    `json:"workFromHome"`
	OnLeave      int    `json:"onLeave"`
	Absent       int    `json:"absent"`
}
