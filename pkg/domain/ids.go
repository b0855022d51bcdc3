// Package domain defines the typed identifiers shared across features.
//
// Each ID is a distinct type over uuid.UUID so the compiler rejects passing a
// device ID where a user ID is expected. Parse functions enforce the trust
// boundary invariant: IDs arriving from clients must be valid, non-empty,
// non-nil UUIDs.
package domain

import (
	"database/sql/driver"

	"github.com/google/uuid"

	dErrors "hadir/pkg/domain-errors"
)

type (
	// UserID identifies an employee account.
	UserID uuid.UUID
	// BranchID identifies a branch office.
	BranchID uuid.UUID
	// DepartmentID identifies a department within a branch.
	DepartmentID uuid.UUID
	// DeviceID identifies a registered device row (not the client-reported
	// hardware identifier, which is an opaque string).
	DeviceID uuid.UUID
	// LeaveID identifies a leave request.
	LeaveID uuid.UUID
	// AttendanceID identifies an attendance record.
	AttendanceID uuid.UUID
)

func parse(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", kind)
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is not a valid UUID", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id must not be the nil UUID", kind)
	}
	return u, nil
}

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewBranchID() BranchID         { return BranchID(uuid.New()) }
func NewDepartmentID() DepartmentID { return DepartmentID(uuid.New()) }
func NewDeviceID() DeviceID         { return DeviceID(uuid.New()) }
func NewLeaveID() LeaveID           { return LeaveID(uuid.New()) }
func NewAttendanceID() AttendanceID { return AttendanceID(uuid.New()) }

func ParseUserID(raw string) (UserID, error) {
	u, err := parse(raw, "user")
	return UserID(u), err
}

func ParseBranchID(raw string) (BranchID, error) {
	u, err := parse(raw, "branch")
	return BranchID(u), err
}

func ParseDepartmentID(raw string) (DepartmentID, error) {
	u, err := parse(raw, "department")
	return DepartmentID(u), err
}

func ParseDeviceID(raw string) (DeviceID, error) {
	u, err := parse(raw, "device")
	return DeviceID(u), err
}

func ParseLeaveID(raw string) (LeaveID, error) {
	u, err := parse(raw, "leave")
	return LeaveID(u), err
}

func ParseAttendanceID(raw string) (AttendanceID, error) {
	u, err := parse(raw, "attendance")
	return AttendanceID(u), err
}

func (i UserID) String() string       { return uuid.UUID(i).String() }
func (i BranchID) String() string     { return uuid.UUID(i).String() }
func (i DepartmentID) String() string { return uuid.UUID(i).String() }
func (i DeviceID) String() string     { return uuid.UUID(i).String() }
func (i LeaveID) String() string      { return uuid.UUID(i).String() }
func (i AttendanceID) String() string { return uuid.UUID(i).String() }

func (i UserID) IsNil() bool       { return uuid.UUID(i) == uuid.Nil }
func (i BranchID) IsNil() bool     { return uuid.UUID(i) == uuid.Nil }
func (i DepartmentID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i DeviceID) IsNil() bool     { return uuid.UUID(i) == uuid.Nil }
func (i LeaveID) IsNil() bool      { return uuid.UUID(i) == uuid.Nil }
func (i AttendanceID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

// Scan/Value delegate to uuid.UUID so typed IDs work directly with
// database/sql.

func (i *UserID) Scan(src any) error       { return (*uuid.UUID)(i).Scan(src) }
func (i *BranchID) Scan(src any) error     { return (*uuid.UUID)(i).Scan(src) }
func (i *DepartmentID) Scan(src any) error { return (*uuid.UUID)(i).Scan(src) }
func (i *DeviceID) Scan(src any) error     { return (*uuid.UUID)(i).Scan(src) }
func (i *LeaveID) Scan(src any) error      { return (*uuid.UUID)(i).Scan(src) }
func (i *AttendanceID) Scan(src any) error { return (*uuid.UUID)(i).Scan(src) }

func (i UserID) Value() (driver.Value, error)       { return uuid.UUID(i).Value() }
func (i BranchID) Value() (driver.Value, error)     { return uuid.UUID(i).Value() }
func (i DepartmentID) Value() (driver.Value, error) { return uuid.UUID(i).Value() }
func (i DeviceID) Value() (driver.Value, error)     { return uuid.UUID(i).Value() }
func (i LeaveID) Value() (driver.Value, error)      { return uuid.UUID(i).Value() }
func (i AttendanceID) Value() (driver.Value, error) { return uuid.UUID(i).Value() }

// MarshalText/UnmarshalText give typed IDs their canonical JSON form.

func (i UserID) MarshalText() ([]byte, error)       { return uuid.UUID(i).MarshalText() }
func (i BranchID) MarshalText() ([]byte, error)     { return uuid.UUID(i).MarshalText() }
func (i DepartmentID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }
func (i DeviceID) MarshalText() ([]byte, error)     { return uuid.UUID(i).MarshalText() }
func (i LeaveID) MarshalText() ([]byte, error)      { return uuid.UUID(i).MarshalText() }
func (i AttendanceID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *UserID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(i).UnmarshalText(b) }
func (i *BranchID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(i).UnmarshalText(b) }
func (i *DepartmentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }
func (i *DeviceID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(i).UnmarshalText(b) }
func (i *LeaveID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(i).UnmarshalText(b) }
func (i *AttendanceID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }
