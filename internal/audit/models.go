// Package audit records the evidence trail around attendance decisions:
// suspicious check-in attempts and device access logs. Recording never fails
// the decision that produced the record.
package audit

import (
	"time"

	id "hadir/pkg/domain"
)

// AttemptType classifies a suspicious attendance attempt.
type AttemptType string

const (
	AttemptMockLocation        AttemptType = "MOCK_LOCATION"
	AttemptOutOfRange          AttemptType = "OUT_OF_RANGE"
	AttemptFaceMismatch        AttemptType = "FACE_MISMATCH"
	AttemptUnknownDevice       AttemptType = "UNKNOWN_DEVICE"
	AttemptFingerprintMismatch AttemptType = "FINGERPRINT_MISMATCH"
)

// SuspiciousAttempt is one rejected or flagged attendance attempt.
type SuspiciousAttempt struct {
	ID         string      `json:"id"`
	UserID     id.UserID   `json:"userId"`
	Type       AttemptType `json:"type"`
	Latitude   float64     `json:"latitude"`
	Longitude  float64     `json:"longitude"`
	DistanceM  float64     `json:"distanceMeters,omitempty"`
	DeviceInfo string      `json:"deviceInfo,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// DeviceAction is what the client was doing when a device access was logged.
type DeviceAction string

const (
	ActionCheckIn  DeviceAction = "CHECK_IN"
	ActionCheckOut DeviceAction = "CHECK_OUT"
	ActionRegister DeviceAction = "REGISTER"
	ActionLogin    DeviceAction = "LOGIN"
)

// DeviceAccessEntry is one device verification outcome, recorded for every
// attempt whether it succeeded or not.
type DeviceAccessEntry struct {
	ID                string       `json:"id"`
	UserID            id.UserID    `json:"userId"`
	DeviceRowID       id.DeviceID  `json:"deviceRowId,omitzero"`
	AttemptedDeviceID string       `json:"attemptedDeviceId"`
	Action            DeviceAction `json:"action"`
	Success           bool         `json:"success"`
	KnownDevice       bool         `json:"knownDevice"`
	FailureReason     string       `json:"failureReason,omitempty"`
	ClientIP          string       `json:"clientIp,omitempty"`
	Location          string       `json:"location,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
}
