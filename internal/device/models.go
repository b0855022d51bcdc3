// Package device implements the device trust registry: which phones a user
// may check in from, their lifecycle, and fingerprint verification.
package device

import (
	"time"

	id "hadir/pkg/domain"
)

// Status is the lifecycle state of a registered device.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusBlocked  Status = "BLOCKED"
	StatusInactive Status = "INACTIVE"
)

// RegisteredDevice is one (user, deviceId) binding.
type RegisteredDevice struct {
	ID            id.DeviceID `json:"id"`
	UserID        id.UserID   `json:"userId"`
	DeviceID      string      `json:"deviceId"`
	Fingerprint   string      `json:"-"`
	Name          string      `json:"name,omitempty"`
	Model         string      `json:"model,omitempty"`
	Brand         string      `json:"brand,omitempty"`
	Platform      string      `json:"platform,omitempty"`
	OSVersion     string      `json:"osVersion,omitempty"`
	AppVersion    string      `json:"appVersion,omitempty"`
	Status        Status      `json:"status"`
	IsMain        bool        `json:"isMain"`
	UsageCount    int         `json:"usageCount"`
	LastUsedAt    time.Time   `json:"lastUsedAt,omitzero"`
	ApprovedBy    id.UserID   `json:"approvedBy,omitzero"`
	ApprovedAt    time.Time   `json:"approvedAt,omitzero"`
	BlockedReason string      `json:"blockedReason,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Descriptor is the client-reported device identity used for registration
// and fingerprinting.
type Descriptor struct {
	DeviceID   string `json:"deviceId" valid:"required"`
	Name       string `json:"name"`
	Model      string `json:"model"`
	Brand      string `json:"brand"`
	Platform   string `json:"platform"`
	OSVersion  string `json:"osVersion"`
	AppVersion string `json:"appVersion"`
}

// VerifyReason explains a failed or qualified verification.
type VerifyReason string

const (
	ReasonUnknownDevice       VerifyReason = "UNKNOWN_DEVICE"
	ReasonFingerprintMismatch VerifyReason = "FINGERPRINT_MISMATCH"
	ReasonDeviceBlocked       VerifyReason = "DEVICE_BLOCKED"
)

// Verification is the outcome of a device trust check.
type Verification struct {
	Verified             bool              `json:"verified"`
	RequiresRegistration bool              `json:"requiresRegistration,omitempty"`
	Reason               VerifyReason      `json:"reason,omitempty"`
	Device               *RegisteredDevice `json:"device,omitempty"`
}
