// Package notify delivers in-app and push notifications. Sending is
// fire-and-forget: a notification failure never fails the operation that
// triggered it.
package notify

import (
	"time"

	id "hadir/pkg/domain"
)

// Type classifies a notification for display and throttling.
type Type string

const (
	TypeLateCheckIn       Type = "LATE_CHECK_IN"
	TypeMissedCheckOut    Type = "MISSED_CHECK_OUT"
	TypeSuspiciousAttempt Type = "SUSPICIOUS_ATTEMPT"
	TypeDeviceRegistered  Type = "DEVICE_REGISTERED"
	TypeDeviceApproved    Type = "DEVICE_APPROVED"
	TypeDeviceBlocked     Type = "DEVICE_BLOCKED"
	TypeLeaveRequested    Type = "LEAVE_REQUESTED"
	TypeLeaveDecided      Type = "LEAVE_DECIDED"
	TypeAnnouncement      Type = "ANNOUNCEMENT"
)

// Notification is one inbox entry for one user.
type Notification struct {
	ID        string            `json:"id"`
	UserID    id.UserID         `json:"userId"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	IsRead    bool              `json:"isRead"`
	ReadAt    time.Time         `json:"readAt,omitzero"`
	CreatedAt time.Time         `json:"createdAt"`
}
