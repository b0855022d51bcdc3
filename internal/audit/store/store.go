package store

import (
	"context"
	"time"

	"hadir/internal/audit"
	id "hadir/pkg/domain"
)

// Store persists the audit trail.
type Store interface {
	AppendSuspicious(ctx context.Context, a audit.SuspiciousAttempt) error
	ListSuspicious(ctx context.Context, userID id.UserID, since time.Time, limit int) ([]audit.SuspiciousAttempt, error)
	CountSuspicious(ctx context.Context, userID id.UserID, since time.Time) (int, error)

	AppendDeviceAccess(ctx context.Context, e audit.DeviceAccessEntry) error
	ListDeviceAccess(ctx context.Context, userID id.UserID, limit int) ([]audit.DeviceAccessEntry, error)
}
