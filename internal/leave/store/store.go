package store

import (
	"context"
	"time"

	"hadir/internal/leave"
	id "hadir/pkg/domain"
)

// Store persists leave requests and WFH grants.
type Store interface {
	Find(ctx context.Context, leaveID id.LeaveID) (leave.Request, error)
	Create(ctx context.Context, r leave.Request) error
	Update(ctx context.Context, r leave.Request) error
	ListByUser(ctx context.Context, userID id.UserID, offset, limit int) ([]leave.Request, error)
	ListByStatus(ctx context.Context, status leave.RequestStatus, offset, limit int) ([]leave.Request, error)
	// HasOverlap reports whether the user already has a PENDING or APPROVED
	// request intersecting [start, end].
	HasOverlap(ctx context.Context, userID id.UserID, start, end time.Time, exclude id.LeaveID) (bool, error)
	// ApprovedOn reports whether the user has an APPROVED request covering day.
	ApprovedOn(ctx context.Context, userID id.UserID, day time.Time) (bool, error)

	SaveWFH(ctx context.Context, g leave.WFHGrant) error
	DeleteWFH(ctx context.Context, userID id.UserID, day time.Time) error
	IsWFH(ctx context.Context, userID id.UserID, day time.Time) (bool, error)
}
