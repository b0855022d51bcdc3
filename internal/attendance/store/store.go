package store

import (
	"context"
	"time"

	"hadir/internal/attendance"
	id "hadir/pkg/domain"
)

// Store is the persistence boundary for attendance records.
//
// Create must enforce the (user_id, day) uniqueness constraint and return
// sentinel.ErrConflict when a concurrent writer got there first. That
// constraint, not application logic, is what guarantees the one-record-per-day
// invariant under racing duplicate requests.
type Store interface {
	FindByUserAndDay(ctx context.Context, userID id.UserID, day time.Time) (attendance.Record, error)
	Create(ctx context.Context, r attendance.Record) error
	Update(ctx context.Context, r attendance.Record) error
	ListByUser(ctx context.Context, userID id.UserID, f attendance.HistoryFilter) ([]attendance.Record, error)
	ListByDay(ctx context.Context, day time.Time) ([]attendance.Record, error)
	ListByUserForMonth(ctx context.Context, userID id.UserID, year int, month time.Month) ([]attendance.Record, error)
}
