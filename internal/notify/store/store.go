package store

import (
	"context"

	"hadir/internal/notify"
	id "hadir/pkg/domain"
)

// Store persists notifications.
type Store interface {
	Append(ctx context.Context, n notify.Notification) error
	List(ctx context.Context, userID id.UserID, offset, limit int) ([]notify.Notification, error)
	UnreadCount(ctx context.Context, userID id.UserID) (int, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID string) error
	MarkAllRead(ctx context.Context, userID id.UserID) error
}
