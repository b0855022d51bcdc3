// Package service implements notification delivery and the inbox.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"hadir/internal/notify"
	"hadir/internal/notify/store"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/sentinel"
)

// Directory is the user lookup surface needed for fan-out.
type Directory interface {
	FindByID(ctx context.Context, userID id.UserID) (user.User, error)
	ListByRoles(ctx context.Context, roles []user.Role) ([]user.User, error)
}

// Pusher delivers a push notification to a device token. Implementations
// wrap FCM or similar. A nil Pusher disables push delivery.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

// Noisy alert types share a per-user dedupe window.
var throttledTypes = map[notify.Type]bool{
	notify.TypeSuspiciousAttempt: true,
	notify.TypeLateCheckIn:       true,
	notify.TypeMissedCheckOut:    true,
}

type Service struct {
	store     store.Store
	directory Directory
	pusher    Pusher
	throttle  *notify.Throttle
	logger    *slog.Logger
}

func New(st store.Store, directory Directory, pusher Pusher, throttle *notify.Throttle, logger *slog.Logger) *Service {
	return &Service{store: st, directory: directory, pusher: pusher, throttle: throttle, logger: logger}
}

// Send stores an inbox entry for the user and attempts push delivery.
// Fire-and-forget: all failures are logged, none propagate.
func (s *Service) Send(ctx context.Context, userID id.UserID, typ notify.Type, title, body string, meta map[string]string) {
	if throttledTypes[typ] && !s.throttle.Allow(ctx, userID, typ) {
		return
	}

	n := notify.Notification{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     typ,
		Title:    title,
		Body:     body,
		Metadata: meta,
	}
	if err := s.store.Append(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to store notification",
			"user_id", userID, "type", typ, "error", err)
	}

	if s.pusher == nil {
		return
	}
	u, err := s.directory.FindByID(ctx, userID)
	if err != nil || u.PushToken == "" {
		return
	}
	if err := s.pusher.Push(ctx, u.PushToken, title, body, meta); err != nil {
		s.logger.WarnContext(ctx, "push delivery failed",
			"user_id", userID, "type", typ, "error", err)
	}
}

// NotifyMatching fans a notification out to every user holding one of the
// roles and accepted by the predicate. A nil predicate accepts everyone.
func (s *Service) NotifyMatching(ctx context.Context, roles []user.Role, match func(user.User) bool, typ notify.Type, title, body string, meta map[string]string) {
	recipients, err := s.directory.ListByRoles(ctx, roles)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve notification recipients",
			"type", typ, "error", err)
		return
	}
	for _, r := range recipients {
		if match != nil && !match(r) {
			continue
		}
		s.Send(ctx, r.ID, typ, title, body, meta)
	}
}

// NotifyOverseers alerts every admin plus the employee's own manager.
func (s *Service) NotifyOverseers(ctx context.Context, managerID id.UserID, typ notify.Type, title, body string, meta map[string]string) {
	s.NotifyMatching(ctx,
		[]user.Role{user.RoleAdmin, user.RoleManager},
		func(u user.User) bool {
			return u.Role == user.RoleAdmin || u.ID == managerID
		},
		typ, title, body, meta)
}

// Inbox returns one page of the user's notifications, newest first.
func (s *Service) Inbox(ctx context.Context, userID id.UserID, page, pageSize int) ([]notify.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	out, err := s.store.List(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list notifications")
	}
	return out, nil
}

// UnreadCount returns the user's unread badge count.
func (s *Service) UnreadCount(ctx context.Context, userID id.UserID) (int, error) {
	n, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count unread notifications")
	}
	return n, nil
}

// MarkRead marks one notification read. Idempotent.
func (s *Service) MarkRead(ctx context.Context, userID id.UserID, notificationID string) error {
	err := s.store.MarkRead(ctx, userID, notificationID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark notification read")
	}
	return nil
}

// MarkAllRead marks the whole inbox read.
func (s *Service) MarkAllRead(ctx context.Context, userID id.UserID) error {
	if err := s.store.MarkAllRead(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark all notifications read")
	}
	return nil
}
