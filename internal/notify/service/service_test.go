package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"hadir/internal/notify"
	"hadir/internal/notify/store"
	"hadir/internal/user"
	userstore "hadir/internal/user/store"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
)

type fakePusher struct {
	sent []string
}

func (f *fakePusher) Push(_ context.Context, token, _, _ string, _ map[string]string) error {
	f.sent = append(f.sent, token)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	store  *store.Memory
	users  *userstore.Memory
	pusher *fakePusher
	svc    *Service
	ctx    context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.users = userstore.NewMemory()
	s.pusher = &fakePusher{}
	s.svc = New(s.store, s.users, s.pusher, nil, slog.Default())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedUser(role user.Role, managerID id.UserID, token string) user.User {
	u := user.User{
		ID:        id.NewUserID(),
		Email:     string(role) + "-" + id.NewUserID().String() + "@example.com",
		Role:      role,
		Status:    user.StatusActive,
		ManagerID: managerID,
		PushToken: token,
	}
	s.Require().NoError(s.users.Save(s.ctx, u))
	return u
}

func (s *ServiceSuite) TestSendStoresAndPushes() {
	u := s.seedUser(user.RoleEmployee, id.UserID{}, "token-1")

	s.svc.Send(s.ctx, u.ID, notify.TypeDeviceApproved, "Device approved", "Your phone is active", nil)

	items, err := s.svc.Inbox(s.ctx, u.ID, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(notify.TypeDeviceApproved, items[0].Type)
	s.False(items[0].IsRead)
	s.Equal([]string{"token-1"}, s.pusher.sent)
}

func (s *ServiceSuite) TestSendWithoutPushToken() {
	u := s.seedUser(user.RoleEmployee, id.UserID{}, "")
	s.svc.Send(s.ctx, u.ID, notify.TypeLeaveDecided, "Leave approved", "Enjoy", nil)
	s.Empty(s.pusher.sent)

	n, err := s.svc.UnreadCount(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ServiceSuite) TestNotifyOverseers() {
	manager := s.seedUser(user.RoleManager, id.UserID{}, "")
	otherManager := s.seedUser(user.RoleManager, id.UserID{}, "")
	admin := s.seedUser(user.RoleAdmin, id.UserID{}, "")
	employee := s.seedUser(user.RoleEmployee, manager.ID, "")

	s.svc.NotifyOverseers(s.ctx, employee.ManagerID, notify.TypeSuspiciousAttempt,
		"Suspicious check-in", "Out of range attempt", map[string]string{"distance_m": "412"})

	for recipient, want := range map[id.UserID]int{
		admin.ID:        1,
		manager.ID:      1,
		otherManager.ID: 0,
		employee.ID:     0,
	} {
		n, err := s.svc.UnreadCount(s.ctx, recipient)
		s.Require().NoError(err)
		s.Equal(want, n, "recipient %s", recipient)
	}
}

func (s *ServiceSuite) TestInboxPaginationAndRead() {
	u := s.seedUser(user.RoleEmployee, id.UserID{}, "")
	for range 5 {
		s.svc.Send(s.ctx, u.ID, notify.TypeAnnouncement, "Hello", "World", nil)
	}

	s.Run("pages", func() {
		page1, err := s.svc.Inbox(s.ctx, u.ID, 1, 3)
		s.Require().NoError(err)
		s.Len(page1, 3)

		page2, err := s.svc.Inbox(s.ctx, u.ID, 2, 3)
		s.Require().NoError(err)
		s.Len(page2, 2)
	})

	s.Run("mark one read", func() {
		items, err := s.svc.Inbox(s.ctx, u.ID, 1, 1)
		s.Require().NoError(err)
		s.Require().NoError(s.svc.MarkRead(s.ctx, u.ID, items[0].ID))

		n, err := s.svc.UnreadCount(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(4, n)
	})

	s.Run("mark unknown read", func() {
		err := s.svc.MarkRead(s.ctx, u.ID, "no-such-id")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("mark all read", func() {
		s.Require().NoError(s.svc.MarkAllRead(s.ctx, u.ID))
		n, err := s.svc.UnreadCount(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Zero(n)
	})
}
