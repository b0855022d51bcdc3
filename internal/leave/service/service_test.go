package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hadir/internal/leave"
	"hadir/internal/leave/store"
	"hadir/internal/notify"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
)

type fakeNotifier struct {
	types []notify.Type
}

func (f *fakeNotifier) Send(_ context.Context, _ id.UserID, typ notify.Type, _, _ string, _ map[string]string) {
	f.types = append(f.types, typ)
}

func (f *fakeNotifier) NotifyOverseers(_ context.Context, _ id.UserID, typ notify.Type, _, _ string, _ map[string]string) {
	f.types = append(f.types, typ)
}

type fakeMarker struct {
	days []string
}

func (f *fakeMarker) MarkOnLeave(_ context.Context, _ id.UserID, day time.Time) error {
	f.days = append(f.days, day.Format("2006-01-02"))
	return nil
}

type ServiceSuite struct {
	suite.Suite
	store    *store.Memory
	notifier *fakeNotifier
	marker   *fakeMarker
	svc      *Service
	ctx      context.Context
	employee user.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.notifier = &fakeNotifier{}
	s.marker = &fakeMarker{}
	s.svc = New(s.store, s.notifier, s.marker, slog.Default())
	s.ctx = context.Background()
	s.employee = user.User{
		ID:        id.NewUserID(),
		FirstName: "Omar",
		LastName:  "Farouk",
		Role:      user.RoleEmployee,
		Status:    user.StatusActive,
		ManagerID: id.NewUserID(),
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (s *ServiceSuite) TestRequest() {
	s.Run("files a pending request and alerts approvers", func() {
		r, err := s.svc.Request(s.ctx, s.employee, leave.TypeAnnual,
			day("2026-09-07"), day("2026-09-09"), "family trip")
		s.Require().NoError(err)
		s.Equal(leave.StatusPending, r.Status)
		s.Contains(s.notifier.types, notify.TypeLeaveRequested)
	})

	s.Run("rejects inverted range", func() {
		_, err := s.svc.Request(s.ctx, s.employee, leave.TypeAnnual,
			day("2026-09-20"), day("2026-09-19"), "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects overlapping range", func() {
		_, err := s.svc.Request(s.ctx, s.employee, leave.TypeSick,
			day("2026-09-09"), day("2026-09-10"), "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("adjacent range is fine", func() {
		_, err := s.svc.Request(s.ctx, s.employee, leave.TypeSick,
			day("2026-09-10"), day("2026-09-10"), "")
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestApprove() {
	r, err := s.svc.Request(s.ctx, s.employee, leave.TypeAnnual,
		day("2026-09-07"), day("2026-09-09"), "")
	s.Require().NoError(err)
	approverID := id.NewUserID()

	approved, err := s.svc.Approve(s.ctx, approverID, r.ID, "enjoy")
	s.Require().NoError(err)
	s.Equal(leave.StatusApproved, approved.Status)
	s.Equal(approverID, approved.ApproverID)
	s.False(approved.DecidedAt.IsZero())

	s.Run("materializes one on-leave day per covered day", func() {
		s.Equal([]string{"2026-09-07", "2026-09-08", "2026-09-09"}, s.marker.days)
	})

	s.Run("owner is told", func() {
		s.Contains(s.notifier.types, notify.TypeLeaveDecided)
	})

	s.Run("double approval conflicts", func() {
		_, err := s.svc.Approve(s.ctx, approverID, r.ID, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("approved leave is visible to the policy engine", func() {
		on, err := s.svc.OnApprovedLeave(s.ctx, s.employee.ID, day("2026-09-08"))
		s.Require().NoError(err)
		s.True(on)

		off, err := s.svc.OnApprovedLeave(s.ctx, s.employee.ID, day("2026-09-10"))
		s.Require().NoError(err)
		s.False(off)
	})
}

func (s *ServiceSuite) TestRejectAndCancel() {
	s.Run("reject", func() {
		r, err := s.svc.Request(s.ctx, s.employee, leave.TypeUnpaid,
			day("2026-10-01"), day("2026-10-02"), "")
		s.Require().NoError(err)

		rejected, err := s.svc.Reject(s.ctx, id.NewUserID(), r.ID, "short staffed")
		s.Require().NoError(err)
		s.Equal(leave.StatusRejected, rejected.Status)
		s.Empty(s.marker.days)
	})

	s.Run("cancel own pending request", func() {
		r, err := s.svc.Request(s.ctx, s.employee, leave.TypeAnnual,
			day("2026-11-01"), day("2026-11-01"), "")
		s.Require().NoError(err)

		cancelled, err := s.svc.Cancel(s.ctx, s.employee.ID, r.ID)
		s.Require().NoError(err)
		s.Equal(leave.StatusCancelled, cancelled.Status)
	})

	s.Run("cannot cancel someone else's request", func() {
		r, err := s.svc.Request(s.ctx, s.employee, leave.TypeAnnual,
			day("2026-12-01"), day("2026-12-01"), "")
		s.Require().NoError(err)

		_, err = s.svc.Cancel(s.ctx, id.NewUserID(), r.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestWFH() {
	adminID := id.NewUserID()
	d := day("2026-09-15")

	s.Require().NoError(s.svc.GrantWFH(s.ctx, adminID, s.employee.ID, d, "plumber visit"))

	on, err := s.svc.HasWFHExemption(s.ctx, s.employee.ID, d)
	s.Require().NoError(err)
	s.True(on)

	off, err := s.svc.HasWFHExemption(s.ctx, s.employee.ID, d.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.False(off)

	s.Require().NoError(s.svc.RevokeWFH(s.ctx, s.employee.ID, d))
	on, err = s.svc.HasWFHExemption(s.ctx, s.employee.ID, d)
	s.Require().NoError(err)
	s.False(on)

	err = s.svc.RevokeWFH(s.ctx, s.employee.ID, d)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
