package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"hadir/internal/audit"
	auditstore "hadir/internal/audit/store"
	"hadir/internal/device"
	"hadir/internal/device/store"
	"hadir/internal/notify"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
)

type sentNotification struct {
	userID    id.UserID
	managerID id.UserID
	typ       notify.Type
	fanOut    bool
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) Send(_ context.Context, userID id.UserID, typ notify.Type, _, _ string, _ map[string]string) {
	f.sent = append(f.sent, sentNotification{userID: userID, typ: typ})
}

func (f *fakeNotifier) NotifyOverseers(_ context.Context, managerID id.UserID, typ notify.Type, _, _ string, _ map[string]string) {
	f.sent = append(f.sent, sentNotification{managerID: managerID, typ: typ, fanOut: true})
}

type ServiceSuite struct {
	suite.Suite
	store    *store.Memory
	auditDB  *auditstore.Memory
	notifier *fakeNotifier
	svc      *Service
	ctx      context.Context
	employee user.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.auditDB = auditstore.NewMemory()
	s.notifier = &fakeNotifier{}
	pub := audit.NewPublisher(s.auditDB, nil, slog.Default())
	s.svc = New(s.store, pub, s.notifier, nil, 2, slog.Default())
	s.ctx = context.Background()
	s.employee = user.User{
		ID:        id.NewUserID(),
		FirstName: "Sara",
		LastName:  "Hassan",
		Role:      user.RoleEmployee,
		Status:    user.StatusActive,
		ManagerID: id.NewUserID(),
	}
}

func descriptor(deviceID string) device.Descriptor {
	return device.Descriptor{
		DeviceID:  deviceID,
		Model:     "Pixel 8",
		Brand:     "Google",
		Platform:  "android",
		OSVersion: "14",
	}
}

func (s *ServiceSuite) TestRegister() {
	s.Run("first device auto-activates and becomes main", func() {
		d, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-1"))
		s.Require().NoError(err)
		s.Equal(device.StatusActive, d.Status)
		s.True(d.IsMain)
		s.NotEmpty(d.Fingerprint)
	})

	s.Run("second device is pending and not main, approvers notified", func() {
		d, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-2"))
		s.Require().NoError(err)
		s.Equal(device.StatusPending, d.Status)
		s.False(d.IsMain)

		s.Require().NotEmpty(s.notifier.sent)
		last := s.notifier.sent[len(s.notifier.sent)-1]
		s.True(last.fanOut)
		s.Equal(notify.TypeDeviceRegistered, last.typ)
		s.Equal(s.employee.ManagerID, last.managerID)
	})

	s.Run("third device hits the cap", func() {
		_, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-3"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeCapacity))
		s.Contains(err.Error(), "2")
	})

	s.Run("re-registering a known device is an idempotent refresh", func() {
		desc := descriptor("dev-1")
		desc.AppVersion = "2.1.0"
		d, err := s.svc.Register(s.ctx, s.employee, desc)
		s.Require().NoError(err)
		s.Equal(device.StatusActive, d.Status)
		s.Equal("2.1.0", d.AppVersion)
		s.Equal(1, d.UsageCount)

		all, err := s.svc.List(s.ctx, s.employee.ID)
		s.Require().NoError(err)
		s.Len(all, 2)
	})
}

func (s *ServiceSuite) TestVerify() {
	s.Run("no devices at all grants bootstrap", func() {
		v, err := s.svc.Verify(s.ctx, s.employee, "dev-1", "", audit.ActionCheckIn)
		s.Require().NoError(err)
		s.True(v.Verified)
		s.True(v.RequiresRegistration)
	})

	d, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-1"))
	s.Require().NoError(err)

	s.Run("active device with matching fingerprint verifies", func() {
		v, err := s.svc.Verify(s.ctx, s.employee, "dev-1", d.Fingerprint, audit.ActionCheckIn)
		s.Require().NoError(err)
		s.True(v.Verified)
		s.False(v.RequiresRegistration)

		refreshed, err := s.store.FindByRowID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(1, refreshed.UsageCount)
	})

	s.Run("unknown device is rejected and overseers alerted", func() {
		v, err := s.svc.Verify(s.ctx, s.employee, "stranger", "", audit.ActionCheckIn)
		s.Require().NoError(err)
		s.False(v.Verified)
		s.Equal(device.ReasonUnknownDevice, v.Reason)

		last := s.notifier.sent[len(s.notifier.sent)-1]
		s.Equal(notify.TypeSuspiciousAttempt, last.typ)
	})

	s.Run("fingerprint mismatch is a distinct rejection", func() {
		v, err := s.svc.Verify(s.ctx, s.employee, "dev-1", "tampered", audit.ActionCheckIn)
		s.Require().NoError(err)
		s.False(v.Verified)
		s.Equal(device.ReasonFingerprintMismatch, v.Reason)
	})

	s.Run("pending device does not verify", func() {
		_, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-2"))
		s.Require().NoError(err)
		v, err := s.svc.Verify(s.ctx, s.employee, "dev-2", "", audit.ActionCheckIn)
		s.Require().NoError(err)
		s.False(v.Verified)
		s.Equal(device.ReasonUnknownDevice, v.Reason)
	})

	s.Run("every attempt lands in the access log", func() {
		entries, err := s.auditDB.ListDeviceAccess(s.ctx, s.employee.ID, 50)
		s.Require().NoError(err)
		// bootstrap + register(dev-1) + verified + unknown + mismatch + register(dev-2) + pending
		s.Len(entries, 7)
	})
}

func (s *ServiceSuite) TestApproveAndBlock() {
	adminID := id.NewUserID()
	first, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-1"))
	s.Require().NoError(err)
	second, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-2"))
	s.Require().NoError(err)

	s.Run("approving an active device conflicts", func() {
		_, err := s.svc.Approve(s.ctx, adminID, first.ID, false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("approve with makeMain retires the old main", func() {
		approved, err := s.svc.Approve(s.ctx, adminID, second.ID, true)
		s.Require().NoError(err)
		s.Equal(device.StatusActive, approved.Status)
		s.True(approved.IsMain)
		s.Equal(adminID, approved.ApprovedBy)

		old, err := s.store.FindByRowID(s.ctx, first.ID)
		s.Require().NoError(err)
		s.Equal(device.StatusInactive, old.Status)
		s.False(old.IsMain)

		last := s.notifier.sent[len(s.notifier.sent)-1]
		s.Equal(notify.TypeDeviceApproved, last.typ)
		s.Equal(s.employee.ID, last.userID)
	})

	s.Run("block clears main and notifies owner", func() {
		blocked, err := s.svc.Block(s.ctx, adminID, second.ID, "reported stolen")
		s.Require().NoError(err)
		s.Equal(device.StatusBlocked, blocked.Status)
		s.False(blocked.IsMain)
		s.Equal("reported stolen", blocked.BlockedReason)

		last := s.notifier.sent[len(s.notifier.sent)-1]
		s.Equal(notify.TypeDeviceBlocked, last.typ)
	})

	s.Run("blocked device cannot become main", func() {
		err := s.svc.SetMain(s.ctx, s.employee.ID, second.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("blocked device fails verification", func() {
		v, err := s.svc.Verify(s.ctx, s.employee, "dev-2", "", audit.ActionCheckIn)
		s.Require().NoError(err)
		s.False(v.Verified)
		s.Equal(device.ReasonDeviceBlocked, v.Reason)
	})
}

func (s *ServiceSuite) TestSetMainAndRemove() {
	adminID := id.NewUserID()
	first, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-1"))
	s.Require().NoError(err)
	second, err := s.svc.Register(s.ctx, s.employee, descriptor("dev-2"))
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, adminID, second.ID, false)
	s.Require().NoError(err)

	s.Run("set main moves the flag atomically", func() {
		s.Require().NoError(s.svc.SetMain(s.ctx, s.employee.ID, second.ID))

		devices, err := s.svc.List(s.ctx, s.employee.ID)
		s.Require().NoError(err)
		mains := 0
		for _, d := range devices {
			if d.IsMain {
				mains++
				s.Equal(second.ID, d.ID)
			}
		}
		s.Equal(1, mains)
	})

	s.Run("cannot touch another user's device", func() {
		err := s.svc.SetMain(s.ctx, id.NewUserID(), first.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("remove deletes the binding", func() {
		s.Require().NoError(s.svc.Remove(s.ctx, s.employee.ID, first.ID))
		devices, err := s.svc.List(s.ctx, s.employee.ID)
		s.Require().NoError(err)
		s.Len(devices, 1)
	})
}
