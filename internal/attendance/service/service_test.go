package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hadir/internal/attendance"
	"hadir/internal/attendance/store"
	"hadir/internal/audit"
	auditstore "hadir/internal/audit/store"
	"hadir/internal/branch"
	"hadir/internal/device"
	"hadir/internal/face"
	"hadir/internal/notify"
	"hadir/internal/user"
	userstore "hadir/internal/user/store"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/requestcontext"
)

const (
	branchLat = 30.0444
	branchLng = 31.2357
)

type fakeSchedules struct {
	sched branch.Schedule
}

func (f *fakeSchedules) EffectiveSchedule(_ context.Context, _ user.User) (branch.Schedule, error) {
	return f.sched, nil
}

type fakeFaces struct {
	verifyResult face.ComparisonResult
	verifyErr    error
	registerErr  error
	registered   int
	verified     int
}

func (f *fakeFaces) Verify(_ context.Context, _ id.UserID, _ []float64, _ float64, _ []byte) (face.ComparisonResult, error) {
	f.verified++
	return f.verifyResult, f.verifyErr
}

func (f *fakeFaces) Register(_ context.Context, _ id.UserID, _ []float64, _ []byte) (face.Profile, error) {
	f.registered++
	return face.Profile{}, f.registerErr
}

type fakeDevices struct {
	verification device.Verification
	registered   int
}

func (f *fakeDevices) Verify(_ context.Context, _ user.User, _, _ string, _ audit.DeviceAction) (device.Verification, error) {
	return f.verification, nil
}

func (f *fakeDevices) Register(_ context.Context, _ user.User, _ device.Descriptor) (device.RegisteredDevice, error) {
	f.registered++
	return device.RegisteredDevice{}, nil
}

type fakeExemptions struct {
	onLeave bool
	wfh     bool
}

func (f *fakeExemptions) OnApprovedLeave(_ context.Context, _ id.UserID, _ time.Time) (bool, error) {
	return f.onLeave, nil
}

func (f *fakeExemptions) HasWFHExemption(_ context.Context, _ id.UserID, _ time.Time) (bool, error) {
	return f.wfh, nil
}

type recordedNote struct {
	userID id.UserID
	typ    notify.Type
}

type fakeNotifier struct {
	mu        sync.Mutex
	sent      []recordedNote
	overseers []notify.Type
}

func (f *fakeNotifier) Send(_ context.Context, userID id.UserID, typ notify.Type, _, _ string, _ map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recordedNote{userID: userID, typ: typ})
}

func (f *fakeNotifier) NotifyOverseers(_ context.Context, _ id.UserID, typ notify.Type, _, _ string, _ map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overseers = append(f.overseers, typ)
}

func (f *fakeNotifier) overseerTypes() []notify.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Type(nil), f.overseers...)
}

type EngineSuite struct {
	suite.Suite

	store      *store.Memory
	users      *userstore.Memory
	schedules  *fakeSchedules
	auditDB    auditstore.Store
	faces      *fakeFaces
	devices    *fakeDevices
	exemptions *fakeExemptions
	notifier   *fakeNotifier
	svc        *Service

	employee user.User
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.store = store.NewMemory()
	s.users = userstore.NewMemory()
	s.auditDB = auditstore.NewMemory()
	s.faces = &fakeFaces{verifyResult: face.ComparisonResult{IsMatch: true, Confidence: 0.9}}
	s.devices = &fakeDevices{verification: device.Verification{Verified: true}}
	s.exemptions = &fakeExemptions{}
	s.notifier = &fakeNotifier{}

	s.schedules = &fakeSchedules{sched: branch.Schedule{
		Branch: branch.Branch{
			ID:              id.NewBranchID(),
			Name:            "HQ",
			Latitude:        branchLat,
			Longitude:       branchLng,
			GeofenceRadiusM: 100,
		},
		WorkStartMinutes:    9 * 60,
		WorkEndMinutes:      17 * 60,
		LateGraceMinutes:    10,
		EarlyCheckInMinutes: 60,
		Location:            time.UTC,
	}}

	pub := audit.NewPublisher(s.auditDB, nil, slog.Default())
	s.svc = New(s.store, s.schedules, s.users, s.faces, s.devices, s.exemptions,
		s.notifier, pub, nil, Config{FaceMatchThreshold: 0.5}, slog.Default())

	s.employee = user.User{
		ID:        id.NewUserID(),
		Email:     "omar@hadir.dev",
		FirstName: "Omar",
		LastName:  "Farouk",
		Role:      user.RoleEmployee,
		Status:    user.StatusActive,
		BranchID:  s.schedules.sched.Branch.ID,
		ManagerID: id.NewUserID(),
	}
	s.Require().NoError(s.users.Save(context.Background(), s.employee))
}

// at pins the request clock to the given wall time on Monday 2026-03-02 UTC.
func (s *EngineSuite) at(hour, minute int) context.Context {
	t := time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	return requestcontext.WithTime(context.Background(), t)
}

func atBranch() attendance.PunchInput {
	return attendance.PunchInput{Latitude: branchLat, Longitude: branchLng}
}

func (s *EngineSuite) suspiciousTypes(ctx context.Context) []audit.AttemptType {
	attempts, err := s.auditDB.ListSuspicious(ctx, s.employee.ID, time.Time{}, 50)
	s.Require().NoError(err)
	types := make([]audit.AttemptType, 0, len(attempts))
	for _, a := range attempts {
		types = append(types, a.Type)
	}
	return types
}

func (s *EngineSuite) TestCheckIn() {
	s.Run("on time inside the fence is PRESENT", func() {
		s.SetupTest()
		res, err := s.svc.CheckIn(s.at(9, 5), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(attendance.StatusPresent, res.Record.Status)
		s.False(res.IsLate)
		s.Zero(res.LateMinutes)
		s.Equal(s.employee.BranchID, res.Record.BranchID)
	})

	s.Run("after the grace window is LATE with minutes from work start", func() {
		s.SetupTest()
		res, err := s.svc.CheckIn(s.at(9, 12), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(attendance.StatusLate, res.Record.Status)
		s.True(res.IsLate)
		s.Equal(12, res.LateMinutes)
		s.Contains(s.notifier.overseerTypes(), notify.TypeLateCheckIn)
	})

	s.Run("last grace minute is still on time", func() {
		s.SetupTest()
		res, err := s.svc.CheckIn(s.at(9, 10), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(attendance.StatusPresent, res.Record.Status)
	})

	s.Run("outside the fence is rejected with the distance", func() {
		s.SetupTest()
		ctx := s.at(9, 0)
		// ~150m due north of the branch center.
		in := attendance.PunchInput{Latitude: branchLat + 0.001348, Longitude: branchLng}
		_, err := s.svc.CheckIn(ctx, s.employee.ID, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "150")

		attempts, lerr := s.auditDB.ListSuspicious(ctx, s.employee.ID, time.Time{}, 10)
		s.Require().NoError(lerr)
		s.Require().Len(attempts, 1)
		s.Equal(audit.AttemptOutOfRange, attempts[0].Type)
		s.InDelta(150, attempts[0].DistanceM, 2)

		_, ferr := s.store.FindByUserAndDay(ctx, s.employee.ID, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
		s.Error(ferr, "a rejected attempt must not leave a record")
	})

	s.Run("WFH exemption skips the geofence", func() {
		s.SetupTest()
		s.exemptions.wfh = true
		in := attendance.PunchInput{Latitude: 48.8566, Longitude: 2.3522}
		res, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, in)
		s.Require().NoError(err)
		s.Equal(attendance.StatusWorkFromHome, res.Record.Status)
		s.True(res.Record.IsWorkFromHome)
	})

	s.Run("mock location is rejected and flagged", func() {
		s.SetupTest()
		ctx := s.at(9, 0)
		in := atBranch()
		in.IsMockLocation = true
		_, err := s.svc.CheckIn(ctx, s.employee.ID, in)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(s.suspiciousTypes(ctx), audit.AttemptMockLocation)
		s.Contains(s.notifier.overseerTypes(), notify.TypeSuspiciousAttempt)
	})

	s.Run("approved leave blocks check-in", func() {
		s.SetupTest()
		s.exemptions.onLeave = true
		_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("before the early window is rejected", func() {
		s.SetupTest()
		_, err := s.svc.CheckIn(s.at(7, 30), s.employee.ID, atBranch())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "08:00")
	})

	s.Run("second check-in the same day conflicts", func() {
		s.SetupTest()
		_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
		s.Require().NoError(err)
		_, err = s.svc.CheckIn(s.at(9, 30), s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown user", func() {
		s.SetupTest()
		_, err := s.svc.CheckIn(s.at(9, 0), id.NewUserID(), atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *EngineSuite) TestCheckInFaceGate() {
	s.Run("registered face without an embedding is rejected before any write", func() {
		s.SetupTest()
		s.employee.FaceRegistered = true
		s.Require().NoError(s.users.Save(context.Background(), s.employee))

		ctx := s.at(9, 0)
		_, err := s.svc.CheckIn(ctx, s.employee.ID, atBranch())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, ferr := s.store.FindByUserAndDay(ctx, s.employee.ID, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
		s.Error(ferr)
	})

	s.Run("face mismatch is forbidden and flagged", func() {
		s.SetupTest()
		s.employee.FaceRegistered = true
		s.Require().NoError(s.users.Save(context.Background(), s.employee))
		s.faces.verifyResult = face.ComparisonResult{IsMatch: false, Confidence: 0.2}

		ctx := s.at(9, 0)
		in := atBranch()
		in.FaceEmbedding = []float64{0.1, 0.2}
		_, err := s.svc.CheckIn(ctx, s.employee.ID, in)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(s.suspiciousTypes(ctx), audit.AttemptFaceMismatch)
	})

	s.Run("matching face passes", func() {
		s.SetupTest()
		s.employee.FaceRegistered = true
		s.Require().NoError(s.users.Save(context.Background(), s.employee))

		in := atBranch()
		in.FaceEmbedding = []float64{0.1, 0.2}
		res, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, in)
		s.Require().NoError(err)
		s.Equal(1, s.faces.verified)
		s.False(res.FaceEnrolled)
	})

	s.Run("unregistered user with an embedding is enrolled", func() {
		s.SetupTest()
		in := atBranch()
		in.FaceEmbedding = []float64{0.1, 0.2}
		res, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, in)
		s.Require().NoError(err)
		s.True(res.FaceEnrolled)
		s.Equal(1, s.faces.registered)
		s.Zero(s.faces.verified)
	})
}

func (s *EngineSuite) TestCheckInDeviceGate() {
	s.Run("unverified device is forbidden and flagged", func() {
		s.SetupTest()
		s.devices.verification = device.Verification{Verified: false, Reason: device.ReasonUnknownDevice}
		ctx := requestcontext.WithDeviceID(s.at(9, 0), "android-xyz")
		_, err := s.svc.CheckIn(ctx, s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(s.suspiciousTypes(ctx), audit.AttemptUnknownDevice)
	})

	s.Run("fingerprint mismatch is flagged as such", func() {
		s.SetupTest()
		s.devices.verification = device.Verification{Verified: false, Reason: device.ReasonFingerprintMismatch}
		ctx := requestcontext.WithDeviceID(s.at(9, 0), "android-xyz")
		_, err := s.svc.CheckIn(ctx, s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(s.suspiciousTypes(ctx), audit.AttemptFingerprintMismatch)
	})

	s.Run("bootstrap verification registers the first device", func() {
		s.SetupTest()
		s.devices.verification = device.Verification{Verified: true, RequiresRegistration: true}
		ctx := requestcontext.WithDeviceID(s.at(9, 0), "android-first")
		_, err := s.svc.CheckIn(ctx, s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(1, s.devices.registered)
	})
}

func (s *EngineSuite) TestCheckOut() {
	checkIn := func(hour, minute int) {
		_, err := s.svc.CheckIn(s.at(hour, minute), s.employee.ID, atBranch())
		s.Require().NoError(err)
	}

	s.Run("before check-in is rejected", func() {
		s.SetupTest()
		_, err := s.svc.CheckOut(s.at(17, 0), s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("full day computes working and overtime minutes", func() {
		s.SetupTest()
		checkIn(9, 0)
		res, err := s.svc.CheckOut(s.at(17, 45), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(attendance.StatusPresent, res.Record.Status)
		s.Equal(8*60+45, res.Record.WorkingMinutes)
		s.Equal(45, res.Record.OvertimeMinutes)
		s.False(res.IsEarlyLeave)
	})

	s.Run("leaving before end of shift becomes EARLY_LEAVE", func() {
		s.SetupTest()
		checkIn(9, 0)
		res, err := s.svc.CheckOut(s.at(16, 20), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(attendance.StatusEarlyLeave, res.Record.Status)
		s.Equal(40, res.EarlyLeaveMinutes)
		s.Zero(res.Record.OvertimeMinutes)
		s.Contains(s.notifier.overseerTypes(), notify.TypeMissedCheckOut)
	})

	s.Run("LATE survives an early leave", func() {
		s.SetupTest()
		checkIn(9, 30)
		res, err := s.svc.CheckOut(s.at(16, 0), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(attendance.StatusLate, res.Record.Status)
		s.Equal(60, res.Record.EarlyLeaveMinutes)
	})

	s.Run("second check-out conflicts", func() {
		s.SetupTest()
		checkIn(9, 0)
		_, err := s.svc.CheckOut(s.at(17, 0), s.employee.ID, atBranch())
		s.Require().NoError(err)
		_, err = s.svc.CheckOut(s.at(17, 30), s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("registered face is mandatory on check-out", func() {
		s.SetupTest()
		checkIn(9, 0)
		s.employee.FaceRegistered = true
		s.Require().NoError(s.users.Save(context.Background(), s.employee))
		_, err := s.svc.CheckOut(s.at(17, 0), s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("geofence applies on check-out for office days", func() {
		s.SetupTest()
		checkIn(9, 0)
		in := attendance.PunchInput{Latitude: branchLat + 0.01, Longitude: branchLng}
		_, err := s.svc.CheckOut(s.at(17, 0), s.employee.ID, in)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("WFH day skips the geofence on check-out", func() {
		s.SetupTest()
		s.exemptions.wfh = true
		in := attendance.PunchInput{Latitude: 48.8566, Longitude: 2.3522}
		_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, in)
		s.Require().NoError(err)
		res, err := s.svc.CheckOut(s.at(17, 0), s.employee.ID, in)
		s.Require().NoError(err)
		s.Equal(attendance.StatusWorkFromHome, res.Record.Status)
	})
}

func (s *EngineSuite) TestConcurrentCheckIn() {
	const attempts = 50

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded, "exactly one concurrent check-in may win the day")
	_, err := s.store.FindByUserAndDay(context.Background(), s.employee.ID,
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
}

func (s *EngineSuite) TestMarkOnLeave() {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	s.Run("creates a record when none exists", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.MarkOnLeave(context.Background(), s.employee.ID, day))
		rec, err := s.store.FindByUserAndDay(context.Background(), s.employee.ID, day)
		s.Require().NoError(err)
		s.Equal(attendance.StatusOnLeave, rec.Status)
		s.False(rec.CheckedIn())
	})

	s.Run("overrides an existing record", func() {
		s.SetupTest()
		_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Require().NoError(s.svc.MarkOnLeave(context.Background(), s.employee.ID, day))
		rec, err := s.store.FindByUserAndDay(context.Background(), s.employee.ID, day)
		s.Require().NoError(err)
		s.Equal(attendance.StatusOnLeave, rec.Status)
	})

	s.Run("check-in on a marked day is forbidden", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.MarkOnLeave(context.Background(), s.employee.ID, day))
		_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("check-out on a marked day without a check-in is rejected", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.MarkOnLeave(context.Background(), s.employee.ID, day))
		_, err := s.svc.CheckOut(s.at(17, 0), s.employee.ID, atBranch())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		rec, err := s.store.FindByUserAndDay(context.Background(), s.employee.ID, day)
		s.Require().NoError(err)
		s.False(rec.CheckedOut())
		s.Zero(rec.WorkingMinutes)
	})

	s.Run("leave marked after a check-in still blocks check-out", func() {
		s.SetupTest()
		_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Require().NoError(s.svc.MarkOnLeave(context.Background(), s.employee.ID, day))
		_, err = s.svc.CheckOut(s.at(17, 0), s.employee.ID, atBranch())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *EngineSuite) TestToday() {
	s.Run("no record yet", func() {
		s.SetupTest()
		view, err := s.svc.Today(s.at(8, 0), s.employee.ID)
		s.Require().NoError(err)
		s.Nil(view.Record)
		s.Equal("09:00", view.WorkStart)
		s.Equal("17:00", view.WorkEnd)
		s.Equal("UTC", view.Timezone)
	})

	s.Run("returns the day's record after check-in", func() {
		s.SetupTest()
		_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
		s.Require().NoError(err)
		view, err := s.svc.Today(s.at(10, 0), s.employee.ID)
		s.Require().NoError(err)
		s.Require().NotNil(view.Record)
		s.Equal(attendance.StatusPresent, view.Record.Status)
	})
}

func (s *EngineSuite) TestBranchLocalDayKeying() {
	riyadh := time.FixedZone("UTC+3", 3*60*60)

	s.Run("record keys to the branch-local date", func() {
		s.SetupTest()
		s.schedules.sched.Location = riyadh
		// 06:30 UTC is 09:30 at the branch, inside the work day.
		ctx := requestcontext.WithTime(context.Background(),
			time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC))
		res, err := s.svc.CheckIn(ctx, s.employee.ID, atBranch())
		s.Require().NoError(err)
		s.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), res.Record.Day)
		s.Equal(attendance.StatusPresent, res.Record.Status)
	})

	s.Run("late-night UTC request already belongs to the next local day", func() {
		s.SetupTest()
		s.schedules.sched.Location = riyadh
		morning := requestcontext.WithTime(context.Background(),
			time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC))
		_, err := s.svc.CheckIn(morning, s.employee.ID, atBranch())
		s.Require().NoError(err)

		// 21:30 UTC on March 2nd is 00:30 on March 3rd at the branch,
		// so the morning's record is no longer today's.
		lateNight := requestcontext.WithTime(context.Background(),
			time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC))
		view, err := s.svc.Today(lateNight, s.employee.ID)
		s.Require().NoError(err)
		s.Nil(view.Record)
	})

	s.Run("absent days advance with the branch clock", func() {
		s.SetupTest()
		s.schedules.sched.Location = riyadh
		// 21:30 UTC on Monday March 2nd is past midnight at the branch,
		// so Monday has elapsed with no record and counts as absent.
		lateNight := requestcontext.WithTime(context.Background(),
			time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC))
		stats, err := s.svc.MonthlyStats(lateNight, s.employee.ID, 2026, time.March)
		s.Require().NoError(err)
		s.Equal(1, stats.AbsentDays)
	})
}

func (s *EngineSuite) TestMonthlyStats() {
	// March 2026: the 2nd is a Monday. Work the 2nd and 3rd, skip the 4th,
	// take leave on the 5th, then ask for stats on Saturday the 7th.
	s.Require().NoError(s.store.Create(context.Background(), attendance.Record{
		ID: id.NewAttendanceID(), UserID: s.employee.ID, BranchID: s.employee.BranchID,
		Day:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		CheckInAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Status:    attendance.StatusPresent, WorkingMinutes: 480,
	}))
	s.Require().NoError(s.store.Create(context.Background(), attendance.Record{
		ID: id.NewAttendanceID(), UserID: s.employee.ID, BranchID: s.employee.BranchID,
		Day:       time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		CheckInAt: time.Date(2026, 3, 3, 9, 25, 0, 0, time.UTC),
		Status:    attendance.StatusLate, LateMinutes: 25, WorkingMinutes: 455, OvertimeMinutes: 15,
	}))
	s.Require().NoError(s.store.Create(context.Background(), attendance.Record{
		ID: id.NewAttendanceID(), UserID: s.employee.ID, BranchID: s.employee.BranchID,
		Day:    time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Status: attendance.StatusOnLeave,
	}))

	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC))
	stats, err := s.svc.MonthlyStats(ctx, s.employee.ID, 2026, time.March)
	s.Require().NoError(err)

	s.Equal(1, stats.PresentDays)
	s.Equal(1, stats.LateDays)
	s.Equal(1, stats.OnLeaveDays)
	// Weekdays elapsed before the 7th are the 2nd through the 6th; only the
	// 4th and 6th have no record.
	s.Equal(2, stats.AbsentDays)
	s.Equal(480+455, stats.TotalWorkingMinutes)
	s.Equal(15, stats.TotalOvertimeMinutes)
	s.Equal(25, stats.TotalLateMinutes)
}

func (s *EngineSuite) TestDailySnapshot() {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	second := user.User{
		ID: id.NewUserID(), Email: "nour@hadir.dev", FirstName: "Nour", LastName: "Adel",
		Role: user.RoleEmployee, Status: user.StatusActive, BranchID: s.employee.BranchID,
	}
	third := user.User{
		ID: id.NewUserID(), Email: "karim@hadir.dev", FirstName: "Karim", LastName: "Said",
		Role: user.RoleEmployee, Status: user.StatusActive, BranchID: s.employee.BranchID,
	}
	s.Require().NoError(s.users.Save(context.Background(), second))
	s.Require().NoError(s.users.Save(context.Background(), third))

	_, err := s.svc.CheckIn(s.at(9, 0), s.employee.ID, atBranch())
	s.Require().NoError(err)
	s.Require().NoError(s.svc.MarkOnLeave(context.Background(), second.ID, day))

	snap, err := s.svc.DailySnapshot(context.Background(), day)
	s.Require().NoError(err)
	s.Equal(3, snap.Headcount)
	s.Equal(1, snap.Present)
	s.Equal(1, snap.OnLeave)
	s.Equal(1, snap.Absent)
}
