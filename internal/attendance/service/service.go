// Package service implements the attendance policy engine: the ordered
// admission gates for check-in and check-out and the day-scoped record state
// machine (no record, checked in, checked out).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"hadir/internal/attendance"
	"hadir/internal/attendance/metrics"
	"hadir/internal/attendance/store"
	"hadir/internal/audit"
	"hadir/internal/branch"
	"hadir/internal/device"
	"hadir/internal/face"
	"hadir/internal/geofence"
	"hadir/internal/notify"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/sentinel"
	"hadir/pkg/requestcontext"
)

// ScheduleSource resolves the schedule governing a user's day. Implemented
// by the branch service.
type ScheduleSource interface {
	EffectiveSchedule(ctx context.Context, u user.User) (branch.Schedule, error)
}

// Directory is the user lookup surface the engine needs.
type Directory interface {
	FindByID(ctx context.Context, userID id.UserID) (user.User, error)
	CountActive(ctx context.Context) (int, error)
}

// FaceGate verifies and enrolls face embeddings. Implemented by the face
// service.
type FaceGate interface {
	Verify(ctx context.Context, userID id.UserID, candidate []float64, threshold float64, image []byte) (face.ComparisonResult, error)
	Register(ctx context.Context, userID id.UserID, embedding []float64, image []byte) (face.Profile, error)
}

// DeviceGate verifies device trust. Implemented by the device service.
type DeviceGate interface {
	Verify(ctx context.Context, u user.User, deviceID, fingerprint string, action audit.DeviceAction) (device.Verification, error)
	Register(ctx context.Context, u user.User, desc device.Descriptor) (device.RegisteredDevice, error)
}

// ExemptionSource answers day-scoped leave and WFH questions. Implemented by
// the leave service.
type ExemptionSource interface {
	OnApprovedLeave(ctx context.Context, userID id.UserID, day time.Time) (bool, error)
	HasWFHExemption(ctx context.Context, userID id.UserID, day time.Time) (bool, error)
}

// Notifier delivers notifications. Implemented by the notify service.
type Notifier interface {
	Send(ctx context.Context, userID id.UserID, typ notify.Type, title, body string, meta map[string]string)
	NotifyOverseers(ctx context.Context, managerID id.UserID, typ notify.Type, title, body string, meta map[string]string)
}

// Config carries the engine's policy parameters.
type Config struct {
	// FaceMatchThreshold is the confidence the attendance flow requires,
	// distinct from the comparator's own default.
	FaceMatchThreshold float64
}

type Service struct {
	store      store.Store
	schedules  ScheduleSource
	users      Directory
	faces      FaceGate
	devices    DeviceGate
	exemptions ExemptionSource
	notifier   Notifier
	audit      *audit.Publisher
	metrics    *metrics.Metrics
	cfg        Config
	tracer     trace.Tracer
	logger     *slog.Logger
}

func New(st store.Store, schedules ScheduleSource, users Directory, faces FaceGate,
	devices DeviceGate, exemptions ExemptionSource, notifier Notifier,
	auditPub *audit.Publisher, m *metrics.Metrics, cfg Config, logger *slog.Logger) *Service {
	if cfg.FaceMatchThreshold <= 0 || cfg.FaceMatchThreshold > 1 {
		cfg.FaceMatchThreshold = 0.5
	}
	return &Service{
		store:      st,
		schedules:  schedules,
		users:      users,
		faces:      faces,
		devices:    devices,
		exemptions: exemptions,
		notifier:   notifier,
		audit:      auditPub,
		metrics:    m,
		cfg:        cfg,
		tracer:     otel.Tracer("hadir/internal/attendance"),
		logger:     logger,
	}
}

// SetExemptions binds the leave collaborator. The leave service also depends
// on this engine (approved leave materializes records), so one side of the
// pair is bound after construction.
func (s *Service) SetExemptions(exemptions ExemptionSource) {
	s.exemptions = exemptions
}

// CheckIn runs the admission gates in order and creates the day's record.
// Every gate is hard: a rejection leaves no record behind.
func (s *Service) CheckIn(ctx context.Context, userID id.UserID, in attendance.PunchInput) (attendance.PunchResult, error) {
	start := time.Now()
	defer s.metrics.ObserveCheckIn(start)

	ctx, span := s.tracer.Start(ctx, "attendance.CheckIn",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	u, sched, now, day, err := s.resolve(ctx, userID)
	if err != nil {
		return attendance.PunchResult{}, err
	}
	nowMinutes := now.Hour()*60 + now.Minute()

	onLeave, err := s.exemptions.OnApprovedLeave(ctx, u.ID, day)
	if err != nil {
		return attendance.PunchResult{}, err
	}
	if onLeave {
		s.metrics.IncrementRejection("check_in", "on_leave")
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeForbidden,
			"you are on approved leave today")
	}

	if in.IsMockLocation {
		s.flagSuspicious(ctx, u, audit.AttemptMockLocation, in, 0)
		s.metrics.IncrementRejection("check_in", "mock_location")
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeForbidden,
			"mock locations are not accepted")
	}

	if err := s.deviceGate(ctx, u, in, audit.ActionCheckIn); err != nil {
		s.metrics.IncrementRejection("check_in", "device")
		return attendance.PunchResult{}, err
	}

	wfh, err := s.exemptions.HasWFHExemption(ctx, u.ID, day)
	if err != nil {
		return attendance.PunchResult{}, err
	}

	var distanceM float64
	if !wfh {
		distanceM, err = s.geofenceGate(ctx, u, sched.Branch, in, "check_in")
		if err != nil {
			return attendance.PunchResult{}, err
		}
	}

	existing, err := s.store.FindByUserAndDay(ctx, u.ID, day)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return attendance.PunchResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "load attendance record")
	}
	if err == nil {
		if existing.Status == attendance.StatusOnLeave {
			s.metrics.IncrementRejection("check_in", "on_leave")
			return attendance.PunchResult{}, dErrors.New(dErrors.CodeForbidden,
				"you are on approved leave today")
		}
		if existing.CheckedIn() {
			s.metrics.IncrementRejection("check_in", "duplicate")
			return attendance.PunchResult{}, dErrors.New(dErrors.CodeConflict,
				"already checked in today")
		}
	}

	if nowMinutes < sched.EarliestCheckInMinutes() {
		opens := minutesToClock(sched.EarliestCheckInMinutes())
		s.notifier.Send(ctx, u.ID, notify.TypeAnnouncement,
			"Too early to check in",
			fmt.Sprintf("Check-in opens at %s", opens), nil)
		s.metrics.IncrementRejection("check_in", "too_early")
		return attendance.PunchResult{}, dErrors.Newf(dErrors.CodeBadRequest,
			"check-in opens at %s", opens)
	}

	status := attendance.StatusPresent
	lateMinutes := 0
	if nowMinutes > sched.GraceEndMinutes() {
		status = attendance.StatusLate
		lateMinutes = nowMinutes - sched.WorkStartMinutes
	}

	faceEnrolled, err := s.faceCheckInGate(ctx, u, in, "check_in")
	if err != nil {
		return attendance.PunchResult{}, err
	}

	if wfh {
		status = attendance.StatusWorkFromHome
	}

	rec := attendance.Record{
		ID:               id.NewAttendanceID(),
		UserID:           u.ID,
		BranchID:         u.BranchID,
		Day:              day,
		CheckInAt:        now,
		CheckInLatitude:  in.Latitude,
		CheckInLongitude: in.Longitude,
		CheckInDistanceM: distanceM,
		Status:           status,
		LateMinutes:      lateMinutes,
		IsWorkFromHome:   wfh,
		DeviceInfo:       in.DeviceInfo,
	}
	err = s.store.Create(ctx, rec)
	if errors.Is(err, sentinel.ErrConflict) {
		// A concurrent request won the unique (user, day) race.
		s.metrics.IncrementRejection("check_in", "duplicate")
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeConflict,
			"already checked in today")
	}
	if err != nil {
		return attendance.PunchResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "create attendance record")
	}

	if status == attendance.StatusLate {
		s.notifier.Send(ctx, u.ID, notify.TypeLateCheckIn,
			"Late check-in",
			fmt.Sprintf("You checked in %d minutes late", lateMinutes), nil)
		s.notifier.NotifyOverseers(ctx, u.ManagerID, notify.TypeLateCheckIn,
			"Late check-in",
			fmt.Sprintf("%s checked in %d minutes late", u.FullName(), lateMinutes),
			map[string]string{"user_id": u.ID.String()})
	}

	s.metrics.IncrementCheckIn(string(status))
	return attendance.PunchResult{
		Record:       rec,
		IsLate:       status == attendance.StatusLate,
		LateMinutes:  lateMinutes,
		FaceEnrolled: faceEnrolled,
	}, nil
}

// CheckOut closes the day's record. Requires a prior check-in and no prior
// check-out.
func (s *Service) CheckOut(ctx context.Context, userID id.UserID, in attendance.PunchInput) (attendance.PunchResult, error) {
	start := time.Now()
	defer s.metrics.ObserveCheckOut(start)

	ctx, span := s.tracer.Start(ctx, "attendance.CheckOut",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	u, sched, now, day, err := s.resolve(ctx, userID)
	if err != nil {
		return attendance.PunchResult{}, err
	}
	nowMinutes := now.Hour()*60 + now.Minute()

	if in.IsMockLocation {
		s.flagSuspicious(ctx, u, audit.AttemptMockLocation, in, 0)
		s.metrics.IncrementRejection("check_out", "mock_location")
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeForbidden,
			"mock locations are not accepted")
	}

	// On check-out an enrolled face is mandatory, never an enrollment.
	if u.FaceRegistered {
		if len(in.FaceEmbedding) == 0 {
			s.metrics.IncrementRejection("check_out", "face_required")
			return attendance.PunchResult{}, dErrors.New(dErrors.CodeBadRequest,
				"face capture is required to check out")
		}
		result, err := s.faces.Verify(ctx, u.ID, in.FaceEmbedding, s.cfg.FaceMatchThreshold, in.FaceImage)
		if err != nil {
			s.metrics.IncrementRejection("check_out", "face_invalid")
			return attendance.PunchResult{}, err
		}
		if !result.IsMatch {
			s.flagSuspicious(ctx, u, audit.AttemptFaceMismatch, in, 0)
			s.metrics.IncrementRejection("check_out", "face_mismatch")
			return attendance.PunchResult{}, dErrors.New(dErrors.CodeForbidden,
				"face does not match the registered profile")
		}
	}

	rec, err := s.store.FindByUserAndDay(ctx, u.ID, day)
	if errors.Is(err, sentinel.ErrNotFound) || (err == nil && !rec.CheckedIn()) {
		s.metrics.IncrementRejection("check_out", "not_checked_in")
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeBadRequest,
			"you have not checked in today")
	}
	if err != nil {
		return attendance.PunchResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "load attendance record")
	}
	if rec.Status == attendance.StatusOnLeave {
		s.metrics.IncrementRejection("check_out", "on_leave")
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeForbidden,
			"you are on approved leave today")
	}
	if rec.CheckedOut() {
		s.metrics.IncrementRejection("check_out", "duplicate")
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeConflict,
			"already checked out today")
	}
	if !now.After(rec.CheckInAt) {
		return attendance.PunchResult{}, dErrors.New(dErrors.CodeBadRequest,
			"check-out time must be after check-in time")
	}

	var distanceM float64
	if !rec.IsWorkFromHome {
		distanceM, err = s.geofenceGate(ctx, u, sched.Branch, in, "check_out")
		if err != nil {
			return attendance.PunchResult{}, err
		}
	}

	earlyLeave := 0
	if left := sched.WorkEndMinutes - nowMinutes; left > 0 {
		earlyLeave = left
		if rec.Status == attendance.StatusPresent {
			rec.Status = attendance.StatusEarlyLeave
		}
	}

	working := int(now.Sub(rec.CheckInAt).Minutes())
	overtime := working - sched.ExpectedWorkMinutes()
	if overtime < 0 {
		overtime = 0
	}

	rec.CheckOutAt = now
	rec.CheckOutLatitude = in.Latitude
	rec.CheckOutLongitude = in.Longitude
	rec.CheckOutDistanceM = distanceM
	rec.EarlyLeaveMinutes = earlyLeave
	rec.WorkingMinutes = working
	rec.OvertimeMinutes = overtime
	if err := s.store.Update(ctx, rec); err != nil {
		return attendance.PunchResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "update attendance record")
	}

	if earlyLeave > 0 {
		s.notifier.Send(ctx, u.ID, notify.TypeMissedCheckOut,
			"Early leave",
			fmt.Sprintf("You left %d minutes before end of shift", earlyLeave), nil)
		s.notifier.NotifyOverseers(ctx, u.ManagerID, notify.TypeMissedCheckOut,
			"Early leave",
			fmt.Sprintf("%s left %d minutes before end of shift", u.FullName(), earlyLeave),
			map[string]string{"user_id": u.ID.String()})
	}

	s.metrics.IncrementCheckOut(string(rec.Status))
	return attendance.PunchResult{
		Record:            rec,
		IsLate:            rec.Status == attendance.StatusLate,
		IsEarlyLeave:      earlyLeave > 0,
		LateMinutes:       rec.LateMinutes,
		EarlyLeaveMinutes: earlyLeave,
	}, nil
}

// MarkOnLeave upserts an ON_LEAVE record for the day. Called by the leave
// service when a request is approved.
func (s *Service) MarkOnLeave(ctx context.Context, userID id.UserID, day time.Time) error {
	day = truncateDay(day)
	rec, err := s.store.FindByUserAndDay(ctx, userID, day)
	if err == nil {
		rec.Status = attendance.StatusOnLeave
		return s.store.Update(ctx, rec)
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	createErr := s.store.Create(ctx, attendance.Record{
		ID:       id.NewAttendanceID(),
		UserID:   userID,
		BranchID: u.BranchID,
		Day:      day,
		Status:   attendance.StatusOnLeave,
	})
	if errors.Is(createErr, sentinel.ErrConflict) {
		rec, err := s.store.FindByUserAndDay(ctx, userID, day)
		if err != nil {
			return err
		}
		rec.Status = attendance.StatusOnLeave
		return s.store.Update(ctx, rec)
	}
	return createErr
}

// TodayView is the employee home screen payload.
type TodayView struct {
	Record         *attendance.Record `json:"record,omitempty"`
	FaceRegistered bool               `json:"faceRegistered"`
	WorkStart      string             `json:"workStart"`
	WorkEnd        string             `json:"workEnd"`
	Timezone       string             `json:"timezone"`
}

// Today returns the user's record for the current branch-local day, plus the
// flags the client needs to drive the punch UI.
func (s *Service) Today(ctx context.Context, userID id.UserID) (TodayView, error) {
	u, sched, now, _, err := s.resolve(ctx, userID)
	if err != nil {
		return TodayView{}, err
	}
	view := TodayView{
		FaceRegistered: u.FaceRegistered,
		WorkStart:      minutesToClock(sched.WorkStartMinutes),
		WorkEnd:        minutesToClock(sched.WorkEndMinutes),
		Timezone:       sched.Location.String(),
	}
	rec, err := s.store.FindByUserAndDay(ctx, userID, truncateDay(now))
	if errors.Is(err, sentinel.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return TodayView{}, dErrors.Wrap(err, dErrors.CodeInternal, "load attendance record")
	}
	view.Record = &rec
	return view, nil
}

// History returns one page of the user's records, newest first.
func (s *Service) History(ctx context.Context, userID id.UserID, f attendance.HistoryFilter) ([]attendance.Record, error) {
	out, err := s.store.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list attendance history")
	}
	return out, nil
}

// MonthlyStats aggregates the user's month. Absent days are elapsed
// branch-local weekdays with no record, counted up to yesterday.
func (s *Service) MonthlyStats(ctx context.Context, userID id.UserID, year int, month time.Month) (attendance.MonthlyStats, error) {
	_, _, _, today, err := s.resolve(ctx, userID)
	if err != nil {
		return attendance.MonthlyStats{}, err
	}
	records, err := s.store.ListByUserForMonth(ctx, userID, year, month)
	if err != nil {
		return attendance.MonthlyStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "list month records")
	}

	stats := attendance.MonthlyStats{Year: year, Month: int(month)}
	recorded := make(map[string]bool, len(records))
	for _, r := range records {
		recorded[r.Day.Format("2006-01-02")] = true
		switch r.Status {
		case attendance.StatusPresent:
			stats.PresentDays++
		case attendance.StatusLate:
			stats.LateDays++
		case attendance.StatusEarlyLeave:
			stats.EarlyLeaveDays++
		case attendance.StatusWorkFromHome:
			stats.WorkFromHomeDays++
		case attendance.StatusOnLeave:
			stats.OnLeaveDays++
		}
		stats.TotalWorkingMinutes += r.WorkingMinutes
		stats.TotalOvertimeMinutes += r.OvertimeMinutes
		stats.TotalLateMinutes += r.LateMinutes
	}

	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month && d.Before(today); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if !recorded[d.Format("2006-01-02")] {
			stats.AbsentDays++
		}
	}
	return stats, nil
}

// DailySnapshot builds the admin dashboard counters for one day. The record
// scan and the headcount query run concurrently.
func (s *Service) DailySnapshot(ctx context.Context, day time.Time) (attendance.DailySnapshot, error) {
	day = truncateDay(day)

	var (
		records   []attendance.Record
		headcount int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListByDay(gctx, day)
		return err
	})
	g.Go(func() error {
		var err error
		headcount, err = s.users.CountActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return attendance.DailySnapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "build daily snapshot")
	}

	snap := attendance.DailySnapshot{Day: day.Format("2006-01-02"), Headcount: headcount}
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			snap.Present++
		case attendance.StatusLate:
			snap.Late++
		case attendance.StatusEarlyLeave:
			snap.EarlyLeave++
		case attendance.StatusWorkFromHome:
			snap.WorkFromHome++
		case attendance.StatusOnLeave:
			snap.OnLeave++
		}
	}
	if absent := headcount - (snap.Present + snap.Late + snap.EarlyLeave + snap.WorkFromHome + snap.OnLeave); absent > 0 {
		snap.Absent = absent
	}
	return snap, nil
}

// ListByDay returns every record for one day, for the admin table view.
func (s *Service) ListByDay(ctx context.Context, day time.Time) ([]attendance.Record, error) {
	out, err := s.store.ListByDay(ctx, truncateDay(day))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list attendance by day")
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, userID id.UserID) (user.User, branch.Schedule, time.Time, time.Time, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return user.User{}, branch.Schedule{}, time.Time{}, time.Time{},
			dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return user.User{}, branch.Schedule{}, time.Time{}, time.Time{},
			dErrors.Wrap(err, dErrors.CodeInternal, "load user")
	}
	sched, err := s.schedules.EffectiveSchedule(ctx, u)
	if err != nil {
		return user.User{}, branch.Schedule{}, time.Time{}, time.Time{}, err
	}
	// The day key is the branch-local date, not the server's.
	now := requestcontext.Now(ctx).In(sched.Location)
	return u, sched, now, truncateDay(now), nil
}

func (s *Service) deviceGate(ctx context.Context, u user.User, in attendance.PunchInput, action audit.DeviceAction) error {
	deviceID := requestcontext.DeviceID(ctx)
	if deviceID == "" {
		return nil
	}
	v, err := s.devices.Verify(ctx, u, deviceID, requestcontext.DeviceFingerprint(ctx), action)
	if err != nil {
		return err
	}
	if !v.Verified {
		attemptType := audit.AttemptUnknownDevice
		if v.Reason == device.ReasonFingerprintMismatch {
			attemptType = audit.AttemptFingerprintMismatch
		}
		s.flagSuspicious(ctx, u, attemptType, in, 0)
		return dErrors.New(dErrors.CodeForbidden, "this device is not authorized for attendance")
	}
	if v.RequiresRegistration {
		if _, err := s.devices.Register(ctx, u, device.Descriptor{DeviceID: deviceID}); err != nil {
			s.logger.WarnContext(ctx, "bootstrap device registration failed",
				"user_id", u.ID, "device_id", deviceID, "error", err)
		}
	}
	return nil
}

func (s *Service) geofenceGate(ctx context.Context, u user.User, b branch.Branch, in attendance.PunchInput, operation string) (float64, error) {
	if !geofence.ValidCoordinate(in.Latitude, in.Longitude) {
		s.metrics.IncrementRejection(operation, "bad_coordinates")
		return 0, dErrors.New(dErrors.CodeValidation, "coordinates are out of range")
	}
	res := geofence.Evaluate(in.Latitude, in.Longitude, b.Latitude, b.Longitude, float64(b.GeofenceRadiusM))
	if !res.WithinRadius {
		s.flagSuspicious(ctx, u, audit.AttemptOutOfRange, in, res.DistanceM)
		s.metrics.IncrementRejection(operation, "out_of_range")
		return 0, dErrors.Newf(dErrors.CodeBadRequest,
			"outside the branch geofence: %.0fm away, %dm allowed", res.DistanceM, b.GeofenceRadiusM)
	}
	return res.DistanceM, nil
}

// faceCheckInGate enforces the face step for check-in: a registered face must
// match; an unregistered user supplying an embedding is auto-enrolled.
// Returns whether enrollment happened.
func (s *Service) faceCheckInGate(ctx context.Context, u user.User, in attendance.PunchInput, operation string) (bool, error) {
	if u.FaceRegistered {
		if len(in.FaceEmbedding) == 0 {
			s.metrics.IncrementRejection(operation, "face_required")
			return false, dErrors.New(dErrors.CodeBadRequest,
				"face capture is required to check in")
		}
		result, err := s.faces.Verify(ctx, u.ID, in.FaceEmbedding, s.cfg.FaceMatchThreshold, in.FaceImage)
		if err != nil {
			s.metrics.IncrementRejection(operation, "face_invalid")
			return false, err
		}
		if !result.IsMatch {
			s.flagSuspicious(ctx, u, audit.AttemptFaceMismatch, in, 0)
			s.metrics.IncrementRejection(operation, "face_mismatch")
			return false, dErrors.New(dErrors.CodeForbidden,
				"face does not match the registered profile")
		}
		return false, nil
	}
	if len(in.FaceEmbedding) > 0 {
		if _, err := s.faces.Register(ctx, u.ID, in.FaceEmbedding, in.FaceImage); err != nil {
			s.metrics.IncrementRejection(operation, "face_enroll_failed")
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *Service) flagSuspicious(ctx context.Context, u user.User, typ audit.AttemptType, in attendance.PunchInput, distanceM float64) {
	s.audit.Suspicious(ctx, audit.SuspiciousAttempt{
		UserID:     u.ID,
		Type:       typ,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		DistanceM:  distanceM,
		DeviceInfo: in.DeviceInfo,
	})
	s.notifier.NotifyOverseers(ctx, u.ManagerID, notify.TypeSuspiciousAttempt,
		"Suspicious attendance attempt",
		fmt.Sprintf("%s: %s", u.FullName(), typ),
		map[string]string{"user_id": u.ID.String(), "attempt_type": string(typ)})
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
