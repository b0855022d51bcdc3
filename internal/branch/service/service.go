// Package service resolves work schedules and manages branch configuration.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hadir/internal/branch"
	"hadir/internal/branch/store"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/sentinel"
)

type Service struct {
	store           store.Store
	defaultTimezone string
	logger          *slog.Logger
}

func New(st store.Store, defaultTimezone string, logger *slog.Logger) *Service {
	return &Service{store: st, defaultTimezone: defaultTimezone, logger: logger}
}

// EffectiveSchedule resolves the schedule governing a user's attendance.
// Department work-hour overrides replace the branch values when present;
// grace and early-window minutes always come from the branch.
func (s *Service) EffectiveSchedule(ctx context.Context, u user.User) (branch.Schedule, error) {
	if u.BranchID.IsNil() {
		return branch.Schedule{}, dErrors.New(dErrors.CodeInvariantViolation,
			"user has no branch assignment")
	}
	b, err := s.store.FindBranch(ctx, u.BranchID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return branch.Schedule{}, dErrors.New(dErrors.CodeNotFound, "branch not found")
	}
	if err != nil {
		return branch.Schedule{}, dErrors.Wrap(err, dErrors.CodeInternal, "load branch")
	}

	workStart, workEnd := b.WorkStart, b.WorkEnd
	if !u.DepartmentID.IsNil() {
		d, err := s.store.FindDepartment(ctx, u.DepartmentID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return branch.Schedule{}, dErrors.Wrap(err, dErrors.CodeInternal, "load department")
		}
		if err == nil {
			if d.WorkStart != "" {
				workStart = d.WorkStart
			}
			if d.WorkEnd != "" {
				workEnd = d.WorkEnd
			}
		}
	}

	return s.buildSchedule(ctx, b, workStart, workEnd)
}

func (s *Service) buildSchedule(ctx context.Context, b branch.Branch, workStart, workEnd string) (branch.Schedule, error) {
	startMin, err := branch.ParseClock(workStart)
	if err != nil {
		return branch.Schedule{}, dErrors.Wrap(err, dErrors.CodeInvariantViolation,
			"branch work start is malformed")
	}
	endMin, err := branch.ParseClock(workEnd)
	if err != nil {
		return branch.Schedule{}, dErrors.Wrap(err, dErrors.CodeInvariantViolation,
			"branch work end is malformed")
	}
	if endMin <= startMin {
		return branch.Schedule{}, dErrors.New(dErrors.CodeInvariantViolation,
			"work end must be after work start")
	}

	tz := b.Timezone
	if tz == "" {
		tz = s.defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.logger.WarnContext(ctx, "unknown branch timezone, falling back to default",
			"branch_id", b.ID, "timezone", tz)
		loc, err = time.LoadLocation(s.defaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}

	return branch.Schedule{
		Branch:              b,
		WorkStartMinutes:    startMin,
		WorkEndMinutes:      endMin,
		LateGraceMinutes:    b.LateGraceMinutes,
		EarlyCheckInMinutes: b.EarlyCheckInMinutes,
		Location:            loc,
	}, nil
}

// Get returns one branch.
func (s *Service) Get(ctx context.Context, branchID id.BranchID) (branch.Branch, error) {
	b, err := s.store.FindBranch(ctx, branchID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return branch.Branch{}, dErrors.New(dErrors.CodeNotFound, "branch not found")
	}
	if err != nil {
		return branch.Branch{}, dErrors.Wrap(err, dErrors.CodeInternal, "load branch")
	}
	return b, nil
}

// List returns all branches.
func (s *Service) List(ctx context.Context) ([]branch.Branch, error) {
	out, err := s.store.ListBranches(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list branches")
	}
	return out, nil
}

// Save validates and persists a branch. Used for both create and update.
func (s *Service) Save(ctx context.Context, b branch.Branch) (branch.Branch, error) {
	if b.ID.IsNil() {
		b.ID = id.NewBranchID()
	}
	if b.Name == "" {
		return branch.Branch{}, dErrors.New(dErrors.CodeValidation, "branch name is required")
	}
	if b.GeofenceRadiusM <= 0 {
		return branch.Branch{}, dErrors.New(dErrors.CodeValidation,
			"geofence radius must be positive")
	}
	if b.Timezone == "" {
		b.Timezone = s.defaultTimezone
	}
	// Reject schedules that can never produce a positive shift.
	if _, err := s.buildSchedule(ctx, b, b.WorkStart, b.WorkEnd); err != nil {
		return branch.Branch{}, dErrors.Wrap(err, dErrors.CodeValidation,
			"branch schedule is invalid")
	}
	if err := s.store.SaveBranch(ctx, b); err != nil {
		return branch.Branch{}, dErrors.Wrap(err, dErrors.CodeInternal, "save branch")
	}
	return b, nil
}

// SaveDepartment validates and persists a department.
func (s *Service) SaveDepartment(ctx context.Context, d branch.Department) (branch.Department, error) {
	if d.ID.IsNil() {
		d.ID = id.NewDepartmentID()
	}
	if d.Name == "" {
		return branch.Department{}, dErrors.New(dErrors.CodeValidation, "department name is required")
	}
	if _, err := s.Get(ctx, d.BranchID); err != nil {
		return branch.Department{}, err
	}
	for _, v := range []string{d.WorkStart, d.WorkEnd} {
		if v == "" {
			continue
		}
		if _, err := branch.ParseClock(v); err != nil {
			return branch.Department{}, dErrors.New(dErrors.CodeValidation,
				"department work hours are malformed")
		}
	}
	if err := s.store.SaveDepartment(ctx, d); err != nil {
		return branch.Department{}, dErrors.Wrap(err, dErrors.CodeInternal, "save department")
	}
	return d, nil
}

// ListDepartments returns the departments of a branch.
func (s *Service) ListDepartments(ctx context.Context, branchID id.BranchID) ([]branch.Department, error) {
	out, err := s.store.ListDepartments(ctx, branchID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list departments")
	}
	return out, nil
}
