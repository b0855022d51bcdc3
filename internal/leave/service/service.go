// Package service implements the leave request workflow and WFH grants.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hadir/internal/leave"
	"hadir/internal/leave/store"
	"hadir/internal/notify"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/sentinel"
	"hadir/pkg/requestcontext"
)

// Notifier delivers notifications. Implemented by the notify service.
type Notifier interface {
	Send(ctx context.Context, userID id.UserID, typ notify.Type, title, body string, meta map[string]string)
	NotifyOverseers(ctx context.Context, managerID id.UserID, typ notify.Type, title, body string, meta map[string]string)
}

// AttendanceMarker materializes ON_LEAVE attendance records for approved
// leave days. Implemented by the attendance service.
type AttendanceMarker interface {
	MarkOnLeave(ctx context.Context, userID id.UserID, day time.Time) error
}

type Service struct {
	store      store.Store
	notifier   Notifier
	attendance AttendanceMarker
	logger     *slog.Logger
}

func New(st store.Store, notifier Notifier, attendance AttendanceMarker, logger *slog.Logger) *Service {
	return &Service{store: st, notifier: notifier, attendance: attendance, logger: logger}
}

// Request files a new leave request. The range is inclusive and must not
// overlap an existing pending or approved request.
func (s *Service) Request(ctx context.Context, u user.User, typ leave.Type, start, end time.Time, reason string) (leave.Request, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return leave.Request{}, dErrors.New(dErrors.CodeValidation, "end date is before start date")
	}
	if end.Sub(start) > 365*24*time.Hour {
		return leave.Request{}, dErrors.New(dErrors.CodeValidation, "leave range exceeds one year")
	}

	overlap, err := s.store.HasOverlap(ctx, u.ID, start, end, id.LeaveID{})
	if err != nil {
		return leave.Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "check leave overlap")
	}
	if overlap {
		return leave.Request{}, dErrors.New(dErrors.CodeConflict,
			"an existing leave request overlaps this range")
	}

	r := leave.Request{
		ID:        id.NewLeaveID(),
		UserID:    u.ID,
		Type:      typ,
		StartDate: start,
		EndDate:   end,
		Reason:    reason,
		Status:    leave.StatusPending,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return leave.Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "create leave request")
	}

	s.notifier.NotifyOverseers(ctx, u.ManagerID, notify.TypeLeaveRequested,
		"Leave request",
		fmt.Sprintf("%s requested %s leave %s to %s", u.FullName(), typ,
			start.Format("2006-01-02"), end.Format("2006-01-02")),
		map[string]string{"leave_id": r.ID.String(), "user_id": u.ID.String()})
	return r, nil
}

// Approve transitions a pending request to APPROVED and materializes one
// ON_LEAVE attendance record per covered day. Materialization failures are
// logged per day; the approval itself stands.
func (s *Service) Approve(ctx context.Context, approverID id.UserID, leaveID id.LeaveID, notes string) (leave.Request, error) {
	r, err := s.decide(ctx, approverID, leaveID, notes, leave.StatusApproved)
	if err != nil {
		return leave.Request{}, err
	}
	for _, day := range r.Days() {
		if err := s.attendance.MarkOnLeave(ctx, r.UserID, day); err != nil {
			s.logger.ErrorContext(ctx, "failed to materialize on-leave record",
				"leave_id", r.ID, "user_id", r.UserID, "day", day.Format("2006-01-02"),
				"error", err)
		}
	}
	s.notifier.Send(ctx, r.UserID, notify.TypeLeaveDecided,
		"Leave approved",
		fmt.Sprintf("Your %s leave from %s to %s was approved", r.Type,
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02")),
		map[string]string{"leave_id": r.ID.String()})
	return r, nil
}

// Reject transitions a pending request to REJECTED.
func (s *Service) Reject(ctx context.Context, approverID id.UserID, leaveID id.LeaveID, notes string) (leave.Request, error) {
	r, err := s.decide(ctx, approverID, leaveID, notes, leave.StatusRejected)
	if err != nil {
		return leave.Request{}, err
	}
	s.notifier.Send(ctx, r.UserID, notify.TypeLeaveDecided,
		"Leave rejected",
		fmt.Sprintf("Your %s leave request was rejected: %s", r.Type, notes),
		map[string]string{"leave_id": r.ID.String()})
	return r, nil
}

func (s *Service) decide(ctx context.Context, approverID id.UserID, leaveID id.LeaveID, notes string, to leave.RequestStatus) (leave.Request, error) {
	r, err := s.find(ctx, leaveID)
	if err != nil {
		return leave.Request{}, err
	}
	if r.Status != leave.StatusPending {
		return leave.Request{}, dErrors.Newf(dErrors.CodeConflict,
			"leave request is already %s", r.Status)
	}
	r.Status = to
	r.ApproverID = approverID
	r.ApproverNotes = notes
	r.DecidedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, r); err != nil {
		return leave.Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "update leave request")
	}
	return r, nil
}

// Cancel lets the owner withdraw a still-pending request.
func (s *Service) Cancel(ctx context.Context, userID id.UserID, leaveID id.LeaveID) (leave.Request, error) {
	r, err := s.find(ctx, leaveID)
	if err != nil {
		return leave.Request{}, err
	}
	if r.UserID != userID {
		return leave.Request{}, dErrors.New(dErrors.CodeNotFound, "leave request not found")
	}
	if r.Status != leave.StatusPending {
		return leave.Request{}, dErrors.Newf(dErrors.CodeConflict,
			"only pending requests can be cancelled, this one is %s", r.Status)
	}
	r.Status = leave.StatusCancelled
	r.DecidedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, r); err != nil {
		return leave.Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "update leave request")
	}
	return r, nil
}

// ListMine returns one page of the user's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, userID id.UserID, page, pageSize int) ([]leave.Request, error) {
	offset, limit := paging(page, pageSize)
	out, err := s.store.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list leave requests")
	}
	return out, nil
}

// ListPending returns one page of requests awaiting decision.
func (s *Service) ListPending(ctx context.Context, page, pageSize int) ([]leave.Request, error) {
	offset, limit := paging(page, pageSize)
	out, err := s.store.ListByStatus(ctx, leave.StatusPending, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pending leave requests")
	}
	return out, nil
}

// OnApprovedLeave reports whether the user has approved leave covering day.
func (s *Service) OnApprovedLeave(ctx context.Context, userID id.UserID, day time.Time) (bool, error) {
	ok, err := s.store.ApprovedOn(ctx, userID, truncateDay(day))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check approved leave")
	}
	return ok, nil
}

// GrantWFH marks a user work-from-home for one day.
func (s *Service) GrantWFH(ctx context.Context, approverID, userID id.UserID, day time.Time, reason string) error {
	g := leave.WFHGrant{
		UserID:     userID,
		Day:        truncateDay(day),
		Reason:     reason,
		ApprovedBy: approverID,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.SaveWFH(ctx, g); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save wfh grant")
	}
	return nil
}

// RevokeWFH removes a day's WFH grant.
func (s *Service) RevokeWFH(ctx context.Context, userID id.UserID, day time.Time) error {
	err := s.store.DeleteWFH(ctx, userID, truncateDay(day))
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "no wfh grant for that day")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete wfh grant")
	}
	return nil
}

// HasWFHExemption reports whether the user is WFH-exempt on day.
func (s *Service) HasWFHExemption(ctx context.Context, userID id.UserID, day time.Time) (bool, error) {
	ok, err := s.store.IsWFH(ctx, userID, truncateDay(day))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check wfh grant")
	}
	return ok, nil
}

func (s *Service) find(ctx context.Context, leaveID id.LeaveID) (leave.Request, error) {
	r, err := s.store.Find(ctx, leaveID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return leave.Request{}, dErrors.New(dErrors.CodeNotFound, "leave request not found")
	}
	if err != nil {
		return leave.Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "load leave request")
	}
	return r, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func paging(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
