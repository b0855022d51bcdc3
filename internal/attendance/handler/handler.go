package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hadir/internal/attendance"
	"hadir/internal/attendance/service"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/httputil"
	"hadir/pkg/requestcontext"
)

// Service defines the attendance operations the handler exposes.
type Service interface {
	CheckIn(ctx context.Context, userID id.UserID, in attendance.PunchInput) (attendance.PunchResult, error)
	CheckOut(ctx context.Context, userID id.UserID, in attendance.PunchInput) (attendance.PunchResult, error)
	Today(ctx context.Context, userID id.UserID) (service.TodayView, error)
	History(ctx context.Context, userID id.UserID, f attendance.HistoryFilter) ([]attendance.Record, error)
	MonthlyStats(ctx context.Context, userID id.UserID, year int, month time.Month) (attendance.MonthlyStats, error)
	DailySnapshot(ctx context.Context, day time.Time) (attendance.DailySnapshot, error)
	ListByDay(ctx context.Context, day time.Time) ([]attendance.Record, error)
}

// Handler wires attendance endpoints to the policy engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the employee-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attendance/check-in", h.HandleCheckIn)
	r.Post("/attendance/check-out", h.HandleCheckOut)
	r.Get("/attendance/today", h.HandleToday)
	r.Get("/attendance/history", h.HandleHistory)
	r.Get("/attendance/stats", h.HandleMonthlyStats)
}

// RegisterAdmin mounts the admin endpoints. The router gates them on role.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/attendance", h.HandleListByDay)
	r.Get("/attendance/snapshot", h.HandleDailySnapshot)
}

func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, "check_in", h.service.CheckIn)
}

func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, "check_out", h.service.CheckOut)
}

func (h *Handler) punch(w http.ResponseWriter, r *http.Request, operation string,
	call func(context.Context, id.UserID, attendance.PunchInput) (attendance.PunchResult, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	in, ok := httputil.DecodeAndPrepare[attendance.PunchInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := call(ctx, userID, in)
	if err != nil {
		h.logger.WarnContext(ctx, "punch rejected",
			"request_id", requestID,
			"user_id", userID,
			"operation", operation,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "punch accepted",
		"request_id", requestID,
		"user_id", userID,
		"operation", operation,
		"status", result.Record.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.Today(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	f := attendance.HistoryFilter{
		Status:   attendance.Status(q.Get("status")),
		Page:     intParam(q.Get("page")),
		PageSize: intParam(q.Get("pageSize")),
	}
	var err error
	if f.From, err = dateParam(q.Get("from")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if f.To, err = dateParam(q.Get("to")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.History(ctx, requestcontext.UserID(ctx), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) HandleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := requestcontext.Now(ctx)

	year := intParam(r.URL.Query().Get("year"))
	if year == 0 {
		year = now.Year()
	}
	month := intParam(r.URL.Query().Get("month"))
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "month must be 1-12"))
		return
	}

	stats, err := h.service.MonthlyStats(ctx, requestcontext.UserID(ctx), year, time.Month(month))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleListByDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	day, err := dateParam(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if day.IsZero() {
		day = requestcontext.Now(ctx)
	}
	records, err := h.service.ListByDay(ctx, day)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) HandleDailySnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	day, err := dateParam(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if day.IsZero() {
		day = requestcontext.Now(ctx)
	}
	snap, err := h.service.DailySnapshot(ctx, day)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func intParam(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func dateParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}
