package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hadir/internal/leave"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/httputil"
	"hadir/pkg/requestcontext"
)

// Service defines the leave operations the handler exposes.
type Service interface {
	Request(ctx context.Context, u user.User, typ leave.Type, start, end time.Time, reason string) (leave.Request, error)
	Cancel(ctx context.Context, userID id.UserID, leaveID id.LeaveID) (leave.Request, error)
	Approve(ctx context.Context, approverID id.UserID, leaveID id.LeaveID, notes string) (leave.Request, error)
	Reject(ctx context.Context, approverID id.UserID, leaveID id.LeaveID, notes string) (leave.Request, error)
	ListMine(ctx context.Context, userID id.UserID, page, pageSize int) ([]leave.Request, error)
	ListPending(ctx context.Context, page, pageSize int) ([]leave.Request, error)
	GrantWFH(ctx context.Context, approverID, userID id.UserID, day time.Time, reason string) error
	RevokeWFH(ctx context.Context, userID id.UserID, day time.Time) error
}

// Directory resolves the requesting user.
type Directory interface {
	FindByID(ctx context.Context, userID id.UserID) (user.User, error)
}

type Handler struct {
	service Service
	users   Directory
	logger  *slog.Logger
}

func New(service Service, users Directory, logger *slog.Logger) *Handler {
	return &Handler{service: service, users: users, logger: logger}
}

// Register mounts the employee-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/leaves", h.HandleRequest)
	r.Get("/leaves", h.HandleListMine)
	r.Post("/leaves/{leaveID}/cancel", h.HandleCancel)
}

// RegisterAdmin mounts the manager/admin decision endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/leaves/pending", h.HandleListPending)
	r.Post("/leaves/{leaveID}/approve", h.HandleApprove)
	r.Post("/leaves/{leaveID}/reject", h.HandleReject)
	r.Put("/wfh", h.HandleGrantWFH)
	r.Delete("/wfh", h.HandleRevokeWFH)
}

type leaveRequest struct {
	Type      string `json:"type" valid:"required"`
	StartDate string `json:"startDate" valid:"required"`
	EndDate   string `json:"endDate" valid:"required"`
	Reason    string `json:"reason"`
}

func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[leaveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	u, err := h.users.FindByID(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, err := h.service.Request(ctx, u, leave.Type(req.Type), start, end, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "leave request rejected",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	requests, err := h.service.ListMine(ctx, requestcontext.UserID(ctx),
		intParam(q.Get("page")), intParam(q.Get("pageSize")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	requests, err := h.service.ListPending(ctx, intParam(q.Get("page")), intParam(q.Get("pageSize")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leaveID, err := id.ParseLeaveID(chi.URLParam(r, "leaveID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cancelled, err := h.service.Cancel(ctx, requestcontext.UserID(ctx), leaveID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cancelled)
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request,
	call func(context.Context, id.UserID, id.LeaveID, string) (leave.Request, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	leaveID, err := id.ParseLeaveID(chi.URLParam(r, "leaveID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[decisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	approverID := requestcontext.UserID(ctx)
	decided, err := call(ctx, approverID, leaveID, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "leave decided",
		"request_id", requestID,
		"approver_id", approverID,
		"leave_id", leaveID,
		"status", decided.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, decided)
}

type wfhRequest struct {
	UserID string `json:"userId" valid:"required"`
	Day    string `json:"day" valid:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) HandleGrantWFH(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[wfhRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	day, err := parseDate(req.Day)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.GrantWFH(ctx, requestcontext.UserID(ctx), userID, day, req.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRevokeWFH(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	userID, err := id.ParseUserID(q.Get("userId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	day, err := parseDate(q.Get("day"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RevokeWFH(ctx, userID, day); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeBadRequest, "invalid date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}

func intParam(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
