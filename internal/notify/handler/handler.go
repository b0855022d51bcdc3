package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hadir/internal/notify"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/httputil"
	"hadir/pkg/requestcontext"
)

// Service defines the inbox operations the handler exposes.
type Service interface {
	Inbox(ctx context.Context, userID id.UserID, page, pageSize int) ([]notify.Notification, error)
	UnreadCount(ctx context.Context, userID id.UserID) (int, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID string) error
	MarkAllRead(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleInbox)
	r.Get("/notifications/unread-count", h.HandleUnreadCount)
	r.Post("/notifications/{notificationID}/read", h.HandleMarkRead)
	r.Post("/notifications/read-all", h.HandleMarkAllRead)
}

func (h *Handler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	notifications, err := h.service.Inbox(ctx, requestcontext.UserID(ctx), page, pageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.service.UnreadCount(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.MarkRead(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "notificationID")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.MarkAllRead(ctx, requestcontext.UserID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
