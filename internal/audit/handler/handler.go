package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hadir/internal/audit/store"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/httputil"
)

// Handler exposes the audit trail to admins, read only.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

func New(st store.Store, logger *slog.Logger) *Handler {
	return &Handler{store: st, logger: logger}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/suspicious-attempts", h.HandleListSuspicious)
	r.Get("/device-access", h.HandleListDeviceAccess)
}

func (h *Handler) HandleListSuspicious(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	userID, err := id.ParseUserID(q.Get("userId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "userId query parameter is required"))
		return
	}
	since := time.Time{}
	if v := q.Get("since"); v != "" {
		if since, err = time.Parse("2006-01-02", v); err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid since %q, want YYYY-MM-DD", v))
			return
		}
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	attempts, err := h.store.ListSuspicious(ctx, userID, since, limit)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list suspicious attempts"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

func (h *Handler) HandleListDeviceAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	userID, err := id.ParseUserID(q.Get("userId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "userId query parameter is required"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := h.store.ListDeviceAccess(ctx, userID, limit)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list device access log"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
