package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadir/internal/face"
	"hadir/internal/face/service"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/httputil"
	"hadir/pkg/requestcontext"
)

// Service defines the face profile operations the handler exposes.
type Service interface {
	Register(ctx context.Context, userID id.UserID, embedding []float64, image []byte) (face.Profile, error)
	GetStatus(ctx context.Context, userID id.UserID) (service.Status, error)
	Reset(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the employee-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/face/register", h.HandleRegister)
	r.Get("/face/status", h.HandleStatus)
}

// RegisterAdmin mounts the reset endpoint.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/users/{userID}/face", h.HandleReset)
}

type registerRequest struct {
	Embedding []float64 `json:"embedding" valid:"required"`
	Image     []byte    `json:"image"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.Register(ctx, userID, req.Embedding, req.Image)
	if err != nil {
		h.logger.WarnContext(ctx, "face registration rejected",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "face registered",
		"request_id", requestID,
		"user_id", userID,
		"quality", profile.Quality,
	)
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"quality":  profile.Quality,
		"imageUrl": profile.ImageURL,
	})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.service.GetStatus(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Reset(ctx, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "face profile reset",
		"request_id", requestcontext.RequestID(ctx),
		"admin_id", requestcontext.UserID(ctx),
		"user_id", userID,
	)
	w.WriteHeader(http.StatusNoContent)
}
