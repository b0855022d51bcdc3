package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadir/internal/auth/service"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/httputil"
	"hadir/pkg/requestcontext"
)

// Service defines the auth operations the handler exposes.
type Service interface {
	Login(ctx context.Context, email, password string) (service.Session, error)
	CreateUser(ctx context.Context, in service.NewUserInput) (user.User, error)
	UpdatePushToken(ctx context.Context, userID id.UserID, token string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated login endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// Register mounts the authenticated endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Put("/auth/push-token", h.HandlePushToken)
}

// RegisterAdmin mounts account provisioning.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/users", h.HandleCreateUser)
}

type loginRequest struct {
	Email    string `json:"email" valid:"required,email"`
	Password string `json:"password" valid:"required"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"email", req.Email,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestID,
		"user_id", session.User.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, session)
}

type pushTokenRequest struct {
	Token string `json:"token" valid:"required"`
}

func (h *Handler) HandlePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[pushTokenRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.UpdatePushToken(ctx, requestcontext.UserID(ctx), req.Token); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[service.NewUserInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.CreateUser(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user created",
		"request_id", requestID,
		"user_id", created.ID,
		"role", created.Role,
	)
	httputil.WriteJSON(w, http.StatusCreated, created)
}
