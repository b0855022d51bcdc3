package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadir/internal/device"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/httputil"
	"hadir/pkg/requestcontext"
)

// Service defines the device registry operations the handler exposes.
type Service interface {
	Register(ctx context.Context, u user.User, desc device.Descriptor) (device.RegisteredDevice, error)
	List(ctx context.Context, userID id.UserID) ([]device.RegisteredDevice, error)
	SetMain(ctx context.Context, userID id.UserID, rowID id.DeviceID) error
	Remove(ctx context.Context, userID id.UserID, rowID id.DeviceID) error
	Approve(ctx context.Context, adminID id.UserID, rowID id.DeviceID, makeMain bool) (device.RegisteredDevice, error)
	Block(ctx context.Context, adminID id.UserID, rowID id.DeviceID, reason string) (device.RegisteredDevice, error)
}

// Directory resolves the authenticated user for registration.
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
	r.Get("/devices", h.HandleList)
	r.Post("/devices", h.HandleRegister)
	r.Put("/devices/{deviceID}/main", h.HandleSetMain)
	r.Delete("/devices/{deviceID}", h.HandleRemove)
}

// RegisterAdmin mounts the approval workflow.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/devices/{deviceID}/approve", h.HandleApprove)
	r.Post("/devices/{deviceID}/block", h.HandleBlock)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	devices, err := h.service.List(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	desc, ok := httputil.DecodeAndPrepare[device.Descriptor](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	u, err := h.users.FindByID(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	registered, err := h.service.Register(ctx, u, desc)
	if err != nil {
		h.logger.WarnContext(ctx, "device registration rejected",
			"request_id", requestID,
			"user_id", userID,
			"device_id", desc.DeviceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registered)
}

func (h *Handler) HandleSetMain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rowID, err := id.ParseDeviceID(chi.URLParam(r, "deviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.SetMain(ctx, requestcontext.UserID(ctx), rowID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rowID, err := id.ParseDeviceID(chi.URLParam(r, "deviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Remove(ctx, requestcontext.UserID(ctx), rowID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type approveRequest struct {
	MakeMain bool `json:"makeMain"`
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	rowID, err := id.ParseDeviceID(chi.URLParam(r, "deviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[approveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	adminID := requestcontext.UserID(ctx)
	approved, err := h.service.Approve(ctx, adminID, rowID, req.MakeMain)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "device approved",
		"request_id", requestID,
		"admin_id", adminID,
		"device_row_id", rowID,
	)
	httputil.WriteJSON(w, http.StatusOK, approved)
}

type blockRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rowID, err := id.ParseDeviceID(chi.URLParam(r, "deviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[blockRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	blocked, err := h.service.Block(ctx, requestcontext.UserID(ctx), rowID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, blocked)
}
