package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadir/internal/branch"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/httputil"
	"hadir/pkg/requestcontext"
)

// Service defines the branch administration operations the handler exposes.
type Service interface {
	Get(ctx context.Context, branchID id.BranchID) (branch.Branch, error)
	List(ctx context.Context) ([]branch.Branch, error)
	Save(ctx context.Context, b branch.Branch) (branch.Branch, error)
	SaveDepartment(ctx context.Context, d branch.Department) (branch.Department, error)
	ListDepartments(ctx context.Context, branchID id.BranchID) ([]branch.Department, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts branch and department administration.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/branches", h.HandleList)
	r.Post("/branches", h.HandleSave)
	r.Get("/branches/{branchID}", h.HandleGet)
	r.Get("/branches/{branchID}/departments", h.HandleListDepartments)
	r.Post("/branches/{branchID}/departments", h.HandleSaveDepartment)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	branchID, err := id.ParseBranchID(chi.URLParam(r, "branchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	b, err := h.service.Get(r.Context(), branchID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

type saveBranchRequest struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name" valid:"required"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	GeofenceRadiusM     int     `json:"geofenceRadiusMeters"`
	WorkStart           string  `json:"workStart" valid:"required"`
	WorkEnd             string  `json:"workEnd" valid:"required"`
	LateGraceMinutes    int     `json:"lateGraceMinutes"`
	EarlyCheckInMinutes int     `json:"earlyCheckInMinutes"`
	Timezone            string  `json:"timezone"`
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[saveBranchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	b := branch.Branch{
		Name:                req.Name,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		GeofenceRadiusM:     req.GeofenceRadiusM,
		WorkStart:           req.WorkStart,
		WorkEnd:             req.WorkEnd,
		LateGraceMinutes:    req.LateGraceMinutes,
		EarlyCheckInMinutes: req.EarlyCheckInMinutes,
		Timezone:            req.Timezone,
	}
	if req.ID != "" {
		var err error
		if b.ID, err = id.ParseBranchID(req.ID); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	saved, err := h.service.Save(ctx, b)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "branch saved",
		"request_id", requestID,
		"branch_id", saved.ID,
		"name", saved.Name,
	)
	httputil.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) HandleListDepartments(w http.ResponseWriter, r *http.Request) {
	branchID, err := id.ParseBranchID(chi.URLParam(r, "branchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	departments, err := h.service.ListDepartments(r.Context(), branchID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"departments": departments})
}

type saveDepartmentRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name" valid:"required"`
	WorkStart string `json:"workStart"`
	WorkEnd   string `json:"workEnd"`
}

func (h *Handler) HandleSaveDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	branchID, err := id.ParseBranchID(chi.URLParam(r, "branchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[saveDepartmentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	d := branch.Department{
		BranchID:  branchID,
		Name:      req.Name,
		WorkStart: req.WorkStart,
		WorkEnd:   req.WorkEnd,
	}
	if req.ID != "" {
		if d.ID, err = id.ParseDepartmentID(req.ID); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	saved, err := h.service.SaveDepartment(ctx, d)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}
