// Package httptransport composes the feature handlers into one router with
// the shared middleware chain. Business logic stays in the feature services.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendancehandler "hadir/internal/attendance/handler"
	audithandler "hadir/internal/audit/handler"
	authhandler "hadir/internal/auth/handler"
	branchhandler "hadir/internal/branch/handler"
	devicehandler "hadir/internal/device/handler"
	facehandler "hadir/internal/face/handler"
	leavehandler "hadir/internal/leave/handler"
	notifyhandler "hadir/internal/notify/handler"
	"hadir/internal/platform/middleware"
	"hadir/internal/user"
)

// Deps carries everything the router mounts.
type Deps struct {
	Validator  middleware.JWTValidator
	Auth       *authhandler.Handler
	Attendance *attendancehandler.Handler
	Device     *devicehandler.Handler
	Face       *facehandler.Handler
	Leave      *leavehandler.Handler
	Notify     *notifyhandler.Handler
	Branch     *branchhandler.Handler
	Audit      *audithandler.Handler
	Logger     *slog.Logger
}

// NewRouter wires the middleware chain and all endpoints. Manager and admin
// share the oversight routes; branch administration and account provisioning
// stay admin only.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.DeviceIdentity)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	d.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Validator, d.Logger))

		d.Auth.Register(r)
		d.Attendance.Register(r)
		d.Device.Register(r)
		d.Face.Register(r)
		d.Leave.Register(r)
		d.Notify.Register(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(user.RoleAdmin), string(user.RoleManager)))

			d.Attendance.RegisterAdmin(r)
			d.Device.RegisterAdmin(r)
			d.Leave.RegisterAdmin(r)
			d.Audit.RegisterAdmin(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(user.RoleAdmin)))
				d.Branch.RegisterAdmin(r)
				d.Face.RegisterAdmin(r)
				d.Auth.RegisterAdmin(r)
			})
		})
	})

	return r
}
