// Command server wires the attendance service together: stores, feature
// services, HTTP transport, and background workers. Business logic lives in
// the internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	attendancehandler "hadir/internal/attendance/handler"
	attendancemetrics "hadir/internal/attendance/metrics"
	attendanceservice "hadir/internal/attendance/service"
	attendancestore "hadir/internal/attendance/store"
	"hadir/internal/audit"
	audithandler "hadir/internal/audit/handler"
	auditstore "hadir/internal/audit/store"
	authhandler "hadir/internal/auth/handler"
	authservice "hadir/internal/auth/service"
	branchhandler "hadir/internal/branch/handler"
	branchservice "hadir/internal/branch/service"
	branchstore "hadir/internal/branch/store"
	devicehandler "hadir/internal/device/handler"
	devicemetrics "hadir/internal/device/metrics"
	deviceservice "hadir/internal/device/service"
	devicestore "hadir/internal/device/store"
	facehandler "hadir/internal/face/handler"
	"hadir/internal/face/imagestore"
	faceservice "hadir/internal/face/service"
	facestore "hadir/internal/face/store"
	leavehandler "hadir/internal/leave/handler"
	leaveservice "hadir/internal/leave/service"
	leavestore "hadir/internal/leave/store"
	"hadir/internal/notify"
	notifyhandler "hadir/internal/notify/handler"
	notifyservice "hadir/internal/notify/service"
	notifystore "hadir/internal/notify/store"
	"hadir/internal/platform/config"
	"hadir/internal/platform/httpserver"
	"hadir/internal/platform/logger"
	"hadir/internal/platform/postgres"
	platformredis "hadir/internal/platform/redis"
	httptransport "hadir/internal/transport/http"
	userstore "hadir/internal/user/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var brokers []string
	if cfg.KafkaBrokers != "" {
		brokers = strings.Split(cfg.KafkaBrokers, ",")
	}
	mirror, err := audit.NewKafkaMirror(brokers, cfg.KafkaTopic, log)
	if err != nil {
		return err
	}
	go mirror.Run(ctx)

	images, err := imagestore.New(cfg.CloudinaryURL)
	if err != nil {
		return err
	}

	// Stores.
	users := userstore.NewPostgres(db)
	branches := branchstore.NewPostgres(db)
	devices := devicestore.NewPostgres(db)
	faces := facestore.NewPostgres(db)
	leaves := leavestore.NewPostgres(db)
	attendanceDB := attendancestore.NewPostgres(db)
	auditDB := auditstore.NewPostgres(db)
	notifications := notifystore.NewPostgres(db)

	// Services. The attendance engine consumes the others through its ports.
	auditPub := audit.NewPublisher(auditDB, mirror, log)
	throttle := notify.NewThrottle(redisClient, 30*time.Minute)
	notifySvc := notifyservice.New(notifications, users, nil, throttle, log)
	branchSvc := branchservice.New(branches, cfg.Attendance.DefaultTimezone, log)
	deviceSvc := deviceservice.New(devices, auditPub, notifySvc, devicemetrics.New(),
		cfg.Devices.MaxActiveDevices, log)
	faceSvc := faceservice.New(faces, users, images, log)
	attendanceSvc := attendanceservice.New(attendanceDB, branchSvc, users, faceSvc,
		deviceSvc, nil, notifySvc, auditPub, attendancemetrics.New(),
		attendanceservice.Config{FaceMatchThreshold: cfg.Attendance.FaceMatchThreshold}, log)
	leaveSvc := leaveservice.New(leaves, notifySvc, attendanceSvc, log)
	attendanceSvc.SetExemptions(leaveSvc)
	authSvc := authservice.New(users, deviceSvc, cfg.JWTSigningKey, cfg.JWTTTL, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Validator:  authSvc,
		Auth:       authhandler.New(authSvc, log),
		Attendance: attendancehandler.New(attendanceSvc, log),
		Device:     devicehandler.New(deviceSvc, users, log),
		Face:       facehandler.New(faceSvc, log),
		Leave:      leavehandler.New(leaveSvc, users, log),
		Notify:     notifyhandler.New(notifySvc, log),
		Branch:     branchhandler.New(branchSvc, log),
		Audit:      audithandler.New(auditDB, log),
		Logger:     log,
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting hadir", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
