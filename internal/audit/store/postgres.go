package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hadir/internal/audit"
	id "hadir/pkg/domain"
)

// Postgres is the database-backed Store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) AppendSuspicious(ctx context.Context, a audit.SuspiciousAttempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO suspicious_attempts (id, user_id, attempt_type, latitude, longitude, distance_m, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
		a.ID, a.UserID, string(a.Type), a.Latitude, a.Longitude, a.DistanceM, a.DeviceInfo)
	if err != nil {
		return fmt.Errorf("append suspicious attempt: %w", err)
	}
	return nil
}

func (p *Postgres) ListSuspicious(ctx context.Context, userID id.UserID, since time.Time, limit int) ([]audit.SuspiciousAttempt, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, attempt_type, latitude, longitude,
			COALESCE(distance_m, 0), COALESCE(device_info, ''), created_at
		FROM suspicious_attempts
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3`, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list suspicious attempts: %w", err)
	}
	defer rows.Close()

	var out []audit.SuspiciousAttempt
	for rows.Next() {
		var a audit.SuspiciousAttempt
		var typ string
		if err := rows.Scan(&a.ID, &a.UserID, &typ, &a.Latitude, &a.Longitude,
			&a.DistanceM, &a.DeviceInfo, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suspicious attempt: %w", err)
		}
		a.Type = audit.AttemptType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) CountSuspicious(ctx context.Context, userID id.UserID, since time.Time) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM suspicious_attempts
		WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count suspicious attempts: %w", err)
	}
	return n, nil
}

func (p *Postgres) AppendDeviceAccess(ctx context.Context, e audit.DeviceAccessEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO device_access_logs (id, user_id, device_row_id, attempted_device_id,
			action, success, known_device, failure_reason, client_ip, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))`,
		e.ID, e.UserID, nullableID(e.DeviceRowID), e.AttemptedDeviceID,
		string(e.Action), e.Success, e.KnownDevice, e.FailureReason, e.ClientIP, e.Location)
	if err != nil {
		return fmt.Errorf("append device access log: %w", err)
	}
	return nil
}

func (p *Postgres) ListDeviceAccess(ctx context.Context, userID id.UserID, limit int) ([]audit.DeviceAccessEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(device_row_id, '00000000-0000-0000-0000-000000000000'),
			attempted_device_id, action, success, known_device,
			COALESCE(failure_reason, ''), COALESCE(client_ip, ''), COALESCE(location, ''), created_at
		FROM device_access_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list device access logs: %w", err)
	}
	defer rows.Close()

	var out []audit.DeviceAccessEntry
	for rows.Next() {
		var e audit.DeviceAccessEntry
		var action string
		if err := rows.Scan(&e.ID, &e.UserID, &e.DeviceRowID, &e.AttemptedDeviceID,
			&action, &e.Success, &e.KnownDevice, &e.FailureReason, &e.ClientIP,
			&e.Location, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan device access log: %w", err)
		}
		e.Action = audit.DeviceAction(action)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullableID(d id.DeviceID) any {
	if d.IsNil() {
		return nil
	}
	return d
}
