package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"hadir/internal/device"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
	"hadir/pkg/platform/tx"
)

// Postgres is the database-backed Store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// querier lets store methods run inside an ambient transaction when one is
// present in the context.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return p.db
}

const deviceColumns = `id, user_id, device_id, fingerprint,
	COALESCE(name, ''), COALESCE(model, ''), COALESCE(brand, ''), platform,
	COALESCE(os_version, ''), COALESCE(app_version, ''), status, is_main,
	usage_count, last_used_at,
	COALESCE(approved_by, '00000000-0000-0000-0000-000000000000'),
	approved_at, COALESCE(blocked_reason, ''), created_at`

func (p *Postgres) FindByRowID(ctx context.Context, rowID id.DeviceID) (device.RegisteredDevice, error) {
	row := p.q(ctx).QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM registered_devices WHERE id = $1`, rowID)
	return scanDevice(row)
}

func (p *Postgres) FindByUserAndDeviceID(ctx context.Context, userID id.UserID, deviceID string) (device.RegisteredDevice, error) {
	row := p.q(ctx).QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM registered_devices
		 WHERE user_id = $1 AND device_id = $2`, userID, deviceID)
	return scanDevice(row)
}

func (p *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]device.RegisteredDevice, error) {
	rows, err := p.q(ctx).QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM registered_devices
		 WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []device.RegisteredDevice
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) CountInStatuses(ctx context.Context, userID id.UserID, statuses []device.Status) (int, error) {
	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, string(st))
	}
	var n int
	err := p.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registered_devices
		 WHERE user_id = $1 AND status = ANY($2)`, userID, pq.Array(names)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count devices: %w", err)
	}
	return n, nil
}

func (p *Postgres) Create(ctx context.Context, d device.RegisteredDevice) error {
	_, err := p.q(ctx).ExecContext(ctx, `
		INSERT INTO registered_devices (id, user_id, device_id, fingerprint, name, model,
			brand, platform, os_version, app_version, status, is_main, usage_count)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8,
			NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13)`,
		d.ID, d.UserID, d.DeviceID, d.Fingerprint, d.Name, d.Model,
		d.Brand, d.Platform, d.OSVersion, d.AppVersion, string(d.Status), d.IsMain, d.UsageCount)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, d device.RegisteredDevice) error {
	res, err := p.q(ctx).ExecContext(ctx, `
		UPDATE registered_devices SET
			fingerprint = $2,
			name = NULLIF($3, ''),
			model = NULLIF($4, ''),
			brand = NULLIF($5, ''),
			platform = $6,
			os_version = NULLIF($7, ''),
			app_version = NULLIF($8, ''),
			status = $9,
			is_main = $10,
			usage_count = $11,
			approved_by = $12,
			approved_at = $13,
			blocked_reason = NULLIF($14, '')
		WHERE id = $1`,
		d.ID, d.Fingerprint, d.Name, d.Model, d.Brand, d.Platform,
		d.OSVersion, d.AppVersion, string(d.Status), d.IsMain, d.UsageCount,
		nullableUser(d.ApprovedBy), nullableTime(d.ApprovedAt), d.BlockedReason)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) RecordUsage(ctx context.Context, rowID id.DeviceID) error {
	res, err := p.q(ctx).ExecContext(ctx, `
		UPDATE registered_devices
		SET usage_count = usage_count + 1, last_used_at = now()
		WHERE id = $1`, rowID)
	if err != nil {
		return fmt.Errorf("record device usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// SetMain clears the previous main flag and sets the new one in one
// transaction so there is never a window with zero or two main devices.
func (p *Postgres) SetMain(ctx context.Context, userID id.UserID, rowID id.DeviceID) error {
	return tx.Run(ctx, p.db, func(ctx context.Context) error {
		q := p.q(ctx)
		if _, err := q.ExecContext(ctx, `
			UPDATE registered_devices SET is_main = FALSE
			WHERE user_id = $1 AND is_main = TRUE`, userID); err != nil {
			return fmt.Errorf("clear main device: %w", err)
		}
		res, err := q.ExecContext(ctx, `
			UPDATE registered_devices SET is_main = TRUE
			WHERE id = $1 AND user_id = $2`, rowID, userID)
		if err != nil {
			return fmt.Errorf("set main device: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sentinel.ErrNotFound
		}
		return nil
	})
}

func (p *Postgres) Delete(ctx context.Context, rowID id.DeviceID) error {
	res, err := p.q(ctx).ExecContext(ctx,
		`DELETE FROM registered_devices WHERE id = $1`, rowID)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (device.RegisteredDevice, error) {
	var (
		d          device.RegisteredDevice
		status     string
		lastUsed   sql.NullTime
		approvedAt sql.NullTime
	)
	err := row.Scan(&d.ID, &d.UserID, &d.DeviceID, &d.Fingerprint,
		&d.Name, &d.Model, &d.Brand, &d.Platform, &d.OSVersion, &d.AppVersion,
		&status, &d.IsMain, &d.UsageCount, &lastUsed, &d.ApprovedBy,
		&approvedAt, &d.BlockedReason, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return device.RegisteredDevice{}, sentinel.ErrNotFound
	}
	if err != nil {
		return device.RegisteredDevice{}, fmt.Errorf("scan device: %w", err)
	}
	d.Status = device.Status(status)
	if lastUsed.Valid {
		d.LastUsedAt = lastUsed.Time
	}
	if approvedAt.Valid {
		d.ApprovedAt = approvedAt.Time
	}
	return d, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullableUser(u id.UserID) any {
	if u.IsNil() {
		return nil
	}
	return u
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
