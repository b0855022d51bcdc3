package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Statements are idempotent so startup can run
// them unconditionally. The two UNIQUE constraints on attendance(user_id, day)
// and registered_devices(user_id, device_id) are load-bearing: they are what
// turns racing duplicate writers into clean conflicts.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS branches (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		geofence_radius_m INTEGER NOT NULL DEFAULT 100,
		work_start TEXT NOT NULL DEFAULT '09:00',
		work_end TEXT NOT NULL DEFAULT '17:00',
		late_grace_minutes INTEGER NOT NULL DEFAULT 10,
		early_check_in_minutes INTEGER NOT NULL DEFAULT 30,
		timezone TEXT NOT NULL DEFAULT 'Africa/Cairo',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS departments (
		id UUID PRIMARY KEY,
		branch_id UUID NOT NULL REFERENCES branches(id),
		name TEXT NOT NULL,
		work_start TEXT,
		work_end TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		employee_code TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'EMPLOYEE',
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		branch_id UUID REFERENCES branches(id),
		department_id UUID REFERENCES departments(id),
		manager_id UUID REFERENCES users(id),
		face_registered BOOLEAN NOT NULL DEFAULT FALSE,
		push_token TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS attendance (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		branch_id UUID REFERENCES branches(id),
		day DATE NOT NULL,
		check_in_at TIMESTAMPTZ,
		check_out_at TIMESTAMPTZ,
		check_in_latitude DOUBLE PRECISION,
		check_in_longitude DOUBLE PRECISION,
		check_in_distance_m DOUBLE PRECISION,
		check_out_latitude DOUBLE PRECISION,
		check_out_longitude DOUBLE PRECISION,
		check_out_distance_m DOUBLE PRECISION,
		status TEXT NOT NULL,
		late_minutes INTEGER NOT NULL DEFAULT 0,
		early_leave_minutes INTEGER NOT NULL DEFAULT 0,
		working_minutes INTEGER NOT NULL DEFAULT 0,
		overtime_minutes INTEGER NOT NULL DEFAULT 0,
		is_work_from_home BOOLEAN NOT NULL DEFAULT FALSE,
		device_info TEXT,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, day)
	)`,

	`CREATE TABLE IF NOT EXISTS face_profiles (
		user_id UUID PRIMARY KEY REFERENCES users(id),
		embedding JSONB NOT NULL,
		image_url TEXT,
		quality DOUBLE PRECISION NOT NULL DEFAULT 0,
		registered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_verified_at TIMESTAMPTZ,
		verification_count INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS registered_devices (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		device_id TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		name TEXT,
		model TEXT,
		brand TEXT,
		platform TEXT NOT NULL DEFAULT 'UNKNOWN',
		os_version TEXT,
		app_version TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		is_main BOOLEAN NOT NULL DEFAULT FALSE,
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_used_at TIMESTAMPTZ,
		approved_by UUID,
		approved_at TIMESTAMPTZ,
		blocked_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, device_id)
	)`,

	`CREATE TABLE IF NOT EXISTS device_access_logs (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		device_row_id UUID,
		attempted_device_id TEXT NOT NULL,
		action TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		known_device BOOLEAN NOT NULL,
		failure_reason TEXT,
		client_ip TEXT,
		location TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS suspicious_attempts (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		attempt_type TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		distance_m DOUBLE PRECISION,
		device_info TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS leave_requests (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		approver_id UUID,
		approver_notes TEXT,
		decided_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS work_from_home (
		user_id UUID NOT NULL REFERENCES users(id),
		day DATE NOT NULL,
		reason TEXT,
		approved_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, day)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		metadata JSONB,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attendance_day ON attendance (day)`,
	`CREATE INDEX IF NOT EXISTS idx_suspicious_user ON suspicious_attempts (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_device_logs_user ON device_access_logs (user_id, created_at DESC)`,
}
