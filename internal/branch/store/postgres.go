package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hadir/internal/branch"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Postgres is the database-backed Store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const branchColumns = `id, name, latitude, longitude, geofence_radius_m,
	work_start, work_end, late_grace_minutes, early_check_in_minutes, timezone, created_at`

func (p *Postgres) FindBranch(ctx context.Context, branchID id.BranchID) (branch.Branch, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = $1`, branchID)
	return scanBranch(row)
}

func (p *Postgres) ListBranches(ctx context.Context) ([]branch.Branch, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+branchColumns+` FROM branches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var out []branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveBranch(ctx context.Context, b branch.Branch) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO branches (id, name, latitude, longitude, geofence_radius_m,
			work_start, work_end, late_grace_minutes, early_check_in_minutes, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			geofence_radius_m = EXCLUDED.geofence_radius_m,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			late_grace_minutes = EXCLUDED.late_grace_minutes,
			early_check_in_minutes = EXCLUDED.early_check_in_minutes,
			timezone = EXCLUDED.timezone`,
		b.ID, b.Name, b.Latitude, b.Longitude, b.GeofenceRadiusM,
		b.WorkStart, b.WorkEnd, b.LateGraceMinutes, b.EarlyCheckInMinutes, b.Timezone)
	if err != nil {
		return fmt.Errorf("save branch: %w", err)
	}
	return nil
}

func (p *Postgres) FindDepartment(ctx context.Context, departmentID id.DepartmentID) (branch.Department, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, branch_id, name, COALESCE(work_start, ''), COALESCE(work_end, '')
		FROM departments WHERE id = $1`, departmentID)
	var d branch.Department
	err := row.Scan(&d.ID, &d.BranchID, &d.Name, &d.WorkStart, &d.WorkEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return branch.Department{}, sentinel.ErrNotFound
	}
	if err != nil {
		return branch.Department{}, fmt.Errorf("scan department: %w", err)
	}
	return d, nil
}

func (p *Postgres) ListDepartments(ctx context.Context, branchID id.BranchID) ([]branch.Department, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, branch_id, name, COALESCE(work_start, ''), COALESCE(work_end, '')
		FROM departments WHERE branch_id = $1 ORDER BY name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var out []branch.Department
	for rows.Next() {
		var d branch.Department
		if err := rows.Scan(&d.ID, &d.BranchID, &d.Name, &d.WorkStart, &d.WorkEnd); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveDepartment(ctx context.Context, d branch.Department) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO departments (id, branch_id, name, work_start, work_end)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end`,
		d.ID, d.BranchID, d.Name, d.WorkStart, d.WorkEnd)
	if err != nil {
		return fmt.Errorf("save department: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBranch(row rowScanner) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(&b.ID, &b.Name, &b.Latitude, &b.Longitude, &b.GeofenceRadiusM,
		&b.WorkStart, &b.WorkEnd, &b.LateGraceMinutes, &b.EarlyCheckInMinutes,
		&b.Timezone, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return branch.Branch{}, sentinel.ErrNotFound
	}
	if err != nil {
		return branch.Branch{}, fmt.Errorf("scan branch: %w", err)
	}
	return b, nil
}
