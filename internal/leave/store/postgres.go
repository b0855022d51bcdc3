package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hadir/internal/leave"
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

const leaveColumns = `id, user_id, type, start_date, end_date, COALESCE(reason, ''),
	status, COALESCE(approver_id, '00000000-0000-0000-0000-000000000000'),
	COALESCE(approver_notes, ''), decided_at, created_at`

func (p *Postgres) Find(ctx context.Context, leaveID id.LeaveID) (leave.Request, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE id = $1`, leaveID)
	return scanRequest(row)
}

func (p *Postgres) Create(ctx context.Context, r leave.Request) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, user_id, type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		r.ID, r.UserID, string(r.Type), r.StartDate, r.EndDate, r.Reason, string(r.Status))
	if err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, r leave.Request) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE leave_requests SET
			status = $2,
			approver_id = $3,
			approver_notes = NULLIF($4, ''),
			decided_at = $5
		WHERE id = $1`,
		r.ID, string(r.Status), nullableUser(r.ApproverID), r.ApproverNotes,
		nullableTime(r.DecidedAt))
	if err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) ListByUser(ctx context.Context, userID id.UserID, offset, limit int) ([]leave.Request, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests
		 WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (p *Postgres) ListByStatus(ctx context.Context, status leave.RequestStatus, offset, limit int) ([]leave.Request, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests
		 WHERE status = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		string(status), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list leave requests by status: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (p *Postgres) HasOverlap(ctx context.Context, userID id.UserID, start, end time.Time, exclude id.LeaveID) (bool, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leave_requests
		WHERE user_id = $1 AND id <> $2
		  AND status IN ('PENDING', 'APPROVED')
		  AND start_date <= $4 AND end_date >= $3`,
		userID, exclude, start, end).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check leave overlap: %w", err)
	}
	return n > 0, nil
}

func (p *Postgres) ApprovedOn(ctx context.Context, userID id.UserID, day time.Time) (bool, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leave_requests
		WHERE user_id = $1 AND status = 'APPROVED'
		  AND start_date <= $2 AND end_date >= $2`,
		userID, day).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check approved leave: %w", err)
	}
	return n > 0, nil
}

func (p *Postgres) SaveWFH(ctx context.Context, g leave.WFHGrant) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO work_from_home (user_id, day, reason, approved_by)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (user_id, day) DO UPDATE SET
			reason = EXCLUDED.reason,
			approved_by = EXCLUDED.approved_by`,
		g.UserID, g.Day, g.Reason, nullableUser(g.ApprovedBy))
	if err != nil {
		return fmt.Errorf("save wfh grant: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteWFH(ctx context.Context, userID id.UserID, day time.Time) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM work_from_home WHERE user_id = $1 AND day = $2`, userID, day)
	if err != nil {
		return fmt.Errorf("delete wfh grant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) IsWFH(ctx context.Context, userID id.UserID, day time.Time) (bool, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_from_home WHERE user_id = $1 AND day = $2`,
		userID, day).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check wfh grant: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (leave.Request, error) {
	var (
		r           leave.Request
		typ, status string
		decidedAt   sql.NullTime
	)
	err := row.Scan(&r.ID, &r.UserID, &typ, &r.StartDate, &r.EndDate, &r.Reason,
		&status, &r.ApproverID, &r.ApproverNotes, &decidedAt, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Request{}, sentinel.ErrNotFound
	}
	if err != nil {
		return leave.Request{}, fmt.Errorf("scan leave request: %w", err)
	}
	r.Type = leave.Type(typ)
	r.Status = leave.RequestStatus(status)
	if decidedAt.Valid {
		r.DecidedAt = decidedAt.Time
	}
	return r, nil
}

func collectRequests(rows *sql.Rows) ([]leave.Request, error) {
	var out []leave.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
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
