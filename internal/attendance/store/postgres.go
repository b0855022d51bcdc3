package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"hadir/internal/attendance"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Postgres is the database-backed Store. The UNIQUE (user_id, day) index
// turns racing duplicate check-ins into clean conflicts.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const recordColumns = `id, user_id,
	COALESCE(branch_id, '00000000-0000-0000-0000-000000000000'), day,
	check_in_at, check_out_at,
	COALESCE(check_in_latitude, 0), COALESCE(check_in_longitude, 0), COALESCE(check_in_distance_m, 0),
	COALESCE(check_out_latitude, 0), COALESCE(check_out_longitude, 0), COALESCE(check_out_distance_m, 0),
	status, late_minutes, early_leave_minutes, working_minutes, overtime_minutes,
	is_work_from_home, COALESCE(device_info, ''), COALESCE(notes, ''), created_at, updated_at`

func (p *Postgres) FindByUserAndDay(ctx context.Context, userID id.UserID, day time.Time) (attendance.Record, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance WHERE user_id = $1 AND day = $2`,
		userID, day)
	return scanRecord(row)
}

func (p *Postgres) Create(ctx context.Context, r attendance.Record) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO attendance (id, user_id, branch_id, day, check_in_at, check_out_at,
			check_in_latitude, check_in_longitude, check_in_distance_m,
			check_out_latitude, check_out_longitude, check_out_distance_m,
			status, late_minutes, early_leave_minutes, working_minutes, overtime_minutes,
			is_work_from_home, device_info, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			NULLIF($19, ''), NULLIF($20, ''))`,
		r.ID, r.UserID, nullableBranch(r.BranchID), r.Day,
		nullableTime(r.CheckInAt), nullableTime(r.CheckOutAt),
		r.CheckInLatitude, r.CheckInLongitude, r.CheckInDistanceM,
		r.CheckOutLatitude, r.CheckOutLongitude, r.CheckOutDistanceM,
		string(r.Status), r.LateMinutes, r.EarlyLeaveMinutes, r.WorkingMinutes,
		r.OvertimeMinutes, r.IsWorkFromHome, r.DeviceInfo, r.Notes)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create attendance record: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, r attendance.Record) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE attendance SET
			check_in_at = $3, check_out_at = $4,
			check_in_latitude = $5, check_in_longitude = $6, check_in_distance_m = $7,
			check_out_latitude = $8, check_out_longitude = $9, check_out_distance_m = $10,
			status = $11, late_minutes = $12, early_leave_minutes = $13,
			working_minutes = $14, overtime_minutes = $15, is_work_from_home = $16,
			device_info = NULLIF($17, ''), notes = NULLIF($18, ''), updated_at = now()
		WHERE user_id = $1 AND day = $2`,
		r.UserID, r.Day,
		nullableTime(r.CheckInAt), nullableTime(r.CheckOutAt),
		r.CheckInLatitude, r.CheckInLongitude, r.CheckInDistanceM,
		r.CheckOutLatitude, r.CheckOutLongitude, r.CheckOutDistanceM,
		string(r.Status), r.LateMinutes, r.EarlyLeaveMinutes,
		r.WorkingMinutes, r.OvertimeMinutes, r.IsWorkFromHome, r.DeviceInfo, r.Notes)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) ListByUser(ctx context.Context, userID id.UserID, f attendance.HistoryFilter) ([]attendance.Record, error) {
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 31
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = $1
		  AND ($2::date IS NULL OR day >= $2)
		  AND ($3::date IS NULL OR day <= $3)
		  AND ($4::text IS NULL OR status = $4)
		ORDER BY day DESC
		OFFSET $5 LIMIT $6`,
		userID, nullableTime(f.From), nullableTime(f.To), nullableStatus(f.Status),
		(page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("list attendance history: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (p *Postgres) ListByDay(ctx context.Context, day time.Time) ([]attendance.Record, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM attendance WHERE day = $1 ORDER BY created_at`, day)
	if err != nil {
		return nil, fmt.Errorf("list attendance by day: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (p *Postgres) ListByUserForMonth(ctx context.Context, userID id.UserID, year int, month time.Month) ([]attendance.Record, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = $1 AND day >= $2 AND day < $3
		ORDER BY day`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list attendance for month: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (attendance.Record, error) {
	var (
		r        attendance.Record
		status   string
		checkIn  sql.NullTime
		checkOut sql.NullTime
	)
	err := row.Scan(&r.ID, &r.UserID, &r.BranchID, &r.Day,
		&checkIn, &checkOut,
		&r.CheckInLatitude, &r.CheckInLongitude, &r.CheckInDistanceM,
		&r.CheckOutLatitude, &r.CheckOutLongitude, &r.CheckOutDistanceM,
		&status, &r.LateMinutes, &r.EarlyLeaveMinutes, &r.WorkingMinutes,
		&r.OvertimeMinutes, &r.IsWorkFromHome, &r.DeviceInfo, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return attendance.Record{}, fmt.Errorf("scan attendance record: %w", err)
	}
	r.Status = attendance.Status(status)
	// NULL punch timestamps map to the zero time; leave days materialized
	// without a check-in must stay CheckedIn() == false after a round trip.
	if checkIn.Valid {
		r.CheckInAt = checkIn.Time
	}
	if checkOut.Valid {
		r.CheckOutAt = checkOut.Time
	}
	return r, nil
}

func collectRecords(rows *sql.Rows) ([]attendance.Record, error) {
	var out []attendance.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullableBranch(b id.BranchID) any {
	if b.IsNil() {
		return nil
	}
	return b
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullableStatus(s attendance.Status) any {
	if s == "" {
		return nil
	}
	return string(s)
}
