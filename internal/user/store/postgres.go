package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hadir/internal/user"
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

const userColumns = `id, email, password_hash, first_name, last_name, employee_code,
	role, status, branch_id, department_id, manager_id, face_registered,
	COALESCE(push_token, ''), created_at`

func (p *Postgres) FindByID(ctx context.Context, userID id.UserID) (user.User, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (p *Postgres) FindByEmail(ctx context.Context, email string) (user.User, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (p *Postgres) Save(ctx context.Context, u user.User) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, employee_code,
			role, status, branch_id, department_id, manager_id, face_registered, push_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			employee_code = EXCLUDED.employee_code,
			role = EXCLUDED.role,
			status = EXCLUDED.status,
			branch_id = EXCLUDED.branch_id,
			department_id = EXCLUDED.department_id,
			manager_id = EXCLUDED.manager_id,
			face_registered = EXCLUDED.face_registered,
			push_token = EXCLUDED.push_token`,
		uuid.UUID(u.ID), u.Email, u.PasswordHash, u.FirstName, u.LastName, u.EmployeeCode,
		string(u.Role), string(u.Status), uuid.UUID(u.BranchID),
		nullableUUID(uuid.UUID(u.DepartmentID)), nullableUUID(uuid.UUID(u.ManagerID)),
		u.FaceRegistered, u.PushToken)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (p *Postgres) SetFaceRegistered(ctx context.Context, userID id.UserID, registered bool) error {
	return p.updateOne(ctx,
		`UPDATE users SET face_registered = $2 WHERE id = $1`,
		uuid.UUID(userID), registered)
}

func (p *Postgres) SetPushToken(ctx context.Context, userID id.UserID, token string) error {
	return p.updateOne(ctx,
		`UPDATE users SET push_token = NULLIF($2, '') WHERE id = $1`,
		uuid.UUID(userID), token)
}

func (p *Postgres) ListByRoles(ctx context.Context, roles []user.Role) ([]user.User, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE status = 'ACTIVE' AND role = ANY($1)`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (p *Postgres) ListByBranch(ctx context.Context, branchID id.BranchID) ([]user.User, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE status = 'ACTIVE' AND branch_id = $1
		 ORDER BY last_name, first_name`, uuid.UUID(branchID))
	if err != nil {
		return nil, fmt.Errorf("list users by branch: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (p *Postgres) CountActive(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE status = 'ACTIVE'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}

func (p *Postgres) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u            user.User
		role, status string
		deptID       uuid.NullUUID
		managerID    uuid.NullUUID
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.EmployeeCode, &role, &status, &u.BranchID, &deptID, &managerID,
		&u.FaceRegistered, &u.PushToken, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = user.Role(role)
	u.Status = user.Status(status)
	u.DepartmentID = id.DepartmentID(deptID.UUID)
	u.ManagerID = id.UserID(managerID.UUID)
	return u, nil
}

func collectUsers(rows *sql.Rows) ([]user.User, error) {
	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func nullableUUID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}
