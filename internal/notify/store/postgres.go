package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hadir/internal/notify"
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

func (p *Postgres) Append(ctx context.Context, n notify.Notification) error {
	var meta any
	if len(n.Metadata) > 0 {
		b, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("encode notification metadata: %w", err)
		}
		meta = b
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Body, meta)
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, userID id.UserID, offset, limit int) ([]notify.Notification, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, body, metadata, is_read,
			read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []notify.Notification
	for rows.Next() {
		var (
			n      notify.Notification
			typ    string
			meta   []byte
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Body, &meta,
			&n.IsRead, &readAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = notify.Type(typ)
		if readAt.Valid {
			n.ReadAt = readAt.Time
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &n.Metadata); err != nil {
				return nil, fmt.Errorf("decode notification metadata: %w", err)
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (p *Postgres) UnreadCount(ctx context.Context, userID id.UserID) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (p *Postgres) MarkRead(ctx context.Context, userID id.UserID, notificationID string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, now())
		WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) MarkAllRead(ctx context.Context, userID id.UserID) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = now()
		WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
