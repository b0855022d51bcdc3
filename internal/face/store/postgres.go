package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hadir/internal/face"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Postgres is the database-backed Store. Embeddings are stored as JSONB
// arrays; they are opaque to SQL and only ever read back whole.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Find(ctx context.Context, userID id.UserID) (face.Profile, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT user_id, embedding, COALESCE(image_url, ''), quality, registered_at,
			last_verified_at, verification_count, updated_at
		FROM face_profiles WHERE user_id = $1`, userID)

	var (
		prof         face.Profile
		raw          []byte
		lastVerified sql.NullTime
	)
	err := row.Scan(&prof.UserID, &raw, &prof.ImageURL, &prof.Quality,
		&prof.RegisteredAt, &lastVerified, &prof.VerificationCount, &prof.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return face.Profile{}, sentinel.ErrNotFound
	}
	if err != nil {
		return face.Profile{}, fmt.Errorf("scan face profile: %w", err)
	}
	if err := json.Unmarshal(raw, &prof.Embedding); err != nil {
		return face.Profile{}, fmt.Errorf("decode embedding: %w", err)
	}
	if lastVerified.Valid {
		prof.LastVerifiedAt = lastVerified.Time
	}
	return prof, nil
}

func (p *Postgres) Save(ctx context.Context, prof face.Profile) error {
	raw, err := json.Marshal(prof.Embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO face_profiles (user_id, embedding, image_url, quality)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (user_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			image_url = EXCLUDED.image_url,
			quality = EXCLUDED.quality,
			registered_at = now(),
			last_verified_at = NULL,
			verification_count = 0,
			updated_at = now()`,
		prof.UserID, raw, prof.ImageURL, prof.Quality)
	if err != nil {
		return fmt.Errorf("save face profile: %w", err)
	}
	return nil
}

func (p *Postgres) RecordVerification(ctx context.Context, userID id.UserID, imageURL string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE face_profiles SET
			verification_count = verification_count + 1,
			last_verified_at = now(),
			image_url = COALESCE(NULLIF($2, ''), image_url),
			updated_at = now()
		WHERE user_id = $1`, userID, imageURL)
	if err != nil {
		return fmt.Errorf("record face verification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, userID id.UserID) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM face_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete face profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
