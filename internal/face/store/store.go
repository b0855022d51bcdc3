package store

import (
	"context"

	"hadir/internal/face"
	id "hadir/pkg/domain"
)

// Store persists face profiles, one per user.
type Store interface {
	Find(ctx context.Context, userID id.UserID) (face.Profile, error)
	// Save creates or wholesale-replaces the user's profile.
	Save(ctx context.Context, p face.Profile) error
	// RecordVerification bumps the verification counter and timestamp, and
	// refreshes the reference image when imageURL is non-empty.
	RecordVerification(ctx context.Context, userID id.UserID, imageURL string) error
	Delete(ctx context.Context, userID id.UserID) error
}
