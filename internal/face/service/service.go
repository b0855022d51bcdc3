// Package service implements face enrollment, verification bookkeeping, and
// the admin reset.
package service

import (
	"context"
	"errors"
	"log/slog"

	"hadir/internal/face"
	"hadir/internal/face/store"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/sentinel"
)

// Directory is the slice of the user store the face service needs to keep
// the faceRegistered flag in sync with profile existence.
type Directory interface {
	SetFaceRegistered(ctx context.Context, userID id.UserID, registered bool) error
}

// ImageStore uploads face reference images. A nil ImageStore disables image
// persistence; embeddings still work.
type ImageStore interface {
	Upload(ctx context.Context, userID id.UserID, image []byte) (string, error)
}

type Service struct {
	store     store.Store
	directory Directory
	images    ImageStore
	logger    *slog.Logger
}

func New(st store.Store, directory Directory, images ImageStore, logger *slog.Logger) *Service {
	return &Service{store: st, directory: directory, images: images, logger: logger}
}

// Register enrolls or wholesale-replaces the user's face profile. The
// embedding must pass quality validation.
func (s *Service) Register(ctx context.Context, userID id.UserID, embedding []float64, image []byte) (face.Profile, error) {
	q := face.ValidateQuality(embedding)
	if !q.Valid {
		return face.Profile{}, dErrors.Newf(dErrors.CodeValidation,
			"face embedding rejected: %s", q.Reason)
	}

	p := face.Profile{
		UserID:    userID,
		Embedding: embedding,
		Quality:   q.Quality,
	}
	if len(image) > 0 {
		p.ImageURL = s.uploadImage(ctx, userID, image)
	}
	if err := s.store.Save(ctx, p); err != nil {
		return face.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "save face profile")
	}
	if err := s.directory.SetFaceRegistered(ctx, userID, true); err != nil {
		return face.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "flag face registered")
	}
	return p, nil
}

// Verify compares a candidate embedding against the stored profile at the
// given confidence threshold. On a match the verification counter is bumped
// and, when an image accompanies the request, the reference image (never the
// embedding) is refreshed.
func (s *Service) Verify(ctx context.Context, userID id.UserID, candidate []float64, threshold float64, image []byte) (face.ComparisonResult, error) {
	p, err := s.store.Find(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return face.ComparisonResult{}, dErrors.New(dErrors.CodeNotFound, "no face profile registered")
	}
	if err != nil {
		return face.ComparisonResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "load face profile")
	}

	result := face.Compare(p.Embedding, candidate, threshold)
	if result.Err != "" {
		return result, dErrors.Newf(dErrors.CodeValidation, "face embedding invalid: %s", result.Err)
	}
	if result.IsMatch {
		var imageURL string
		if len(image) > 0 {
			imageURL = s.uploadImage(ctx, userID, image)
		}
		if err := s.store.RecordVerification(ctx, userID, imageURL); err != nil {
			s.logger.WarnContext(ctx, "failed to record face verification",
				"user_id", userID, "error", err)
		}
	}
	return result, nil
}

// Status describes the user's enrollment for the employee view.
type Status struct {
	Registered        bool    `json:"registered"`
	Quality           float64 `json:"quality,omitempty"`
	ImageURL          string  `json:"imageUrl,omitempty"`
	VerificationCount int     `json:"verificationCount"`
}

// GetStatus reports whether and how well a face is enrolled.
func (s *Service) GetStatus(ctx context.Context, userID id.UserID) (Status, error) {
	p, err := s.store.Find(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Status{Registered: false}, nil
	}
	if err != nil {
		return Status{}, dErrors.Wrap(err, dErrors.CodeInternal, "load face profile")
	}
	return Status{
		Registered:        true,
		Quality:           p.Quality,
		ImageURL:          p.ImageURL,
		VerificationCount: p.VerificationCount,
	}, nil
}

// Reset deletes the user's face profile and clears the registration flag.
// Safe to call when no profile exists.
func (s *Service) Reset(ctx context.Context, userID id.UserID) error {
	err := s.store.Delete(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete face profile")
	}
	if err := s.directory.SetFaceRegistered(ctx, userID, false); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "clear face registered flag")
	}
	return nil
}

func (s *Service) uploadImage(ctx context.Context, userID id.UserID, image []byte) string {
	if s.images == nil {
		return ""
	}
	url, err := s.images.Upload(ctx, userID, image)
	if err != nil {
		// Image persistence is best effort; the embedding is the evidence.
		s.logger.WarnContext(ctx, "face image upload failed", "user_id", userID, "error", err)
		return ""
	}
	return url
}
