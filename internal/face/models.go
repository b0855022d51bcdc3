package face

import (
	"time"

	id "hadir/pkg/domain"
)

// Profile is the stored face reference for one user. The embedding is
// replaced wholesale on re-registration; there is no versioning.
type Profile struct {
	UserID            id.UserID
	Embedding         []float64
	ImageURL          string
	Quality           float64
	RegisteredAt      time.Time
	LastVerifiedAt    time.Time
	VerificationCount int
	UpdatedAt         time.Time
}
