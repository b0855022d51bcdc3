package store

import (
	"context"

	"hadir/internal/user"
	id "hadir/pkg/domain"
)

// Store is the persistence boundary for the employee directory.
type Store interface {
	FindByID(ctx context.Context, userID id.UserID) (user.User, error)
	FindByEmail(ctx context.Context, email string) (user.User, error)
	Save(ctx context.Context, u user.User) error
	SetFaceRegistered(ctx context.Context, userID id.UserID, registered bool) error
	SetPushToken(ctx context.Context, userID id.UserID, token string) error
	// ListByRoles returns active users holding any of the given roles.
	ListByRoles(ctx context.Context, roles []user.Role) ([]user.User, error)
	// ListByBranch returns active users assigned to the branch.
	ListByBranch(ctx context.Context, branchID id.BranchID) ([]user.User, error)
	// CountActive returns the active employee headcount.
	CountActive(ctx context.Context) (int, error)
}
