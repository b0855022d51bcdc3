package store

import (
	"context"

	"hadir/internal/branch"
	id "hadir/pkg/domain"
)

// Store is the persistence boundary for branches and departments.
type Store interface {
	FindBranch(ctx context.Context, branchID id.BranchID) (branch.Branch, error)
	ListBranches(ctx context.Context) ([]branch.Branch, error)
	SaveBranch(ctx context.Context, b branch.Branch) error

	FindDepartment(ctx context.Context, departmentID id.DepartmentID) (branch.Department, error)
	ListDepartments(ctx context.Context, branchID id.BranchID) ([]branch.Department, error)
	SaveDepartment(ctx context.Context, d branch.Department) error
}
