// Package user holds the employee directory: accounts, roles, and the
// branch/department/manager references the policy engine resolves through
// lookups instead of embedded object graphs.
package user

import (
	"time"

	id "hadir/pkg/domain"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Status is the lifecycle state of a user account.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// User is one employee account. Branch, department, and manager are ID
// references; collaborators resolve them on demand.
type User struct {
	ID             id.UserID       `json:"id"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"-"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	EmployeeCode   string          `json:"employeeCode,omitempty"`
	Role           Role            `json:"role"`
	Status         Status          `json:"status"`
	BranchID       id.BranchID     `json:"branchId"`
	DepartmentID   id.DepartmentID `json:"departmentId,omitzero"`
	ManagerID      id.UserID       `json:"managerId,omitzero"`
	FaceRegistered bool            `json:"faceRegistered"`
	PushToken      string          `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// FullName returns the display name used in notifications.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
