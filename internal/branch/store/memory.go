package store

import (
	"context"
	"sort"
	"sync"

	"hadir/internal/branch"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Memory is an in-memory Store used in tests and local development.
type Memory struct {
	mu          sync.RWMutex
	branches    map[id.BranchID]branch.Branch
	departments map[id.DepartmentID]branch.Department
}

func NewMemory() *Memory {
	return &Memory{
		branches:    make(map[id.BranchID]branch.Branch),
		departments: make(map[id.DepartmentID]branch.Department),
	}
}

func (m *Memory) FindBranch(_ context.Context, branchID id.BranchID) (branch.Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.branches[branchID]
	if !ok {
		return branch.Branch{}, sentinel.ErrNotFound
	}
	return b, nil
}

func (m *Memory) ListBranches(_ context.Context) ([]branch.Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]branch.Branch, 0, len(m.branches))
	for _, b := range m.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) SaveBranch(_ context.Context, b branch.Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branches[b.ID] = b
	return nil
}

func (m *Memory) FindDepartment(_ context.Context, departmentID id.DepartmentID) (branch.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[departmentID]
	if !ok {
		return branch.Department{}, sentinel.ErrNotFound
	}
	return d, nil
}

func (m *Memory) ListDepartments(_ context.Context, branchID id.BranchID) ([]branch.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []branch.Department
	for _, d := range m.departments {
		if d.BranchID == branchID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) SaveDepartment(_ context.Context, d branch.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = d
	return nil
}
