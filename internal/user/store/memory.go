package store

import (
	"context"
	"strings"
	"sync"

	"hadir/internal/user"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Memory is an in-memory Store used in tests and local development.
type Memory struct {
	mu    sync.RWMutex
	users map[id.UserID]user.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[id.UserID]user.User)}
}

func (m *Memory) FindByID(_ context.Context, userID id.UserID) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return user.User{}, sentinel.ErrNotFound
	}
	return u, nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, sentinel.ErrNotFound
}

func (m *Memory) Save(_ context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) SetFaceRegistered(_ context.Context, userID id.UserID, registered bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.FaceRegistered = registered
	m.users[userID] = u
	return nil
}

func (m *Memory) SetPushToken(_ context.Context, userID id.UserID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.PushToken = token
	m.users[userID] = u
	return nil
}

func (m *Memory) ListByRoles(_ context.Context, roles []user.Role) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []user.User
	for _, u := range m.users {
		if u.Status != user.StatusActive {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) CountActive(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.users {
		if u.Status == user.StatusActive {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListByBranch(_ context.Context, branchID id.BranchID) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []user.User
	for _, u := range m.users {
		if u.Status == user.StatusActive && u.BranchID == branchID {
			out = append(out, u)
		}
	}
	return out, nil
}
