package store

import (
	"context"
	"sync"
	"time"

	"hadir/internal/audit"
	id "hadir/pkg/domain"
)

// Memory is an in-memory Store used in tests and local development.
type Memory struct {
	mu         sync.RWMutex
	suspicious []audit.SuspiciousAttempt
	access     []audit.DeviceAccessEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) AppendSuspicious(_ context.Context, a audit.SuspiciousAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suspicious = append(m.suspicious, a)
	return nil
}

func (m *Memory) ListSuspicious(_ context.Context, userID id.UserID, since time.Time, limit int) ([]audit.SuspiciousAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []audit.SuspiciousAttempt
	for i := len(m.suspicious) - 1; i >= 0 && len(out) < limit; i-- {
		a := m.suspicious[i]
		if a.UserID == userID && !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) CountSuspicious(_ context.Context, userID id.UserID, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.suspicious {
		if a.UserID == userID && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) AppendDeviceAccess(_ context.Context, e audit.DeviceAccessEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = append(m.access, e)
	return nil
}

func (m *Memory) ListDeviceAccess(_ context.Context, userID id.UserID, limit int) ([]audit.DeviceAccessEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []audit.DeviceAccessEntry
	for i := len(m.access) - 1; i >= 0 && len(out) < limit; i-- {
		if m.access[i].UserID == userID {
			out = append(out, m.access[i])
		}
	}
	return out, nil
}
