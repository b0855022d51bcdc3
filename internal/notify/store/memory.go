package store

import (
	"context"
	"sync"
	"time"

	"hadir/internal/notify"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Memory is an in-memory Store used in tests and local development.
type Memory struct {
	mu    sync.RWMutex
	items []notify.Notification
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, n)
	return nil
}

func (m *Memory) List(_ context.Context, userID id.UserID, offset, limit int) ([]notify.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var mine []notify.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			mine = append(mine, m.items[i])
		}
	}
	if offset >= len(mine) {
		return nil, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], nil
}

func (m *Memory) UnreadCount(_ context.Context, userID id.UserID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, item := range m.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *Memory) MarkRead(_ context.Context, userID id.UserID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == notificationID && item.UserID == userID {
			m.items[i].IsRead = true
			m.items[i].ReadAt = time.Now()
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (m *Memory) MarkAllRead(_ context.Context, userID id.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for i, item := range m.items {
		if item.UserID == userID && !item.IsRead {
			m.items[i].IsRead = true
			m.items[i].ReadAt = now
		}
	}
	return nil
}
