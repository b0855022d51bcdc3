package store

import (
	"context"
	"sync"
	"time"

	"hadir/internal/face"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Memory is an in-memory Store used in tests and local development.
type Memory struct {
	mu       sync.RWMutex
	profiles map[id.UserID]face.Profile
}

func NewMemory() *Memory {
	return &Memory{profiles: make(map[id.UserID]face.Profile)}
}

func (m *Memory) Find(_ context.Context, userID id.UserID) (face.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return face.Profile{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (m *Memory) Save(_ context.Context, p face.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	m.profiles[p.UserID] = p
	return nil
}

func (m *Memory) RecordVerification(_ context.Context, userID id.UserID, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.VerificationCount++
	p.LastVerifiedAt = time.Now()
	if imageURL != "" {
		p.ImageURL = imageURL
	}
	p.UpdatedAt = time.Now()
	m.profiles[userID] = p
	return nil
}

func (m *Memory) Delete(_ context.Context, userID id.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.profiles, userID)
	return nil
}
