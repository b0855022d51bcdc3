package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"hadir/internal/leave"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

type wfhKey struct {
	userID id.UserID
	day    string
}

// Memory is an in-memory Store used in tests and local development.
type Memory struct {
	mu       sync.RWMutex
	requests map[id.LeaveID]leave.Request
	wfh      map[wfhKey]leave.WFHGrant
}

func NewMemory() *Memory {
	return &Memory{
		requests: make(map[id.LeaveID]leave.Request),
		wfh:      make(map[wfhKey]leave.WFHGrant),
	}
}

func dayKey(d time.Time) string { return d.Format("2006-01-02") }

func (m *Memory) Find(_ context.Context, leaveID id.LeaveID) (leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[leaveID]
	if !ok {
		return leave.Request{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (m *Memory) Create(_ context.Context, r leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) Update(_ context.Context, r leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) ListByUser(_ context.Context, userID id.UserID, offset, limit int) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var mine []leave.Request
	for _, r := range m.requests {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	return page(mine, offset, limit), nil
}

func (m *Memory) ListByStatus(_ context.Context, status leave.RequestStatus, offset, limit int) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Request
	for _, r := range m.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return page(out, offset, limit), nil
}

func page(items []leave.Request, offset, limit int) []leave.Request {
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (m *Memory) HasOverlap(_ context.Context, userID id.UserID, start, end time.Time, exclude id.LeaveID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.UserID != userID || r.ID == exclude {
			continue
		}
		if r.Status != leave.StatusPending && r.Status != leave.StatusApproved {
			continue
		}
		if !start.After(r.EndDate) && !end.Before(r.StartDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ApprovedOn(_ context.Context, userID id.UserID, day time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.UserID == userID && r.Status == leave.StatusApproved &&
			!day.Before(r.StartDate) && !day.After(r.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) SaveWFH(_ context.Context, g leave.WFHGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	m.wfh[wfhKey{userID: g.UserID, day: dayKey(g.Day)}] = g
	return nil
}

func (m *Memory) DeleteWFH(_ context.Context, userID id.UserID, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := wfhKey{userID: userID, day: dayKey(day)}
	if _, ok := m.wfh[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.wfh, key)
	return nil
}

func (m *Memory) IsWFH(_ context.Context, userID id.UserID, day time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.wfh[wfhKey{userID: userID, day: dayKey(day)}]
	return ok, nil
}
