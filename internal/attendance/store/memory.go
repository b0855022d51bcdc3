package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"hadir/internal/attendance"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

type dayKey struct {
	userID id.UserID
	day    string
}

// Memory is an in-memory Store used in tests and local development. It
// enforces the same (user_id, day) uniqueness the database schema does, so
// concurrency tests exercise the real conflict path.
type Memory struct {
	mu      sync.Mutex
	records map[dayKey]attendance.Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[dayKey]attendance.Record)}
}

func key(userID id.UserID, day time.Time) dayKey {
	return dayKey{userID: userID, day: day.Format("2006-01-02")}
}

func (m *Memory) FindByUserAndDay(_ context.Context, userID id.UserID, day time.Time) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key(userID, day)]
	if !ok {
		return attendance.Record{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (m *Memory) Create(_ context.Context, r attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(r.UserID, r.Day)
	if _, exists := m.records[k]; exists {
		return sentinel.ErrConflict
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	m.records[k] = r
	return nil
}

func (m *Memory) Update(_ context.Context, r attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(r.UserID, r.Day)
	if _, exists := m.records[k]; !exists {
		return sentinel.ErrNotFound
	}
	r.UpdatedAt = time.Now()
	m.records[k] = r
	return nil
}

func (m *Memory) ListByUser(_ context.Context, userID id.UserID, f attendance.HistoryFilter) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.UserID != userID {
			continue
		}
		if !f.From.IsZero() && r.Day.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.Day.After(f.To) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })

	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 31
	}
	offset := (page - 1) * size
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + size
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *Memory) ListByDay(_ context.Context, day time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := day.Format("2006-01-02")
	var out []attendance.Record
	for k, r := range m.records {
		if k.day == wanted {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListByUserForMonth(_ context.Context, userID id.UserID, year int, month time.Month) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.UserID == userID && r.Day.Year() == year && r.Day.Month() == month {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}
