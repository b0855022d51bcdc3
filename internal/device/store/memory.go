package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"hadir/internal/device"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
)

// Memory is an in-memory Store used in tests and local development. It
// enforces the same (user_id, device_id) uniqueness the database schema does.
type Memory struct {
	mu      sync.Mutex
	devices map[id.DeviceID]device.RegisteredDevice
}

func NewMemory() *Memory {
	return &Memory{devices: make(map[id.DeviceID]device.RegisteredDevice)}
}

func (m *Memory) FindByRowID(_ context.Context, rowID id.DeviceID) (device.RegisteredDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[rowID]
	if !ok {
		return device.RegisteredDevice{}, sentinel.ErrNotFound
	}
	return d, nil
}

func (m *Memory) FindByUserAndDeviceID(_ context.Context, userID id.UserID, deviceID string) (device.RegisteredDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices {
		if d.UserID == userID && d.DeviceID == deviceID {
			return d, nil
		}
	}
	return device.RegisteredDevice{}, sentinel.ErrNotFound
}

func (m *Memory) ListByUser(_ context.Context, userID id.UserID) ([]device.RegisteredDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []device.RegisteredDevice
	for _, d := range m.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CountInStatuses(_ context.Context, userID id.UserID, statuses []device.Status) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.devices {
		if d.UserID != userID {
			continue
		}
		for _, st := range statuses {
			if d.Status == st {
				n++
				break
			}
		}
	}
	return n, nil
}

func (m *Memory) Create(_ context.Context, d device.RegisteredDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.devices {
		if existing.UserID == d.UserID && existing.DeviceID == d.DeviceID {
			return sentinel.ErrConflict
		}
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	m.devices[d.ID] = d
	return nil
}

func (m *Memory) Update(_ context.Context, d device.RegisteredDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	m.devices[d.ID] = d
	return nil
}

func (m *Memory) RecordUsage(_ context.Context, rowID id.DeviceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[rowID]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.UsageCount++
	d.LastUsedAt = time.Now()
	m.devices[rowID] = d
	return nil
}

func (m *Memory) SetMain(_ context.Context, userID id.UserID, rowID id.DeviceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.devices[rowID]
	if !ok || target.UserID != userID {
		return sentinel.ErrNotFound
	}
	for key, d := range m.devices {
		if d.UserID == userID && d.IsMain {
			d.IsMain = false
			m.devices[key] = d
		}
	}
	target.IsMain = true
	m.devices[rowID] = target
	return nil
}

func (m *Memory) Delete(_ context.Context, rowID id.DeviceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[rowID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.devices, rowID)
	return nil
}
