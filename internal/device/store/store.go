package store

import (
	"context"

	"hadir/internal/device"
	id "hadir/pkg/domain"
)

// Store is the persistence boundary for registered devices.
//
// Create must enforce the (user_id, device_id) uniqueness constraint and
// return sentinel.ErrConflict on a duplicate. SetMain must clear the old main
// flag and set the new one as a single atomic unit.
type Store interface {
	FindByRowID(ctx context.Context, rowID id.DeviceID) (device.RegisteredDevice, error)
	FindByUserAndDeviceID(ctx context.Context, userID id.UserID, deviceID string) (device.RegisteredDevice, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]device.RegisteredDevice, error)
	CountInStatuses(ctx context.Context, userID id.UserID, statuses []device.Status) (int, error)

	Create(ctx context.Context, d device.RegisteredDevice) error
	Update(ctx context.Context, d device.RegisteredDevice) error
	RecordUsage(ctx context.Context, rowID id.DeviceID) error
	SetMain(ctx context.Context, userID id.UserID, rowID id.DeviceID) error
	Delete(ctx context.Context, rowID id.DeviceID) error
}
