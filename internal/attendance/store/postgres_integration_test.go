//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hadir/internal/attendance"
	"hadir/internal/attendance/store"
	"hadir/internal/branch"
	branchstore "hadir/internal/branch/store"
	"hadir/internal/device"
	devicestore "hadir/internal/device/store"
	"hadir/internal/user"
	userstore "hadir/internal/user/store"
	id "hadir/pkg/domain"
	"hadir/pkg/platform/sentinel"
	"hadir/pkg/testutil/containers"
)

// The unique constraints the schema declares are what turn racing duplicate
// writers into clean conflicts. These tests prove that against a real
// database rather than the in-memory stand-in.
func TestPostgresUniqueConstraints(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()

	branches := branchstore.NewPostgres(pc.DB)
	users := userstore.NewPostgres(pc.DB)

	b := branch.Branch{
		ID:              id.NewBranchID(),
		Name:            "HQ",
		Latitude:        30.0444,
		Longitude:       31.2357,
		GeofenceRadiusM: 100,
		WorkStart:       "09:00",
		WorkEnd:         "17:00",
		Timezone:        "Africa/Cairo",
	}
	require.NoError(t, branches.SaveBranch(ctx, b))

	u := user.User{
		ID:           id.NewUserID(),
		Email:        "omar@hadir.dev",
		PasswordHash: "x",
		FirstName:    "Omar",
		LastName:     "Farouk",
		Role:         user.RoleEmployee,
		Status:       user.StatusActive,
		BranchID:     b.ID,
	}
	require.NoError(t, users.Save(ctx, u))

	t.Run("concurrent check-ins collapse to one attendance row", func(t *testing.T) {
		st := store.NewPostgres(pc.DB)
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

		const writers = 50
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			created   int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := st.Create(ctx, attendance.Record{
					ID:        id.NewAttendanceID(),
					UserID:    u.ID,
					BranchID:  b.ID,
					Day:       day,
					CheckInAt: day.Add(9 * time.Hour),
					Status:    attendance.StatusPresent,
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, sentinel.ErrConflict):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, created)
		require.Equal(t, writers-1, conflicts)

		rec, err := st.FindByUserAndDay(ctx, u.ID, day)
		require.NoError(t, err)
		require.Equal(t, attendance.StatusPresent, rec.Status)
	})

	t.Run("leave day without a check-in round-trips as not checked in", func(t *testing.T) {
		st := store.NewPostgres(pc.DB)
		day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

		require.NoError(t, st.Create(ctx, attendance.Record{
			ID:     id.NewAttendanceID(),
			UserID: u.ID,
			Day:    day,
			Status: attendance.StatusOnLeave,
		}))

		rec, err := st.FindByUserAndDay(ctx, u.ID, day)
		require.NoError(t, err)
		require.Equal(t, attendance.StatusOnLeave, rec.Status)
		require.True(t, rec.CheckInAt.IsZero(), "NULL check_in_at must scan as the zero time")
		require.True(t, rec.CheckOutAt.IsZero(), "NULL check_out_at must scan as the zero time")
		require.False(t, rec.CheckedIn())
		require.False(t, rec.CheckedOut())
	})

	t.Run("duplicate device binding conflicts", func(t *testing.T) {
		st := devicestore.NewPostgres(pc.DB)
		first := device.RegisteredDevice{
			ID:          id.NewDeviceID(),
			UserID:      u.ID,
			DeviceID:    "android-abc123",
			Fingerprint: "f1",
			Platform:    "android",
			Status:      device.StatusActive,
		}
		require.NoError(t, st.Create(ctx, first))

		dup := first
		dup.ID = id.NewDeviceID()
		err := st.Create(ctx, dup)
		require.ErrorIs(t, err, sentinel.ErrConflict)
	})
}
