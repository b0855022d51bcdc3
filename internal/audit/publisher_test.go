package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "hadir/pkg/domain"
)

type recordingStore struct {
	suspicious []SuspiciousAttempt
	access     []DeviceAccessEntry
	fail       bool
}

func (r *recordingStore) AppendSuspicious(_ context.Context, a SuspiciousAttempt) error {
	if r.fail {
		return errors.New("store down")
	}
	r.suspicious = append(r.suspicious, a)
	return nil
}

func (r *recordingStore) AppendDeviceAccess(_ context.Context, e DeviceAccessEntry) error {
	if r.fail {
		return errors.New("store down")
	}
	r.access = append(r.access, e)
	return nil
}

func TestPublisherSuspicious(t *testing.T) {
	store := &recordingStore{}
	p := NewPublisher(store, nil, slog.Default())

	p.Suspicious(context.Background(), SuspiciousAttempt{
		UserID:    id.NewUserID(),
		Type:      AttemptOutOfRange,
		DistanceM: 412,
	})

	require.Len(t, store.suspicious, 1)
	got := store.suspicious[0]
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, AttemptOutOfRange, got.Type)
}

func TestPublisherNeverFailsCaller(t *testing.T) {
	p := NewPublisher(&recordingStore{fail: true}, nil, slog.Default())

	// Must not panic or propagate the store error.
	p.Suspicious(context.Background(), SuspiciousAttempt{UserID: id.NewUserID(), Type: AttemptFaceMismatch})
	p.DeviceAccess(context.Background(), DeviceAccessEntry{UserID: id.NewUserID(), Action: ActionCheckIn})
}

func TestNilMirrorIsNoop(t *testing.T) {
	var m *KafkaMirror
	m.Enqueue("suspicious_attempt", SuspiciousAttempt{})
	m.Run(context.Background())
}

func TestNewKafkaMirrorWithoutBrokers(t *testing.T) {
	m, err := NewKafkaMirror(nil, "audit", slog.Default())
	require.NoError(t, err)
	assert.Nil(t, m)
}
