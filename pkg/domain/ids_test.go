package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hadir/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		_, err := ParseUserID(strings.Repeat("a", 1000))
		require.Error(t, err)
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New()
		parsed, err := ParseUserID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(raw), parsed)
	})
}

func TestTypedIDsAreDistinct(t *testing.T) {
	// These would fail to compile if the ID types were interchangeable:
	// var _ UserID = DeviceID(uuid.New())
	userID := UserID(uuid.New())
	deviceID := DeviceID(uuid.New())
	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(deviceID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
}
