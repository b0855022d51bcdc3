package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	t.Run("identical points are within any non-negative radius", func(t *testing.T) {
		res := Evaluate(30.0444, 31.2357, 30.0444, 31.2357, 0)
		assert.True(t, res.WithinRadius)
		assert.Zero(t, res.DistanceM)
	})

	t.Run("point 150m away is outside a 100m fence", func(t *testing.T) {
		// ~150m north of the center: 1 degree latitude ~ 111.32km.
		const offset = 150.0 / 111320.0
		res := Evaluate(30.0444+offset, 31.2357, 30.0444, 31.2357, 100)
		assert.False(t, res.WithinRadius)
		assert.InDelta(t, 150, res.DistanceM, 1)
	})

	t.Run("point on the boundary is within", func(t *testing.T) {
		const offset = 100.0 / 111320.0
		res := Evaluate(30.0444+offset, 31.2357, 30.0444, 31.2357, 101)
		assert.True(t, res.WithinRadius)
	})
}

func TestDistance(t *testing.T) {
	t.Run("is symmetric", func(t *testing.T) {
		d1 := Distance(30.0444, 31.2357, 29.9773, 31.1325)
		d2 := Distance(29.9773, 31.1325, 30.0444, 31.2357)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("cairo to giza pyramids is roughly 13km", func(t *testing.T) {
		d := Distance(30.0444, 31.2357, 29.9792, 31.1342)
		assert.InDelta(t, 12500, d, 1500)
	})

	t.Run("never negative", func(t *testing.T) {
		assert.GreaterOrEqual(t, Distance(-90, -180, 90, 180), 0.0)
	})
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(0, 0))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.False(t, ValidCoordinate(90.1, 0))
	assert.False(t, ValidCoordinate(0, -180.5))
}

func TestNearest(t *testing.T) {
	centers := []Center{
		{ID: "downtown", Latitude: 30.0444, Longitude: 31.2357},
		{ID: "giza", Latitude: 29.9773, Longitude: 31.1325},
		{ID: "heliopolis", Latitude: 30.0881, Longitude: 31.3236},
	}

	t.Run("picks the minimum-distance center", func(t *testing.T) {
		c, d, ok := Nearest(29.98, 31.13, centers)
		assert.True(t, ok)
		assert.Equal(t, "giza", c.ID)
		assert.Less(t, d, 1000.0)
	})

	t.Run("ties keep the first encountered", func(t *testing.T) {
		dup := []Center{
			{ID: "a", Latitude: 30, Longitude: 31},
			{ID: "b", Latitude: 30, Longitude: 31},
		}
		c, _, ok := Nearest(30.01, 31.01, dup)
		assert.True(t, ok)
		assert.Equal(t, "a", c.ID)
	})

	t.Run("empty list returns ok=false", func(t *testing.T) {
		_, _, ok := Nearest(30, 31, nil)
		assert.False(t, ok)
	})
}
