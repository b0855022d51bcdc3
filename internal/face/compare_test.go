package face

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitEmbedding(length, hot int) []float64 {
	v := make([]float64, length)
	v[hot] = 1.0
	return v
}

func TestCompare(t *testing.T) {
	t.Run("identical embeddings match at any threshold", func(t *testing.T) {
		v := unitEmbedding(128, 0)
		res := Compare(v, v, 0.5)

		assert.True(t, res.IsMatch)
		assert.InDelta(t, 1.0, res.Similarity, 1e-9)
		assert.InDelta(t, 0.0, res.Distance, 1e-9)
		assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	})

	t.Run("is symmetric in distance and similarity", func(t *testing.T) {
		a := unitEmbedding(128, 0)
		b := unitEmbedding(128, 1)
		ab := Compare(a, b, DefaultMatchThreshold)
		ba := Compare(b, a, DefaultMatchThreshold)

		assert.InDelta(t, ab.Distance, ba.Distance, 1e-12)
		assert.InDelta(t, ab.Similarity, ba.Similarity, 1e-12)
	})

	t.Run("orthogonal unit vectors fail the hard distance ceiling", func(t *testing.T) {
		a := unitEmbedding(128, 0)
		b := unitEmbedding(128, 1)
		res := Compare(a, b, 0.1)

		// distance sqrt(2) > 0.6, so no threshold can rescue the match
		assert.False(t, res.IsMatch)
		assert.InDelta(t, math.Sqrt2, res.Distance, 1e-9)
	})

	t.Run("length mismatch is an input error", func(t *testing.T) {
		res := Compare(unitEmbedding(128, 0), unitEmbedding(256, 0), DefaultMatchThreshold)

		assert.False(t, res.IsMatch)
		assert.Zero(t, res.Confidence)
		assert.Equal(t, 999.0, res.Distance)
		assert.NotEmpty(t, res.Err)
	})

	t.Run("NaN components are rejected", func(t *testing.T) {
		a := unitEmbedding(128, 0)
		b := unitEmbedding(128, 0)
		b[3] = math.NaN()
		res := Compare(a, b, DefaultMatchThreshold)

		assert.False(t, res.IsMatch)
		assert.NotEmpty(t, res.Err)
	})

	t.Run("length below minimum is rejected", func(t *testing.T) {
		short := []float64{1, 0, 0}
		res := Compare(short, short, DefaultMatchThreshold)
		assert.False(t, res.IsMatch)
		assert.NotEmpty(t, res.Err)
	})

	t.Run("confidence is clamped to unit interval", func(t *testing.T) {
		a := make([]float64, 64)
		b := make([]float64, 64)
		for i := range a {
			a[i] = 10
			b[i] = -10
		}
		res := Compare(a, b, DefaultMatchThreshold)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
	})
}

func TestValidateQuality(t *testing.T) {
	t.Run("near-zero vector is a blank capture", func(t *testing.T) {
		v := make([]float64, 128)
		for i := range v {
			v[i] = 1e-4
		}
		res := ValidateQuality(v)
		assert.False(t, res.Valid)
		assert.NotEmpty(t, res.Reason)
	})

	t.Run("short embedding is invalid", func(t *testing.T) {
		res := ValidateQuality(make([]float64, 32))
		assert.False(t, res.Valid)
	})

	t.Run("oversized embedding is invalid", func(t *testing.T) {
		res := ValidateQuality(make([]float64, 2048))
		assert.False(t, res.Valid)
	})

	t.Run("varied vector with healthy magnitude passes", func(t *testing.T) {
		v := make([]float64, 128)
		for i := range v {
			if i%2 == 0 {
				v[i] = 0.8
			} else {
				v[i] = -0.8
			}
		}
		res := ValidateQuality(v)
		require.True(t, res.Valid)
		assert.GreaterOrEqual(t, res.Quality, 0.3)
		assert.LessOrEqual(t, res.Quality, 1.0)
	})

	t.Run("quality formula blends variance and magnitude", func(t *testing.T) {
		v := make([]float64, 100)
		for i := range v {
			if i < 50 {
				v[i] = 1
			} else {
				v[i] = -1
			}
		}
		// variance = 1, magnitude = 10: quality = min(1, 1*10 * 10/10) = 1
		res := ValidateQuality(v)
		assert.InDelta(t, 1.0, res.Quality, 1e-9)
	})
}
