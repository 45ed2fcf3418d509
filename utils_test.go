package svmstudy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	values := []float64{4, 1, 3, 2}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 1.75},
		{50, 2.5},
		{2.5, 1.075},
		{97.5, 3.925},
		{100, 4},
		{150, 4},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, percentile(values, tt.p), 1e-12, "p=%v", tt.p)
	}

	// Input order is preserved.
	assert.Equal(t, []float64{4, 1, 3, 2}, values)

	assert.Equal(t, 7.0, percentile([]float64{7}, 90))
	assert.True(t, math.IsNaN(percentile(nil, 50)))
}

func TestHelpers(t *testing.T) {
	assert.True(t, isFinite(1))
	assert.False(t, isFinite(math.Inf(-1)))
	assert.False(t, isFinite(math.NaN()))

	assert.Equal(t, 1.0, clamp(3, 0, 1))
	assert.Equal(t, 0.0, clamp(-3, 0, 1))

	assert.InDelta(t, 0.5, normalCDF(0), 1e-12)
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), normalPDF(0), 1e-12)
}
