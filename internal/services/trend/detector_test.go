package trend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRising(t *testing.T) {
	values := []float64{0, 2, 4, 6, 8, 10, 12, 14}
	v := NewDetector().Detect(values, DefaultSlopeThreshold, DefaultMinPoints)

	assert.Equal(t, DirectionRising, v.Direction)
	assert.InDelta(t, 2.0, v.Slope, 1e-9)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	assert.Equal(t, DirectionRising, v.MKDirection)
	assert.Less(t, v.MKPValue, 0.05)
}

func TestDetectFalling(t *testing.T) {
	values := []float64{14, 12, 10, 8, 6, 4, 2, 0}
	v := NewDetector().Detect(values, DefaultSlopeThreshold, DefaultMinPoints)

	assert.Equal(t, DirectionFalling, v.Direction)
	assert.InDelta(t, -2.0, v.Slope, 1e-9)
}

func TestDetectFlatSeries(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	v := NewDetector().Detect(values, DefaultSlopeThreshold, DefaultMinPoints)

	assert.Equal(t, DirectionStable, v.Direction)
	assert.Zero(t, v.Slope)
	assert.Equal(t, 1.0, v.PValue)
	assert.Equal(t, 1.0, v.MKPValue)
}

func TestDetectNoisyRising(t *testing.T) {
	// Local dips must not mask the monotonic climb.
	values := []float64{1, 3, 2, 5, 4, 7, 6, 9}
	v := NewDetector().Detect(values, DefaultSlopeThreshold, DefaultMinPoints)
	assert.Equal(t, DirectionRising, v.Direction)
}

func TestDetectOscillationIsStable(t *testing.T) {
	values := []float64{5, 7, 4, 6, 5, 7, 4, 6}
	v := NewDetector().Detect(values, DefaultSlopeThreshold, DefaultMinPoints)
	assert.Equal(t, DirectionStable, v.Direction)
}

func TestDetectShortSeries(t *testing.T) {
	v := NewDetector().Detect([]float64{1, 2, 3}, DefaultSlopeThreshold, DefaultMinPoints)
	assert.Equal(t, DirectionStable, v.Direction)
	assert.Zero(t, v.Confidence)
	assert.Equal(t, 1.0, v.PValue)
}

func TestDetectDropsNaN(t *testing.T) {
	values := []float64{1, math.NaN(), 2, math.NaN(), 3}
	v := NewDetector().Detect(values, DefaultSlopeThreshold, DefaultMinPoints)
	assert.Equal(t, DirectionStable, v.Direction)
}

func TestDetectByEntityUsesTrailingWindow(t *testing.T) {
	series := map[string][]float64{
		// Falls for two weeks, then climbs hard in the final window.
		"UA": {50, 45, 40, 35, 30, 25, 20, 15, 10, 5, 4, 3, 2, 0, 2, 4, 6, 8, 10, 12},
		"FR": {1, 2, 3},
	}
	out := NewDetector().DetectByEntity(series, DefaultWindow)
	require.Len(t, out, 2)

	assert.Equal(t, DirectionRising, out["UA"].Direction)
	assert.Equal(t, DirectionStable, out["FR"].Direction)
	assert.Zero(t, out["FR"].Confidence)
}
