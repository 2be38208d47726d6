package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEWMA(t *testing.T) {
	out := ComputeEWMA([]float64{2, 4, 8}, 0.5)
	require.Len(t, out, 3)
	assert.InDelta(t, 2.0, out[0], 1e-9)
	assert.InDelta(t, 3.0, out[1], 1e-9)
	assert.InDelta(t, 5.5, out[2], 1e-9)
}

func TestComputeEWMAAlphaOneIsIdentity(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5}
	assert.Equal(t, values, ComputeEWMA(values, 1.0))
}

func TestComputeEWMASmallAlphaStaysNearStart(t *testing.T) {
	values := []float64{10, 500, 500, 500}
	out := ComputeEWMA(values, 0.001)
	assert.InDelta(t, 10.0, out[len(out)-1], 2.0)
}

func TestComputeEWMAEmpty(t *testing.T) {
	assert.Nil(t, ComputeEWMA(nil, 0.5))
}

// weeklySeries builds four exact weekly cycles around a flat level.
func weeklySeries() []float64 {
	pattern := []float64{-4, -2, 0, 2, 5, 3, -4}
	values := make([]float64, 28)
	for i := range values {
		values[i] = 10 + pattern[i%7]
	}
	return values
}

func TestDecomposeRecoversSeasonality(t *testing.T) {
	values := weeklySeries()
	res := Decompose(values, nil, 7)
	require.NotNil(t, res)
	require.Len(t, res.Trend, len(values))
	require.Len(t, res.Seasonal, len(values))
	require.Len(t, res.Residual, len(values))

	// The three components always reassemble the input.
	for i, v := range values {
		assert.InDelta(t, v, res.Trend[i]+res.Seasonal[i]+res.Residual[i], 1e-9, "index %d", i)
	}

	var seasonalMean float64
	for _, s := range res.Seasonal {
		seasonalMean += s
	}
	seasonalMean /= float64(len(res.Seasonal))
	assert.InDelta(t, 0.0, seasonalMean, 1.0, "seasonal component should be centered")

	assert.Greater(t, res.SeasonalStrength, 0.5)
}

func TestDecomposeTooShort(t *testing.T) {
	assert.Nil(t, Decompose([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, nil, 7))
	assert.Nil(t, Decompose(weeklySeries(), nil, 1))
}

func TestDecomposeFillsMissing(t *testing.T) {
	values := weeklySeries()
	values[0] = math.NaN()
	values[10] = math.NaN()

	res := Decompose(values, nil, 7)
	require.NotNil(t, res)
	for i, v := range res.Trend {
		assert.False(t, math.IsNaN(v), "trend index %d", i)
	}
}

func TestDecomposeDateLabels(t *testing.T) {
	values := weeklySeries()
	dates := make([]string, len(values))
	for i := range dates {
		dates[i] = "2025-06-" + string(rune('0'+i%10))
	}
	res := Decompose(values, dates, 7)
	require.NotNil(t, res)
	assert.Equal(t, dates, res.Dates)

	res = Decompose(values, nil, 7)
	require.NotNil(t, res)
	assert.Equal(t, "0", res.Dates[0])
	assert.Equal(t, "27", res.Dates[27])
}

func TestDecomposerDefaults(t *testing.T) {
	d := NewDecomposer()

	res := d.Decompose(weeklySeries(), nil, 0)
	assert.NotNil(t, res, "period 0 should fall back to the weekly default")

	baseline := d.Baseline([]float64{1, 2, 3}, 0)
	require.Len(t, baseline, 3)
	assert.InDelta(t, 1.0, baseline[0], 1e-9)
}

func TestFlagResidualAnomalies(t *testing.T) {
	flags := FlagResidualAnomalies([]float64{0, 0.1, -0.1, 0.2, 10}, 2.0)
	assert.Equal(t, []bool{false, false, false, false, true}, flags)
}

func TestFlagResidualAnomaliesZeroMAD(t *testing.T) {
	flags := FlagResidualAnomalies([]float64{1, 1, 1, 1, 5}, 2.0)
	assert.Equal(t, []bool{false, false, false, false, false}, flags)
}

func TestFlagResidualAnomaliesEmpty(t *testing.T) {
	assert.Empty(t, FlagResidualAnomalies(nil, 2.0))
}
