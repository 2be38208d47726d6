package risktier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahilon/Atlas/internal/domain/models"
)

func TestJenksBreaksSeparatedClusters(t *testing.T) {
	values := []float64{1, 2, 3, 11, 12, 13, 21, 22, 23}
	assert.Equal(t, []float64{11, 21}, jenksBreaks(values, 3))
}

func TestKmeansBreaksSeparatedClusters(t *testing.T) {
	values := []float64{1, 2, 3, 11, 12, 13, 21, 22, 23}
	breaks := kmeansBreaks(values, 3)
	require.Len(t, breaks, 2)
	assert.InDelta(t, 7.0, breaks[0], 1e-9)
	assert.InDelta(t, 17.0, breaks[1], 1e-9)
}

func TestClassifierUnfittedDefaults(t *testing.T) {
	c := NewClassifier("")

	_, fitted := c.Config()
	assert.False(t, fitted)

	tier, percentile := c.Classify(50)
	assert.Equal(t, models.LevelMedium, tier)
	assert.Equal(t, 50.0, percentile)

	tier, _ = c.Classify(10)
	assert.Equal(t, models.LevelInfo, tier)
	tier, _ = c.Classify(90)
	assert.Equal(t, models.LevelCritical, tier)
}

func TestClassifierFitThinSampleKeepsDefaults(t *testing.T) {
	c := NewClassifier(MethodNaturalBreaks)
	cfg := c.Fit([]float64{10, 20, 30})

	assert.Equal(t, defaultBoundaries, cfg.Boundaries)
	assert.Equal(t, 3, cfg.NSamples)

	_, fitted := c.Config()
	assert.True(t, fitted)
}

func TestClassifierFitFiltersNaN(t *testing.T) {
	c := NewClassifier(MethodNaturalBreaks)
	cfg := c.Fit([]float64{10, math.NaN(), 20, math.NaN()})
	assert.Equal(t, 2, cfg.NSamples)
	assert.Equal(t, defaultBoundaries, cfg.Boundaries)
}

func TestClassifierFitAndClassify(t *testing.T) {
	c := NewClassifier(MethodNaturalBreaks)
	cfg := c.Fit([]float64{10, 20, 30, 40, 50})

	assert.Equal(t, []float64{20, 30, 40, 70}, cfg.Boundaries)
	assert.Equal(t, 5, cfg.NSamples)
	assert.Equal(t, 10.0, cfg.Stats.Min)
	assert.Equal(t, 50.0, cfg.Stats.Max)
	assert.InDelta(t, 30.0, cfg.Stats.Mean, 1e-9)

	tier, percentile := c.Classify(35)
	assert.Equal(t, models.LevelMedium, tier)
	assert.InDelta(t, 60.0, percentile, 1e-9)

	_, percentile = c.Classify(100)
	assert.InDelta(t, 100.0, percentile, 1e-9)
}

func TestClassifierAnchorsLowSkew(t *testing.T) {
	// All-calm cycles must not compress the upper tiers: a known-severe
	// score still has to land in high or critical.
	c := NewClassifier(MethodNaturalBreaks)
	cfg := c.Fit([]float64{1, 2, 3, 4, 5, 6})

	assert.Equal(t, []float64{10, 20, 30, 70}, cfg.Boundaries)

	tier, _ := c.Classify(80)
	assert.Equal(t, models.LevelCritical, tier)
}

func TestClassifierAnchorsHighSkew(t *testing.T) {
	c := NewClassifier(MethodNaturalBreaks)
	cfg := c.Fit([]float64{90, 91, 92, 93, 94, 95, 96})

	assert.Equal(t, []float64{25, 45, 65, 85}, cfg.Boundaries)

	tier, _ := c.Classify(5)
	assert.Equal(t, models.LevelInfo, tier)
}

func TestClassifierBoundariesAlwaysAscending(t *testing.T) {
	samples := [][]float64{
		{1, 1, 1, 1, 1, 1, 100},
		{50, 50, 50, 50, 50},
		{0, 0, 0, 99, 99, 99, 99, 99},
		{12, 37, 41, 58, 63, 79, 88, 91},
	}
	for _, method := range []string{MethodNaturalBreaks, MethodClustering} {
		for _, s := range samples {
			c := NewClassifier(method)
			cfg := c.Fit(s)
			require.Len(t, cfg.Boundaries, 4)
			for i := 1; i < len(cfg.Boundaries); i++ {
				assert.Greater(t, cfg.Boundaries[i], cfg.Boundaries[i-1],
					"method %s sample %v", method, s)
			}
			assert.GreaterOrEqual(t, cfg.Boundaries[0], 10.0)
			assert.LessOrEqual(t, cfg.Boundaries[3], 85.0)
			assert.GreaterOrEqual(t, cfg.Boundaries[3], 70.0)
		}
	}
}

func TestClassifierTierRangesCoverScale(t *testing.T) {
	c := NewClassifier(MethodClustering)
	cfg := c.Fit([]float64{12, 37, 41, 58, 63, 79, 88, 91})

	require.Len(t, cfg.TierRanges, 5)
	assert.Equal(t, 0.0, cfg.TierRanges[0].Lower)
	assert.Equal(t, 100.0, cfg.TierRanges[4].Upper)
	for i := 1; i < len(cfg.TierRanges); i++ {
		assert.Equal(t, cfg.TierRanges[i-1].Upper, cfg.TierRanges[i].Lower)
	}
	for i, name := range models.TierNames {
		assert.Equal(t, name, cfg.TierRanges[i].Name)
	}
	assert.Equal(t, MethodClustering, cfg.Method)
}
