package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectIQRFlagsSpike(t *testing.T) {
	flags := DetectIQR([]float64{10, 10, 10, 10, 10, 100}, DefaultIQRMultiplier)
	assert.Equal(t, []bool{false, false, false, false, false, true}, flags)
}

func TestDetectIQRShortSeries(t *testing.T) {
	flags := DetectIQR([]float64{1, 2, 500}, DefaultIQRMultiplier)
	assert.Equal(t, []bool{false, false, false}, flags)
}

func TestDetectCUSUMLevelShift(t *testing.T) {
	values := []float64{0, 0, 0, 0, 0, 10, 10, 10, 10, 10}
	alerts, scores := DetectCUSUM(values, DefaultCUSUMThreshold, DefaultCUSUMDrift)

	assert.False(t, alerts[0], "index 0 carries no prior state")
	assert.True(t, alerts[2])
	assert.Equal(t, 0.0, scores[0])
	assert.Positive(t, scores[2])
}

func TestDetectCUSUMLargerShiftAlertsEarlier(t *testing.T) {
	small, _ := DetectCUSUM([]float64{0, 0, 0, 0, 0, 10, 10, 10, 10, 10}, DefaultCUSUMThreshold, DefaultCUSUMDrift)
	big, _ := DetectCUSUM([]float64{0, 0, 0, 0, 0, 20, 20, 20, 20, 20}, DefaultCUSUMThreshold, DefaultCUSUMDrift)

	assert.Less(t, firstAlert(big), firstAlert(small))
}

func firstAlert(alerts []bool) int {
	for i, a := range alerts {
		if a {
			return i
		}
	}
	return len(alerts)
}

func TestDetectCUSUMShortSeries(t *testing.T) {
	alerts, scores := DetectCUSUM([]float64{0, 100, 0}, DefaultCUSUMThreshold, DefaultCUSUMDrift)
	assert.Equal(t, []bool{false, false, false}, alerts)
	assert.Equal(t, []float64{0, 0, 0}, scores)
}

func TestDetectIsolationFlagsOutlier(t *testing.T) {
	features := make([][]float64, 20)
	for i := range features {
		features[i] = []float64{4 + float64(i%3)}
	}
	features[13] = []float64{50}

	flags, scores := DetectIsolation(features, DefaultContamination)
	assert.True(t, flags[13])
	for i, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0, "score %d", i)
		assert.LessOrEqual(t, s, 1.0, "score %d", i)
	}
	assert.InDelta(t, 1.0, scores[13], 1e-9, "outlier carries the max normalized score")
}

func TestDetectIsolationDeterministic(t *testing.T) {
	features := make([][]float64, 30)
	for i := range features {
		features[i] = []float64{float64(i % 7), float64((i * 3) % 5)}
	}
	features[20] = []float64{100, 100}

	flagsA, scoresA := DetectIsolation(features, DefaultContamination)
	flagsB, scoresB := DetectIsolation(features, DefaultContamination)
	assert.Equal(t, flagsA, flagsB)
	assert.Equal(t, scoresA, scoresB)
}

func TestDetectIsolationShortBatch(t *testing.T) {
	features := [][]float64{{1}, {2}, {900}}
	flags, scores := DetectIsolation(features, DefaultContamination)
	assert.Equal(t, []bool{false, false, false}, flags)
	assert.Equal(t, []float64{0, 0, 0}, scores)
}

func TestDetectIsolationZeroVariance(t *testing.T) {
	features := make([][]float64, 12)
	for i := range features {
		features[i] = []float64{7}
	}
	_, scores := DetectIsolation(features, DefaultContamination)
	for _, s := range scores {
		assert.InDelta(t, 0.5, s, 1e-9)
	}
}

func TestDetectEnsembleSpike(t *testing.T) {
	counts := []float64{4, 4, 4, 4, 4, 40, 7, 7, 7, 7, 7}
	verdicts := NewDetector().DetectEnsemble(counts, nil, nil, DefaultMinAgreement)
	require.Len(t, verdicts, len(counts))

	assert.True(t, verdicts[5].IsAnomaly)
	assert.GreaterOrEqual(t, verdicts[5].AnomalyScore, 0.6)
	assert.Contains(t, verdicts[5].MethodsFlagged, MethodIQR)

	for i, v := range verdicts {
		if i == 5 {
			continue
		}
		assert.False(t, v.IsAnomaly, "index %d", i)
	}
}

func TestDetectEnsembleDeterministic(t *testing.T) {
	counts := []float64{4, 4, 4, 4, 4, 40, 7, 7, 7, 7, 7}
	sentiments := []float64{-0.1, -0.2, -0.1, 0, -0.1, -0.9, -0.3, -0.2, -0.1, -0.2, -0.3}

	a := NewDetector().DetectEnsemble(counts, sentiments, nil, DefaultMinAgreement)
	b := NewDetector().DetectEnsemble(counts, sentiments, nil, DefaultMinAgreement)
	assert.Equal(t, a, b)
}

func TestDetectEnsembleEmpty(t *testing.T) {
	assert.Nil(t, NewDetector().DetectEnsemble(nil, nil, nil, DefaultMinAgreement))
}
