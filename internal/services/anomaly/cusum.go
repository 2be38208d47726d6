package anomaly

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// minCUSUMPoints is the shortest series worth running drift detection on.
const minCUSUMPoints = 5

// DetectCUSUM runs a two-sided cumulative-sum control chart against the
// series mean. It catches sustained level shifts (slow-building escalation)
// that never show up as single spikes.
//
// threshold is the alarm level h; drift is the allowance k subtracted before
// accumulating. Index 0 carries no prior state and is never flagged.
func DetectCUSUM(values []float64, threshold, drift float64) ([]bool, []float64) {
	alerts := make([]bool, len(values))
	scores := make([]float64, len(values))
	if len(values) < minCUSUMPoints {
		return alerts, scores
	}

	mean := stat.Mean(values, nil)
	var sPos, sNeg float64
	for i := 1; i < len(values); i++ {
		sPos = math.Max(0.0, sPos+(values[i]-mean)-drift)
		sNeg = math.Max(0.0, sNeg-(values[i]-mean)-drift)
		scores[i] = math.Max(sPos, sNeg)
		if sPos > threshold || sNeg > threshold {
			alerts[i] = true
		}
	}
	return alerts, scores
}
