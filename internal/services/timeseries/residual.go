package timeseries

import (
	"math"
	"sort"
)

// madScale converts a median absolute deviation to a standard-deviation
// equivalent for normally distributed residuals.
const madScale = 1.4826

// FlagResidualAnomalies flags residuals whose robust z-score exceeds the
// threshold. The z-score uses the median absolute deviation scaled by
// 1.4826; a zero MAD (constant residuals) yields all-false.
func FlagResidualAnomalies(residuals []float64, threshold float64) []bool {
	flags := make([]bool, len(residuals))
	if len(residuals) == 0 {
		return flags
	}

	med := median(residuals)
	deviations := make([]float64, len(residuals))
	for i, r := range residuals {
		deviations[i] = math.Abs(r - med)
	}
	mad := median(deviations)
	if mad == 0 {
		return flags
	}

	scaled := mad * madScale
	for i, r := range residuals {
		if math.Abs(r-med)/scaled > threshold {
			flags[i] = true
		}
	}
	return flags
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}
