package anomaly

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// minIQRPoints is the smallest series the quartile fences are meaningful for.
const minIQRPoints = 4

// DetectIQR flags observations outside the Tukey fences
// [Q1 - multiplier*IQR, Q3 + multiplier*IQR]. Series shorter than four
// points return all-false.
func DetectIQR(values []float64, multiplier float64) []bool {
	flags := make([]bool, len(values))
	if len(values) < minIQRPoints {
		return flags
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	iqr := q3 - q1

	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr
	for i, v := range values {
		flags[i] = v < lower || v > upper
	}
	return flags
}
