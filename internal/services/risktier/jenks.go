package risktier

import (
	"math"
	"sort"
)

// jenksBreaks computes a Jenks natural-breaks partition of values into k
// classes, minimizing within-class variance. It returns the k-1 internal
// boundaries in ascending order. Caller guarantees len(values) >= k.
func jenksBreaks(values []float64, k int) []float64 {
	data := append([]float64(nil), values...)
	sort.Float64s(data)
	n := len(data)

	// lowerLimits[i][j] is the 1-based index of the lowest value in the last
	// class for the optimal j-class partition of the first i values;
	// variance[i][j] is that partition's summed within-class variance.
	lowerLimits := make([][]int, n+1)
	variance := make([][]float64, n+1)
	for i := range lowerLimits {
		lowerLimits[i] = make([]int, k+1)
		variance[i] = make([]float64, k+1)
	}
	for j := 1; j <= k; j++ {
		lowerLimits[1][j] = 1
		for i := 2; i <= n; i++ {
			variance[i][j] = math.Inf(1)
		}
	}

	for i := 2; i <= n; i++ {
		var sum, sumSq, w float64
		for m := 1; m <= i; m++ {
			lower := i - m + 1 // candidate lowest index of the last class
			v := data[lower-1]
			w++
			sum += v
			sumSq += v * v
			classVariance := sumSq - sum*sum/w

			if lower > 1 {
				for j := 2; j <= k; j++ {
					prev := variance[lower-1][j-1]
					if math.IsInf(prev, 1) {
						continue
					}
					if cand := classVariance + prev; cand <= variance[i][j] {
						lowerLimits[i][j] = lower
						variance[i][j] = cand
					}
				}
			}
		}
		lowerLimits[i][1] = 1
		variance[i][1] = sumSq - sum*sum/w
	}

	// Walk the class limits back to produce the internal boundaries.
	// Heavily tied data can exhaust the limits early; the remaining
	// boundaries collapse onto the minimum and the anchors spread them out.
	boundaries := make([]float64, k-1)
	idx := n
	for j := k; j >= 2; j-- {
		if idx < 1 {
			boundaries[j-2] = data[0]
			continue
		}
		lower := lowerLimits[idx][j]
		boundaries[j-2] = data[lower-1]
		idx = lower - 1
	}
	return boundaries
}
