package risktier

import "sort"

const kmeansMaxIterations = 100

// kmeansBreaks fits 1-D k-means over the scores and derives boundaries as
// midpoints between adjacent sorted centroids. Initialization is by evenly
// spaced quantiles of the sorted data, so the fit is deterministic.
// Caller guarantees len(values) >= k.
func kmeansBreaks(values []float64, k int) []float64 {
	data := append([]float64(nil), values...)
	sort.Float64s(data)
	n := len(data)

	centroids := make([]float64, k)
	for i := range centroids {
		pos := int(float64(n) * (float64(i) + 0.5) / float64(k))
		if pos >= n {
			pos = n - 1
		}
		centroids[i] = data[pos]
	}

	assign := make([]int, n)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, v := range data {
			best := 0
			bestDist := abs(v - centroids[0])
			for c := 1; c < k; c++ {
				if d := abs(v - centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		sums := make([]float64, k)
		counts := make([]int, k)
		for i, v := range data {
			sums[assign[i]] += v
			counts[assign[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centroids[c] = sums[c] / float64(counts[c])
			}
		}
	}

	sort.Float64s(centroids)
	boundaries := make([]float64, k-1)
	for i := 0; i < k-1; i++ {
		boundaries[i] = (centroids[i] + centroids[i+1]) / 2.0
	}
	return boundaries
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
