package timeseries

import (
	"math"
	"strconv"

	"github.com/Dahilon/Atlas/internal/domain/models"
)

// Decomposition tuning. Two robustness passes tolerate the outliers daily
// event counts are full of.
const (
	stlInnerIterations  = 2
	stlRobustIterations = 2
)

// Decompose splits a daily series into trend, seasonal, and residual
// components via locally weighted regression, in robust mode. It needs at
// least two full periods; shorter series return nil rather than a degenerate
// decomposition. Missing (NaN) values are forward- then backward-filled
// before fitting. dates may be nil; indexes are used as labels then.
func Decompose(values []float64, dates []string, period int) *models.DecompositionResult {
	n := len(values)
	if period < 2 || n < 2*period {
		return nil
	}

	y := fillMissing(values)

	trend := make([]float64, n)
	seasonal := make([]float64, n)
	robustWeights := ones(n)

	seasonalWidth := 7
	trendWidth := oddAtLeast(int(math.Ceil(1.5 * float64(period))))

	for robust := 0; robust <= stlRobustIterations; robust++ {
		for inner := 0; inner < stlInnerIterations; inner++ {
			// Seasonal: loess-smooth each cycle-subseries of the detrended
			// series, then remove the low-frequency drift so the seasonal
			// component stays centered.
			detrended := make([]float64, n)
			for i := range y {
				detrended[i] = y[i] - trend[i]
			}
			for phase := 0; phase < period; phase++ {
				var idx []int
				for i := phase; i < n; i += period {
					idx = append(idx, i)
				}
				sub := make([]float64, len(idx))
				w := make([]float64, len(idx))
				for j, i := range idx {
					sub[j] = detrended[i]
					w[j] = robustWeights[i]
				}
				smooth := loess(sub, w, seasonalWidth)
				for j, i := range idx {
					seasonal[i] = smooth[j]
				}
			}
			lowPass := movingAverage(movingAverage(seasonal, period), period)
			for i := range seasonal {
				seasonal[i] -= lowPass[i]
			}

			// Trend: loess over the deseasonalized series.
			deseasonalized := make([]float64, n)
			for i := range y {
				deseasonalized[i] = y[i] - seasonal[i]
			}
			trend = loess(deseasonalized, robustWeights, trendWidth)
		}
		if robust < stlRobustIterations {
			robustWeights = bisquareWeights(residuals(y, trend, seasonal))
		}
	}

	resid := residuals(y, trend, seasonal)

	labels := dates
	if len(labels) < n {
		labels = make([]string, n)
		for i := range labels {
			labels[i] = strconv.Itoa(i)
		}
	} else {
		labels = labels[:n]
	}

	return &models.DecompositionResult{
		Trend:            trend,
		Seasonal:         seasonal,
		Residual:         resid,
		Dates:            labels,
		SeasonalStrength: seasonalStrength(seasonal, resid),
	}
}

func residuals(y, trend, seasonal []float64) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] - trend[i] - seasonal[i]
	}
	return out
}

// seasonalStrength is max(0, 1 - Var(residual)/Var(seasonal+residual)),
// clamped into [0,1].
func seasonalStrength(seasonal, resid []float64) float64 {
	combined := make([]float64, len(resid))
	for i := range resid {
		combined[i] = seasonal[i] + resid[i]
	}
	vc := popVariance(combined)
	if vc <= 0 {
		return 0.0
	}
	return math.Min(1.0, math.Max(0.0, 1.0-popVariance(resid)/vc))
}

// fillMissing forward-fills NaN gaps, then backward-fills a NaN head.
func fillMissing(values []float64) []float64 {
	out := append([]float64(nil), values...)
	last := math.NaN()
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}
	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			out[i] = next
		} else {
			next = out[i]
		}
	}
	for i, v := range out {
		if math.IsNaN(v) { // all-missing series
			out[i] = 0
		}
	}
	return out
}

// loess runs degree-1 locally weighted regression over the series with a
// tricube kernel of the given width (number of neighbors), multiplied by the
// per-point robustness weights.
func loess(y, weights []float64, width int) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if width > n {
		width = n
	}
	if width < 2 {
		copy(out, y)
		return out
	}
	half := width / 2

	for i := 0; i < n; i++ {
		lo := i - half
		hi := i + half
		if lo < 0 {
			lo, hi = 0, width-1
		}
		if hi >= n {
			lo, hi = n-width, n-1
		}
		maxDist := math.Max(float64(i-lo), float64(hi-i))
		if maxDist == 0 {
			maxDist = 1
		}

		var sw, swx, swy, swxx, swxy float64
		for j := lo; j <= hi; j++ {
			d := math.Abs(float64(j-i)) / maxDist
			w := tricube(d) * weights[j]
			if w <= 0 {
				continue
			}
			x := float64(j)
			sw += w
			swx += w * x
			swy += w * y[j]
			swxx += w * x * x
			swxy += w * x * y[j]
		}
		if sw == 0 {
			out[i] = y[i]
			continue
		}
		denom := sw*swxx - swx*swx
		if math.Abs(denom) < 1e-12 {
			out[i] = swy / sw
			continue
		}
		beta := (sw*swxy - swx*swy) / denom
		alpha := (swy - beta*swx) / sw
		out[i] = alpha + beta*float64(i)
	}
	return out
}

// movingAverage smooths with a centered window, shrinking at the edges.
func movingAverage(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)
	half := window / 2
	for i := 0; i < n; i++ {
		lo := i - half
		hi := i + half
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// bisquareWeights downweights observations with large residuals so outliers
// stop distorting the trend and seasonal fits.
func bisquareWeights(resid []float64) []float64 {
	absResid := make([]float64, len(resid))
	for i, r := range resid {
		absResid[i] = math.Abs(r)
	}
	m := median(absResid)
	cutoff := 6.0 * m
	out := make([]float64, len(resid))
	for i, r := range resid {
		if cutoff == 0 {
			out[i] = 1.0
			continue
		}
		u := math.Abs(r) / cutoff
		if u >= 1 {
			out[i] = 0.0
			continue
		}
		w := 1 - u*u
		out[i] = w * w
	}
	return out
}

func tricube(d float64) float64 {
	if d >= 1 {
		return 0
	}
	t := 1 - d*d*d
	return t * t * t
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0
	}
	return out
}

func popVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(values))
}

func oddAtLeast(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}
