package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
)

var _ domsvc.TrendDetector = (*Detector)(nil)

// Trend directions.
const (
	DirectionRising  = "rising"
	DirectionStable  = "stable"
	DirectionFalling = "falling"
)

// Defaults matching the calibration the verdicts were tuned with.
const (
	DefaultSlopeThreshold = 0.5
	DefaultMinPoints      = 4
	DefaultWindow         = 7

	regressionAlpha  = 0.1  // OLS direction needs p below this
	mannKendallAlpha = 0.05 // MK wins reconciliation below this
)

// Detector reconciles an OLS slope with a Mann-Kendall monotonic-trend test
// into one rising/stable/falling verdict. Stateless and shareable.
type Detector struct{}

// NewDetector returns a Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect analyzes an ordered series (oldest first). NaN values are dropped.
// Fewer than minPoints usable observations yield a stable, zero-confidence
// verdict. When the Mann-Kendall test is significant its direction wins;
// otherwise the regression-based direction is used.
func (d *Detector) Detect(values []float64, slopeThreshold float64, minPoints int) models.TrendVerdict {
	if minPoints < DefaultMinPoints {
		minPoints = DefaultMinPoints
	}
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) < minPoints {
		return models.TrendVerdict{Direction: DirectionStable, PValue: 1.0}
	}

	slope, rSquared, pValue := linearFit(clean)
	regDirection := DirectionStable
	if pValue < regressionAlpha && math.Abs(slope) > slopeThreshold {
		if slope > 0 {
			regDirection = DirectionRising
		} else {
			regDirection = DirectionFalling
		}
	}

	mkDirection, _, mkP := mannKendall(clean)

	direction := regDirection
	if mkP < mannKendallAlpha {
		direction = mkDirection
	}

	return models.TrendVerdict{
		Direction:   direction,
		Slope:       slope,
		Confidence:  rSquared,
		PValue:      pValue,
		MKDirection: mkDirection,
		MKPValue:    mkP,
	}
}

// DetectByEntity runs Detect over the trailing window of each entity's
// series.
func (d *Detector) DetectByEntity(series map[string][]float64, window int) map[string]models.TrendVerdict {
	if window <= 0 {
		window = DefaultWindow
	}
	out := make(map[string]models.TrendVerdict, len(series))
	for entity, values := range series {
		recent := values
		if len(recent) > window {
			recent = recent[len(recent)-window:]
		}
		out[entity] = d.Detect(recent, DefaultSlopeThreshold, DefaultMinPoints)
	}
	return out
}

// linearFit regresses value on index and returns (slope, R^2, two-tailed
// p-value for the slope).
func linearFit(y []float64) (float64, float64, float64) {
	n := len(y)
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	if stat.Variance(y, nil) == 0 {
		// Constant series: zero slope, nothing explained, no significance.
		return 0.0, 0.0, 1.0
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, alpha, beta)

	// Standard error of the slope for the t-test.
	var sse, sxx float64
	xMean := stat.Mean(x, nil)
	for i := range y {
		resid := y[i] - (alpha + beta*x[i])
		sse += resid * resid
		dx := x[i] - xMean
		sxx += dx * dx
	}
	if n <= 2 || sxx == 0 || sse == 0 {
		// A perfect or degenerate fit; a zero-residual line is maximally
		// significant, a zero-spread x is not significant at all.
		if sse == 0 && sxx > 0 {
			return beta, r2, 0.0
		}
		return beta, r2, 1.0
	}
	se := math.Sqrt(sse / float64(n-2) / sxx)
	t := beta / se
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	p := 2.0 * tDist.Survival(math.Abs(t))
	return beta, r2, p
}

// mannKendall runs the non-parametric monotonic-trend test: pairwise sign
// differences (S), tie-corrected variance, z-score, two-tailed normal
// p-value, and Kendall's tau.
func mannKendall(data []float64) (string, float64, float64) {
	n := len(data)
	if n < 4 {
		return DirectionStable, 0.0, 1.0
	}

	s := 0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case data[j] > data[i]:
				s++
			case data[j] < data[i]:
				s--
			}
		}
	}

	nf := float64(n)
	varS := nf * (nf - 1) * (2*nf + 5) / 18.0
	for _, t := range tieCounts(data) {
		tf := float64(t)
		varS -= tf * (tf - 1) * (2*tf + 5) / 18.0
	}
	if varS <= 0 {
		return DirectionStable, 0.0, 1.0
	}

	var z float64
	switch {
	case s > 0:
		z = (float64(s) - 1) / math.Sqrt(varS)
	case s < 0:
		z = (float64(s) + 1) / math.Sqrt(varS)
	}

	p := 2.0 * distuv.UnitNormal.Survival(math.Abs(z))
	tau := float64(s) / (nf * (nf - 1) / 2.0)

	direction := DirectionStable
	if p < mannKendallAlpha {
		if tau > 0 {
			direction = DirectionRising
		} else {
			direction = DirectionFalling
		}
	}
	return direction, tau, p
}

// tieCounts returns the multiplicity of each tied value group (>1 only).
func tieCounts(data []float64) []int {
	freq := make(map[float64]int, len(data))
	for _, v := range data {
		freq[v]++
	}
	var out []int
	for _, c := range freq {
		if c > 1 {
			out = append(out, c)
		}
	}
	return out
}
