package timeseries

import (
	"github.com/Dahilon/Atlas/internal/domain/models"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
)

// Default tuning for baseline smoothing and decomposition.
const (
	DefaultAlpha             = 0.3
	DefaultPeriod            = 7
	DefaultResidualThreshold = 2.0
)

// Decomposer bundles the package's series operations behind the domain
// interface. Stateless; share one instance.
type Decomposer struct{}

// NewDecomposer returns a Decomposer.
func NewDecomposer() *Decomposer { return &Decomposer{} }

// Baseline returns the exponentially smoothed series.
func (d *Decomposer) Baseline(values []float64, alpha float64) []float64 {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return ComputeEWMA(values, alpha)
}

// Decompose splits the series into trend/seasonal/residual components, or
// returns nil when the series is shorter than two periods.
func (d *Decomposer) Decompose(values []float64, dates []string, period int) *models.DecompositionResult {
	if period <= 0 {
		period = DefaultPeriod
	}
	return Decompose(values, dates, period)
}

// FlagResidualAnomalies flags residuals beyond the robust z threshold.
func (d *Decomposer) FlagResidualAnomalies(residuals []float64, threshold float64) []bool {
	if threshold <= 0 {
		threshold = DefaultResidualThreshold
	}
	return FlagResidualAnomalies(residuals, threshold)
}

var _ domsvc.Decomposer = (*Decomposer)(nil)
