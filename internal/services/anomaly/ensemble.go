package anomaly

import (
	"math"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
)

var _ domsvc.AnomalyDetector = (*Detector)(nil)

// Method names reported in AnomalyVerdict.MethodsFlagged.
const (
	MethodIQR       = "iqr"
	MethodIsolation = "isolation_forest"
	MethodCUSUM     = "cusum"
)

// Defaults mirroring the tuning the detectors were calibrated with.
const (
	DefaultIQRMultiplier   = 1.5
	DefaultContamination   = 0.1
	DefaultCUSUMThreshold  = 5.0
	DefaultCUSUMDrift      = 0.5
	DefaultMinAgreement    = 2
	confirmedScoreFloor    = 0.6
)

// Detector runs the three-method anomaly ensemble. Stateless; a single
// instance is shared across entities.
type Detector struct {
	iqrMultiplier  float64
	contamination  float64
	cusumThreshold float64
	cusumDrift     float64
}

// NewDetector returns a Detector with the default tuning.
func NewDetector() *Detector {
	return &Detector{
		iqrMultiplier:  DefaultIQRMultiplier,
		contamination:  DefaultContamination,
		cusumThreshold: DefaultCUSUMThreshold,
		cusumDrift:     DefaultCUSUMDrift,
	}
}

// DetectEnsemble runs IQR, isolation forest, and CUSUM over the daily event
// counts (with optional same-length sentiment/severity companion columns)
// and majority-votes the verdicts. An observation is anomalous when at least
// minAgreement of the three methods flag it; confirmed anomalies get their
// composite score floored at 0.6.
func (d *Detector) DetectEnsemble(counts, sentiments, severities []float64, minAgreement int) []models.AnomalyVerdict {
	n := len(counts)
	if n == 0 {
		return nil
	}
	if minAgreement <= 0 {
		minAgreement = DefaultMinAgreement
	}

	iqrFlags := DetectIQR(counts, d.iqrMultiplier)

	cols := [][]float64{counts}
	if len(sentiments) == n {
		cols = append(cols, sentiments)
	}
	if len(severities) == n {
		cols = append(cols, severities)
	}
	features := make([][]float64, n)
	for i := range features {
		row := make([]float64, len(cols))
		for j, col := range cols {
			row[j] = col[i]
		}
		features[i] = row
	}
	isoFlags, isoScores := DetectIsolation(features, d.contamination)

	cusumFlags, cusumScores := DetectCUSUM(counts, d.cusumThreshold, d.cusumDrift)
	var maxCUSUM float64
	for _, s := range cusumScores {
		maxCUSUM = math.Max(maxCUSUM, s)
	}
	if maxCUSUM <= 0 {
		maxCUSUM = 1.0
	}

	verdicts := make([]models.AnomalyVerdict, n)
	for i := 0; i < n; i++ {
		var methods []string
		if iqrFlags[i] {
			methods = append(methods, MethodIQR)
		}
		if isoFlags[i] {
			methods = append(methods, MethodIsolation)
		}
		if cusumFlags[i] {
			methods = append(methods, MethodCUSUM)
		}
		isAnomaly := len(methods) >= minAgreement

		score := isoScores[i]
		if cusumScores[i] > 0 {
			score = (score + cusumScores[i]/maxCUSUM) / 2.0
		}
		if isAnomaly {
			score = math.Max(score, confirmedScoreFloor)
		}

		verdicts[i] = models.AnomalyVerdict{
			IsAnomaly:      isAnomaly,
			AnomalyScore:   score,
			MethodsFlagged: methods,
			Details: models.AnomalyMethodDetail{
				IQR:            iqrFlags[i],
				Isolation:      isoFlags[i],
				IsolationScore: isoScores[i],
				CUSUM:          cusumFlags[i],
				CUSUMScore:     cusumScores[i],
			},
		}
	}
	return verdicts
}
