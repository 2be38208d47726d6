package service

import "github.com/Dahilon/Atlas/internal/domain/models"

// SeverityScorer computes the composite 0-100 severity index for one
// article. Implementations are pure: same input, same record, no errors.
type SeverityScorer interface {
	Score(in models.SeverityInput) models.ScoredRecord
}

// EventClassifier maps free text to one of the six fixed categories.
// threshold <= 0 selects the implementation default.
type EventClassifier interface {
	Classify(text string, threshold float64) models.CategoryPrediction
}

// AnomalyDetector runs the multi-method ensemble over a daily series.
// sentiments and severities are optional companion columns; pass nil when a
// series lacks them.
type AnomalyDetector interface {
	DetectEnsemble(counts, sentiments, severities []float64, minAgreement int) []models.AnomalyVerdict
}

// TrendDetector reconciles regression and non-parametric trend signals into
// one rising/stable/falling verdict.
type TrendDetector interface {
	Detect(values []float64, slopeThreshold float64, minPoints int) models.TrendVerdict
	DetectByEntity(series map[string][]float64, window int) map[string]models.TrendVerdict
}

// Decomposer provides smoothed baselines and seasonal decomposition.
// Decompose returns nil below the minimum usable length (2x period).
type Decomposer interface {
	Baseline(values []float64, alpha float64) []float64
	Decompose(values []float64, dates []string, period int) *models.DecompositionResult
	FlagResidualAnomalies(residuals []float64, threshold float64) []bool
}

// TierClassifier holds fitted risk-tier boundaries across calls. Fit is
// called once per scoring cycle by a single writer; Classify is safe from
// any goroutine.
type TierClassifier interface {
	Fit(scores []float64) models.TierConfiguration
	Classify(score float64) (tier string, percentile float64)
	Config() (models.TierConfiguration, bool)
}
