package models

import "time"

// AnomalyMethodDetail carries per-method diagnostics for one observation.
type AnomalyMethodDetail struct {
	IQR            bool    `json:"iqr"`
	Isolation      bool    `json:"isolation_forest"`
	IsolationScore float64 `json:"isolation_score"`
	CUSUM          bool    `json:"cusum"`
	CUSUMScore     float64 `json:"cusum_score"`
}

// AnomalyVerdict is the ensemble decision for one observation index.
type AnomalyVerdict struct {
	IsAnomaly      bool                `json:"is_anomaly"`
	AnomalyScore   float64             `json:"anomaly_score"` // 0-1 composite
	MethodsFlagged []string            `json:"methods_flagged"`
	Details        AnomalyMethodDetail `json:"details"`
}

// TrendVerdict is the reconciled trend decision for one (entity, window).
type TrendVerdict struct {
	Direction   string  `json:"direction"` // rising | stable | falling
	Slope       float64 `json:"slope"`
	Confidence  float64 `json:"confidence"` // R-squared
	PValue      float64 `json:"p_value"`
	MKDirection string  `json:"mk_direction,omitempty"`
	MKPValue    float64 `json:"mk_p_value,omitempty"`
}

// TierRange is one tier's half-open [Lower, Upper) interval. Ranges are kept
// as an ordered slice so tie-break order stays deterministic.
type TierRange struct {
	Name  string  `json:"name"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ScoreStats summarizes the fitted score distribution.
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// TierConfiguration is the fitted (or default) risk-tier layout for one
// scoring cycle. Boundaries are k-1 ascending thresholds covering [0,100].
type TierConfiguration struct {
	Method     string      `json:"method"` // natural-breaks | clustering
	Boundaries []float64   `json:"boundaries"`
	TierRanges []TierRange `json:"tier_ranges"`
	NSamples   int         `json:"n_samples"`
	FittedAt   time.Time   `json:"fitted_at"`
	Stats      ScoreStats  `json:"stats"`
}

// DecompositionResult holds trend/seasonal/residual components for a series.
type DecompositionResult struct {
	Trend            []float64 `json:"trend"`
	Seasonal         []float64 `json:"seasonal"`
	Residual         []float64 `json:"residual"`
	Dates            []string  `json:"dates"`
	SeasonalStrength float64   `json:"seasonal_strength"` // 0-1
}
