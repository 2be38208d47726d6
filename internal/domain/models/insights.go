package models

import "time"

// DatedAnomaly pairs an ensemble verdict with its observation date.
type DatedAnomaly struct {
	Date       string         `json:"date"`
	EventCount float64        `json:"event_count"`
	Verdict    AnomalyVerdict `json:"verdict"`
}

// CountryInsights is the aggregate analytical view for one country over one
// lookback window. Sections that failed are nil with the cause in Errors.
type CountryInsights struct {
	CountryCode   string               `json:"country_code"`
	Window        string               `json:"window"`
	Timestamp     time.Time            `json:"timestamp"`
	Anomalies     []DatedAnomaly       `json:"anomalies,omitempty"`
	Trend         *TrendVerdict        `json:"trend,omitempty"`
	Decomposition *DecompositionResult `json:"decomposition,omitempty"`
	Tiers         *TierConfiguration   `json:"tiers,omitempty"`
	Errors        map[string]string    `json:"errors,omitempty"`
}
