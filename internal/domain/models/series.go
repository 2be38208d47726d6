package models

import "time"

// DailyPoint is one observation in a per-entity daily series.
// Sentiment/Severity are companion metrics and may be absent.
type DailyPoint struct {
	Date       time.Time
	EventCount float64
	Sentiment  *float64
	Severity   *float64
}

// DailySeries is an ordered-by-date sequence of observations for one
// (country, category) pair. Dates are strictly increasing; gaps are tolerated
// and never interpolated.
type DailySeries struct {
	CountryCode string
	Category    string
	Points      []DailyPoint
}

// Counts returns the primary event-count series.
func (s DailySeries) Counts() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.EventCount
	}
	return out
}

// Sentiments returns the companion sentiment series, or nil when any point
// is missing it (the detectors require same-length feature columns).
func (s DailySeries) Sentiments() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		if p.Sentiment == nil {
			return nil
		}
		out[i] = *p.Sentiment
	}
	return out
}

// Severities returns the companion severity series, or nil when incomplete.
func (s DailySeries) Severities() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		if p.Severity == nil {
			return nil
		}
		out[i] = *p.Severity
	}
	return out
}

// DateLabels returns ISO dates for decomposition output labeling.
func (s DailySeries) DateLabels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date.Format("2006-01-02")
	}
	return out
}
