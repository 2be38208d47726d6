package usecase

import (
	"context"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
)

// InsightAggregator runs the analytical engine over stored daily series.
type InsightAggregator struct {
	store     domrepo.SeriesStore
	anomaly   domsvc.AnomalyDetector
	trend     domsvc.TrendDetector
	decompose domsvc.Decomposer
	tiers     domsvc.TierClassifier
}

func NewInsightAggregator(store domrepo.SeriesStore, anomaly domsvc.AnomalyDetector, trend domsvc.TrendDetector, decompose domsvc.Decomposer, tiers domsvc.TierClassifier) *InsightAggregator {
	return &InsightAggregator{store: store, anomaly: anomaly, trend: trend, decompose: decompose, tiers: tiers}
}

func (a *InsightAggregator) series(ctx context.Context, country string, w domrepo.Window) (*models.DailySeries, error) {
	to := time.Now().UTC()
	return a.store.GetDailySeries(ctx, country, to.Add(-w.Duration()), to)
}

// Anomalies runs the ensemble detector over the country's daily event counts
// and pairs every verdict with its date.
func (a *InsightAggregator) Anomalies(ctx context.Context, country string, w domrepo.Window) ([]models.DatedAnomaly, error) {
	s, err := a.series(ctx, country, w)
	if err != nil {
		return nil, err
	}
	counts := s.Counts()
	verdicts := a.anomaly.DetectEnsemble(counts, s.Sentiments(), s.Severities(), 0)

	out := make([]models.DatedAnomaly, len(verdicts))
	for i, v := range verdicts {
		out[i] = models.DatedAnomaly{
			Date:       s.Points[i].Date.Format("2006-01-02"),
			EventCount: counts[i],
			Verdict:    v,
		}
	}
	return out, nil
}

// Trend reconciles the regression and Mann-Kendall verdicts for the
// country's event-count series.
func (a *InsightAggregator) Trend(ctx context.Context, country string, w domrepo.Window) (models.TrendVerdict, error) {
	s, err := a.series(ctx, country, w)
	if err != nil {
		return models.TrendVerdict{}, err
	}
	return a.trend.Detect(s.Counts(), 0.5, 0), nil
}

// TrendsByCountry runs the trailing-window trend detector for every country
// active in the lookback window.
func (a *InsightAggregator) TrendsByCountry(ctx context.Context, w domrepo.Window, window int) (map[string]models.TrendVerdict, error) {
	to := time.Now().UTC()
	from := to.Add(-w.Duration())
	countries, err := a.store.GetActiveCountries(ctx, from)
	if err != nil {
		return nil, err
	}

	series := make(map[string][]float64, len(countries))
	for _, country := range countries {
		s, err := a.store.GetDailySeries(ctx, country, from, to)
		if err != nil {
			return nil, err
		}
		series[country] = s.Counts()
	}
	return a.trend.DetectByEntity(series, window), nil
}

// Decomposition splits the country's series into trend/seasonal/residual
// components. A series shorter than two periods returns nil.
func (a *InsightAggregator) Decomposition(ctx context.Context, country string, w domrepo.Window, period int) (*models.DecompositionResult, error) {
	s, err := a.series(ctx, country, w)
	if err != nil {
		return nil, err
	}
	return a.decompose.Decompose(s.Counts(), s.DateLabels(), period), nil
}

// TierConfig returns the current tier layout and whether it came from a fit.
func (a *InsightAggregator) TierConfig() (models.TierConfiguration, bool) {
	return a.tiers.Config()
}
