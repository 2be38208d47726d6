package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
)

type fakeSeriesStore struct {
	series    map[string]*models.DailySeries
	scores    []float64
	countries []string
	err       error
}

func (f *fakeSeriesStore) GetDailySeries(_ context.Context, country string, _, _ time.Time) (*models.DailySeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.series[country]; ok {
		return s, nil
	}
	return &models.DailySeries{CountryCode: country}, nil
}

func (f *fakeSeriesStore) GetRecentScores(context.Context, time.Time, int) ([]float64, error) {
	return f.scores, f.err
}

func (f *fakeSeriesStore) GetActiveCountries(context.Context, time.Time) ([]string, error) {
	return f.countries, f.err
}

type fakeAnomalyDetector struct {
	flagIndex int
}

func (f *fakeAnomalyDetector) DetectEnsemble(counts, _, _ []float64, _ int) []models.AnomalyVerdict {
	out := make([]models.AnomalyVerdict, len(counts))
	if f.flagIndex >= 0 && f.flagIndex < len(out) {
		out[f.flagIndex] = models.AnomalyVerdict{IsAnomaly: true, AnomalyScore: 0.8}
	}
	return out
}

type fakeTrendDetector struct {
	verdict models.TrendVerdict
}

func (f *fakeTrendDetector) Detect([]float64, float64, int) models.TrendVerdict { return f.verdict }

func (f *fakeTrendDetector) DetectByEntity(series map[string][]float64, _ int) map[string]models.TrendVerdict {
	out := make(map[string]models.TrendVerdict, len(series))
	for k := range series {
		out[k] = f.verdict
	}
	return out
}

type fakeDecomposer struct{}

func (fakeDecomposer) Baseline(values []float64, _ float64) []float64 { return values }

func (fakeDecomposer) Decompose(values []float64, dates []string, period int) *models.DecompositionResult {
	if period <= 1 {
		period = 7
	}
	if len(values) < 2*period {
		return nil
	}
	return &models.DecompositionResult{Dates: dates, Trend: values}
}

func (fakeDecomposer) FlagResidualAnomalies(residuals []float64, _ float64) []bool {
	return make([]bool, len(residuals))
}

func dailySeries(country string, counts []float64) *models.DailySeries {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.DailyPoint, len(counts))
	for i, c := range counts {
		points[i] = models.DailyPoint{Date: base.AddDate(0, 0, i), EventCount: c}
	}
	return &models.DailySeries{CountryCode: country, Points: points}
}

func newTestAggregator(store *fakeSeriesStore, tiers *fakeTiers) *InsightAggregator {
	return NewInsightAggregator(
		store,
		&fakeAnomalyDetector{flagIndex: 2},
		&fakeTrendDetector{verdict: models.TrendVerdict{Direction: "rising", Slope: 1.5}},
		fakeDecomposer{},
		tiers,
	)
}

func TestAnomaliesPairVerdictsWithDates(t *testing.T) {
	store := &fakeSeriesStore{series: map[string]*models.DailySeries{
		"UA": dailySeries("UA", []float64{3, 4, 20, 5, 4}),
	}}
	agg := newTestAggregator(store, &fakeTiers{})

	out, err := agg.Anomalies(context.Background(), "UA", domrepo.Win30d)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.Equal(t, "2025-05-03", out[2].Date)
	assert.Equal(t, 20.0, out[2].EventCount)
	assert.True(t, out[2].Verdict.IsAnomaly)
	assert.False(t, out[0].Verdict.IsAnomaly)
}

func TestTrendsByCountryCoversActiveCountries(t *testing.T) {
	store := &fakeSeriesStore{
		countries: []string{"UA", "FR"},
		series: map[string]*models.DailySeries{
			"UA": dailySeries("UA", []float64{1, 2, 3}),
			"FR": dailySeries("FR", []float64{5, 5, 5}),
		},
	}
	agg := newTestAggregator(store, &fakeTiers{})

	out, err := agg.TrendsByCountry(context.Background(), domrepo.Win7d, 7)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "rising", out["UA"].Direction)
	assert.Equal(t, "rising", out["FR"].Direction)
}

func TestGetInsightsAllSections(t *testing.T) {
	counts := make([]float64, 20)
	for i := range counts {
		counts[i] = float64(i % 5)
	}
	store := &fakeSeriesStore{series: map[string]*models.DailySeries{
		"UA": dailySeries("UA", counts),
	}}
	uc := NewCountryInsightsUseCase(newTestAggregator(store, &fakeTiers{}))

	res, err := uc.GetInsights(context.Background(), GetInsightsParams{Country: "UA", Window: domrepo.Win30d, Period: 7})
	require.NoError(t, err)

	assert.Nil(t, res.Errors)
	assert.Equal(t, "UA", res.CountryCode)
	assert.Len(t, res.Anomalies, 20)
	require.NotNil(t, res.Trend)
	assert.Equal(t, "rising", res.Trend.Direction)
	require.NotNil(t, res.Decomposition)
	assert.Nil(t, res.Tiers) // unfitted
}

func TestGetInsightsFittedTiersAttached(t *testing.T) {
	store := &fakeSeriesStore{series: map[string]*models.DailySeries{
		"UA": dailySeries("UA", []float64{1, 2, 3}),
	}}
	tiers := &fakeTiers{fitted: true, cfg: models.TierConfiguration{Method: "natural-breaks", NSamples: 42}}
	uc := NewCountryInsightsUseCase(newTestAggregator(store, tiers))

	res, err := uc.GetInsights(context.Background(), GetInsightsParams{Country: "UA", Window: domrepo.Win7d})
	require.NoError(t, err)

	require.NotNil(t, res.Tiers)
	assert.Equal(t, 42, res.Tiers.NSamples)
}

func TestGetInsightsStoreFailurePerSection(t *testing.T) {
	store := &fakeSeriesStore{err: errors.New("clickhouse down")}
	uc := NewCountryInsightsUseCase(newTestAggregator(store, &fakeTiers{}))

	res, err := uc.GetInsights(context.Background(), GetInsightsParams{Country: "UA", Window: domrepo.Win30d})
	require.NoError(t, err)

	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors["anomalies"], "clickhouse down")
	assert.Nil(t, res.Trend)
	assert.Nil(t, res.Decomposition)
}

func TestGetInsightsRequiresCountry(t *testing.T) {
	uc := NewCountryInsightsUseCase(newTestAggregator(&fakeSeriesStore{}, &fakeTiers{}))
	_, err := uc.GetInsights(context.Background(), GetInsightsParams{})
	require.Error(t, err)
}
