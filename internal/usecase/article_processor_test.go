package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahilon/Atlas/internal/domain/models"
)

type fakeClassifier struct {
	pred          models.CategoryPrediction
	lastThreshold float64
}

func (f *fakeClassifier) Classify(text string, threshold float64) models.CategoryPrediction {
	f.lastThreshold = threshold
	return f.pred
}

type fakeScorer struct {
	rec models.ScoredRecord
}

func (f *fakeScorer) Score(in models.SeverityInput) models.ScoredRecord { return f.rec }

type fakeTiers struct {
	cfg    models.TierConfiguration
	fitted bool
	tier   string
	fits   [][]float64
}

func (f *fakeTiers) Fit(scores []float64) models.TierConfiguration {
	f.fits = append(f.fits, scores)
	f.fitted = true
	return f.cfg
}

func (f *fakeTiers) Classify(score float64) (string, float64) { return f.tier, 99 }

func (f *fakeTiers) Config() (models.TierConfiguration, bool) { return f.cfg, f.fitted }

type fakePublisher struct {
	published []*models.ScoredEvent
}

func (f *fakePublisher) Publish(_ context.Context, e *models.ScoredEvent) error {
	f.published = append(f.published, e)
	return nil
}

func (f *fakePublisher) PublishBatch(_ context.Context, events []*models.ScoredEvent) error {
	f.published = append(f.published, events...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeEventStore struct {
	stored []*models.ScoredEvent
}

func (f *fakeEventStore) Init(context.Context) error { return nil }

func (f *fakeEventStore) Store(_ context.Context, e *models.ScoredEvent) error {
	f.stored = append(f.stored, e)
	return nil
}

func (f *fakeEventStore) StoreBatch(_ context.Context, events []*models.ScoredEvent) error {
	f.stored = append(f.stored, events...)
	return nil
}

func (f *fakeEventStore) Query(context.Context, string, time.Time, time.Time, int) ([]*models.ScoredEvent, error) {
	return nil, nil
}

func (f *fakeEventStore) Health(context.Context) error { return nil }
func (f *fakeEventStore) Close() error                 { return nil }

type fakeMetrics struct {
	errors []string
	scored int
}

func (f *fakeMetrics) RecordEventScored(string, string, string) { f.scored++ }
func (f *fakeMetrics) RecordError(kind string)                  { f.errors = append(f.errors, kind) }
func (f *fakeMetrics) RecordSeverity(string, float64)           {}
func (f *fakeMetrics) RecordLatency(string, float64)            {}

func newTestProcessor(backend string, tiers *fakeTiers) (*ArticleProcessor, *fakePublisher, *fakeEventStore, *fakeMetrics) {
	cls := &fakeClassifier{pred: models.CategoryPrediction{Category: "Armed Conflict", Confidence: 0.9}}
	scr := &fakeScorer{rec: models.ScoredRecord{SeverityIndex: 80, ThreatLevel: models.LevelCritical}}
	pub := &fakePublisher{}
	store := &fakeEventStore{}
	m := &fakeMetrics{}
	var proc *ArticleProcessor
	if tiers != nil {
		proc = NewArticleProcessor(cls, scr, tiers, pub, store, m, backend)
	} else {
		proc = NewArticleProcessor(cls, scr, nil, pub, store, m, backend)
	}
	return proc, pub, store, m
}

func sampleArticle() *models.Article {
	return &models.Article{
		ID:          "a-1",
		Source:      "gdelt",
		Title:       "clashes reported",
		Text:        "fighting broke out overnight",
		PublishedAt: "2025-03-02T15:04:05Z",
		CountryCode: "UA",
		EntityCount: 4,
	}
}

func TestProcessRoutesToKafka(t *testing.T) {
	proc, pub, store, _ := newTestProcessor("kafka", nil)

	require.NoError(t, proc.Process(context.Background(), sampleArticle()))

	require.Len(t, pub.published, 1)
	assert.Empty(t, store.stored)

	e := pub.published[0]
	assert.Equal(t, "a-1", e.ArticleID)
	assert.Equal(t, "UA", e.CountryCode)
	assert.Equal(t, "Armed Conflict", e.Category)
	assert.Equal(t, models.LevelCritical, e.Record.ThreatLevel)
}

func TestProcessRoutesToClickHouse(t *testing.T) {
	proc, pub, store, _ := newTestProcessor("clickhouse", nil)

	require.NoError(t, proc.Process(context.Background(), sampleArticle()))

	require.Len(t, store.stored, 1)
	assert.Empty(t, pub.published)
}

func TestProcessUnknownBackend(t *testing.T) {
	proc, _, _, m := newTestProcessor("postgres", nil)

	err := proc.Process(context.Background(), sampleArticle())

	require.Error(t, err)
	assert.Contains(t, m.errors, "process")
}

func TestProcessNilArticle(t *testing.T) {
	proc, _, _, _ := newTestProcessor("kafka", nil)
	require.Error(t, proc.Process(context.Background(), nil))
}

func TestScoreEventDateFromPublishedAt(t *testing.T) {
	proc, _, _, _ := newTestProcessor("kafka", nil)

	e := proc.Score(sampleArticle())

	want := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, e.EventDate)
	assert.False(t, e.ScoredAt.IsZero())
}

func TestScoreFittedTiersOverrideThreatLevel(t *testing.T) {
	tiers := &fakeTiers{fitted: true, tier: models.LevelLow}
	proc, _, _, _ := newTestProcessor("kafka", tiers)

	e := proc.Score(sampleArticle())

	// The static cutoff said critical; the fitted layout wins.
	assert.Equal(t, models.LevelLow, e.Record.ThreatLevel)
}

func TestScoreUnfittedTiersKeepStaticLevel(t *testing.T) {
	tiers := &fakeTiers{fitted: false, tier: models.LevelLow}
	proc, _, _, _ := newTestProcessor("kafka", tiers)

	e := proc.Score(sampleArticle())

	assert.Equal(t, models.LevelCritical, e.Record.ThreatLevel)
}

func TestSetClassifyThreshold(t *testing.T) {
	cls := &fakeClassifier{pred: models.CategoryPrediction{Category: "Diplomacy"}}
	scr := &fakeScorer{}
	proc := NewArticleProcessor(cls, scr, nil, &fakePublisher{}, &fakeEventStore{}, &fakeMetrics{}, "kafka")
	proc.SetClassifyThreshold(0.7)

	proc.Score(sampleArticle())

	assert.Equal(t, 0.7, cls.lastThreshold)
}

func TestProcessBatchRoutesAll(t *testing.T) {
	proc, _, store, _ := newTestProcessor("clickhouse", nil)

	articles := []*models.Article{sampleArticle(), sampleArticle(), nil, sampleArticle()}
	require.NoError(t, proc.ProcessBatch(context.Background(), articles))

	assert.Len(t, store.stored, 3)
}
