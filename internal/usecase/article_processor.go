package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	drepo "github.com/Dahilon/Atlas/internal/domain/repository"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
	"github.com/Dahilon/Atlas/pkg/util"
)

// ArticleProcessor classifies and scores articles, then routes the scored
// events to the configured backend.
type ArticleProcessor struct {
	classifier domsvc.EventClassifier
	scorer     domsvc.SeverityScorer
	tiers      domsvc.TierClassifier
	pub        drepo.Publisher
	store      drepo.EventStore
	metrics    drepo.Metrics
	backend    string
	threshold  float64
}

// NewArticleProcessor creates a new ArticleProcessor instance.
func NewArticleProcessor(
	classifier domsvc.EventClassifier,
	scorer domsvc.SeverityScorer,
	tiers domsvc.TierClassifier,
	pub drepo.Publisher,
	store drepo.EventStore,
	metrics drepo.Metrics,
	backend string,
) *ArticleProcessor {
	return &ArticleProcessor{
		classifier: classifier,
		scorer:     scorer,
		tiers:      tiers,
		pub:        pub,
		store:      store,
		metrics:    metrics,
		backend:    backend,
	}
}

// SetClassifyThreshold overrides the classifier confidence threshold.
// Zero keeps the classifier default.
func (p *ArticleProcessor) SetClassifyThreshold(t float64) { p.threshold = t }

// Score runs classification and severity scoring for one article without
// persisting anything.
func (p *ArticleProcessor) Score(a *models.Article) *models.ScoredEvent {
	prediction := p.classifier.Classify(a.Title+" "+a.Text, p.threshold)
	record := p.scorer.Score(models.SeverityInputFromArticle(a, prediction.Category))

	// A fitted tier layout beats the static cutoffs.
	if p.tiers != nil {
		if _, fitted := p.tiers.Config(); fitted {
			tier, _ := p.tiers.Classify(record.SeverityIndex)
			record.ThreatLevel = tier
		}
	}

	now := time.Now().UTC()
	return &models.ScoredEvent{
		ArticleID:   a.ID,
		Source:      a.Source,
		CountryCode: a.CountryCode,
		Category:    prediction.Category,
		Confidence:  prediction.Confidence,
		Record:      record,
		EventDate:   util.DayOf(util.ParseTimeDefault(a.PublishedAt, now)),
		ScoredAt:    now,
	}
}

// Process scores a single article and routes it to the configured backend.
func (p *ArticleProcessor) Process(ctx context.Context, a *models.Article) error {
	if a == nil {
		return fmt.Errorf("article is nil")
	}

	start := time.Now()
	event := p.Score(a)

	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, event)
	case "clickhouse":
		err = p.store.Store(ctx, event)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process article: %w", err)
	}

	p.metrics.RecordEventScored(p.backend, event.CountryCode, event.Record.ThreatLevel)
	p.metrics.RecordSeverity(event.CountryCode, event.Record.SeverityIndex)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch scores and routes multiple articles in a batch.
func (p *ArticleProcessor) ProcessBatch(ctx context.Context, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	start := time.Now()
	events := make([]*models.ScoredEvent, 0, len(articles))
	for _, a := range articles {
		if a == nil {
			continue
		}
		events = append(events, p.Score(a))
	}

	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, events)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, events)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, e := range events {
		p.metrics.RecordEventScored(p.backend, e.CountryCode, e.Record.ThreatLevel)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *ArticleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
