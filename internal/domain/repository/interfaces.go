package repository

import (
	"context"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
)

type ArticleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Article, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// ArticleFetcher pulls historical articles in one shot, as opposed to the
// live stream.
type ArticleFetcher interface {
	FetchRecent(ctx context.Context, since time.Time) ([]*models.Article, error)
}

type Publisher interface {
	Publish(ctx context.Context, e *models.ScoredEvent) error
	PublishBatch(ctx context.Context, events []*models.ScoredEvent) error
	Close() error
}

type EventStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, e *models.ScoredEvent) error
	StoreBatch(ctx context.Context, events []*models.ScoredEvent) error
	Query(ctx context.Context, country string, from, to time.Time, limit int) ([]*models.ScoredEvent, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordEventScored(backend, country, level string)
	RecordError(kind string)
	RecordSeverity(country string, index float64)
	RecordLatency(op string, seconds float64)
}
