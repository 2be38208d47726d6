package usecase

import (
	"context"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	drepo "github.com/Dahilon/Atlas/internal/domain/repository"
	mid "github.com/Dahilon/Atlas/internal/middleware"
)

// ArticleCollector collects articles from the feed stream and processes them.
type ArticleCollector struct {
	stream   drepo.ArticleStream
	proc     *ArticleProcessor
	metrics  drepo.Metrics
	pipe     *mid.IngestPipeline
	fetcher  drepo.ArticleFetcher
	backfill time.Duration

	batchSize    int
	batchTimeout time.Duration
}

// NewArticleCollector creates a new ArticleCollector instance.
func NewArticleCollector(stream drepo.ArticleStream, proc *ArticleProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *ArticleCollector {
	return &ArticleCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// SetBackfill enables a one-shot REST backfill on start, covering the given
// span before now.
func (c *ArticleCollector) SetBackfill(f drepo.ArticleFetcher, span time.Duration) {
	c.fetcher = f
	c.backfill = span
}

// SetBatching controls how backfilled articles are chunked into batch writes.
func (c *ArticleCollector) SetBatching(size int, timeout time.Duration) {
	c.batchSize = size
	c.batchTimeout = timeout
}

// IsConnected returns true if the feed stream is connected.
func (c *ArticleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *ArticleCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	artCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, artCh, errCh)
	if c.fetcher != nil && c.backfill > 0 {
		go c.runBackfill(ctx)
	}
	return nil
}

func (c *ArticleCollector) runBackfill(ctx context.Context) {
	since := time.Now().UTC().Add(-c.backfill)
	articles, err := c.fetcher.FetchRecent(ctx, since)
	if err != nil {
		c.metrics.RecordError("backfill")
	}

	size := c.batchSize
	if size <= 0 {
		size = 500
	}
	for i := 0; i < len(articles); i += size {
		end := i + size
		if end > len(articles) {
			end = len(articles)
		}
		batchCtx := ctx
		cancel := func() {}
		if c.batchTimeout > 0 {
			batchCtx, cancel = context.WithTimeout(ctx, c.batchTimeout)
		}
		if err := c.proc.ProcessBatch(batchCtx, articles[i:end]); err != nil {
			c.metrics.RecordError("backfill_batch")
		}
		cancel()
	}
}

func (c *ArticleCollector) consume(ctx context.Context, artCh <-chan *models.Article, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case a := <-artCh:
			if a == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, a)
			} else {
				_ = c.proc.Process(ctx, a)
			}
		}
	}
}

func (c *ArticleCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying ArticleProcessor for lifecycle management.
func (c *ArticleCollector) Processor() *ArticleProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *ArticleCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
