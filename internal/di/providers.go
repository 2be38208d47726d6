package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/Dahilon/Atlas/internal/domain/repository"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
	mid "github.com/Dahilon/Atlas/internal/middleware"
	internalrepo "github.com/Dahilon/Atlas/internal/repository"
	icache "github.com/Dahilon/Atlas/internal/service/cache"
	"github.com/Dahilon/Atlas/internal/service/feed"
	"github.com/Dahilon/Atlas/internal/services/anomaly"
	"github.com/Dahilon/Atlas/internal/services/classify"
	"github.com/Dahilon/Atlas/internal/services/risktier"
	"github.com/Dahilon/Atlas/internal/services/scoring"
	"github.com/Dahilon/Atlas/internal/services/timeseries"
	"github.com/Dahilon/Atlas/internal/services/trend"
	"github.com/Dahilon/Atlas/internal/usecase"
	pkgcache "github.com/Dahilon/Atlas/pkg/cache"
	pkgch "github.com/Dahilon/Atlas/pkg/clickhouse"
	"github.com/Dahilon/Atlas/pkg/config"
	pkgkafka "github.com/Dahilon/Atlas/pkg/kafka"
	applogger "github.com/Dahilon/Atlas/pkg/logger"
	"github.com/Dahilon/Atlas/pkg/metrics"
	"github.com/Dahilon/Atlas/pkg/queue"
	"github.com/Dahilon/Atlas/pkg/server"
	"github.com/Dahilon/Atlas/pkg/util"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		"CREATE TABLE IF NOT EXISTS " + cfg.EventsTableFQN() +
			" (event_date Date, scored_at DateTime, article_id String, source String," +
			" country_code FixedString(2), category LowCardinality(String), confidence Float64," +
			" severity_index Float64, threat_level LowCardinality(String), sentiment Float64)" +
			" ENGINE=MergeTree ORDER BY (country_code, event_date)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEventStore creates the ClickHouse event store.
func ProvideEventStore(chClient *pkgch.Client, cfg *config.Config) repository.EventStore {
	return internalrepo.NewClickHouseEventStore(chClient.DB(), cfg.EventsTableFQN())
}

// ProvideSeriesStore creates the ClickHouse daily series store.
func ProvideSeriesStore(chClient *pkgch.Client, cfg *config.Config, lgr *applogger.Logger) repository.SeriesStore {
	s := internalrepo.NewCHSeriesStore(chClient, cfg.EventsTableFQN())
	s.SetLogger(lgr)
	return s
}

// ProvideScoredPublisher creates the Kafka publisher for scored events.
func ProvideScoredPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ScoredTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaArticlesHandler registers the handler for the articles topic.
func ProvideKafkaArticlesHandler(
	proc *usecase.ArticleProcessor,
	store repository.EventStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.KafkaArticlesHandler {
	return usecase.NewKafkaArticlesHandler(cfg.Kafka.ArticlesTopic, proc, store, metrics)
}

// ProvideFeedStream creates the article feed WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.ArticleStream {
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Channels,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideArticleFetcher creates the REST backfill fetcher, or nil when no
// REST endpoint is configured.
func ProvideArticleFetcher(cfg *config.Config) repository.ArticleFetcher {
	if cfg.Feed.RestURL == "" {
		return nil
	}
	return feed.NewBackfill(cfg.Feed.APIKey, cfg.Feed.RestURL, cfg.Feed.Channels)
}

// ProvideClassifier creates the event category classifier.
func ProvideClassifier(cfg *config.Config, lgr *applogger.Logger) domsvc.EventClassifier {
	return classify.NewClassifier(cfg.Engine.ModelPath, lgr)
}

// ProvideScorer creates the severity scorer.
func ProvideScorer() domsvc.SeverityScorer {
	return scoring.NewScorer()
}

// ProvideAnomalyDetector creates the anomaly ensemble.
func ProvideAnomalyDetector() domsvc.AnomalyDetector {
	return anomaly.NewDetector()
}

// ProvideTrendDetector creates the trend detector.
func ProvideTrendDetector() domsvc.TrendDetector {
	return trend.NewDetector()
}

// ProvideDecomposer creates the time series decomposer.
func ProvideDecomposer() domsvc.Decomposer {
	return timeseries.NewDecomposer()
}

// ProvideTierClassifier creates the risk tier classifier.
func ProvideTierClassifier(cfg *config.Config) domsvc.TierClassifier {
	return risktier.NewClassifier(cfg.Tiers.Method)
}

// ProvideArticleProcessor creates the article processing use case.
func ProvideArticleProcessor(
	classifier domsvc.EventClassifier,
	scorer domsvc.SeverityScorer,
	tiers domsvc.TierClassifier,
	pub repository.Publisher,
	store repository.EventStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ArticleProcessor {
	proc := usecase.NewArticleProcessor(
		classifier,
		scorer,
		tiers,
		pub,
		store,
		metrics,
		cfg.Backend.Type,
	)
	proc.SetClassifyThreshold(cfg.Engine.ConfidenceThreshold)
	return proc
}

// ProvideArticleCollector creates the article collector use case.
func ProvideArticleCollector(
	stream repository.ArticleStream,
	processor *usecase.ArticleProcessor,
	metrics repository.Metrics,
	fetcher repository.ArticleFetcher,
	cfg *config.Config,
) *usecase.ArticleCollector {
	// Build middleware pipeline between WebSocket and the processor
	opts := []mid.PipelineOption{}
	if cfg.Pipeline.MaxRPS > 0 {
		opts = append(opts, mid.WithMaxRPS(cfg.Pipeline.MaxRPS))
	}
	if cfg.Pipeline.BufferSize > 0 {
		opts = append(opts, mid.WithBufferSize(cfg.Pipeline.BufferSize))
	}
	pipe := mid.NewIngestPipeline(processor, metrics, opts...)
	collector := usecase.NewArticleCollector(stream, processor, metrics, pipe)
	if fetcher != nil && cfg.Feed.Backfill > 0 {
		collector.SetBackfill(fetcher, cfg.Feed.Backfill)
		collector.SetBatching(cfg.Backend.BatchSize, cfg.Backend.BatchTimeout)
	}
	return collector
}

// ProvideInsightAggregator creates the insight aggregator.
func ProvideInsightAggregator(
	store repository.SeriesStore,
	anomaly domsvc.AnomalyDetector,
	trend domsvc.TrendDetector,
	decompose domsvc.Decomposer,
	tiers domsvc.TierClassifier,
) *usecase.InsightAggregator {
	return usecase.NewInsightAggregator(store, anomaly, trend, decompose, tiers)
}

// ProvideCountryInsightsUseCase creates the aggregated insights use case.
func ProvideCountryInsightsUseCase(agg *usecase.InsightAggregator) *usecase.CountryInsightsUseCase {
	return usecase.NewCountryInsightsUseCase(agg)
}

// ProvideEventsUseCase creates the raw events query use case.
func ProvideEventsUseCase(store repository.EventStore) *usecase.EventsUseCase {
	return usecase.NewEventsUseCase(store)
}

// ProvideByteCache creates the layered memory+Redis byte cache used by the
// legacy insight endpoints, or nil when Redis is disabled.
func ProvideByteCache(cfg *config.Config) (icache.BytesCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, _ := strings.Cut(cfg.Redis.Addr, ":")
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(util.ParseIntDefault(portStr, 6379)),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return icache.NewLayeredBytes(pkgcache.NewLayeredCache(rc)), nil
}

// ProvideRedisClient creates the shared Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideRefitQueue creates the Redis queue with the tier refit job
// registered, or nil when Redis is disabled.
func ProvideRefitQueue(
	client *redis.Client,
	store repository.SeriesStore,
	tiers domsvc.TierClassifier,
	metrics repository.Metrics,
	lgr *applogger.Logger,
) *queue.RedisQueue {
	if client == nil {
		return nil
	}
	job := usecase.NewTierRefitJob(store, tiers, metrics, lgr)
	q := queue.NewRedisQueue(lgr, &queue.QueueConfig{Workers: 1}, client, queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideRefitScheduler creates the periodic refit scheduler, or nil when
// the queue is unavailable.
func ProvideRefitScheduler(q *queue.RedisQueue, cfg *config.Config, lgr *applogger.Logger) *usecase.RefitScheduler {
	if q == nil {
		return nil
	}
	window := repository.NormalizeWindow(cfg.Tiers.RefitWindow)
	return usecase.NewRefitScheduler(q, window, cfg.Tiers.RefitInterval, lgr)
}

// logPublisher adapts the Kafka producer to the log collector.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	producer *pkgkafka.Producer,
	collector *usecase.ArticleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaArticlesHandler,
	chClient *pkgch.Client,
	agg *usecase.InsightAggregator,
	insights *usecase.CountryInsightsUseCase,
	events *usecase.EventsUseCase,
	refitQueue *queue.RedisQueue,
	scheduler *usecase.RefitScheduler,
	redisClient *redis.Client,
	byteCache icache.BytesCache,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.HookFuncs{
			Err: func(_ context.Context, topic string, _ kafka.Message, _ []byte, err error) {
				lgr.Warn("kafka handler error",
					applogger.String("topic", topic),
					applogger.Error(err))
			},
		})
	}
	if cfg.Kafka.LogsTopic != "" {
		lgr.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      logPublisher{producer: producer},
		})
	}

	app := server.New(cfg, lgr, collector, consumer, kh, chClient)
	app.SetInsights(agg, insights, events)
	app.SetRefit(refitQueue, scheduler)
	app.SetRedis(redisClient)
	app.SetCache(byteCache)
	if collector != nil {
		app.ArticleProc = collector.Processor()
	}
	return app
}
