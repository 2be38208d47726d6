//go:build wireinject
// +build wireinject

package di

import (
	"github.com/Dahilon/Atlas/pkg/config"
	"github.com/Dahilon/Atlas/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,
		ProvideByteCache,

		// Repositories
		ProvideEventStore,
		ProvideSeriesStore,
		ProvideScoredPublisher,
		ProvideFeedStream,
		ProvideArticleFetcher,

		// Engine services
		ProvideClassifier,
		ProvideScorer,
		ProvideAnomalyDetector,
		ProvideTrendDetector,
		ProvideDecomposer,
		ProvideTierClassifier,

		// Use cases
		ProvideArticleProcessor,
		ProvideArticleCollector,
		ProvideKafkaArticlesHandler,
		ProvideInsightAggregator,
		ProvideCountryInsightsUseCase,
		ProvideEventsUseCase,
		ProvideRefitQueue,
		ProvideRefitScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
