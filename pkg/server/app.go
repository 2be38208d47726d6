package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Dahilon/Atlas/internal/handler/api"
	icache "github.com/Dahilon/Atlas/internal/service/cache"
	"github.com/Dahilon/Atlas/internal/usecase"
	pkgch "github.com/Dahilon/Atlas/pkg/clickhouse"
	"github.com/Dahilon/Atlas/pkg/config"
	xhttp "github.com/Dahilon/Atlas/pkg/http"
	"github.com/Dahilon/Atlas/pkg/http/middleware"
	pkgkafka "github.com/Dahilon/Atlas/pkg/kafka"
	applogger "github.com/Dahilon/Atlas/pkg/logger"
	"github.com/Dahilon/Atlas/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.ArticleCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler

	agg      *usecase.InsightAggregator
	insights *usecase.CountryInsightsUseCase
	events   *usecase.EventsUseCase

	refitQueue  *queue.RedisQueue
	scheduler   *usecase.RefitScheduler
	redisClient *redis.Client
	byteCache   icache.BytesCache

	ArticleProc *usecase.ArticleProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	collector *usecase.ArticleCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		logger:    lgr,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject a custom HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetInsights injects the insight use cases served over HTTP.
func (a *App) SetInsights(agg *usecase.InsightAggregator, insights *usecase.CountryInsightsUseCase, events *usecase.EventsUseCase) {
	a.agg = agg
	a.insights = insights
	a.events = events
}

// SetRefit injects the tier refit queue and scheduler.
func (a *App) SetRefit(q *queue.RedisQueue, s *usecase.RefitScheduler) {
	a.refitQueue = q
	a.scheduler = s
}

// SetRedis injects the shared Redis client.
func (a *App) SetRedis(c *redis.Client) { a.redisClient = c }

// SetCache injects the byte cache backing the legacy insight endpoints.
func (a *App) SetCache(c icache.BytesCache) { a.byteCache = c }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger
	if l == nil {
		l, _ = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	}

	// Setup Echo HTTP server and register insight routes
	httpHandler := a.httpHandler
	if httpHandler == nil && a.agg != nil {
		httpHandler = api.NewInsightsEchoHandler(l, a.agg, a.insights, a.events)
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Legacy plain-HTTP endpoints: rate limited and served through the
	// Redis byte cache when available.
	if a.agg != nil {
		legacy := api.NewInsightsHandler(a.agg)
		legacy.SetLogger(l)
		if a.byteCache != nil {
			legacy.SetCache(a.byteCache)
		} else {
			legacy.SetCache(icache.NewTTLCache())
		}
		mw := middleware.Metrics(l, 500*time.Millisecond)
		e := a.httpServer.Echo()
		e.GET("/v1/anomalies", echo.WrapHandler(mw(legacy.Anomalies())))
		e.GET("/v1/trend", echo.WrapHandler(mw(legacy.Trend())))
		e.GET("/v1/tiers", echo.WrapHandler(mw(legacy.Tiers())))
	}

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("channels", a.cfg.Feed.Channels))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start tier refit queue and scheduler
	if a.refitQueue != nil {
		if err := a.refitQueue.Start(); err != nil {
			l.Error("refit queue start error", applogger.Error(err))
		} else if a.scheduler != nil {
			a.scheduler.Start(ctx)
			l.Info("tier refit scheduler started",
				applogger.String("window", a.cfg.Tiers.RefitWindow),
				applogger.Duration("interval", a.cfg.Tiers.RefitInterval),
			)
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx, l)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context, l *applogger.Logger) error {
	l.Info("shutting down...")

	// Stop scheduler before the queue so no refit is enqueued mid-shutdown
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Stop refit queue and close Redis
	if a.refitQueue != nil {
		if err := a.refitQueue.Stop(ctx); err != nil {
			l.Warn("refit queue stop error", applogger.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Flush aggregated error logs while the producer is still open
	if a.logger != nil {
		a.logger.RemoveCollector()
	}

	// Close processor resources (publisher/storage)
	if a.ArticleProc != nil {
		a.ArticleProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
