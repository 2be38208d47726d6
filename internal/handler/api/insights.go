package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
	icache "github.com/Dahilon/Atlas/internal/service/cache"
	"github.com/Dahilon/Atlas/internal/service/metrics"
	"github.com/Dahilon/Atlas/internal/service/ratelimit"
	"github.com/Dahilon/Atlas/internal/usecase"
	applogger "github.com/Dahilon/Atlas/pkg/logger"
)

// InsightsHandler serves the cached, rate-limited plain-HTTP variants of the
// insight endpoints.
type InsightsHandler struct {
	agg   *usecase.InsightAggregator
	cache icache.BytesCache
	rl    *ratelimit.Limiter
	l     *applogger.Logger
}

func NewInsightsHandler(agg *usecase.InsightAggregator) *InsightsHandler {
	metrics.Register()
	return &InsightsHandler{agg: agg, rl: ratelimit.New()}
}

func (h *InsightsHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *InsightsHandler) SetLogger(l *applogger.Logger) { h.l = l }

// serve wraps one endpoint with latency metrics, rate limiting, and the
// byte-cache read-through.
func (h *InsightsHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	endpoint, cacheKey string,
	ttl time.Duration,
	compute func(ctx context.Context) (interface{}, error),
) {
	start := time.Now()
	defer func() { metrics.InsightLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(r.RemoteAddr+":"+endpoint, 5, 2) {
		if h.l != nil {
			h.l.Warn("insights rate_limited",
				applogger.String("endpoint", endpoint),
				applogger.String("remote", r.RemoteAddr),
			)
		}
		http.Error(w, "rate limited", http.StatusTooManyRequests)
		return
	}

	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			if h.l != nil {
				h.l.Warn("insights cache_get_error", applogger.Error(err))
			}
		} else if ok {
			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write(b); err != nil && h.l != nil {
				h.l.Warn("insights write_error", applogger.Error(err))
			}
			return
		}
	}

	res, err := compute(r.Context())
	if err != nil {
		metrics.InsightErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Error("insights compute error",
				applogger.String("endpoint", endpoint),
				applogger.Error(err),
			)
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	b, err := json.Marshal(res)
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(cacheKey, b, ttl); err != nil && h.l != nil {
			h.l.Warn("insights cache_set_error", applogger.Error(err))
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil && h.l != nil {
		h.l.Warn("insights write_error", applogger.Error(err))
	}
}

func (h *InsightsHandler) Anomalies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		country := r.URL.Query().Get("country")
		if country == "" {
			http.Error(w, "country required", http.StatusBadRequest)
			return
		}
		window := domrepo.NormalizeWindow(r.URL.Query().Get("window"))
		h.serve(w, r, "anomalies", "anom:"+country+":"+string(window), 60*time.Second,
			func(ctx context.Context) (interface{}, error) {
				return h.agg.Anomalies(ctx, country, window)
			})
	}
}

func (h *InsightsHandler) Trend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		country := r.URL.Query().Get("country")
		if country == "" {
			http.Error(w, "country required", http.StatusBadRequest)
			return
		}
		window := domrepo.NormalizeWindow(r.URL.Query().Get("window"))
		h.serve(w, r, "trend", "trend:"+country+":"+string(window), 60*time.Second,
			func(ctx context.Context) (interface{}, error) {
				return h.agg.Trend(ctx, country, window)
			})
	}
}

func (h *InsightsHandler) Tiers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, "tiers", "tiers:current", 30*time.Second,
			func(ctx context.Context) (interface{}, error) {
				cfg, _ := h.agg.TierConfig()
				return cfg, nil
			})
	}
}
