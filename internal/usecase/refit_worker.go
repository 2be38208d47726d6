package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
	"github.com/Dahilon/Atlas/pkg/logger"
	"github.com/Dahilon/Atlas/pkg/queue"
)

// TierRefitType is the queue message type that triggers a tier refit.
const TierRefitType = "tier_refit"

// refitScoreLimit caps how many recent scores one refit cycle pulls.
const refitScoreLimit = 50000

// RefitRequest is the queue payload for one tier refit cycle.
type RefitRequest struct {
	Window      string    `json:"window"`
	RequestedAt time.Time `json:"requested_at"`
}

// TierRefitJob refits the risk-tier boundaries from the recent score
// distribution when a refit message arrives.
type TierRefitJob struct {
	store   domrepo.SeriesStore
	tiers   domsvc.TierClassifier
	metrics domrepo.Metrics
	logger  *logger.Logger
}

func NewTierRefitJob(store domrepo.SeriesStore, tiers domsvc.TierClassifier, metrics domrepo.Metrics, lgr *logger.Logger) *TierRefitJob {
	return &TierRefitJob{store: store, tiers: tiers, metrics: metrics, logger: lgr}
}

func (j *TierRefitJob) Name() string { return "tier-refit" }
func (j *TierRefitJob) Type() string { return TierRefitType }

func (j *TierRefitJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[RefitRequest](payload)
	if err != nil {
		return fmt.Errorf("parse refit payload: %w", err)
	}

	w := domrepo.NormalizeWindow(req.Window)
	since := time.Now().UTC().Add(-w.Duration())

	start := time.Now()
	scores, err := j.store.GetRecentScores(ctx, since, refitScoreLimit)
	if err != nil {
		j.metrics.RecordError("refit_query")
		return fmt.Errorf("load scores: %w", err)
	}

	cfg := j.tiers.Fit(scores)
	j.metrics.RecordLatency("tier_refit", time.Since(start).Seconds())

	j.logger.Info("tier boundaries refitted",
		logger.String("window", string(w)),
		logger.Int("samples", cfg.NSamples),
		logger.Any("boundaries", cfg.Boundaries),
	)
	return nil
}

var _ queue.Job = (*TierRefitJob)(nil)

// RefitScheduler periodically enqueues tier refit requests.
type RefitScheduler struct {
	queue    queue.QueueService
	window   domrepo.Window
	interval time.Duration
	logger   *logger.Logger
	stopCh   chan struct{}
}

func NewRefitScheduler(q queue.QueueService, window domrepo.Window, interval time.Duration, lgr *logger.Logger) *RefitScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RefitScheduler{
		queue:    q,
		window:   window,
		interval: interval,
		logger:   lgr,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the scheduling loop. One refit is enqueued immediately so a
// fresh deployment does not wait a full interval for boundaries.
func (s *RefitScheduler) Start(ctx context.Context) {
	go func() {
		s.enqueue(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.enqueue(ctx)
			}
		}
	}()
}

func (s *RefitScheduler) Stop() { close(s.stopCh) }

func (s *RefitScheduler) enqueue(ctx context.Context) {
	req := RefitRequest{Window: string(s.window), RequestedAt: time.Now().UTC()}
	if err := s.queue.PublishMessage(ctx, TierRefitType, req); err != nil {
		s.logger.Error("enqueue tier refit failed", logger.Error(err))
	}
}
