package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahilon/Atlas/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func TestTierRefitJobFitsRecentScores(t *testing.T) {
	store := &fakeSeriesStore{scores: []float64{10, 20, 30, 40, 50}}
	tiers := &fakeTiers{}
	job := NewTierRefitJob(store, tiers, &fakeMetrics{}, testLogger(t))

	err := job.Handle(context.Background(), RefitRequest{Window: "30d", RequestedAt: time.Now()})
	require.NoError(t, err)

	require.Len(t, tiers.fits, 1)
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, tiers.fits[0])
}

func TestTierRefitJobMapPayload(t *testing.T) {
	// Payloads round-tripped through Redis arrive as generic maps.
	store := &fakeSeriesStore{scores: []float64{1, 2, 3}}
	tiers := &fakeTiers{}
	job := NewTierRefitJob(store, tiers, &fakeMetrics{}, testLogger(t))

	payload := map[string]interface{}{"window": "7d", "requested_at": time.Now().UTC().Format(time.RFC3339)}
	require.NoError(t, job.Handle(context.Background(), payload))
	assert.Len(t, tiers.fits, 1)
}

func TestTierRefitJobStoreError(t *testing.T) {
	store := &fakeSeriesStore{err: errors.New("query timeout")}
	tiers := &fakeTiers{}
	m := &fakeMetrics{}
	job := NewTierRefitJob(store, tiers, m, testLogger(t))

	err := job.Handle(context.Background(), RefitRequest{Window: "30d"})
	require.Error(t, err)
	assert.Empty(t, tiers.fits)
	assert.Contains(t, m.errors, "refit_query")
}

func TestTierRefitJobIdentity(t *testing.T) {
	job := NewTierRefitJob(&fakeSeriesStore{}, &fakeTiers{}, &fakeMetrics{}, testLogger(t))
	assert.Equal(t, "tier-refit", job.Name())
	assert.Equal(t, TierRefitType, job.Type())
}
