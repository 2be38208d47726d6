package repository

import (
	"context"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
)

// Window represents insight lookback buckets.
type Window string

const (
	Win7d  Window = "7d"
	Win30d Window = "30d"
	Win90d Window = "90d"
)

// SeriesStore provides read-only access to aggregated daily series and score
// samples for the insight endpoints and tier refits.
type SeriesStore interface {
	GetDailySeries(ctx context.Context, country string, from, to time.Time) (*models.DailySeries, error)
	GetRecentScores(ctx context.Context, since time.Time, limit int) ([]float64, error)
	GetActiveCountries(ctx context.Context, since time.Time) ([]string, error)
}
