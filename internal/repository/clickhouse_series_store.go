package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
	pkgch "github.com/Dahilon/Atlas/pkg/clickhouse"
	applogger "github.com/Dahilon/Atlas/pkg/logger"
)

// CHSeriesStore implements SeriesStore backed by ClickHouse.
type CHSeriesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client, table string) *CHSeriesStore {
	return &CHSeriesStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesStore) GetDailySeries(ctx context.Context, country string, from, to time.Time) (*models.DailySeries, error) {
	start := time.Now()
	const qtpl = `
        SELECT event_date, count() AS events, avg(sentiment) AS sentiment, avg(severity_index) AS severity
        FROM %s
        WHERE country_code = ? AND event_date >= ? AND event_date <= ?
        GROUP BY event_date
        ORDER BY event_date ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, country, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse daily_series query error",
				applogger.String("country", country),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get daily series: %w", err)
	}
	defer rows.Close()

	series := &models.DailySeries{CountryCode: country}
	for rows.Next() {
		var (
			date                time.Time
			count               uint64
			sentiment, severity float64
		)
		if err := rows.Scan(&date, &count, &sentiment, &severity); err != nil {
			return nil, fmt.Errorf("scan daily point: %w", err)
		}
		snt, sev := sentiment, severity
		series.Points = append(series.Points, models.DailyPoint{
			Date:       date,
			EventCount: float64(count),
			Sentiment:  &snt,
			Severity:   &sev,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse daily_series ok",
			applogger.String("country", country),
			applogger.Int("rows", len(series.Points)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return series, nil
}

func (s *CHSeriesStore) GetRecentScores(ctx context.Context, since time.Time, limit int) ([]float64, error) {
	start := time.Now()
	const qtpl = `
        SELECT severity_index
        FROM %s
        WHERE scored_at >= ?
        ORDER BY scored_at DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, since, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_scores query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("get recent scores: %w", err)
	}
	defer rows.Close()

	scores := make([]float64, 0, 1024)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse recent_scores ok",
			applogger.Int("rows", len(scores)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return scores, nil
}

func (s *CHSeriesStore) GetActiveCountries(ctx context.Context, since time.Time) ([]string, error) {
	const qtpl = `
        SELECT DISTINCT country_code
        FROM %s
        WHERE event_date >= ? AND country_code != ''
        ORDER BY country_code ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, since)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse active_countries query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("get active countries: %w", err)
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)
