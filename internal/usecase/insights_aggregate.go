package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
)

// CountryInsightsUseCase assembles the full analytical view for one country
// using InsightAggregator.
type CountryInsightsUseCase struct {
	agg     *InsightAggregator
	timeout time.Duration
}

func NewCountryInsightsUseCase(agg *InsightAggregator) *CountryInsightsUseCase {
	return &CountryInsightsUseCase{agg: agg, timeout: 10 * time.Second}
}

type GetInsightsParams struct {
	Country string
	Window  domrepo.Window
	Period  int
}

func (uc *CountryInsightsUseCase) GetInsights(ctx context.Context, p GetInsightsParams) (*models.CountryInsights, error) {
	if p.Country == "" {
		return nil, fmt.Errorf("country required")
	}
	if p.Period <= 0 {
		p.Period = 7
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.CountryInsights{
		CountryCode: p.Country,
		Window:      string(p.Window),
		Timestamp:   time.Now(),
		Errors:      map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.Anomalies(ctx, p.Country, p.Window)
		ch <- item{"anomalies", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.Trend(ctx, p.Country, p.Window)
		ch <- item{"trend", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.Decomposition(ctx, p.Country, p.Window, p.Period)
		ch <- item{"decomposition", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "anomalies":
			res.Anomalies = it.val.([]models.DatedAnomaly)
		case "trend":
			v := it.val.(models.TrendVerdict)
			res.Trend = &v
		case "decomposition":
			res.Decomposition = it.val.(*models.DecompositionResult)
		}
	}

	if cfg, fitted := uc.agg.TierConfig(); fitted {
		res.Tiers = &cfg
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
