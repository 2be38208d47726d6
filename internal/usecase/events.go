package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
)

// EventsUseCase provides business logic for retrieving scored events.
type EventsUseCase struct {
	store domrepo.EventStore
}

func NewEventsUseCase(store domrepo.EventStore) *EventsUseCase {
	return &EventsUseCase{store: store}
}

type GetEventsParams struct {
	Country string
	From    time.Time
	To      time.Time
	Limit   int
}

type GetEventsResult struct {
	Country string
	From    time.Time
	To      time.Time
	Count   int
	Events  []*models.ScoredEvent
}

func (uc *EventsUseCase) GetEvents(ctx context.Context, p GetEventsParams) (*GetEventsResult, error) {
	if p.Country == "" {
		return nil, fmt.Errorf("country required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	events, err := uc.store.Query(ctx, p.Country, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	return &GetEventsResult{
		Country: p.Country,
		From:    p.From,
		To:      p.To,
		Count:   len(events),
		Events:  events,
	}, nil
}
