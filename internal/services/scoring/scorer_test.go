package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Dahilon/Atlas/internal/domain/models"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestScoreWarZoneCrisis(t *testing.T) {
	s := NewScorerAt(fixedClock())
	rec := s.Score(models.SeverityInput{
		Text:        "Nuclear war fears as invasion begins: airstrike and missile attack cause mass casualties in Ukraine",
		Category:    "Armed Conflict",
		EntityCount: 5,
		PublishedAt: "2025-06-01T10:00:00Z",
		CountryCode: "UA",
	})

	assert.GreaterOrEqual(t, rec.SeverityIndex, 75.0)
	assert.Equal(t, models.LevelCritical, rec.ThreatLevel)
	assert.Negative(t, rec.SentimentPolarity)
	assert.InDelta(t, 1.0, rec.Components.KeywordIntensity, 1e-9)
	assert.InDelta(t, 1.0, rec.Components.Geopolitical, 1e-9)
	assert.InDelta(t, 1.0, rec.Components.CategoryWeight, 1e-9)
}

func TestScoreBenignDiplomacy(t *testing.T) {
	s := NewScorerAt(fixedClock())
	rec := s.Score(models.SeverityInput{
		Text:     "Leaders signed a peace agreement and treaty on cooperation",
		Category: "Diplomacy / Sanctions",
	})

	assert.Less(t, rec.SeverityIndex, 18.0)
	assert.Equal(t, models.LevelInfo, rec.ThreatLevel)
	assert.Positive(t, rec.SentimentPolarity)
	assert.Zero(t, rec.Components.KeywordIntensity)
	assert.Zero(t, rec.Components.Geopolitical)
}

func TestScoreWarZoneFloor(t *testing.T) {
	// A terse dispatch from an active war zone must not score low just
	// because the text is sparse.
	s := NewScorerAt(fixedClock())
	rec := s.Score(models.SeverityInput{
		Text:        "war reported",
		CountryCode: "UA",
	})

	assert.InDelta(t, 65.0, rec.SeverityIndex, 1e-9)
	assert.Equal(t, models.LevelHigh, rec.ThreatLevel)
}

func TestScoreGoldsteinOverridesSentiment(t *testing.T) {
	s := NewScorerAt(fixedClock())
	in := models.SeverityInput{
		Text:     "Routine committee meeting on trade held today",
		Category: "Economic Disruption",
	}
	base := s.Score(in)

	g := -10.0
	in.GoldsteinScale = &g
	boosted := s.Score(in)

	assert.InDelta(t, 1.0, boosted.Components.Sentiment, 1e-9)
	assert.Greater(t, boosted.SeverityIndex, base.SeverityIndex)
}

func TestScoreQuadClassOverridesSentiment(t *testing.T) {
	s := NewScorerAt(fixedClock())
	q := 4
	rec := s.Score(models.SeverityInput{
		Text:      "Routine committee meeting on trade held today",
		QuadClass: &q,
	})
	assert.InDelta(t, 0.9, rec.Components.Sentiment, 1e-9)
}

func TestScoreUnknownCategoryFallback(t *testing.T) {
	s := NewScorerAt(fixedClock())
	rec := s.Score(models.SeverityInput{Text: "something happened", Category: "Weather"})
	assert.InDelta(t, 0.3, rec.Components.CategoryWeight, 1e-9)
}

func TestScoreRecencyDecay(t *testing.T) {
	s := NewScorerAt(fixedClock())

	fresh := s.Score(models.SeverityInput{Text: "x", PublishedAt: "2025-06-01T11:00:00Z"})
	stale := s.Score(models.SeverityInput{Text: "x", PublishedAt: "2025-05-01T11:00:00Z"})
	unknown := s.Score(models.SeverityInput{Text: "x"})

	assert.InDelta(t, 1.0, fresh.Components.Recency, 1e-9)
	assert.Less(t, stale.Components.Recency, 0.1)
	assert.InDelta(t, 0.5, unknown.Components.Recency, 1e-9)
}

func TestScoreEmptyInput(t *testing.T) {
	s := NewScorerAt(fixedClock())
	rec := s.Score(models.SeverityInput{})
	assert.Equal(t, models.LevelInfo, rec.ThreatLevel)
	assert.GreaterOrEqual(t, rec.SeverityIndex, 0.0)
}
