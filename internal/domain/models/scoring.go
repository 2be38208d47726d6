package models

// Threat levels, ordered ascending by severity.
const (
	LevelInfo     = "info"
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// TierNames lists the five risk tiers in ascending order.
var TierNames = []string{LevelInfo, LevelLow, LevelMedium, LevelHigh, LevelCritical}

// ComponentBreakdown holds the individual sub-scores behind a severity index.
// All fields are in [0,1] except the boost, which is additive in [0,0.15].
type ComponentBreakdown struct {
	Sentiment        float64 `json:"sentiment"`
	KeywordIntensity float64 `json:"keyword_intensity"`
	CategoryWeight   float64 `json:"category_weight"`
	EntityDensity    float64 `json:"entity_density"`
	Recency          float64 `json:"recency"`
	Geopolitical     float64 `json:"geopolitical"`
	UrgencyBoost     float64 `json:"urgency_boost"`
}

// ScoredRecord is the immutable result of scoring one article.
// Re-scoring produces a new record; nothing mutates an existing one.
type ScoredRecord struct {
	SeverityIndex     float64            `json:"severity_index"` // 0-100
	ThreatLevel       string             `json:"threat_level"`
	SentimentPolarity float64            `json:"sentiment_polarity"` // -1..1
	Components        ComponentBreakdown `json:"components"`
}

// SeverityInput carries everything severity scoring needs for one article.
type SeverityInput struct {
	Text        string
	Category    string
	EntityCount int
	PublishedAt string
	CountryCode string

	// Optional structured-event signals. When present they override the
	// lexicon sentiment via max(), since they are better calibrated.
	GoldsteinScale *float64
	QuadClass      *int
}

// SeverityInputFromArticle builds a scoring input from an enriched article.
func SeverityInputFromArticle(a *Article, category string) SeverityInput {
	return SeverityInput{
		Text:           a.Title + " " + a.Text,
		Category:       category,
		EntityCount:    a.EntityCount,
		PublishedAt:    a.PublishedAt,
		CountryCode:    a.CountryCode,
		GoldsteinScale: a.GoldsteinScale,
		QuadClass:      a.QuadClass,
	}
}

// CategoryPrediction is the classifier output for one text.
type CategoryPrediction struct {
	Category      string             `json:"category"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}
