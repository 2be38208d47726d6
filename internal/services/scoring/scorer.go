package scoring

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
	"github.com/Dahilon/Atlas/pkg/util"
)

var _ domsvc.SeverityScorer = (*Scorer)(nil)

// Severity composite weights. Keywords and sentiment drive 45%, category and
// geopolitical context 15% each, entity density and recency 5% each; urgency
// is an additive boost on top.
const (
	weightSentiment = 0.20
	weightKeyword   = 0.25
	weightCategory  = 0.15
	weightEntity    = 0.05
	weightRecency   = 0.05
	weightGeo       = 0.15
)

// Fixed threat-level cutoffs used until a fitted tier configuration
// overrides them.
const (
	cutoffCritical = 75.0
	cutoffHigh     = 55.0
	cutoffMedium   = 35.0
	cutoffLow      = 18.0
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Scorer computes composite 0-100 severity indices. It is pure and safe for
// concurrent use; construct once and share.
type Scorer struct {
	now func() time.Time
}

// NewScorer returns a ready Scorer.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerAt fixes the clock, for reproducible recency scoring in tests.
func NewScorerAt(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes the composite severity index for one record. It never fails:
// malformed or empty inputs degrade to zero-valued components.
func (s *Scorer) Score(in models.SeverityInput) models.ScoredRecord {
	sentiment, polarity := sentimentScore(in.Text)
	keyword := keywordIntensity(in.Text)
	category, ok := categoryWeights[in.Category]
	if !ok {
		category = 0.3
	}
	entity := entityDensity(in.EntityCount, len(in.Text))
	recency := s.recencyScore(in.PublishedAt)
	urgency := urgencyBoost(in.Text)
	geo := geopoliticalScore(in.CountryCode, in.Text)

	if in.GoldsteinScale != nil {
		// Goldstein runs -10 (conflict) to +10 (cooperation); map linearly
		// so -10 -> 1.0, 0 -> 0.5, +10 -> 0.0.
		g := clamp01((10.0 - *in.GoldsteinScale) / 20.0)
		sentiment = math.Max(sentiment, g)
	}
	if in.QuadClass != nil {
		q, ok := map[int]float64{1: 0.1, 2: 0.2, 3: 0.6, 4: 0.9}[*in.QuadClass]
		if !ok {
			q = 0.3
		}
		sentiment = math.Max(sentiment, q)
	}

	composite := weightSentiment*sentiment +
		weightKeyword*keyword +
		weightCategory*category +
		weightEntity*entity +
		weightRecency*recency +
		weightGeo*geo +
		urgency

	// Floor boosts: conflict text datelined to a war zone must not score low
	// just because the article is short or sparsely worded.
	if geo >= 0.85 && sentiment >= 0.3 {
		composite = math.Max(composite, 0.65)
	} else if geo >= 0.70 && sentiment >= 0.3 {
		composite = math.Max(composite, 0.50)
	}

	index := math.Min(100.0, math.Max(0.0, composite*100.0))

	return models.ScoredRecord{
		SeverityIndex:     round2(index),
		ThreatLevel:       threatLevel(index),
		SentimentPolarity: round4(polarity),
		Components: models.ComponentBreakdown{
			Sentiment:        round4(sentiment),
			KeywordIntensity: round4(keyword),
			CategoryWeight:   round4(category),
			EntityDensity:    round4(entity),
			Recency:          round4(recency),
			Geopolitical:     round4(geo),
			UrgencyBoost:     round4(urgency),
		},
	}
}

func threatLevel(index float64) string {
	switch {
	case index >= cutoffCritical:
		return models.LevelCritical
	case index >= cutoffHigh:
		return models.LevelHigh
	case index >= cutoffMedium:
		return models.LevelMedium
	case index >= cutoffLow:
		return models.LevelLow
	default:
		return models.LevelInfo
	}
}

// sentimentScore returns (severity component in [0,1], polarity in [-1,1]).
// Term counts are capped at 5 and density-normalized per 50 words.
func sentimentScore(text string) (float64, float64) {
	lower := strings.ToLower(text)
	totalWords := len(wordRe.FindAllString(lower, -1))
	if totalWords < 1 {
		totalWords = 1
	}

	var negScore float64
	var negHits int
	for term, weight := range negativeLexicon {
		if c := strings.Count(lower, term); c > 0 {
			negScore += weight * float64(min(c, 5))
			negHits += c
		}
	}
	var posScore float64
	var posHits int
	for term, weight := range positiveLexicon {
		if c := strings.Count(lower, term); c > 0 {
			posScore += weight * float64(min(c, 5))
			posHits += c
		}
	}

	norm := math.Max(1, float64(totalWords)/50.0)
	negDensity := negScore / norm
	posDensity := posScore / norm

	var polarity float64
	if total := negDensity + posDensity; total > 0 {
		polarity = (posDensity - negDensity) / total
	}

	// negDensity of 3+ is extremely negative
	severity := math.Min(1.0, negDensity/3.0)
	if negHits > 0 && negHits > posHits*2 {
		severity = math.Min(1.0, severity*1.2)
	}
	return severity, polarity
}

// keywordIntensity sums weighted crisis-keyword hits, each capped at 3
// repeats, normalized so one high-weight keyword lands near 0.3 and 3-4
// crisis keywords approach 0.8-1.0.
func keywordIntensity(text string) float64 {
	lower := strings.ToLower(text)
	var total float64
	matches := 0
	for keyword, weight := range crisisKeywords {
		if c := strings.Count(lower, keyword); c > 0 {
			total += weight * float64(min(c, 3))
			matches++
		}
	}
	if matches == 0 {
		return 0.0
	}
	return math.Min(1.0, total/8.0)
}

func urgencyBoost(text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return math.Min(0.15, float64(hits)*0.05)
}

// entityDensity normalizes the entity count per 100 words (roughly 5 chars
// per word), capped at 1.0.
func entityDensity(entityCount, textLength int) float64 {
	if textLength == 0 {
		return 0.0
	}
	words := float64(textLength) / 5.0
	density := float64(entityCount) / math.Max(1.0, words/100.0)
	return math.Min(1.0, density/10.0)
}

// recencyScore decays exponentially with a 7-day half-life. Missing or
// unparsable dates score neutral 0.5.
func (s *Scorer) recencyScore(published string) float64 {
	t, ok := util.ParseTime(published)
	if !ok {
		return 0.5
	}
	daysOld := s.now().UTC().Sub(t.UTC()).Hours() / 24.0
	if daysOld < 0 {
		daysOld = 0
	}
	return math.Exp(-0.1 * math.Floor(daysOld))
}

// geopoliticalScore looks up the country code against the conflict-zone table
// and scans the text for known zone/actor names, taking the max.
func geopoliticalScore(countryCode, text string) float64 {
	var base float64
	if countryCode != "" {
		if s, ok := conflictZoneScores[strings.ToUpper(countryCode)]; ok {
			base = s
		}
	}
	lower := strings.ToLower(text)
	var mentionMax float64
	for name, score := range conflictNameScores {
		if strings.Contains(lower, name) && score > mentionMax {
			mentionMax = score
		}
	}
	if mentionMax > 0 {
		base = math.Max(base, mentionMax*0.8)
	}
	return base
}

func clamp01(v float64) float64 { return math.Max(0.0, math.Min(1.0, v)) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
