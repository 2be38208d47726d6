package risktier

import (
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
)

var _ domsvc.TierClassifier = (*Classifier)(nil)

// Fitting methods.
const (
	MethodNaturalBreaks = "natural-breaks"
	MethodClustering    = "clustering"
)

const tierCount = 5

// minFitSamples: below this the data-driven partition is meaningless and the
// default boundaries are used instead.
const minFitSamples = 5

// defaultBoundaries apply before any fit and for thin samples.
var defaultBoundaries = []float64{20, 40, 60, 78}

// boundaryAnchor clamps one fitted boundary to its domain-sane range.
// Offsets are relative to the previous (already anchored) boundary, keeping
// tiers strictly ascending no matter how skewed the sample is.
type boundaryAnchor struct {
	absMin, absMax float64
	minAbovePrev   float64
}

// Anchors per boundary: info->low, low->medium, medium->high, high->critical.
// A thin or skewed cycle must never push a known-severe score below high.
var boundaryAnchors = [tierCount - 1]boundaryAnchor{
	{absMin: 10, absMax: 25},
	{absMax: 45, minAbovePrev: 10},
	{absMax: 65, minAbovePrev: 10},
	{absMin: 70, absMax: 85, minAbovePrev: 8},
}

// Classifier holds the fitted tier boundaries for one scoring cycle.
// Fit once per cycle from a single writer, then Classify freely from any
// goroutine; reads after the fit are lock-protected and cheap.
type Classifier struct {
	mu      sync.RWMutex
	method  string
	bounds  []float64
	ranges  []models.TierRange
	samples []float64 // sorted, for percentile rank
	config  models.TierConfiguration
	fitted  bool
	now     func() time.Time
}

// NewClassifier returns an unfitted classifier using the given method
// (natural-breaks by default).
func NewClassifier(method string) *Classifier {
	if method != MethodClustering {
		method = MethodNaturalBreaks
	}
	return &Classifier{
		method: method,
		bounds: append([]float64(nil), defaultBoundaries...),
		ranges: rangesFor(defaultBoundaries),
		now:    time.Now,
	}
}

// Fit recomputes tier boundaries from the cycle's score distribution.
// NaN scores are discarded; fewer than five usable samples fall back to the
// default boundaries. Fitted boundaries are anchored to their documented
// real-world ranges before use.
func (c *Classifier) Fit(scores []float64) models.TierConfiguration {
	clean := make([]float64, 0, len(scores))
	for _, s := range scores {
		if !math.IsNaN(s) {
			clean = append(clean, s)
		}
	}

	var bounds []float64
	if len(clean) < minFitSamples {
		bounds = append([]float64(nil), defaultBoundaries...)
	} else {
		if c.method == MethodClustering {
			bounds = kmeansBreaks(clean, tierCount)
		} else {
			bounds = jenksBreaks(clean, tierCount)
		}
		bounds = anchor(bounds)
	}

	sorted := append([]float64(nil), clean...)
	sort.Float64s(sorted)

	cfg := models.TierConfiguration{
		Method:     c.method,
		Boundaries: bounds,
		TierRanges: rangesFor(bounds),
		NSamples:   len(clean),
		FittedAt:   c.now().UTC(),
	}
	if len(sorted) > 0 {
		cfg.Stats = models.ScoreStats{
			Mean:   stat.Mean(sorted, nil),
			Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
			Std:    stat.PopStdDev(sorted, nil),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
		}
	}

	c.mu.Lock()
	c.bounds = bounds
	c.ranges = cfg.TierRanges
	c.samples = sorted
	c.config = cfg
	c.fitted = true
	c.mu.Unlock()
	return cfg
}

// Classify maps a score to its tier and reports its percentile rank within
// the last-fitted sample (50.0 when unfitted or the sample is empty).
func (c *Classifier) Classify(score float64) (string, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tier := models.TierNames[len(c.bounds)]
	for i, b := range c.bounds {
		if score < b {
			tier = models.TierNames[i]
			break
		}
	}

	percentile := 50.0
	if len(c.samples) > 0 {
		at := sort.Search(len(c.samples), func(i int) bool { return c.samples[i] > score })
		percentile = float64(at) / float64(len(c.samples)) * 100.0
	}
	return tier, percentile
}

// Config returns the last fit result and whether Fit has run.
func (c *Classifier) Config() (models.TierConfiguration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config, c.fitted
}

// anchor clamps fitted boundaries to their domain ranges, preserving strict
// ascent via the minimum spacing above the previous boundary.
func anchor(bounds []float64) []float64 {
	out := make([]float64, len(bounds))
	prev := 0.0
	for i, b := range bounds {
		a := boundaryAnchors[i]
		lo := a.absMin
		if withPrev := prev + a.minAbovePrev; i > 0 && withPrev > lo {
			lo = withPrev
		}
		out[i] = math.Min(a.absMax, math.Max(lo, b))
		prev = out[i]
	}
	return out
}

// rangesFor builds the ordered half-open tier ranges covering [0,100].
func rangesFor(bounds []float64) []models.TierRange {
	all := make([]float64, 0, len(bounds)+2)
	all = append(all, 0.0)
	all = append(all, bounds...)
	all = append(all, 100.0)
	ranges := make([]models.TierRange, len(all)-1)
	for i := range ranges {
		ranges[i] = models.TierRange{
			Name:  models.TierNames[i],
			Lower: all[i],
			Upper: all[i+1],
		}
	}
	return ranges
}
