package classify

import (
	"sync"

	"github.com/Dahilon/Atlas/internal/domain/models"
	domsvc "github.com/Dahilon/Atlas/internal/domain/service"
	applogger "github.com/Dahilon/Atlas/pkg/logger"
)

var _ domsvc.EventClassifier = (*Classifier)(nil)

// DefaultConfidenceThreshold: model predictions below this fall through to
// the keyword rules.
const DefaultConfidenceThreshold = 0.4

// Classifier maps free text to one of the six fixed categories. The primary
// path is the offline-trained linear model; the keyword rules cover model
// unavailability and low-confidence predictions.
//
// The model file is loaded at most once. If loading fails, the classifier
// permanently falls back to keyword rules for the process lifetime; a broken
// model file will not fix itself, and retrying on every article only buys
// log spam.
type Classifier struct {
	modelPath string
	logger    *applogger.Logger

	loadOnce sync.Once
	model    *LinearModel
}

// NewClassifier builds a classifier that lazily loads the model at the given
// path. An empty path means keyword-only mode.
func NewClassifier(modelPath string, logger *applogger.Logger) *Classifier {
	return &Classifier{modelPath: modelPath, logger: logger}
}

// Classify predicts the category of the text. threshold <= 0 uses the
// default. The result always names a category; this never fails.
func (c *Classifier) Classify(text string, threshold float64) models.CategoryPrediction {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	if m := c.loadedModel(); m != nil {
		probs := m.Predict(text)
		best, bestP := "", 0.0
		for cls, p := range probs {
			if p > bestP {
				best, bestP = cls, p
			}
		}
		if bestP >= threshold {
			return models.CategoryPrediction{
				Category:      best,
				Confidence:    bestP,
				Probabilities: probs,
			}
		}
	}

	category, confidence := ClassifyByKeywords(text)
	return models.CategoryPrediction{
		Category:      category,
		Confidence:    confidence,
		Probabilities: map[string]float64{category: confidence},
	}
}

func (c *Classifier) loadedModel() *LinearModel {
	c.loadOnce.Do(func() {
		if c.modelPath == "" {
			return
		}
		m, err := LoadModel(c.modelPath)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("classifier model load failed, using keyword rules",
					applogger.String("path", c.modelPath),
					applogger.Error(err),
				)
			}
			return
		}
		if c.logger != nil {
			c.logger.Info("classifier model loaded",
				applogger.String("path", c.modelPath),
				applogger.Int("classes", len(m.Classes)),
			)
		}
		c.model = m
	})
	return c.model
}
