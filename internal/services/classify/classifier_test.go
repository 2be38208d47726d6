package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyModelJSON = `{
	"classes": ["Armed Conflict", "Economic Disruption"],
	"vocabulary": {"war": 0, "inflation": 1},
	"idf": [1.0, 1.0],
	"coef": [[5.0, -5.0], [-5.0, 5.0]],
	"intercept": [0.0, 0.0],
	"ngram_max": 1,
	"sublinear_tf": false
}`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClassifyByKeywordsArmedConflict(t *testing.T) {
	category, confidence := ClassifyByKeywords(
		"military offensive with artillery shelling and airstrike near the battlefield")
	assert.Equal(t, "Armed Conflict", category)
	assert.InDelta(t, 0.7, confidence, 1e-9)
}

func TestClassifyByKeywordsNoMatch(t *testing.T) {
	category, confidence := ClassifyByKeywords("quiet sunny afternoon")
	assert.Equal(t, DefaultCategory, category)
	assert.InDelta(t, 0.1, confidence, 1e-9)
}

func TestClassifyByKeywordsTieBreakDeterministic(t *testing.T) {
	// One hit each for the first two rules; the earlier rule must win every
	// time regardless of iteration order.
	for i := 0; i < 50; i++ {
		category, confidence := ClassifyByKeywords("war and terrorism")
		assert.Equal(t, "Armed Conflict", category)
		assert.InDelta(t, 0.2, confidence, 1e-9)
	}
}

func TestLoadModelAndPredict(t *testing.T) {
	m, err := LoadModel(writeModel(t, tinyModelJSON))
	require.NoError(t, err)

	probs := m.Predict("war breaks out")
	assert.Greater(t, probs["Armed Conflict"], 0.99)
	assert.Less(t, probs["Economic Disruption"], 0.01)
}

func TestLoadModelShapeMismatch(t *testing.T) {
	_, err := LoadModel(writeModel(t, `{
		"classes": ["A", "B"],
		"vocabulary": {"x": 0},
		"idf": [1.0],
		"coef": [[1.0]],
		"intercept": [0.0]
	}`))
	assert.Error(t, err)
}

func TestClassifierUsesModel(t *testing.T) {
	c := NewClassifier(writeModel(t, tinyModelJSON), nil)
	pred := c.Classify("war escalates", 0)
	assert.Equal(t, "Armed Conflict", pred.Category)
	assert.Greater(t, pred.Confidence, 0.9)
	assert.Len(t, pred.Probabilities, 2)
}

func TestClassifierLowConfidenceFallsBack(t *testing.T) {
	// "inflation war" splits the model evenly; above a 0.6 threshold the
	// keyword rules take over and Armed Conflict wins the tie.
	c := NewClassifier(writeModel(t, tinyModelJSON), nil)
	pred := c.Classify("inflation war", 0.6)
	assert.Equal(t, "Armed Conflict", pred.Category)
	assert.InDelta(t, 0.2, pred.Confidence, 1e-9)
}

func TestClassifierBrokenModelFallsBack(t *testing.T) {
	c := NewClassifier(writeModel(t, "{not json"), nil)
	pred := c.Classify("protest rally in the capital", 0)
	assert.Equal(t, "Civil Unrest", pred.Category)
	assert.InDelta(t, 0.4, pred.Confidence, 1e-9)
}

func TestClassifierKeywordOnlyMode(t *testing.T) {
	c := NewClassifier("", nil)
	pred := c.Classify("sanctions announced after the summit", 0)
	assert.Equal(t, "Diplomacy / Sanctions", pred.Category)
	assert.InDelta(t, 0.4, pred.Confidence, 1e-9)
}
