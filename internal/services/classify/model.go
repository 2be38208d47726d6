package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// LinearModel is a TF-IDF + multinomial logistic regression classifier,
// loaded from a JSON export of the offline-trained model. Training happens
// out of process; only the fitted weights travel.
type LinearModel struct {
	Classes     []string       `json:"classes"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Coef        [][]float64    `json:"coef"` // one weight row per class
	Intercept   []float64      `json:"intercept"`
	NgramMax    int            `json:"ngram_max"`
	SublinearTF bool           `json:"sublinear_tf"`
}

// LoadModel reads and validates a serialized model file.
func LoadModel(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("validate model: %w", err)
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("no classes")
	}
	if len(m.Coef) != len(m.Classes) || len(m.Intercept) != len(m.Classes) {
		return fmt.Errorf("coef/intercept shape mismatch: %d classes, %d coef rows, %d intercepts",
			len(m.Classes), len(m.Coef), len(m.Intercept))
	}
	if len(m.IDF) != len(m.Vocabulary) {
		return fmt.Errorf("idf length %d != vocabulary size %d", len(m.IDF), len(m.Vocabulary))
	}
	for i, row := range m.Coef {
		if len(row) != len(m.Vocabulary) {
			return fmt.Errorf("coef row %d length %d != vocabulary size %d", i, len(row), len(m.Vocabulary))
		}
	}
	if m.NgramMax < 1 {
		m.NgramMax = 1
	}
	return nil
}

// Predict returns per-class probabilities for the text via softmax over the
// linear logits.
func (m *LinearModel) Predict(text string) map[string]float64 {
	features := m.vectorize(text)

	logits := make([]float64, len(m.Classes))
	for c := range m.Classes {
		z := m.Intercept[c]
		row := m.Coef[c]
		for idx, v := range features {
			z += row[idx] * v
		}
		logits[c] = z
	}

	// Softmax, shifted by the max logit for stability.
	maxZ := logits[0]
	for _, z := range logits[1:] {
		maxZ = math.Max(maxZ, z)
	}
	var sum float64
	exps := make([]float64, len(logits))
	for i, z := range logits {
		exps[i] = math.Exp(z - maxZ)
		sum += exps[i]
	}

	out := make(map[string]float64, len(m.Classes))
	for i, cls := range m.Classes {
		out[cls] = exps[i] / sum
	}
	return out
}

// vectorize produces the sparse TF-IDF vector: token and n-gram counts,
// sublinear tf when the model was trained that way, idf weighting, then L2
// normalization.
func (m *LinearModel) vectorize(text string) map[int]float64 {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)

	counts := make(map[int]int)
	for n := 1; n <= m.NgramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			if idx, ok := m.Vocabulary[gram]; ok {
				counts[idx]++
			}
		}
	}

	features := make(map[int]float64, len(counts))
	var norm float64
	for idx, c := range counts {
		tf := float64(c)
		if m.SublinearTF {
			tf = 1.0 + math.Log(tf)
		}
		v := tf * m.IDF[idx]
		features[idx] = v
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range features {
			features[idx] /= norm
		}
	}
	return features
}
