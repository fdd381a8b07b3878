package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// modelArtifact is the JSON export of the fitted pipeline: vocabulary
// and IDF from the TF-IDF stage, weights from the linear stage.
type modelArtifact struct {
	Classes    []string       `json:"classes"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Coef       [][]float64    `json:"coef"`
	Intercept  []float64      `json:"intercept"`
	NgramMin   int            `json:"ngram_min"`
	NgramMax   int            `json:"ngram_max"`
}

// Model scores text with an exported logistic-regression artifact,
// reproducing the training pipeline's predict_proba.
type Model struct {
	vec       *vectorizer
	classes   []string
	coef      [][]float64
	intercept []float64
}

// LoadModel reads and validates a classifier artifact from path.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var art modelArtifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return newModel(art)
}

func newModel(art modelArtifact) (*Model, error) {
	if len(art.Classes) < 2 {
		return nil, fmt.Errorf("model artifact needs at least 2 classes, got %d", len(art.Classes))
	}
	if len(art.IDF) != len(art.Vocabulary) {
		return nil, fmt.Errorf("idf length %d does not match vocabulary size %d", len(art.IDF), len(art.Vocabulary))
	}
	if len(art.Coef) != len(art.Classes) && !(len(art.Coef) == 1 && len(art.Classes) == 2) {
		return nil, fmt.Errorf("coef rows %d do not match classes %d", len(art.Coef), len(art.Classes))
	}
	if len(art.Intercept) != len(art.Coef) {
		return nil, fmt.Errorf("intercept length %d does not match coef rows %d", len(art.Intercept), len(art.Coef))
	}
	for i, row := range art.Coef {
		if len(row) != len(art.Vocabulary) {
			return nil, fmt.Errorf("coef row %d has %d weights, want %d", i, len(row), len(art.Vocabulary))
		}
	}
	if art.NgramMin == 0 {
		art.NgramMin = 1
	}
	if art.NgramMax == 0 {
		art.NgramMax = art.NgramMin
	}

	return &Model{
		vec: &vectorizer{
			vocab:    art.Vocabulary,
			idf:      art.IDF,
			ngramMin: art.NgramMin,
			ngramMax: art.NgramMax,
		},
		classes:   art.Classes,
		coef:      art.Coef,
		intercept: art.Intercept,
	}, nil
}

// Classify implements Classifier.
func (m *Model) Classify(text string) []Prediction {
	x := m.vec.transform(text)

	scores := make([]float64, len(m.coef))
	for row := range m.coef {
		s := m.intercept[row]
		for idx, val := range x {
			s += m.coef[row][idx] * val
		}
		scores[row] = s
	}

	var probs []float64
	if len(m.coef) == 1 {
		// Binary model: one weight row, sigmoid on the decision score.
		p := 1 / (1 + math.Exp(-scores[0]))
		probs = []float64{1 - p, p}
	} else {
		probs = softmax(scores)
	}

	return rankPredictions(m.classes, probs)
}

// Classes returns the labels the model was fitted on.
func (m *Model) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

func rankPredictions(classes []string, probs []float64) []Prediction {
	preds := make([]Prediction, len(classes))
	for i, c := range classes {
		preds[i] = Prediction{Label: c, Probability: probs[i]}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Probability != preds[j].Probability {
			return preds[i].Probability > preds[j].Probability
		}
		return preds[i].Label < preds[j].Label
	})
	return preds
}
