package classifier

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeStems(t *testing.T) {
	tokens := tokenize("Who's playing the guitars?")
	// "playing" and "guitars" stem down; punctuation splits tokens.
	assert.Contains(t, tokens, "play")
	assert.Contains(t, tokens, "guitar")
	assert.NotContains(t, tokens, "playing")
}

func TestNgrams(t *testing.T) {
	out := ngrams([]string{"a", "b", "c"}, 1, 3)
	assert.Equal(t, []string{"a", "b", "c", "a b", "b c", "a b c"}, out)
}

func TestVectorizerTransformIsNormalized(t *testing.T) {
	v := fitVectorizer([]string{"hello there", "goodbye now", "hello again"}, 1, 2)
	x := v.transform("hello there")
	require.NotEmpty(t, x)

	var norm float64
	for _, val := range x {
		norm += val * val
	}
	assert.InDelta(t, 1.0, norm, 1e-9)

	// Out-of-vocabulary text maps to the zero vector.
	assert.Empty(t, v.transform("xylophone"))
}

func TestCorpusClassifierRanksMatchingIntentFirst(t *testing.T) {
	c := NewCorpusClassifier([]TrainingExample{
		{Intent: "greetings.hello", Utterances: []string{"hello", "hi there", "hey", "good morning"}},
		{Intent: "album.info", Utterances: []string{"when was californication released", "tell me about the album", "what year did the album come out"}},
		{Intent: "band.members", Utterances: []string{"who is in the band", "who plays drums", "list the members"}},
	})

	preds := c.Classify("hello")
	require.NotEmpty(t, preds)
	assert.Equal(t, "greetings.hello", preds[0].Label)
	assert.Greater(t, preds[0].Probability, 0.60)

	preds = c.Classify("who is in the band")
	assert.Equal(t, "band.members", preds[0].Label)

	// Probabilities form a distribution.
	var sum float64
	for _, p := range preds {
		assert.GreaterOrEqual(t, p.Probability, 0.0)
		assert.LessOrEqual(t, p.Probability, 1.0)
		sum += p.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCorpusClassifierGibberishStaysFlat(t *testing.T) {
	c := NewCorpusClassifier([]TrainingExample{
		{Intent: "greetings.hello", Utterances: []string{"hello", "hi"}},
		{Intent: "greetings.bye", Utterances: []string{"bye", "goodbye"}},
		{Intent: "band.members", Utterances: []string{"who is in the band"}},
	})
	preds := c.Classify("zzz qqq unrelated gibberish")
	require.NotEmpty(t, preds)
	assert.Less(t, preds[0].Probability, 0.60)
}

func TestLoadModelValidation(t *testing.T) {
	dir := t.TempDir()

	write := func(t *testing.T, art modelArtifact) string {
		t.Helper()
		raw, err := json.Marshal(art)
		require.NoError(t, err)
		path := filepath.Join(dir, "model.json")
		require.NoError(t, os.WriteFile(path, raw, 0o644))
		return path
	}

	_, err := LoadModel(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	// Mismatched idf/vocabulary sizes.
	_, err = LoadModel(write(t, modelArtifact{
		Classes:    []string{"a", "b"},
		Vocabulary: map[string]int{"x": 0},
		IDF:        []float64{1, 2},
		Coef:       [][]float64{{0.1}},
		Intercept:  []float64{0},
	}))
	assert.Error(t, err)
}

func TestModelClassifyMultinomial(t *testing.T) {
	// Two features, three classes; weights hand-picked so "hello"
	// dominates class hello and "bye" dominates class bye.
	art := modelArtifact{
		Classes:    []string{"greetings.hello", "greetings.bye", "band.members"},
		Vocabulary: map[string]int{"hello": 0, "bye": 1},
		IDF:        []float64{1, 1},
		Coef: [][]float64{
			{4, -2},
			{-2, 4},
			{-2, -2},
		},
		Intercept: []float64{0, 0, 0.5},
		NgramMin:  1,
		NgramMax:  1,
	}
	m, err := newModel(art)
	require.NoError(t, err)

	preds := m.Classify("hello")
	require.Len(t, preds, 3)
	assert.Equal(t, "greetings.hello", preds[0].Label)

	var sum float64
	for _, p := range preds {
		sum += p.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	preds = m.Classify("bye")
	assert.Equal(t, "greetings.bye", preds[0].Label)
}

func TestModelClassifyBinarySigmoid(t *testing.T) {
	art := modelArtifact{
		Classes:    []string{"no", "yes"},
		Vocabulary: map[string]int{"yes": 0},
		IDF:        []float64{1},
		Coef:       [][]float64{{3}},
		Intercept:  []float64{-1},
		NgramMin:   1,
		NgramMax:   1,
	}
	m, err := newModel(art)
	require.NoError(t, err)

	preds := m.Classify("yes")
	require.Len(t, preds, 2)
	assert.Equal(t, "yes", preds[0].Label)
	want := 1 / (1 + math.Exp(-(3.0 - 1.0)))
	assert.InDelta(t, want, preds[0].Probability, 1e-9)
}
