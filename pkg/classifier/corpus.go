package classifier

import "math"

// TrainingExample groups the labeled utterances for one intent.
type TrainingExample struct {
	Intent     string
	Utterances []string
}

// cosineScale sharpens the softmax over cosine similarities so that a
// close utterance match clears the 0.60 confidence gate while
// unrelated input stays near uniform.
const cosineScale = 5.0

// CorpusClassifier is a nearest-centroid classifier over the training
// corpus. It exists so the service can run without a fitted artifact;
// the index is built once at construction, never at request time.
type CorpusClassifier struct {
	vec       *vectorizer
	classes   []string
	centroids []map[int]float64
}

// NewCorpusClassifier builds per-intent TF-IDF centroids from the
// labeled utterances.
func NewCorpusClassifier(examples []TrainingExample) *CorpusClassifier {
	var docs []string
	for _, ex := range examples {
		docs = append(docs, ex.Utterances...)
	}
	vec := fitVectorizer(docs, 1, 3)

	c := &CorpusClassifier{vec: vec}
	for _, ex := range examples {
		if len(ex.Utterances) == 0 {
			continue
		}
		centroid := make(map[int]float64)
		for _, u := range ex.Utterances {
			for idx, val := range vec.transform(u) {
				centroid[idx] += val
			}
		}
		normalize(centroid)
		c.classes = append(c.classes, ex.Intent)
		c.centroids = append(c.centroids, centroid)
	}
	return c
}

// Classify implements Classifier.
func (c *CorpusClassifier) Classify(text string) []Prediction {
	if len(c.classes) == 0 {
		return nil
	}
	x := c.vec.transform(text)

	scores := make([]float64, len(c.centroids))
	for i, centroid := range c.centroids {
		scores[i] = cosineScale * dot(x, centroid)
	}
	return rankPredictions(c.classes, softmax(scores))
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var s float64
	for idx, val := range a {
		s += val * b[idx]
	}
	return s
}

func normalize(v map[int]float64) {
	var norm float64
	for _, val := range v {
		norm += val * val
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for idx := range v {
		v[idx] /= norm
	}
}
