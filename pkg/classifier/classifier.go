// Package classifier provides intent classification for the chatbot
// pipeline. Training happens outside this module; the package only
// scores text against an already-fitted model.
package classifier

// Prediction is one ranked classification outcome.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Classifier scores a message against the intent set. Implementations
// return predictions sorted by descending probability and must be safe
// for concurrent use.
type Classifier interface {
	Classify(text string) []Prediction
}
