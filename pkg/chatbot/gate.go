package chatbot

import "github.com/gilbertordx/rhcp-chatbot/pkg/classifier"

// IntentUnknown is the sink for empty, low-confidence or out-of-set
// classifications.
const IntentUnknown = "unknown"

// DefaultConfidenceThreshold gates classifier output when no explicit
// threshold is configured.
const DefaultConfidenceThreshold = 0.60

// validIntents is the closed set of intents the pipeline understands.
var validIntents = map[string]struct{}{
	"greetings.hello":   {},
	"greetings.bye":     {},
	"member.biography":  {},
	"band.members":      {},
	"album.info":        {},
	"song.info":         {},
	"band.history":      {},
	"intent.outofscope": {},
	IntentUnknown:       {},
}

// IsValidIntent reports whether label belongs to the intent set.
func IsValidIntent(label string) bool {
	_, ok := validIntents[label]
	return ok
}

// GateIntent turns ranked classifier output into the final intent.
// The top prediction is accepted only when it clears the threshold and
// its label belongs to the valid set; everything else maps to unknown
// while keeping the observed probability. Pure function.
func GateIntent(preds []classifier.Prediction, threshold float64) (string, float64) {
	if len(preds) == 0 {
		return IntentUnknown, 0.0
	}
	top := preds[0]
	if top.Probability >= threshold && IsValidIntent(top.Label) {
		return top.Label, top.Probability
	}
	return IntentUnknown, top.Probability
}
