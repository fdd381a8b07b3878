package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gilbertordx/rhcp-chatbot/pkg/classifier"
)

func TestGateIntentAcceptsConfidentPrediction(t *testing.T) {
	intent, conf := GateIntent([]classifier.Prediction{
		{Label: "greetings.hello", Probability: 0.95},
		{Label: "greetings.bye", Probability: 0.05},
	}, 0.60)
	assert.Equal(t, "greetings.hello", intent)
	assert.Equal(t, 0.95, conf)
}

func TestGateIntentRejectsBelowThreshold(t *testing.T) {
	intent, conf := GateIntent([]classifier.Prediction{
		{Label: "album.info", Probability: 0.59},
	}, 0.60)
	assert.Equal(t, IntentUnknown, intent)
	// The observed probability survives the gate for diagnostics.
	assert.Equal(t, 0.59, conf)
}

func TestGateIntentRejectsUnknownLabel(t *testing.T) {
	intent, _ := GateIntent([]classifier.Prediction{
		{Label: "weather.today", Probability: 0.99},
	}, 0.60)
	assert.Equal(t, IntentUnknown, intent)
}

func TestGateIntentEmptyPredictions(t *testing.T) {
	intent, conf := GateIntent(nil, 0.60)
	assert.Equal(t, IntentUnknown, intent)
	assert.Equal(t, 0.0, conf)
}

func TestIsValidIntent(t *testing.T) {
	assert.True(t, IsValidIntent("song.info"))
	assert.True(t, IsValidIntent(IntentUnknown))
	assert.False(t, IsValidIntent("song"))
	assert.False(t, IsValidIntent(""))
}
