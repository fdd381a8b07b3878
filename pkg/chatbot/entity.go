// Package chatbot is the conversational inference pipeline: intent
// classification behind a confidence gate, entity extraction and
// canonicalization against the knowledge base, and context-aware
// response building over session memory.
package chatbot

import "github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"

// Entity is one recognized mention in a user message, produced per
// turn and never persisted. Value carries the canonical display name
// when resolution succeeded, otherwise the raw span unchanged.
type Entity struct {
	Type       knowledge.Kind `json:"type"`
	Span       string         `json:"span"`
	Value      string         `json:"value"`
	Confidence float64        `json:"confidence"`

	// Resolved knowledge-base records; at most one is non-nil,
	// matching Type.
	Member *knowledge.Member `json:"-"`
	Album  *knowledge.Album  `json:"-"`
	Song   *knowledge.Song   `json:"-"`
}

// Resolved reports whether the entity canonicalized to a knowledge-
// base record.
func (e Entity) Resolved() bool {
	return e.Member != nil || e.Album != nil || e.Song != nil
}

// RawEntity is an extractor match before canonicalization.
type RawEntity struct {
	Type       knowledge.Kind
	Span       string
	Canonical  string // extractor's canonical display name for the hit
	Confidence float64
}
