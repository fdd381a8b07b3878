package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
)

func findEntity(raw []RawEntity, kind knowledge.Kind, canonical string) *RawEntity {
	for i := range raw {
		if raw[i].Type == kind && raw[i].Canonical == canonical {
			return &raw[i]
		}
	}
	return nil
}

func TestExtractFullCanonicalName(t *testing.T) {
	e := NewExtractor(testBase())
	raw := e.Extract("tell me about Anthony Kiedis")

	hit := findEntity(raw, knowledge.KindMember, "anthony kiedis")
	require.NotNil(t, hit)
	assert.Equal(t, "anthony kiedis", hit.Span)
	assert.Equal(t, fullMatchConfidence, hit.Confidence)
}

func TestExtractAlias(t *testing.T) {
	e := NewExtractor(testBase())
	raw := e.Extract("what does bssm sound like")

	hit := findEntity(raw, knowledge.KindAlbum, "blood sugar sex magik")
	require.NotNil(t, hit)
	assert.Equal(t, partialMatchConfidence, hit.Confidence)
}

func TestExtractAmbiguousTitleYieldsBothKinds(t *testing.T) {
	e := NewExtractor(testBase())
	raw := e.Extract("who wrote californication")

	assert.NotNil(t, findEntity(raw, knowledge.KindAlbum, "californication"))
	assert.NotNil(t, findEntity(raw, knowledge.KindSong, "californication"))
}

func TestExtractDeduplicatesPerKind(t *testing.T) {
	e := NewExtractor(testBase())
	raw := e.Extract("kiedis, anthony kiedis, and kiedis again")

	var members int
	for _, r := range raw {
		if r.Type == knowledge.KindMember {
			members++
		}
	}
	assert.Equal(t, 1, members)

	// The full-name form wins over the partial alias.
	hit := findEntity(raw, knowledge.KindMember, "anthony kiedis")
	require.NotNil(t, hit)
	assert.Equal(t, fullMatchConfidence, hit.Confidence)
}

func TestExtractLastTokenVariant(t *testing.T) {
	e := NewExtractor(testBase())
	raw := e.Extract("is magik their best record")

	hit := findEntity(raw, knowledge.KindAlbum, "blood sugar sex magik")
	require.NotNil(t, hit)
	assert.Equal(t, partialMatchConfidence, hit.Confidence)
}

func TestExtractNoFalsePositives(t *testing.T) {
	e := NewExtractor(testBase())
	assert.Empty(t, e.Extract("what is the capital of France"))
	assert.Empty(t, e.Extract(""))
	// Substrings inside larger words do not match.
	assert.Empty(t, e.Extract("californicationesque"))
}
