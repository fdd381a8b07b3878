package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceIsPure(t *testing.T) {
	prev := NewContext()
	prev.MentionedMembers["Flea"] = struct{}{}
	prev.LastMember = "Flea"

	turn := Turn{
		Intent:     "member.biography",
		Confidence: 0.9,
		Entities:   []Entity{{Type: "member", Name: "Anthony Kiedis", MemberType: "current"}},
	}
	next := Reduce(prev, turn)

	// Input context untouched.
	assert.Len(t, prev.MentionedMembers, 1)
	assert.Equal(t, "Flea", prev.LastMember)

	assert.Len(t, next.MentionedMembers, 2)
	assert.Equal(t, "Anthony Kiedis", next.LastMember)
	assert.Equal(t, "current", next.MemberTypes["Anthony Kiedis"])
}

func TestReduceRecordsAlbumType(t *testing.T) {
	turn := Turn{
		Intent: "album.info",
		Entities: []Entity{
			{Type: "album", Name: "blood sugar sex magik", AlbumType: "studio"},
		},
	}
	next := Reduce(NewContext(), turn)

	assert.Contains(t, next.MentionedAlbums, "blood sugar sex magik")
	assert.Equal(t, "blood sugar sex magik", next.LastAlbum)
	assert.Equal(t, "studio", next.AlbumTypes["blood sugar sex magik"])

	// An entity without a type leaves the map entry unset.
	next = Reduce(NewContext(), Turn{
		Intent:   "album.info",
		Entities: []Entity{{Type: "album", Name: "mothers milk"}},
	})
	assert.Empty(t, next.AlbumTypes)
}

func TestReduceTopicTable(t *testing.T) {
	cases := []struct {
		name       string
		turn       Turn
		topic      string
		confidence float64
	}{
		{"member intent", Turn{Intent: "band.members"}, "band_members", 0.9},
		{"member entity only", Turn{Intent: "intent.outofscope", Entities: []Entity{{Type: "member", Name: "Flea"}}}, "band_members", 0.9},
		{"album intent", Turn{Intent: "album.info"}, "albums", 0.9},
		{"song entity", Turn{Intent: "intent.outofscope", Entities: []Entity{{Type: "song", Name: "Scar Tissue", Album: "Californication"}}}, "songs", 0.9},
		{"history", Turn{Intent: "band.history"}, "band_history", 0.8},
		{"greeting", Turn{Intent: "greetings.hello"}, "greetings", 0.7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := Reduce(NewContext(), tc.turn)
			assert.Equal(t, tc.topic, next.CurrentTopic)
			assert.Equal(t, tc.topic, next.LastTopic)
			assert.Equal(t, tc.confidence, next.TopicConfidence)
		})
	}
}

func TestReduceTopicDecay(t *testing.T) {
	ctx := Reduce(NewContext(), Turn{Intent: "album.info"})
	assert.Equal(t, 0.9, ctx.TopicConfidence)

	// A turn matching no topic decays confidence instead of resetting.
	ctx = Reduce(ctx, Turn{Intent: "intent.outofscope"})
	assert.InDelta(t, 0.72, ctx.TopicConfidence, 1e-9)
	assert.Equal(t, "albums", ctx.CurrentTopic)

	ctx = Reduce(ctx, Turn{Intent: "unknown"})
	assert.InDelta(t, 0.576, ctx.TopicConfidence, 1e-9)
}

func TestReduceFlowBoundedAndSkipsUnknown(t *testing.T) {
	ctx := NewContext()
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		ctx = Reduce(ctx, Turn{Intent: "album.info", Confidence: 0.8, Timestamp: ts})
	}
	require.Len(t, ctx.Flow, 10)

	before := len(ctx.Flow)
	ctx = Reduce(ctx, Turn{Intent: "unknown", Confidence: 0.2})
	assert.Len(t, ctx.Flow, before)

	ctx = Reduce(ctx, Turn{Intent: ""})
	assert.Len(t, ctx.Flow, before)
}

func TestReducePatternCounters(t *testing.T) {
	ctx := NewContext()
	ctx = Reduce(ctx, Turn{Intent: "member.biography", UserMessage: "who is flea"})
	ctx = Reduce(ctx, Turn{Intent: "album.info", UserMessage: "tell me more about that album"})
	ctx = Reduce(ctx, Turn{Intent: "song.info", UserMessage: "who wrote scar tissue"})
	ctx = Reduce(ctx, Turn{Intent: "band.history", UserMessage: "how did the band start"})

	assert.Equal(t, 1, ctx.Patterns.MemberQuestions)
	assert.Equal(t, 1, ctx.Patterns.AlbumQuestions)
	assert.Equal(t, 1, ctx.Patterns.SongQuestions)
	assert.Equal(t, 1, ctx.Patterns.GeneralQuestions)
	// "tell me more" and "who wrote" are follow-up indicators.
	assert.Equal(t, 2, ctx.Patterns.FollowUpQuestions)
}

func TestReduceSongAlbumMapping(t *testing.T) {
	ctx := Reduce(NewContext(), Turn{
		Intent:   "song.info",
		Entities: []Entity{{Type: "song", Name: "Scar Tissue", Album: "Californication"}},
	})
	assert.Equal(t, "Californication", ctx.SongAlbums["Scar Tissue"])
	assert.Equal(t, "Scar Tissue", ctx.LastSong)
}
