package chatbot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

func testResponder(t *testing.T) (*Responder, *session.Store) {
	t.Helper()
	sessions := session.NewStore(10, time.Hour, zap.NewNop())
	return NewResponder(testBase(), nil, sessions, testCorpora(), zap.NewNop()), sessions
}

func TestBuildAmbiguityBeatsEveryBranch(t *testing.T) {
	r, _ := testResponder(t)
	base := testBase()
	entities := []Entity{
		{Type: "album", Span: "californication", Value: "Californication", Album: &base.Albums[0]},
		{Type: "song", Span: "californication", Value: "Californication", Song: &base.Songs[0]},
	}

	for _, intent := range []string{"song.info", "album.info", IntentUnknown} {
		got := r.Build(context.Background(), "who wrote californication", intent, entities, "")
		assert.Equal(t, "Do you mean the song or the album 'Californication'?", got)
	}
}

func TestBuildUnknownRedirect(t *testing.T) {
	r, _ := testResponder(t)
	got := r.Build(context.Background(), "what is the weather", IntentUnknown, nil, "")
	assert.Equal(t, UnknownRedirect, got)
}

func TestBuildFollowUpYearFromLastAlbum(t *testing.T) {
	r, sessions := testResponder(t)
	id := sessions.CreateSession()
	sessions.AddMessage(id, "tell me about by the way", session.Turn{
		Timestamp: time.Now(),
		Intent:    "album.info",
		Entities:  []session.Entity{{Type: "album", Name: "by the way"}},
	})

	got := r.Build(context.Background(), "in what year?", IntentUnknown, nil, id)
	assert.Equal(t, "By the Way was released in 2002.", got)
}

func TestBuildFollowUpWritersFromLastSong(t *testing.T) {
	r, sessions := testResponder(t)
	id := sessions.CreateSession()
	sessions.AddMessage(id, "play scar tissue", session.Turn{
		Timestamp: time.Now(),
		Intent:    "song.info",
		Entities:  []session.Entity{{Type: "song", Name: "scar tissue", Album: "Californication"}},
	})

	got := r.Build(context.Background(), "who wrote it?", "song.info", nil, id)
	assert.Equal(t, "Scar Tissue was written by Anthony Kiedis and John Frusciante.", got)
}

func TestBuildFollowUpWithoutContextFallsThrough(t *testing.T) {
	r, sessions := testResponder(t)
	id := sessions.CreateSession()

	// No prior album in the session, so the follow-up cannot resolve
	// and the unknown redirect applies.
	got := r.Build(context.Background(), "in what year?", IntentUnknown, nil, id)
	assert.Equal(t, UnknownRedirect, got)
}

func TestBuildFactualAlbumAnswer(t *testing.T) {
	r, _ := testResponder(t)
	base := testBase()
	entities := []Entity{{Type: "album", Span: "blood sugar sex magik", Value: "Blood Sugar Sex Magik", Album: &base.Albums[2]}}

	got := r.Build(context.Background(), "tell me about blood sugar sex magik", "album.info", entities, "")
	assert.Contains(t, got, "Blood Sugar Sex Magik")
	assert.Contains(t, got, "1991")
}

func TestBuildFactualMemberAnswer(t *testing.T) {
	r, _ := testResponder(t)
	base := testBase()
	entities := []Entity{{Type: "member", Span: "hillel slovak", Value: "Hillel Slovak", Member: &base.Members[2]}}

	got := r.Build(context.Background(), "who was hillel slovak", "member.biography", entities, "")
	assert.Contains(t, got, "joined the Red Hot Chili Peppers in 1983")
	assert.Contains(t, got, "left the band in 1988")
}

func TestBuildCorpusTemplate(t *testing.T) {
	r, _ := testResponder(t)
	got := r.Build(context.Background(), "hello", "greetings.hello", nil, "")
	assert.Equal(t, "Hey! Ask me anything about the Red Hot Chili Peppers.", got)
}

func TestBuildGenericFallback(t *testing.T) {
	r, _ := testResponder(t)
	got := r.Build(context.Background(), "who is in the band", "band.members", nil, "")
	assert.Equal(t, "I understood your intent is 'band.members', but I don't have a specific answer for that yet.", got)
}

func TestBuildTopicTransition(t *testing.T) {
	r, sessions := testResponder(t)
	id := sessions.CreateSession()
	sessions.AddMessage(id, "tell me about californication", session.Turn{
		Timestamp: time.Now(),
		Intent:    "album.info",
		Entities:  []session.Entity{{Type: "album", Name: "californication"}},
	})

	got := r.Build(context.Background(), "what about the band history", "band.history", nil, id)
	assert.Equal(t, "A bit of band history, then. The band formed in Los Angeles in 1983.", got)
}
