// Package session keeps volatile, bounded per-conversation state:
// message history, mentioned entities, inferred topic and behavioral
// pattern counters. Nothing here is durable; sessions expire by
// inactivity and are evicted under capacity pressure.
package session

import (
	"strings"
	"time"
)

// historyLimit bounds per-session message history.
const historyLimit = 10

// flowLimit bounds the conversation-flow trail kept in Context.
const flowLimit = 10

// Message is one recorded exchange.
type Message struct {
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"user_message"`
	BotMessage  string    `json:"bot_message"`
	Intent      string    `json:"intent"`
	Confidence  float64   `json:"confidence"`
}

// Entity is the session-facing view of a recognized entity: just the
// fields the context reducer needs.
type Entity struct {
	Type       string // member, album, song, band
	Name       string // canonical display name
	MemberType string // current or former, members only
	AlbumType  string // studio, compilation, live; albums only
	Album      string // source album, songs only
}

// Turn is the outcome of one inference pass, fed to the reducer.
type Turn struct {
	Timestamp   time.Time
	UserMessage string
	BotMessage  string
	Intent      string
	Confidence  float64
	Entities    []Entity
}

// FlowEntry records one meaningful intent in the conversation trail.
type FlowEntry struct {
	Intent      string    `json:"intent"`
	Timestamp   time.Time `json:"timestamp"`
	Confidence  float64   `json:"confidence"`
	EntityCount int       `json:"entity_count"`
}

// Patterns counts question categories across the conversation.
type Patterns struct {
	MemberQuestions   int `json:"member_questions"`
	AlbumQuestions    int `json:"album_questions"`
	SongQuestions     int `json:"song_questions"`
	FollowUpQuestions int `json:"follow_up_questions"`
	GeneralQuestions  int `json:"general_questions"`
}

// Context is the accumulated conversational state of one session.
type Context struct {
	CurrentTopic    string  `json:"current_topic"`
	LastAlbum       string  `json:"last_album"`
	LastSong        string  `json:"last_song"`
	LastMember      string  `json:"last_member"`
	LastTopic       string  `json:"last_topic"`
	TopicConfidence float64 `json:"topic_confidence"`

	MentionedMembers map[string]struct{} `json:"-"`
	MentionedAlbums  map[string]struct{} `json:"-"`
	MentionedSongs   map[string]struct{} `json:"-"`

	MemberTypes map[string]string `json:"member_types"`
	AlbumTypes  map[string]string `json:"album_types"`
	SongAlbums  map[string]string `json:"song_albums"`

	Flow     []FlowEntry `json:"conversation_flow"`
	Patterns Patterns    `json:"patterns"`
}

// NewContext returns an empty context with allocated collections.
func NewContext() Context {
	return Context{
		MentionedMembers: make(map[string]struct{}),
		MentionedAlbums:  make(map[string]struct{}),
		MentionedSongs:   make(map[string]struct{}),
		MemberTypes:      make(map[string]string),
		AlbumTypes:       make(map[string]string),
		SongAlbums:       make(map[string]string),
	}
}

// FollowUp is the narrow view of the last_* slots used to resolve
// elliptical follow-up questions.
type FollowUp struct {
	LastAlbum  string `json:"last_album"`
	LastSong   string `json:"last_song"`
	LastMember string `json:"last_member"`
	LastTopic  string `json:"last_topic"`
}

// FollowUpIndicators are substrings of a lowercased user message that
// mark it as a follow-up question.
var FollowUpIndicators = []string{
	"what about",
	"how about",
	"tell me more",
	"what else",
	"anything else",
	"in what year",
	"when was",
	"who wrote",
}

// IsFollowUp reports whether the lowercased message carries a
// follow-up indicator.
func IsFollowUp(lowerMessage string) bool {
	for _, ind := range FollowUpIndicators {
		if strings.Contains(lowerMessage, ind) {
			return true
		}
	}
	return false
}
