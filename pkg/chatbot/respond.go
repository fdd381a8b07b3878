package chatbot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge/facts"
	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

// UnknownRedirect is the fixed reply for unknown or low-confidence
// intents.
const UnknownRedirect = "I'm not sure what you mean. Let's talk about RHCP! What would you like to know about the Red Hot Chili Peppers?"

// topicTransitions phrase the pivot when a conversation shifts from
// one topic to another.
var topicTransitions = map[string]string{
	"band_members": "Moving on to the band members. ",
	"albums":       "Switching over to the discography. ",
	"songs":        "On to the songs. ",
	"band_history": "A bit of band history, then. ",
}

// Responder turns a gated intent plus canonical entities into the
// final message, consulting session memory and the facts store.
type Responder struct {
	base     *knowledge.Base
	facts    *facts.Store // optional
	sessions *session.Store
	corpora  Corpora
	log      *zap.Logger
	rng      *rand.Rand
}

func NewResponder(base *knowledge.Base, fs *facts.Store, sessions *session.Store, corpora Corpora, log *zap.Logger) *Responder {
	return &Responder{
		base:     base,
		facts:    fs,
		sessions: sessions,
		corpora:  corpora,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build produces the response text. Ambiguity wins over every other
// branch, then follow-up resolution, then the unknown redirect, then
// entity-backed factual answers, then corpus templates.
func (r *Responder) Build(ctx context.Context, message, intent string, entities []Entity, sessionID string) string {
	if name := r.ambiguousName(entities); name != "" {
		return fmt.Sprintf("Do you mean the song or the album '%s'?", name)
	}

	// Elliptical follow-ups often classify poorly on their own, so
	// they are resolved from session memory before the unknown
	// redirect can swallow them.
	lower := strings.ToLower(message)
	if sessionID != "" && session.IsFollowUp(lower) {
		if resp, ok := r.resolveFollowUp(ctx, lower, sessionID); ok {
			return resp
		}
	}

	if intent == IntentUnknown {
		return UnknownRedirect
	}

	if resp, ok := r.factualAnswer(ctx, intent, entities); ok {
		return r.withTransition(intent, sessionID, resp)
	}

	if answers := r.corpora.AnswersFor(intent); len(answers) > 0 {
		resp := answers[r.rng.Intn(len(answers))]
		return r.withTransition(intent, sessionID, resp)
	}

	return fmt.Sprintf("I understood your intent is '%s', but I don't have a specific answer for that yet.", intent)
}

// ambiguousName returns the display title of the first entity whose
// canonical name exists as both an album and a song.
func (r *Responder) ambiguousName(entities []Entity) string {
	for _, e := range entities {
		canonical := e.Value
		switch {
		case e.Album != nil:
			canonical = e.Album.Canonical
		case e.Song != nil:
			canonical = e.Song.Canonical
		case e.Member != nil:
			continue
		}
		if !r.base.IsAmbiguous(canonical) {
			continue
		}
		if a := r.base.AlbumByCanonical(canonical); a != nil {
			return a.Title
		}
		return canonical
	}
	return ""
}

// resolveFollowUp answers an elliptical question from the session's
// last_* slots. ok is false when the needed slot is empty, letting the
// caller fall back to the generic branches.
func (r *Responder) resolveFollowUp(ctx context.Context, lower, sessionID string) (string, bool) {
	fu := r.sessions.GetFollowUpContext(sessionID)
	switch {
	case strings.Contains(lower, "in what year") || strings.Contains(lower, "when was"):
		if fu.LastAlbum == "" {
			return "", false
		}
		album := r.base.AlbumByCanonical(fu.LastAlbum)
		if album == nil || album.Year == 0 {
			return "", false
		}
		return fmt.Sprintf("%s was released in %d.", album.Title, album.Year), true

	case strings.Contains(lower, "who wrote"):
		if fu.LastSong == "" {
			return "", false
		}
		if writers := r.songWriters(ctx, fu.LastSong); len(writers) > 0 {
			song := r.base.SongByCanonical(fu.LastSong)
			title := fu.LastSong
			if song != nil {
				title = song.Title
			}
			return fmt.Sprintf("%s was written by %s.", title, joinNames(writers)), true
		}
		return "", false

	case strings.Contains(lower, "tell me more") || strings.Contains(lower, "what about"):
		if fu.LastMember == "" {
			return "", false
		}
		member := r.base.MemberByCanonical(fu.LastMember)
		if member == nil {
			return "", false
		}
		return memberBiography(member), true
	}
	return "", false
}

// songWriters prefers the facts store and falls back to the base
// record.
func (r *Responder) songWriters(ctx context.Context, canonical string) []string {
	if r.facts != nil {
		fs, err := r.facts.GetFactsByCanonical(ctx, canonical, "song")
		if err != nil {
			r.log.Warn("facts lookup failed", zap.String("canonical", canonical), zap.Error(err))
		}
		var writers []string
		for _, f := range fs {
			if f.Field == "writer" {
				writers = append(writers, f.Value)
			}
		}
		if len(writers) > 0 {
			return writers
		}
	}
	if song := r.base.SongByCanonical(canonical); song != nil {
		return song.Writers
	}
	return nil
}

// factualAnswer composes a direct answer for entity-backed factual
// intents. ok is false when the intent has no resolved entity of the
// matching kind.
func (r *Responder) factualAnswer(ctx context.Context, intent string, entities []Entity) (string, bool) {
	switch intent {
	case "member.biography":
		for _, e := range entities {
			if e.Member != nil {
				return memberBiography(e.Member), true
			}
		}
	case "album.info":
		for _, e := range entities {
			if e.Album != nil {
				return albumInfo(e.Album), true
			}
		}
	case "song.info":
		for _, e := range entities {
			if e.Song != nil {
				return r.songInfo(ctx, e.Song), true
			}
		}
	}
	return "", false
}

func memberBiography(m *knowledge.Member) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s joined the Red Hot Chili Peppers in %d", m.Name, m.JoinYear)
	if len(m.Roles) > 0 {
		fmt.Fprintf(&b, " on %s", joinNames(m.Roles))
	}
	b.WriteString(".")
	if !m.Active && m.LeaveYear > 0 {
		fmt.Fprintf(&b, " They left the band in %d.", m.LeaveYear)
	}
	if m.Notes != "" {
		b.WriteString(" " + m.Notes)
	}
	return b.String()
}

func albumInfo(a *knowledge.Album) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s was released in %d", a.Title, a.Year)
	if a.Label != "" {
		fmt.Fprintf(&b, " on %s", a.Label)
	}
	if a.Producer != "" {
		fmt.Fprintf(&b, ", produced by %s", a.Producer)
	}
	b.WriteString(".")
	if len(a.Tracks) > 0 {
		fmt.Fprintf(&b, " It has %d tracks.", len(a.Tracks))
	}
	if a.Notes != "" {
		b.WriteString(" " + a.Notes)
	}
	return b.String()
}

func (r *Responder) songInfo(ctx context.Context, s *knowledge.Song) string {
	var b strings.Builder
	b.WriteString(s.Title)
	if s.Album != "" {
		album := r.base.AlbumByCanonical(s.Album)
		title := s.Album
		if album != nil {
			title = album.Title
		}
		fmt.Fprintf(&b, " appears on %s", title)
		if s.Year > 0 {
			fmt.Fprintf(&b, " (%d)", s.Year)
		}
	} else if s.Year > 0 {
		fmt.Fprintf(&b, " was released in %d", s.Year)
	}
	b.WriteString(".")
	if writers := r.songWriters(ctx, s.Canonical); len(writers) > 0 {
		fmt.Fprintf(&b, " It was written by %s.", joinNames(writers))
	}
	if s.Notes != "" {
		b.WriteString(" " + s.Notes)
	}
	return b.String()
}

// withTransition prepends a topic pivot phrase when the session shows
// the conversation just shifted topics.
func (r *Responder) withTransition(intent, sessionID, resp string) string {
	if sessionID == "" {
		return resp
	}
	ctx, ok := r.sessions.GetContext(sessionID)
	if !ok || ctx.LastTopic == "" {
		return resp
	}
	topic := intentTopic(intent)
	if topic == "" || topic == ctx.LastTopic {
		return resp
	}
	// Only pivot between content topics; a greeting before a factual
	// question is not a topic shift.
	if _, ok := topicTransitions[ctx.LastTopic]; !ok {
		return resp
	}
	if phrase, ok := topicTransitions[topic]; ok {
		return phrase + resp
	}
	return resp
}

func intentTopic(intent string) string {
	switch intent {
	case "member.biography", "band.members":
		return "band_members"
	case "album.info":
		return "albums"
	case "song.info":
		return "songs"
	case "band.history":
		return "band_history"
	}
	return ""
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}
