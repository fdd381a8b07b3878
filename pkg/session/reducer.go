package session

import "strings"

// topicDecay shrinks topic confidence on turns that match no topic.
const topicDecay = 0.8

// Reduce applies one turn to a context and returns the next context.
// It is a pure function: the input is not mutated, all collections are
// copied, and the same (Context, Turn) pair always yields the same
// result.
func Reduce(prev Context, turn Turn) Context {
	next := cloneContext(prev)

	for _, e := range turn.Entities {
		switch e.Type {
		case "member":
			next.MentionedMembers[e.Name] = struct{}{}
			next.LastMember = e.Name
			if e.MemberType != "" {
				next.MemberTypes[e.Name] = e.MemberType
			}
		case "album":
			next.MentionedAlbums[e.Name] = struct{}{}
			next.LastAlbum = e.Name
			if e.AlbumType != "" {
				next.AlbumTypes[e.Name] = e.AlbumType
			}
		case "song":
			next.MentionedSongs[e.Name] = struct{}{}
			next.LastSong = e.Name
			if e.Album != "" {
				next.SongAlbums[e.Name] = e.Album
			}
		}
	}

	if turn.Intent != "" && turn.Intent != "unknown" {
		next.Flow = append(next.Flow, FlowEntry{
			Intent:      turn.Intent,
			Timestamp:   turn.Timestamp,
			Confidence:  turn.Confidence,
			EntityCount: len(turn.Entities),
		})
		if len(next.Flow) > flowLimit {
			next.Flow = next.Flow[len(next.Flow)-flowLimit:]
		}
	}

	topic, confidence := inferTopic(turn)
	if topic != "" {
		next.CurrentTopic = topic
		next.LastTopic = topic
		next.TopicConfidence = confidence
	} else {
		next.TopicConfidence = prev.TopicConfidence * topicDecay
	}

	switch turn.Intent {
	case "member.biography", "band.members":
		next.Patterns.MemberQuestions++
	case "album.info":
		next.Patterns.AlbumQuestions++
	case "song.info":
		next.Patterns.SongQuestions++
	case "band.history":
		next.Patterns.GeneralQuestions++
	}
	if IsFollowUp(strings.ToLower(turn.UserMessage)) {
		next.Patterns.FollowUpQuestions++
	}

	return next
}

// inferTopic maps the turn's intent and entity mix to a topic with its
// fixed confidence, or ("", 0) when nothing matches.
func inferTopic(turn Turn) (string, float64) {
	hasType := func(t string) bool {
		for _, e := range turn.Entities {
			if e.Type == t {
				return true
			}
		}
		return false
	}

	switch {
	case turn.Intent == "member.biography" || turn.Intent == "band.members" || hasType("member"):
		return "band_members", 0.9
	case turn.Intent == "album.info" || hasType("album"):
		return "albums", 0.9
	case turn.Intent == "song.info" || hasType("song"):
		return "songs", 0.9
	case turn.Intent == "band.history":
		return "band_history", 0.8
	case turn.Intent == "greetings.hello" || turn.Intent == "greetings.bye":
		return "greetings", 0.7
	}
	return "", 0
}

func cloneContext(c Context) Context {
	out := c
	out.MentionedMembers = cloneSet(c.MentionedMembers)
	out.MentionedAlbums = cloneSet(c.MentionedAlbums)
	out.MentionedSongs = cloneSet(c.MentionedSongs)
	out.MemberTypes = cloneMap(c.MemberTypes)
	out.AlbumTypes = cloneMap(c.AlbumTypes)
	out.SongAlbums = cloneMap(c.SongAlbums)
	out.Flow = append([]FlowEntry(nil), c.Flow...)
	return out
}

func cloneSet(m map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
