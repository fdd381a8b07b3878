package facts

import (
	"strconv"
	"strings"

	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
)

// Derive flattens the knowledge base into fact rows: one row per
// field/value assertion, keyed by the entry's canonical name.
func Derive(base *knowledge.Base) []Fact {
	var out []Fact

	for _, m := range base.Members {
		add := func(field, value string, year int) {
			out = append(out, Fact{
				Type: string(knowledge.KindMember), Canonical: m.Canonical,
				Field: field, Value: value, Year: year, Source: "members.yml",
			})
		}
		add("name", m.Name, 0)
		for _, role := range m.Roles {
			add("role", role, 0)
		}
		if m.JoinYear > 0 {
			add("join_year", strconv.Itoa(m.JoinYear), m.JoinYear)
		}
		if m.LeaveYear > 0 {
			add("leave_year", strconv.Itoa(m.LeaveYear), m.LeaveYear)
		}
		add("active", strconv.FormatBool(m.Active), 0)
		if m.Notes != "" {
			add("notes", m.Notes, 0)
		}
	}

	for _, a := range base.Albums {
		add := func(field, value string, year int) {
			out = append(out, Fact{
				Type: string(knowledge.KindAlbum), Canonical: a.Canonical,
				Field: field, Value: value, Year: year, Source: "albums.yml",
			})
		}
		add("title", a.Title, 0)
		if a.Year > 0 {
			add("year", strconv.Itoa(a.Year), a.Year)
		}
		if a.Label != "" {
			add("label", a.Label, 0)
		}
		if a.Producer != "" {
			add("producer", a.Producer, 0)
		}
		if len(a.Tracks) > 0 {
			add("tracks", strconv.Itoa(len(a.Tracks)), 0)
		}
		if a.Notes != "" {
			add("notes", a.Notes, 0)
		}
	}

	for _, s := range base.Songs {
		add := func(field, value string, year int) {
			out = append(out, Fact{
				Type: string(knowledge.KindSong), Canonical: s.Canonical,
				Field: field, Value: value, Year: year, Source: "songs.yml",
			})
		}
		add("title", s.Title, 0)
		if s.Year > 0 {
			add("year", strconv.Itoa(s.Year), s.Year)
		}
		if s.Album != "" {
			add("album", s.Album, 0)
		}
		if s.TrackNo > 0 {
			add("track_no", strconv.Itoa(s.TrackNo), 0)
		}
		for _, w := range s.Writers {
			add("writer", w, 0)
		}
		if s.Notes != "" {
			add("notes", s.Notes, 0)
		}
	}

	return out
}

func splitFields(query string) []string {
	fields := strings.Fields(query)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
