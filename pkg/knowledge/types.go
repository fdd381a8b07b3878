// Package knowledge holds the curated catalog the chatbot answers
// from: band members, albums and songs, each with a canonical name,
// aliases and kind-specific fields. Entries are immutable after load.
package knowledge

// Kind identifies the entity collections in the knowledge base.
type Kind string

const (
	KindMember Kind = "member"
	KindAlbum  Kind = "album"
	KindSong   Kind = "song"
	KindBand   Kind = "band"
)

// Member is one current or former band member.
type Member struct {
	Name      string   `yaml:"name"`
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
	Roles     []string `yaml:"roles"`
	JoinYear  int      `yaml:"join_year"`
	LeaveYear int      `yaml:"leave_year,omitempty"`
	Active    bool     `yaml:"active"`
	Notes     string   `yaml:"notes,omitempty"`
}

// Album is one release in the discography.
type Album struct {
	Title     string   `yaml:"title"`
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
	Year      int      `yaml:"year"`
	Label     string   `yaml:"label,omitempty"`
	Producer  string   `yaml:"producer,omitempty"`
	Type      string   `yaml:"type,omitempty"` // studio, compilation, live
	Tracks    []string `yaml:"tracks,omitempty"`
	Notes     string   `yaml:"notes,omitempty"`
}

// Song is one track with its source album and writing credits.
type Song struct {
	Title     string   `yaml:"title"`
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
	Album     string   `yaml:"album"`
	Year      int      `yaml:"year,omitempty"`
	TrackNo   int      `yaml:"track_no,omitempty"`
	Writers   []string `yaml:"writers,omitempty"`
	Notes     string   `yaml:"notes,omitempty"`
}
