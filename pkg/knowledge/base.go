package knowledge

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Base is the loaded knowledge catalog. Read-only during inference.
type Base struct {
	Members []Member
	Albums  []Album
	Songs   []Song
}

type membersFile struct {
	Members []Member `yaml:"members"`
}

type albumsFile struct {
	Albums []Album `yaml:"albums"`
}

type songsFile struct {
	Songs []Song `yaml:"songs"`
}

// LoadBase reads members.yml, albums.yml and songs.yml from dir.
// A missing or malformed file leaves that kind empty rather than
// failing the whole load; gaps are reported through the logger so
// startup validation can surface them.
func LoadBase(dir string, log *zap.Logger) *Base {
	base := &Base{}

	var mf membersFile
	if err := loadYAML(filepath.Join(dir, "members.yml"), &mf); err != nil {
		log.Warn("knowledge base: members unavailable", zap.Error(err))
	} else {
		base.Members = mf.Members
	}

	var af albumsFile
	if err := loadYAML(filepath.Join(dir, "albums.yml"), &af); err != nil {
		log.Warn("knowledge base: albums unavailable", zap.Error(err))
	} else {
		base.Albums = af.Albums
	}

	var sf songsFile
	if err := loadYAML(filepath.Join(dir, "songs.yml"), &sf); err != nil {
		log.Warn("knowledge base: songs unavailable", zap.Error(err))
	} else {
		base.Songs = sf.Songs
	}

	log.Info("knowledge base loaded",
		zap.Int("members", len(base.Members)),
		zap.Int("albums", len(base.Albums)),
		zap.Int("songs", len(base.Songs)))
	return base
}

func loadYAML(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate reports catalog gaps a deployment should know about.
func (b *Base) Validate() []string {
	var problems []string
	if len(b.Members) == 0 {
		problems = append(problems, "no members loaded")
	}
	if len(b.Albums) == 0 {
		problems = append(problems, "no albums loaded")
	}
	if len(b.Songs) == 0 {
		problems = append(problems, "no songs loaded")
	}
	for _, m := range b.Members {
		if m.Canonical == "" {
			problems = append(problems, fmt.Sprintf("member %q has no canonical name", m.Name))
		}
	}
	for _, a := range b.Albums {
		if a.Canonical == "" {
			problems = append(problems, fmt.Sprintf("album %q has no canonical name", a.Title))
		}
	}
	for _, s := range b.Songs {
		if s.Canonical == "" {
			problems = append(problems, fmt.Sprintf("song %q has no canonical name", s.Title))
		}
	}
	return problems
}

// AlbumByCanonical returns the album whose canonical name normalizes
// to the same form as name.
func (b *Base) AlbumByCanonical(name string) *Album {
	want := Normalize(name)
	for i := range b.Albums {
		if Normalize(b.Albums[i].Canonical) == want {
			return &b.Albums[i]
		}
	}
	return nil
}

// SongByCanonical returns the song whose canonical name normalizes to
// the same form as name.
func (b *Base) SongByCanonical(name string) *Song {
	want := Normalize(name)
	for i := range b.Songs {
		if Normalize(b.Songs[i].Canonical) == want {
			return &b.Songs[i]
		}
	}
	return nil
}

// MemberByCanonical returns the member whose canonical name normalizes
// to the same form as name.
func (b *Base) MemberByCanonical(name string) *Member {
	want := Normalize(name)
	for i := range b.Members {
		if Normalize(b.Members[i].Canonical) == want {
			return &b.Members[i]
		}
	}
	return nil
}

// IsAmbiguous reports whether name exists both as an album and as a
// song, which forces a clarifying question instead of an answer.
func (b *Base) IsAmbiguous(name string) bool {
	return b.AlbumByCanonical(name) != nil && b.SongByCanonical(name) != nil
}
