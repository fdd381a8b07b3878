package knowledge

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// fuzzyThreshold is the minimum similarity accepted from the fuzzy
// stage. Below it a span stays unresolved.
const fuzzyThreshold = 0.6

const resolverCacheSize = 512

// Resolver canonicalizes extracted spans against the knowledge base:
// exact match, then alias match, then fuzzy similarity. Conversations
// repeat the same handful of spans, so results are memoized in a
// small LRU keyed by (kind, normalized span).
type Resolver struct {
	base  *Base
	log   *zap.Logger
	cache *lru.Cache[string, int]
}

// NewResolver builds a resolver over the loaded base.
func NewResolver(base *Base, log *zap.Logger) (*Resolver, error) {
	cache, err := lru.New[string, int](resolverCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create resolver cache: %w", err)
	}
	return &Resolver{base: base, log: log, cache: cache}, nil
}

// ResolveMember resolves a span to a member, or nil when nothing in
// the catalog is close enough.
func (r *Resolver) ResolveMember(span string) *Member {
	idx, ok := r.resolveIndex(KindMember, span, len(r.base.Members), func(i int) (string, []string) {
		return r.base.Members[i].Canonical, r.base.Members[i].Aliases
	})
	if !ok {
		return nil
	}
	return &r.base.Members[idx]
}

// ResolveAlbum resolves a span to an album, or nil.
func (r *Resolver) ResolveAlbum(span string) *Album {
	idx, ok := r.resolveIndex(KindAlbum, span, len(r.base.Albums), func(i int) (string, []string) {
		return r.base.Albums[i].Canonical, r.base.Albums[i].Aliases
	})
	if !ok {
		return nil
	}
	return &r.base.Albums[idx]
}

// ResolveSong resolves a span to a song, or nil.
func (r *Resolver) ResolveSong(span string) *Song {
	idx, ok := r.resolveIndex(KindSong, span, len(r.base.Songs), func(i int) (string, []string) {
		return r.base.Songs[i].Canonical, r.base.Songs[i].Aliases
	})
	if !ok {
		return nil
	}
	return &r.base.Songs[idx]
}

// resolveIndex runs the exact/alias/fuzzy pipeline over candidate
// indices. names(i) yields the canonical name and aliases of candidate
// i. Ties at the best fuzzy score keep the first candidate seen.
func (r *Resolver) resolveIndex(kind Kind, span string, n int, names func(int) (string, []string)) (int, bool) {
	normSpan := Normalize(span)
	if normSpan == "" {
		return 0, false
	}

	key := string(kind) + "\x00" + normSpan
	if idx, ok := r.cache.Get(key); ok {
		return idx, idx >= 0
	}

	idx := -1
	for i := 0; i < n; i++ {
		canonical, _ := names(i)
		if Normalize(canonical) == normSpan {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i := 0; i < n; i++ {
			_, aliases := names(i)
			for _, alias := range aliases {
				if Normalize(alias) == normSpan {
					idx = i
					break
				}
			}
			if idx >= 0 {
				break
			}
		}
	}
	if idx < 0 {
		best := 0.0
		for i := 0; i < n; i++ {
			canonical, aliases := names(i)
			if score := Similarity(normSpan, canonical); score > best {
				best, idx = score, i
			}
			for _, alias := range aliases {
				if score := Similarity(normSpan, alias); score > best {
					best, idx = score, i
				}
			}
		}
		if best < fuzzyThreshold {
			idx = -1
		} else {
			r.log.Debug("fuzzy resolution",
				zap.String("kind", string(kind)),
				zap.String("span", span),
				zap.Float64("score", best))
		}
	}

	r.cache.Add(key, idx)
	return idx, idx >= 0
}

// Resolve resolves a span restricted to kind, or across all kinds
// (members first, then albums, then songs) when kind is empty.
// The second return is the resolved kind.
func (r *Resolver) Resolve(span string, kind Kind) (any, Kind) {
	switch kind {
	case KindMember:
		if m := r.ResolveMember(span); m != nil {
			return m, KindMember
		}
	case KindAlbum:
		if a := r.ResolveAlbum(span); a != nil {
			return a, KindAlbum
		}
	case KindSong:
		if s := r.ResolveSong(span); s != nil {
			return s, KindSong
		}
	case "":
		if m := r.ResolveMember(span); m != nil {
			return m, KindMember
		}
		if a := r.ResolveAlbum(span); a != nil {
			return a, KindAlbum
		}
		if s := r.ResolveSong(span); s != nil {
			return s, KindSong
		}
	}
	return nil, ""
}
