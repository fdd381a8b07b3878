package chatbot

import (
	"regexp"
	"strings"

	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
)

const (
	fullMatchConfidence    = 0.9
	partialMatchConfidence = 0.7
	minVariantLen          = 3
)

var variantStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true,
	"in": true, "on": true, "by": true, "and": true,
	"with": true, "to": true,
}

// pattern is one compiled surface form an entity may appear under.
type pattern struct {
	re         *regexp.Regexp
	canonical  string
	kind       knowledge.Kind
	confidence float64
}

// Extractor finds knowledge-base entity mentions in user text. All
// patterns are compiled once from the base at construction.
type Extractor struct {
	patterns []pattern
}

// NewExtractor builds the pattern table from base. Members are scanned
// before albums, albums before songs, so a span shared across kinds
// surfaces each kind once.
func NewExtractor(base *knowledge.Base) *Extractor {
	e := &Extractor{}
	for i := range base.Members {
		m := &base.Members[i]
		e.add(knowledge.KindMember, m.Canonical, m.Name, m.Aliases)
	}
	for i := range base.Albums {
		a := &base.Albums[i]
		e.add(knowledge.KindAlbum, a.Canonical, a.Title, a.Aliases)
	}
	for i := range base.Songs {
		s := &base.Songs[i]
		e.add(knowledge.KindSong, s.Canonical, s.Title, s.Aliases)
	}
	return e
}

func (e *Extractor) add(kind knowledge.Kind, canonical, display string, aliases []string) {
	norm := knowledge.Normalize(canonical)
	if norm == "" {
		return
	}

	// Variant order decides which confidence wins when several forms
	// of the same entity appear in one message.
	seen := map[string]bool{}
	addVariant := func(v string, conf float64) {
		v = knowledge.Normalize(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `\b`)
		e.patterns = append(e.patterns, pattern{
			re:         re,
			canonical:  canonical,
			kind:       kind,
			confidence: conf,
		})
	}

	addVariant(norm, fullMatchConfidence)
	addVariant(display, fullMatchConfidence)
	addVariant(strings.ReplaceAll(norm, " ", ""), partialMatchConfidence)
	for _, alias := range aliases {
		addVariant(alias, partialMatchConfidence)
	}

	tokens := strings.Fields(norm)
	if len(tokens) > 1 {
		first, last := tokens[0], tokens[len(tokens)-1]
		if len(first) >= minVariantLen && !variantStopwords[first] {
			addVariant(first, partialMatchConfidence)
		}
		if len(last) >= minVariantLen && !variantStopwords[last] {
			addVariant(last, partialMatchConfidence)
		}
	}
}

// Extract returns the raw entity mentions found in text. Each
// canonical entity appears at most once per kind, keeping the
// highest-confidence surface form that matched.
func (e *Extractor) Extract(text string) []RawEntity {
	norm := knowledge.Normalize(text)
	if norm == "" {
		return nil
	}

	type key struct {
		kind      knowledge.Kind
		canonical string
	}
	found := map[key]int{}
	var out []RawEntity
	for _, p := range e.patterns {
		loc := p.re.FindStringIndex(norm)
		if loc == nil {
			continue
		}
		k := key{p.kind, p.canonical}
		if idx, ok := found[k]; ok {
			if p.confidence > out[idx].Confidence {
				out[idx].Confidence = p.confidence
				out[idx].Span = norm[loc[0]:loc[1]]
			}
			continue
		}
		found[k] = len(out)
		out = append(out, RawEntity{
			Type:       p.kind,
			Span:       norm[loc[0]:loc[1]],
			Canonical:  p.canonical,
			Confidence: p.confidence,
		})
	}
	return out
}
