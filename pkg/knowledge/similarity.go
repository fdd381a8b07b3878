package knowledge

import "strings"

// phoneticPairs are applied to both strings as sequential literal
// replacements. Order matters and is preserved from the tuned
// original: s→z runs before the tion/sion rules, so "sion" has
// already become "zion" by the time that rule is reached.
var phoneticPairs = [][2]string{
	{"f", "ph"},
	{"c", "k"},
	{"s", "z"},
	{"x", "ks"},
	{"qu", "kw"},
	{"tion", "shun"},
	{"sion", "zhun"},
}

// Similarity scores two spans in [0,1] with the domain-specific metric
// used for fuzzy resolution. The constants and the branch order are
// empirically tuned and must not be reordered: an adjacent
// transposition scores 0.6 even though it also counts as a two-char
// difference.
func Similarity(span, target string) float64 {
	if span == "" || target == "" {
		return 0.0
	}
	a := Normalize(span)
	b := Normalize(target)

	if a == b {
		return 1.0
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 0.8
	}

	// Positional rules work on runes: Normalize folds diacritics but
	// keeps non-Latin letters, and byte offsets would miscount them.
	ra, rb := []rune(a), []rune(b)

	// Adjacent-character transposition ("teh" vs "the").
	if len(ra) == len(rb) && len(ra) >= 3 {
		for i := 0; i < len(ra)-1; i++ {
			if ra[i] == rb[i+1] && ra[i+1] == rb[i] &&
				string(ra[:i]) == string(rb[:i]) && string(ra[i+2:]) == string(rb[i+2:]) {
				return 0.6
			}
		}
	}

	ap, bp := a, b
	for _, pair := range phoneticPairs {
		ap = strings.ReplaceAll(ap, pair[0], pair[1])
		bp = strings.ReplaceAll(bp, pair[0], pair[1])
	}
	if ap == bp {
		return 0.6
	}

	if len(ra) == len(rb) {
		diff := 0
		for i := range ra {
			if ra[i] != rb[i] {
				diff++
			}
		}
		switch diff {
		case 1:
			return 0.7
		case 2:
			return 0.5
		}
	}

	// Single insertion/deletion ("fruciante" vs "frusciante").
	if abs(len(ra)-len(rb)) == 1 {
		shorter, longer := ra, rb
		if len(shorter) > len(longer) {
			shorter, longer = longer, shorter
		}
		for i := range longer {
			if string(longer[:i])+string(longer[i+1:]) == string(shorter) {
				return 0.7
			}
		}
	}

	return 0.0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
