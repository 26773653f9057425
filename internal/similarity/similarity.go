package similarity

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Jaccard computes token-set similarity between two titles: lower-cased,
// whitespace-tokenized word sets, |A ∩ B| / |A ∪ B|. Symmetric by
// construction. Two empty strings score 0.
func Jaccard(a, b string) float64 {
	setA := tokens(a)
	setB := tokens(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Key derives the normalized comparison key for a title: lowercase,
// alphanumeric characters only, capped at 50 characters.
func Key(title string) string {
	k := nonAlnum.ReplaceAllString(strings.ToLower(title), "")
	if len(k) > 50 {
		k = k[:50]
	}
	return k
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(strings.TrimSpace(s))) {
		set[w] = struct{}{}
	}
	return set
}
