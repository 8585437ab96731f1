package patient

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// MatchThreshold is the minimum Score a stored name needs to be considered
// the same person.
const MatchThreshold = 80

// Score rates how alike two names are on a 0..100 scale. Case, punctuation
// and word order are ignored.
func Score(a, b string) int {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	plain := ratio(na, nb)
	sorted := ratio(sortTokens(na), sortTokens(nb))
	if sorted > plain {
		return sorted
	}
	return plain
}

// BestMatch returns the index of the highest scoring candidate at or above
// cutoff. Ties go to the earliest candidate.
func BestMatch(query string, candidates []string, cutoff int) (int, int, bool) {
	best, bestScore := -1, -1
	for i, c := range candidates {
		s := Score(query, c)
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore < cutoff {
		return -1, bestScore, false
	}
	return best, bestScore, true
}

func ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(float64(longest-dist)*100/float64(longest) + 0.5)
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func sortTokens(s string) string {
	parts := strings.Fields(s)
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
