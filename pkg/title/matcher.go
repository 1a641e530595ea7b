package title

import (
	"github.com/hbollon/go-edlib"
)

// MatchThreshold is the minimum Jaro-Winkler similarity for a match.
const MatchThreshold = 0.70

// Match is the outcome of a fuzzy lookup against a candidate list.
type Match struct {
	Index int     // position in the candidate slice, -1 when no match
	Title string  // the matched candidate, verbatim
	Score float64 // Jaro-Winkler similarity on normalized forms (0.0-1.0)
}

// NoMatch reports whether the lookup found nothing above the threshold.
func (m Match) NoMatch() bool { return m.Index < 0 }

// BestMatch finds the candidate most similar to query. Jaro-Winkler
// favors shared prefixes, which suits media titles. Candidates scoring
// below MatchThreshold are rejected.
func BestMatch(query string, candidates []string) Match {
	best := Match{Index: -1}
	if len(candidates) == 0 {
		return best
	}

	normalized := Normalize(query)
	for i, candidate := range candidates {
		score := float64(edlib.JaroWinklerSimilarity(normalized, Normalize(candidate)))
		if score > best.Score {
			best.Index = i
			best.Title = candidate
			best.Score = score
		}
	}

	if best.Score < MatchThreshold {
		return Match{Index: -1, Score: best.Score}
	}
	return best
}
