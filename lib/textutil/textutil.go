package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

type FuzzyMatch struct {
	Query       string
	Best        string
	Correlation float64
}

// BestMatch returns the candidate most similar to `query` under
// Jaro-Winkler, comparing normalized forms. An exact normalized match
// short-circuits with correlation 1.
func BestMatch(query string, candidates []string) FuzzyMatch {
	normalized := NormalizeName(query)

	var mostSimilarity float64
	var mostSimilar string

	for _, candidate := range candidates {
		if NormalizeName(candidate) == normalized {
			return FuzzyMatch{
				Query:       query,
				Best:        candidate,
				Correlation: 1,
			}
		}
	}
	for _, candidate := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(candidate), false)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilar = candidate
		}
	}

	return FuzzyMatch{
		Query:       query,
		Best:        mostSimilar,
		Correlation: mostSimilarity,
	}
}
