package newsapi

import "strings"

const (
	// MaxQueryKeywords caps how many keywords go into one query.
	MaxQueryKeywords = 5
	// fullListThreshold is the largest keyword count used without capping.
	fullListThreshold = 3
)

// TopKeywords picks the keywords used for the query: all of them when there
// are at most three, otherwise the first five.
func TopKeywords(keywords []string) []string {
	n := len(keywords)
	if n > fullListThreshold && n > MaxQueryKeywords {
		n = MaxQueryKeywords
	}
	out := make([]string, n)
	copy(out, keywords[:n])
	return out
}

// BuildQuery joins keywords into a boolean AND query.
func BuildQuery(keywords []string) string {
	return strings.Join(keywords, " AND ")
}
