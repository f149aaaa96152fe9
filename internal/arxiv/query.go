package arxiv

import "strings"

// EmptyQuery matches nothing. arXiv rejects an empty search_query.
const EmptyQuery = "all:__none__"

var advancedTokens = []string{"ti:", "abs:", "au:", "cat:", " and ", " or ", "(", ")", `"`}

// IsAdvanced reports whether q already uses arXiv query syntax.
func IsAdvanced(q string) bool {
	ql := strings.ToLower(q)
	for _, tok := range advancedTokens {
		if strings.Contains(ql, tok) {
			return true
		}
	}
	return false
}

// BuildSearchQuery turns user input into an arXiv search_query. Advanced
// queries pass through untouched; anything else becomes a title phrase.
func BuildSearchQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return EmptyQuery
	}
	if IsAdvanced(q) {
		return q
	}
	return `ti:"` + strings.ReplaceAll(q, `"`, `\"`) + `"`
}

// normalize lowercases s and collapses whitespace for title matching.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
