package summarize

// FrequencyTable maps a token to its occurrence count across a whole document.
type FrequencyTable map[string]int

// BuildFrequencyTable counts the alphabetic, non-stopword tokens. The result
// is empty when every token is filtered out.
func BuildFrequencyTable(tokens []string, stopwords StopwordSet) FrequencyTable {
	table := make(FrequencyTable)
	for _, tok := range tokens {
		if !isAlpha(tok) || stopwords.Contains(tok) {
			continue
		}
		table[tok]++
	}
	return table
}
