package summarize

// ScoredSentence pairs a sentence index with its normalized score in [0,1].
type ScoredSentence struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// ScoreSentences returns each sentence's raw score, aligned by index: the sum
// of the document-level counts of its alphabetic tokens. Stopwords are not
// filtered here; they are simply absent from the table and add nothing.
func ScoreSentences(sentences []Sentence, table FrequencyTable) []float64 {
	raw := make([]float64, len(sentences))
	for i, s := range sentences {
		var sum int
		for _, tok := range TokenizeWords(s.Text) {
			if isAlpha(tok) {
				sum += table[tok]
			}
		}
		raw[i] = float64(sum)
	}
	return raw
}

// NormalizeScores divides every raw score by the maximum. When the maximum
// is zero every score is zero.
func NormalizeScores(raw []float64) []ScoredSentence {
	var maxScore float64
	for _, v := range raw {
		if v > maxScore {
			maxScore = v
		}
	}

	scored := make([]ScoredSentence, len(raw))
	for i, v := range raw {
		scored[i] = ScoredSentence{Index: i}
		if maxScore > 0 {
			scored[i].Score = v / maxScore
		}
	}
	return scored
}
