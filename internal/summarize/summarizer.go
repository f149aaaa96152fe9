// Package summarize implements frequency-based extractive summarization:
// it picks the most representative sentences of a text and returns them in
// their original order.
package summarize

import "strings"

// Summarizer is safe for concurrent use as long as its Resources are not
// modified after construction.
type Summarizer struct {
	res *Resources
}

func New(res *Resources) *Summarizer {
	if res == nil {
		res = NewResources(nil, nil)
	}
	return &Summarizer{res: res}
}

// Analysis exposes the intermediate results of one summarization call.
type Analysis struct {
	Sentences []Sentence       `json:"sentences"`
	Scores    []ScoredSentence `json:"scores"`
	Selected  []int            `json:"selected"`
	Summary   string           `json:"summary"`
}

// Summarize returns up to maxSentences sentences of text, joined with single
// spaces, in document order. Empty or whitespace-only input yields "".
func (s *Summarizer) Summarize(text string, maxSentences int) string {
	return s.Analyze(text, maxSentences).Summary
}

// Analyze runs the full pipeline and keeps every intermediate result.
func (s *Summarizer) Analyze(text string, maxSentences int) Analysis {
	doc := Normalize(text)
	if doc == "" {
		return Analysis{}
	}

	sentences := s.res.SegmentSentences(doc)
	table := BuildFrequencyTable(TokenizeWords(doc), s.res.Stopwords)
	scores := NormalizeScores(ScoreSentences(sentences, table))
	selected := SelectTop(scores, maxSentences)

	parts := make([]string, len(selected))
	for i, idx := range selected {
		parts[i] = sentences[idx].Text
	}

	return Analysis{
		Sentences: sentences,
		Scores:    scores,
		Selected:  selected,
		Summary:   strings.Join(parts, " "),
	}
}
