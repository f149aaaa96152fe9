package summarize

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Sentence is one segment of a normalized document. Index is its zero-based
// position in the document and is the sentence's only identity.
type Sentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Normalize collapses every run of whitespace, newlines included, into a
// single space and trims both ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SegmentSentences normalizes text and splits it into indexed sentences.
// Text without a detectable boundary comes back as a single sentence.
func (r *Resources) SegmentSentences(text string) []Sentence {
	doc := Normalize(text)
	if doc == "" {
		return nil
	}

	var parts []string
	if r.Splitter != nil {
		parts = r.Splitter.Split(doc)
	}

	sentences := make([]Sentence, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sentences = append(sentences, Sentence{Index: len(sentences), Text: p})
	}
	if len(sentences) == 0 {
		sentences = append(sentences, Sentence{Index: 0, Text: doc})
	}
	return sentences
}

// TokenizeWords splits text on Unicode word boundaries and lowercases every
// token. Punctuation comes back as separate tokens; whitespace is dropped.
func TokenizeWords(text string) []string {
	var tokens []string
	var word string
	state := -1
	for len(text) > 0 {
		word, text, state = uniseg.FirstWordInString(text, state)
		if strings.TrimSpace(word) == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(word))
	}
	return tokens
}

// isAlpha reports whether tok is non-empty and made only of letters.
func isAlpha(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
