package summarize

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

//go:embed stopwords_en.txt
var englishStopwords string

// SentenceSplitter breaks normalized text into sentences, in document order.
type SentenceSplitter interface {
	Split(text string) []string
}

// SplitterFunc adapts a plain function to SentenceSplitter.
type SplitterFunc func(text string) []string

func (f SplitterFunc) Split(text string) []string {
	return f(text)
}

// StopwordSet is a set of lowercase function words excluded from frequency counts.
type StopwordSet map[string]struct{}

// NewStopwordSet builds a set from the given words, lowercasing each one.
func NewStopwordSet(words ...string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// Contains reports whether word is a stopword.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// EnglishStopwords returns the NLTK English stopword list.
func EnglishStopwords() StopwordSet {
	return NewStopwordSet(strings.Fields(englishStopwords)...)
}

// Resources holds the linguistic data shared by every summarization call.
// It is built once at startup and must not be mutated afterwards; a single
// value can be shared by any number of goroutines.
type Resources struct {
	Splitter  SentenceSplitter
	Stopwords StopwordSet
}

func NewResources(splitter SentenceSplitter, stopwords StopwordSet) *Resources {
	if stopwords == nil {
		stopwords = StopwordSet{}
	}
	return &Resources{
		Splitter:  splitter,
		Stopwords: stopwords,
	}
}

// LoadEnglish loads the Punkt English sentence model and the English stopword list.
func LoadEnglish() (*Resources, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt english model: %w", err)
	}
	return NewResources(&PunktSplitter{punkt: tok}, EnglishStopwords()), nil
}

// PunktSplitter segments text with a trained Punkt model, which knows about
// abbreviations, initials and decimal numbers.
type PunktSplitter struct {
	punkt interface {
		Tokenize(text string) []*sentences.Sentence
	}
}

func (p *PunktSplitter) Split(text string) []string {
	var out []string
	for _, s := range p.punkt.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
