package summarize

import (
	"reflect"
	"strings"
	"testing"
)

// periodSplitter splits after ". " so tests do not depend on the Punkt model.
var periodSplitter = SplitterFunc(func(text string) []string {
	return strings.SplitAfter(text, ". ")
})

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   \n\t  ", ""},
		{"one", "one"},
		{"  leading and trailing  ", "leading and trailing"},
		{"line one\nline two\r\n\nline three", "line one line two line three"},
		{"tabs\t\tand   spaces", "tabs and spaces"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSegmentSentences_IndicesAreContiguous(t *testing.T) {
	res := NewResources(periodSplitter, nil)
	got := res.SegmentSentences("First one.  Second\none. Third one.")

	want := []Sentence{
		{Index: 0, Text: "First one."},
		{Index: 1, Text: "Second one."},
		{Index: 2, Text: "Third one."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSegmentSentences_EmptyInput(t *testing.T) {
	res := NewResources(periodSplitter, nil)
	for _, in := range []string{"", "  ", "\n\n"} {
		if got := res.SegmentSentences(in); len(got) != 0 {
			t.Errorf("SegmentSentences(%q): expected no sentences, got %+v", in, got)
		}
	}
}

func TestSegmentSentences_NoBoundaryIsOneSentence(t *testing.T) {
	none := SplitterFunc(func(string) []string { return nil })
	res := NewResources(none, nil)

	got := res.SegmentSentences("no   boundary here")
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(got))
	}
	if got[0].Index != 0 || got[0].Text != "no boundary here" {
		t.Errorf("unexpected sentence %+v", got[0])
	}
}

func TestSegmentSentences_DropsBlankParts(t *testing.T) {
	blanky := SplitterFunc(func(string) []string { return []string{" ", "A.", "", "B."} })
	res := NewResources(blanky, nil)

	got := res.SegmentSentences("A. B.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %+v", got)
	}
	if got[0].Index != 0 || got[1].Index != 1 {
		t.Errorf("expected indices 0 and 1, got %d and %d", got[0].Index, got[1].Index)
	}
}

func TestPunktSplitter_Boundaries(t *testing.T) {
	res, err := LoadEnglish()
	if err != nil {
		t.Fatalf("load resources: %v", err)
	}

	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain", "Cats are mammals. Cats hunt mice. Dogs are mammals too.", 3},
		{"decimal", "The rate rose to 3.5 percent. Analysts were surprised.", 2},
		{"question and exclamation", "Is it working? Yes it is! Good.", 3},
		{"no terminator", "a fragment without any terminator", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := res.SegmentSentences(tt.text)
			if len(got) != tt.want {
				t.Fatalf("expected %d sentences, got %d: %+v", tt.want, len(got), got)
			}
			for i, s := range got {
				if s.Index != i {
					t.Errorf("sentence %d has index %d", i, s.Index)
				}
			}
		})
	}
}

func TestTokenizeWords(t *testing.T) {
	got := TokenizeWords("Cats hunt Mice, quietly.")
	want := []string{"cats", "hunt", "mice", ",", "quietly", "."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTokenizeWords_Empty(t *testing.T) {
	if got := TokenizeWords("   "); len(got) != 0 {
		t.Errorf("expected no tokens, got %q", got)
	}
}

func TestIsAlpha(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"cats", true},
		{"café", true},
		{"", false},
		{"3", false},
		{"3d", false},
		{".", false},
		{"don't", false},
	}
	for _, tt := range tests {
		if got := isAlpha(tt.tok); got != tt.want {
			t.Errorf("isAlpha(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}
