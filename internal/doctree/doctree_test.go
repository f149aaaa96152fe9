package doctree

import "testing"

func TestDocTreeText_FlattensDepthFirst(t *testing.T) {
	tree := &DocTree{
		Children: []*DocNode{
			{
				Title: "Intro",
				Text:  "Opening words.",
				Children: []*DocNode{
					{Title: "Background", Text: "  Some history.  "},
				},
			},
			{Text: "Closing words."},
		},
	}

	got := tree.Text()
	want := "Intro\nOpening words.\nBackground\nSome history.\nClosing words."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDocTreeText_SkipsEmptyNodes(t *testing.T) {
	tree := &DocTree{
		Children: []*DocNode{
			{Text: "Page one.", Page: 1},
			{Text: "   ", Page: 2},
			{Text: "Page three.", Page: 3},
		},
	}
	if got := tree.Text(); got != "Page one.\nPage three." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestDocTreeText_Nil(t *testing.T) {
	var tree *DocTree
	if got := tree.Text(); got != "" {
		t.Fatalf("expected empty text for nil tree, got %q", got)
	}
}
