package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_HeadingsAndBody(t *testing.T) {
	input := `<html><head><title>Attention Notes</title><style>p{}</style></head>
<body>
<nav><p>Home | About</p></nav>
<h1>Overview</h1>
<p>Transformers replace   recurrence.</p>
<h2>Results</h2>
<p>BLEU improved.</p>
<script>var x = 1;</script>
<footer><p>Copyright</p></footer>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "https://example.org/notes.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Attention Notes" {
		t.Errorf("expected <title> to win, got %q", tree.Title)
	}
	if len(tree.Children) != 1 || tree.Children[0].Title != "Overview" {
		t.Fatalf("expected one h1 section, got %+v", tree.Children)
	}

	text := tree.Text()
	for _, want := range []string{"Transformers replace recurrence.", "Results", "BLEU improved."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
	for _, unwanted := range []string{"Home | About", "var x", "Copyright"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("did not expect %q in %q", unwanted, text)
		}
	}
}

func TestHTMLParser_NoHeadings(t *testing.T) {
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader("<p>One.</p><p>Two.</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "page" {
		t.Errorf("expected title %q, got %q", "page", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	if tree.Children[0].Text != "One.\nTwo." {
		t.Errorf("unexpected text %q", tree.Children[0].Text)
	}
}

func TestHTMLParser_PrefersArticle(t *testing.T) {
	input := `<html><body>
<div class="sidebar"><p>Subscribe to our newsletter.</p></div>
<article>
<p>Lead paragraph<br>continues here.</p>
<h2>Background</h2>
<ul><li>First point.</li><li>Second point.</li></ul>
<button>Share</button>
</article>
</body></html>`

	tree, err := (&HTMLParser{}).Parse(strings.NewReader(input), "post.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Lead paragraph continues here.\nBackground\nFirst point.\nSecond point."
	if got := tree.Text(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_EmptyDocument(t *testing.T) {
	tree, err := (&HTMLParser{}).Parse(strings.NewReader(""), "blank.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 || tree.Text() != "" {
		t.Errorf("expected no content, got %+v", tree.Children)
	}
}
