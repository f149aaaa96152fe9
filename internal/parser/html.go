package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/paperdigest/internal/doctree"
)

// HTMLParser handles HTML pages. Content comes from <article> or <main> when
// the page has one, else from <body>. Page chrome and scripts are skipped.
type HTMLParser struct{}

var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Aside:    true,
	atom.Form:     true,
	atom.Button:   true,
	atom.Svg:      true,
}

// textBlocks hold prose and are flattened as one line each.
var textBlocks = map[atom.Atom]bool{
	atom.P:          true,
	atom.Li:         true,
	atom.Td:         true,
	atom.Th:         true,
	atom.Dd:         true,
	atom.Dt:         true,
	atom.Blockquote: true,
	atom.Figcaption: true,
	atom.Caption:    true,
}

func (p *HTMLParser) Parse(r io.Reader, name string) (*doctree.DocTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.DocTree{Title: titleFromName(name, ".html", ".htm")}
	if t := find(doc, atom.Title); t != nil {
		if title := textContent(t); title != "" {
			tree.Title = title
		}
	}

	content := doc
	for _, a := range []atom.Atom{atom.Article, atom.Main, atom.Body} {
		if n := find(doc, a); n != nil {
			content = n
			break
		}
	}

	var b sectionBuilder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.DataAtom] {
				return
			}
			if level := headingLevel(n.DataAtom); level > 0 {
				b.open(level, textContent(n))
				return
			}
			if textBlocks[n.DataAtom] {
				b.add(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(content)

	tree.Children = b.sections()
	return tree, nil
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// textContent returns the visible text under n with whitespace collapsed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedElements[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				buf.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// find returns the first element of type a in document order.
func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}
