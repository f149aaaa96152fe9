package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/paperdigest/internal/doctree"
)

// MarkdownParser handles Markdown with goldmark. Headings become nested
// sections; code blocks, raw HTML and images are dropped since they are not
// prose.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, name string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b sectionBuilder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			b.open(h.Level, inlineText(h, src))
			continue
		}
		b.add(blockText(n, src))
	}

	return &doctree.DocTree{
		Title:    titleFromName(name, ".md", ".markdown"),
		Children: b.sections(),
	}, nil
}

// blockText returns the prose of a block, one line per paragraph or list
// item.
func blockText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak:
		return ""
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return inlineText(n, src)
	}
	var lines []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// inlineText flattens inline content to a single line.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *ast.AutoLink:
			buf.Write(v.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}
