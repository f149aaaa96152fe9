package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/paperdigest/internal/doctree"
)

// DOCXParser handles Word documents. Paragraphs styled "Title" or
// "Heading N" open sections; every other paragraph is body text.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, name string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var b sectionBuilder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if level := styleLevel(para); level > 0 {
			b.open(level, text)
			continue
		}
		b.add(text)
	}

	return &doctree.DocTree{
		Title:    titleFromName(name, ".docx"),
		Children: b.sections(),
	}, nil
}

// styleLevel maps "Title" to 1 and "Heading1".."Heading6" (any case, with
// or without a space) to their level.
func styleLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || !strings.HasPrefix(style, "heading") || n < 1 || n > 6 {
		return 0
	}
	return n
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}
