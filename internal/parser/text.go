package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/paperdigest/internal/doctree"
)

const maxLineBytes = 4 << 20

// TextParser handles plain text. Blank lines and form feeds end a paragraph;
// the lines of one paragraph are joined with single spaces.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, name string) (*doctree.DocTree, error) {
	tree := &doctree.DocTree{Title: titleFromName(name, ".txt", ".text")}

	var lines []string
	flush := func() {
		if len(lines) > 0 {
			tree.Children = append(tree.Children, &doctree.DocNode{Text: strings.Join(lines, " ")})
			lines = lines[:0]
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for first := true; scanner.Scan(); first = false {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		for i, part := range strings.Split(line, "\f") {
			if i > 0 {
				flush()
			}
			if part = strings.TrimSpace(part); part == "" {
				flush()
				continue
			}
			lines = append(lines, part)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	flush()

	return tree, nil
}
