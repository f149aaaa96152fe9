package parser

import (
	"strings"

	"github.com/dgallion1/paperdigest/internal/doctree"
)

// sectionBuilder nests sections by heading level. Text before the first
// heading is kept as a leading untitled section.
type sectionBuilder struct {
	intro  []string
	top    []*doctree.DocNode
	stack  []*doctree.DocNode
	levels []int
}

func (b *sectionBuilder) open(level int, title string) {
	for len(b.levels) > 0 && b.levels[len(b.levels)-1] >= level {
		b.stack = b.stack[:len(b.stack)-1]
		b.levels = b.levels[:len(b.levels)-1]
	}
	node := &doctree.DocNode{Title: title}
	if len(b.stack) == 0 {
		b.top = append(b.top, node)
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, node)
	}
	b.stack = append(b.stack, node)
	b.levels = append(b.levels, level)
}

func (b *sectionBuilder) add(t string) {
	if t == "" {
		return
	}
	if len(b.stack) == 0 {
		b.intro = append(b.intro, t)
		return
	}
	node := b.stack[len(b.stack)-1]
	if node.Text != "" {
		node.Text += "\n"
	}
	node.Text += t
}

func (b *sectionBuilder) sections() []*doctree.DocNode {
	if len(b.intro) == 0 {
		return b.top
	}
	intro := &doctree.DocNode{Text: strings.Join(b.intro, "\n")}
	return append([]*doctree.DocNode{intro}, b.top...)
}
