package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title        string     // Document title (from metadata or URL)
	PageCount    int        // Total pages in the source, 0 when the format has no pages
	PagesRead    int        // Pages actually visited, bounded by the caller's page limit
	SkippedPages []int      // 1-based page numbers whose text could not be decoded
	Children     []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Text flattens the tree depth-first, headings before their body, one
// non-empty block per line.
func (t *DocTree) Text() string {
	if t == nil {
		return ""
	}
	var parts []string
	for _, c := range t.Children {
		parts = c.collect(parts)
	}
	return strings.Join(parts, "\n")
}

func (n *DocNode) collect(parts []string) []string {
	if title := strings.TrimSpace(n.Title); title != "" {
		parts = append(parts, title)
	}
	if text := strings.TrimSpace(n.Text); text != "" {
		parts = append(parts, text)
	}
	for _, c := range n.Children {
		parts = c.collect(parts)
	}
	return parts
}
