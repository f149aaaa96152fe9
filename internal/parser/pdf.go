package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dgallion1/paperdigest/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser reads PDFs in memory with ledongthuc/pdf, one page at a time.
// When the library cannot open the file at all it can fall back to the
// pdftotext binary.
type PDFParser struct {
	Options
}

type pdfPage struct {
	number int
	text   string
}

func (p *PDFParser) Parse(r io.Reader, name string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	reader, err := openPDF(data)
	if err == nil {
		return p.parsePages(libPages{reader}, name)
	}
	if !p.FallbackPdftotext {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	pages, total, ferr := extractPdftotext(data, p.MaxPages)
	if ferr != nil {
		return nil, fmt.Errorf("extract pdf text: %w", errors.Join(err, ferr))
	}
	return newPDFTree(name, pages, total, len(pages), nil), nil
}

// pageSource is the part of a decoded PDF the parser reads. Pages are
// numbered from 1.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

type libPages struct {
	r *pdflib.Reader
}

func (l libPages) NumPage() int                   { return l.r.NumPage() }
func (l libPages) PageText(n int) (string, error) { return readPage(l.r, n) }

// parsePages reads the first MaxPages pages of src, applying PagePolicy to
// pages that fail to decode.
func (p *PDFParser) parsePages(src pageSource, name string) (*doctree.DocTree, error) {
	total := src.NumPage()
	limit := pagesToRead(total, p.MaxPages)

	var pages []pdfPage
	var skipped []int
	for i := 1; i <= limit; i++ {
		text, err := src.PageText(i)
		if err != nil {
			if p.PagePolicy == FailOnPageError {
				return nil, fmt.Errorf("extract pdf text: %w", &PageError{Page: i, Err: err})
			}
			skipped = append(skipped, i)
			continue
		}
		pages = append(pages, pdfPage{number: i, text: text})
	}
	return newPDFTree(name, pages, total, limit, skipped), nil
}

func newPDFTree(name string, pages []pdfPage, total, read int, skipped []int) *doctree.DocTree {
	tree := &doctree.DocTree{
		Title:        titleFromName(name, ".pdf"),
		PageCount:    total,
		PagesRead:    read,
		SkippedPages: skipped,
	}
	for _, pg := range pages {
		text := strings.TrimSpace(pg.text)
		if text == "" {
			continue
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Text: text,
			Page: pg.number,
		})
	}
	return tree
}

func openPDF(data []byte) (reader *pdflib.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader, err = nil, fmt.Errorf("open pdf: %v", rec)
		}
	}()
	reader, err = pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return reader, nil
}

// readPage converts a decoder panic on malformed content into an error so one
// bad page cannot take down the whole document.
func readPage(reader *pdflib.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("decode: %v", rec)
		}
	}()
	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func pagesToRead(total, maxPages int) int {
	if maxPages <= 0 || maxPages > total {
		return total
	}
	return maxPages
}

func extractPdftotext(data []byte, maxPages int) ([]pdfPage, int, error) {
	// pdftotext only reads from a path.
	tmp, err := os.CreateTemp("", "paperdigest-pdf-*.pdf")
	if err != nil {
		return nil, 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, 0, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	args := []string{"-layout"}
	if maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(maxPages))
	}
	args = append(args, tmpPath, "-")

	out, err := exec.Command("pdftotext", args...).Output()
	if err != nil {
		return nil, 0, fmt.Errorf("pdftotext: %w", err)
	}

	var pages []pdfPage
	for i, text := range splitPages(string(out)) {
		pages = append(pages, pdfPage{number: i + 1, text: text})
	}
	return pages, len(pages), nil
}

// splitPages splits pdftotext output on form feeds. The trailing feed after
// the last page does not start a new page.
func splitPages(text string) []string {
	text = strings.TrimSuffix(text, "\f")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\f")
}
