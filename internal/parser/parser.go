package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/dgallion1/paperdigest/internal/doctree"
)

// ErrUnsupportedFormat is returned when no parser handles a document.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, name string) (*doctree.DocTree, error)
}

// PageFailurePolicy decides what happens when a single page cannot be decoded.
type PageFailurePolicy int

const (
	// SkipFailedPages records the page number in DocTree.SkippedPages and
	// keeps going.
	SkipFailedPages PageFailurePolicy = iota
	// FailOnPageError aborts the whole parse with a *PageError.
	FailOnPageError
)

func (p PageFailurePolicy) String() string {
	switch p {
	case SkipFailedPages:
		return "skip"
	case FailOnPageError:
		return "fail"
	}
	return fmt.Sprintf("PageFailurePolicy(%d)", int(p))
}

// PageError reports a page that could not be decoded.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Options tune paged formats. The zero value reads every page and skips
// undecodable ones.
type Options struct {
	MaxPages          int // <= 0 reads all pages
	PagePolicy        PageFailurePolicy
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

var contentTypes = map[string]string{
	"application/pdf":       ".pdf",
	"application/x-pdf":     ".pdf",
	"text/html":             ".html",
	"application/xhtml+xml": ".html",
	"text/markdown":         ".md",
	"text/x-markdown":       ".md",
	"text/plain":            ".txt",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

var pdfMagic = []byte("%PDF-")

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	return forExtension(strings.ToLower(filepath.Ext(filename)), opts)
}

// Detect picks a parser from the response Content-Type, then the URL path
// extension, then the leading bytes of the body. Generic binary content
// types fall through to the later checks.
func Detect(contentType, rawURL string, head []byte, opts Options) (Parser, error) {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := contentTypes[strings.ToLower(mt)]; ok {
			return forExtension(ext, opts)
		}
	}

	if ext := urlExtension(rawURL); SupportedExtensions[ext] {
		return forExtension(ext, opts)
	}

	if bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), pdfMagic) {
		return &PDFParser{Options: opts}, nil
	}

	if contentType == "" {
		return nil, fmt.Errorf("%w: no content type for %s", ErrUnsupportedFormat, rawURL)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
}

func forExtension(ext string, opts Options) (Parser, error) {
	switch ext {
	case ".txt", ".text":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{Options: opts}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func urlExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}

// titleFromName turns a file name or URL into a display title.
func titleFromName(name string, exts ...string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Path != "" {
		name = u.Path
	}
	base := path.Base(filepath.ToSlash(name))
	if base == "." || base == "/" {
		return ""
	}
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}
