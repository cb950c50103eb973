package parser

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with automatic character encoding detection and conversion to UTF-8.
// The encoding is detected from <meta> tags, byte order marks or content heuristics,
// so Latin-1 pages from mirrors decode the same as the UTF-8 originals.
func NewUTF8Reader(body io.Reader) (io.Reader, error) {
	return charset.NewReader(body, "")
}

// NewDocument converts body to UTF-8 and parses it into a goquery document
func NewDocument(body io.Reader) (*goquery.Document, error) {
	utf8Body, err := NewUTF8Reader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to create UTF-8 reader: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
