package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

// ScriptsContaining returns the text of every <script> in sel whose body
// contains at least one of the given markers, in document order
func ScriptsContaining(sel *goquery.Selection, markers ...string) []string {
	var scripts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if text == "" {
			// Some pages keep inline data in the raw HTML rather than a text node
			text, _ = s.Html()
		}
		if lo.SomeBy(markers, func(m string) bool { return strings.Contains(text, m) }) {
			scripts = append(scripts, text)
		}
	})
	return scripts
}

// Between returns the substring of text after the first occurrence of start
// and before the next occurrence of end. ok is false when start is missing;
// a missing end yields everything after start.
func Between(text, start, end string) (string, bool) {
	_, rest, found := strings.Cut(text, start)
	if !found {
		return "", false
	}
	if end == "" {
		return rest, true
	}
	before, _, _ := strings.Cut(rest, end)
	return before, true
}
