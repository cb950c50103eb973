package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNoJSON is returned when no decodable JSON value follows a marker
var ErrNoJSON = errors.New("no JSON value found")

// ExtractJSONAfter decodes the first JSON value that follows marker in text
// into v. Assignment characters and whitespace between the marker and the
// value are skipped; anything after the value, such as a trailing ";" of an
// inline script, is ignored.
func ExtractJSONAfter(text, marker string, v any) error {
	rest, ok := afterMarker(text, marker)
	if !ok {
		return fmt.Errorf("%w: marker %q not found", ErrNoJSON, marker)
	}
	rest = strings.TrimLeft(rest, " \t\r\n=:")
	if rest == "" {
		return fmt.Errorf("%w: nothing after marker %q", ErrNoJSON, marker)
	}

	dec := json.NewDecoder(strings.NewReader(rest))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return nil
}

// ExtractFirstObject decodes the first JSON object that follows marker in
// text into v. It is the fallback for arrays that are not valid JSON as a
// whole, for instance because of unquoted keys in later elements.
func ExtractFirstObject(text, marker string, v any) error {
	rest, ok := afterMarker(text, marker)
	if !ok {
		return fmt.Errorf("%w: marker %q not found", ErrNoJSON, marker)
	}
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return fmt.Errorf("%w: no object after marker %q", ErrNoJSON, marker)
	}

	dec := json.NewDecoder(strings.NewReader(rest[start:]))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return nil
}

func afterMarker(text, marker string) (string, bool) {
	if marker == "" {
		return text, true
	}
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "", false
	}
	return text[idx+len(marker):], true
}
