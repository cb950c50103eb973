package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Belphemur/AnimeProviders/internal/models"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRegex            = regexp.MustCompile(`https?://[^\s"'<>\\\[\](),]+`)
	trailingNumberRegex = regexp.MustCompile(`(\d+)\s*$`)
	firstNumberRegex    = regexp.MustCompile(`\d+`)
)

// Normalize trims s and converts it to Unicode NFC so that accented markers
// such as "Película" match regardless of how the page composed them
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// DubStatusFromTitle returns {Dubbed} when the title mentions a Spanish dub
// ("Latino" or "Castellano", case-sensitive) and {Subbed} otherwise
func DubStatusFromTitle(title string) []models.DubStatus {
	t := Normalize(title)
	if strings.Contains(t, "Latino") || strings.Contains(t, "Castellano") {
		return []models.DubStatus{models.DubStatusDubbed}
	}
	return []models.DubStatus{models.DubStatusSubbed}
}

// ClassifyMediaType derives the media type from the page type marker and
// the number of episodes. A movie needs both a movie marker and exactly one
// episode; anything else with a movie marker is treated as a series.
func ClassifyMediaType(marker string, episodeCount int) models.MediaType {
	m := Normalize(marker)
	switch {
	case episodeCount == 1 && (strings.Contains(m, "Película") || strings.Contains(m, "Movie")):
		return models.MediaTypeMovie
	case strings.Contains(m, "OVA") || strings.Contains(m, "Especial"):
		return models.MediaTypeOVA
	default:
		return models.MediaTypeSeries
	}
}

// ResolveURL resolves ref against base. Protocol-relative references get the
// https scheme. An empty ref yields an empty string.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// ExtractURLs returns every http(s) URL found in text, in order of appearance
func ExtractURLs(text string) []string {
	return urlRegex.FindAllString(text, -1)
}

// TrailingNumber returns the number at the end of s, if any
func TrailingNumber(s string) (int, bool) {
	match := trailingNumberRegex.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FirstNumber returns the first run of digits in s, if any
func FirstNumber(s string) (int, bool) {
	match := firstNumberRegex.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
