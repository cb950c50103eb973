package models

import (
	"regexp"
	"strconv"
	"strings"
)

// Quality is the advertised resolution of a stream, ordered from worst to best
type Quality int

const (
	QualityUnknown Quality = iota
	Quality360p
	Quality480p
	Quality720p
	Quality1080p
	Quality2160p
)

var (
	qualityHeights = [...]int{0, 360, 480, 720, 1080, 2160}
	qualityLabel   = regexp.MustCompile(`(?i)(360|480|720|1080|2160)p`)
)

// Height returns the vertical resolution in pixels, 0 when unknown
func (q Quality) Height() int {
	if q < 0 || int(q) >= len(qualityHeights) {
		return 0
	}
	return qualityHeights[q]
}

func (q Quality) String() string {
	h := q.Height()
	if h == 0 {
		return "unknown"
	}
	return strconv.Itoa(h) + "p"
}

// ParseQuality finds a resolution inside a source label such as "HD 720p"
// or "4K". Labels without one map to QualityUnknown.
func ParseQuality(label string) Quality {
	if strings.EqualFold(strings.TrimSpace(label), "4k") {
		return Quality2160p
	}
	m := qualityLabel.FindStringSubmatch(label)
	if m == nil {
		return QualityUnknown
	}
	h, _ := strconv.Atoi(m[1])
	for q, height := range qualityHeights {
		if height == h {
			return Quality(q)
		}
	}
	return QualityUnknown
}

func (q Quality) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(q.String())), nil
}

func (q *Quality) UnmarshalJSON(data []byte) error {
	*q = ParseQuality(strings.Trim(string(data), `"`))
	return nil
}
