package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
)

// ErrUnsupportedHost is returned when no extractor knows the embed host
var ErrUnsupportedHost = errors.New("unsupported embed host")

// Extractor turns a third-party embed page into playable stream candidates
type Extractor interface {
	// Extract resolves embedURL and calls emit for every stream it finds.
	Extract(ctx context.Context, embedURL, referer string, emit func(models.StreamCandidate)) error
}

// host describes one embed host recognised by the pass-through extractor
type host struct {
	label   string
	domains []string
}

var knownHosts = []host{
	{label: "Fembed", domains: []string{"embedsito.com", "fembed.com", "feurl.com"}},
	{label: "Mp4Upload", domains: []string{"mp4upload.com"}},
	{label: "YourUpload", domains: []string{"yourupload.com"}},
	{label: "Okru", domains: []string{"ok.ru"}},
	{label: "Sendvid", domains: []string{"sendvid.com"}},
	{label: "StreamSB", domains: []string{"watchsb.com", "embedsb.com", "streamsb.net"}},
	{label: "Mega", domains: []string{"mega.nz"}},
	{label: "Streamtape", domains: []string{"streamtape.com"}},
	{label: "Doodstream", domains: []string{"dood.la", "dood.ws", "doodstream.com"}},
	{label: "Voe", domains: []string{"voe.sx"}},
	{label: "Netu", domains: []string{"hqq.tv", "netu.tv"}},
	{label: "Mixdrop", domains: []string{"mixdrop.co"}},
	{label: "Uqload", domains: []string{"uqload.com", "uqload.co"}},
}

// Passthrough recognises well-known embed hosts and emits the embed URL
// itself as the stream. Real hosters need dedicated extractors; this one only
// decides whether a URL belongs to a supported host.
type Passthrough struct{}

// NewPassthrough creates the pass-through extractor
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Label returns the display label for an embed URL and whether the host is known
func Label(embedURL string) (string, bool) {
	u, err := url.Parse(embedURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	hostname := strings.ToLower(u.Hostname())
	for _, h := range knownHosts {
		for _, d := range h.domains {
			if hostname == d || strings.HasSuffix(hostname, "."+d) {
				return h.label, true
			}
		}
	}
	return "", false
}

// Extract implements Extractor
func (p *Passthrough) Extract(ctx context.Context, embedURL, referer string, emit func(models.StreamCandidate)) error {
	logger := config.GetLogger()
	if err := ctx.Err(); err != nil {
		return err
	}

	label, ok := Label(embedURL)
	if !ok {
		logger.Debug().Str("url", embedURL).Msg("No extractor for embed host")
		return fmt.Errorf("%w: %s", ErrUnsupportedHost, embedURL)
	}

	u, _ := url.Parse(embedURL)
	emit(models.StreamCandidate{
		ProviderLabel: label,
		DisplayName:   label,
		StreamURL:     embedURL,
		Referer:       referer,
		IsPlaylist:    strings.HasSuffix(strings.ToLower(u.Path), ".m3u8"),
		Quality:       models.QualityUnknown,
	})
	return nil
}
