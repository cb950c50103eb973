package animefenix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/parser"
	"github.com/Belphemur/AnimeProviders/internal/provider"
)

const (
	tabsMarker    = "var tabsArray ="
	sourcesMarker = `sources: [{"file"`
)

// tokenRegex matches one "player=<id>&amp;code=<code>&" iframe token. The
// code stops at the next "&", quote or tag delimiter.
var tokenRegex = regexp.MustCompile(`player=(\d+)&(?:amp;)?code=([^&"'<>\s]*)`)

var errNoSources = errors.New("no playable source found")

type resolution int

const (
	viaExtractor resolution = iota
	viaSources
	viaProbedSources
)

// player describes how to turn the code of one player id into a stream
type player struct {
	label      string
	resolution resolution
	template   func(base, code string) string
}

var players = map[int]player{
	2: {label: "Fembed", template: func(_, code string) string { return "https://embedsito.com/v/" + code }},
	3: {label: "Mp4Upload", template: func(_, code string) string { return "https://www.mp4upload.com/embed-" + code + ".html" }},
	4: {label: "Sendvid", template: func(_, code string) string { return "https://sendvid.com/" + code }},
	6: {label: "YourUpload", template: func(_, code string) string { return "https://www.yourupload.com/embed/" + code }},
	9: {label: "Amazon", resolution: viaSources, template: func(base, code string) string {
		return base + "/stream/amz.php?v=" + code
	}},
	11: {label: "AmazonES", resolution: viaSources, template: func(base, code string) string {
		return base + "/stream/amz.php?v=" + code + "&ext=es"
	}},
	12: {label: "Okru", template: func(_, code string) string { return "https://ok.ru/videoembed/" + code }},
	22: {label: "Fireload", resolution: viaProbedSources, template: func(base, code string) string {
		return base + "/stream/fl.php?v=" + code
	}},
}

// Token is one player reference found in the tabs script
type Token struct {
	PlayerID int
	Code     string
}

// ParseTokens enumerates every player token in script text, in order
func ParseTokens(script string) []Token {
	var tokens []Token
	for _, m := range tokenRegex.FindAllStringSubmatch(script, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		tokens = append(tokens, Token{PlayerID: id, Code: m[2]})
	}
	return tokens
}

// PlayerURL builds the hosting URL for a player id and code. ok is false for
// unknown player ids.
func PlayerURL(baseURL string, playerID int, code string) (string, bool) {
	pl, ok := players[playerID]
	if !ok {
		return "", false
	}
	return pl.template(baseURL, code), true
}

type source struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// LoadLinks implements provider.Provider
func (p *Provider) LoadLinks(ctx context.Context, pageURL string, onSubtitle provider.SubtitleCallback, onStream provider.StreamCallback) (models.LinkSummary, error) {
	logger := config.GetLogger()
	em := provider.NewEmitter(onSubtitle, onStream)

	body, err := p.opts.Fetcher.Get(ctx, pageURL)
	if err != nil {
		return em.Summary(), fmt.Errorf("load links %s: %w", pageURL, err)
	}
	doc, err := parser.NewDocument(bytes.NewReader(body))
	if err != nil {
		return em.Summary(), fmt.Errorf("load links %s: %w", pageURL, err)
	}

	var tokens []Token
	for _, script := range parser.ScriptsContaining(doc.Find(".player-container script"), tabsMarker) {
		tokens = append(tokens, ParseTokens(script)...)
	}
	logger.Debug().Str("provider", ID).Str("url", pageURL).Int("tokens", len(tokens)).Msg("Found player tokens")

	err = provider.ResolveAll(ctx, p.opts, ID, em, tokens, func(ctx context.Context, tok Token) error {
		return p.resolveToken(ctx, pageURL, tok, em)
	})
	return em.Summary(), err
}

func (p *Provider) resolveToken(ctx context.Context, pageURL string, tok Token, em *provider.Emitter) error {
	logger := config.GetLogger()

	pl, ok := players[tok.PlayerID]
	if !ok {
		logger.Debug().Int("player", tok.PlayerID).Str("code", tok.Code).Msg("Skipping unknown player id")
		em.Failed()
		return nil
	}
	target := pl.template(p.opts.BaseURL, tok.Code)

	switch pl.resolution {
	case viaExtractor:
		return p.opts.Extractor.Extract(ctx, target, pageURL, em.Stream)
	default:
		return p.resolveSources(ctx, pageURL, target, pl, em)
	}
}

// resolveSources fetches an intermediary player page and emits the file of
// every sources script it contains
func (p *Provider) resolveSources(ctx context.Context, pageURL, target string, pl player, em *provider.Emitter) error {
	logger := config.GetLogger()

	body, err := p.opts.Fetcher.Get(ctx, target, client.WithReferer(pageURL))
	if err != nil {
		return fmt.Errorf("%s: %w", pl.label, err)
	}
	doc, err := parser.NewDocument(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", pl.label, err)
	}

	emitted := 0
	for _, script := range parser.ScriptsContaining(doc.Find("script"), sourcesMarker) {
		src, err := decodeSource(script)
		if err != nil {
			logger.Debug().Err(err).Str("url", target).Msg("Could not decode sources payload")
			continue
		}

		streamURL := src.File
		if pl.resolution == viaProbedSources {
			var alive bool
			streamURL, alive, err = p.probeFireload(ctx, src.File)
			if err != nil {
				return fmt.Errorf("%s probe: %w", pl.label, err)
			}
			if !alive {
				logger.Debug().Str("file", src.File).Msg("Fireload file rejected by probe")
				em.Failed()
				return nil
			}
		}

		em.Stream(models.StreamCandidate{
			ProviderLabel: pl.label,
			DisplayName:   strings.TrimSpace(pl.label + " " + src.Label),
			StreamURL:     streamURL,
			IsPlaylist:    strings.EqualFold(src.Type, "hls") || strings.Contains(streamURL, ".m3u8"),
			Quality:       models.ParseQuality(src.Label),
		})
		emitted++
	}

	if emitted == 0 {
		return fmt.Errorf("%s %s: %w", pl.label, target, errNoSources)
	}
	return nil
}

// probeFireload checks that a fireload file is served. It returns the final
// URL and false when the file is not a fireload link or the host answers
// with an error page.
func (p *Provider) probeFireload(ctx context.Context, file string) (string, bool, error) {
	if !strings.Contains(file, "fireload") {
		return "", false, nil
	}
	finalURL := file
	if !strings.HasPrefix(finalURL, "http://") && !strings.HasPrefix(finalURL, "https://") {
		finalURL = "https://" + strings.TrimPrefix(finalURL, "//")
	}

	body, err := p.opts.Fetcher.Get(ctx, finalURL)
	if err != nil {
		return "", false, err
	}
	if bytes.Contains(body, []byte("error")) {
		return finalURL, false, nil
	}
	return finalURL, true, nil
}

// decodeSource reads the first source with a file from a sources script
func decodeSource(script string) (source, error) {
	var sources []source
	if err := parser.ExtractJSONAfter(script, "sources:", &sources); err == nil {
		for _, s := range sources {
			if s.File != "" {
				return s, nil
			}
		}
	}

	var single source
	if err := parser.ExtractFirstObject(script, "sources:", &single); err != nil {
		return source{}, err
	}
	if single.File == "" {
		return source{}, fmt.Errorf("%w: source without file", parser.ErrNoJSON)
	}
	return single, nil
}
