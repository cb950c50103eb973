package tioanime

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/parser"
	"github.com/Belphemur/AnimeProviders/internal/provider"

	"github.com/samber/lo"
)

var linkMarkers = []string{"var videos =", "var anime_id =", "server"}

// hostRewrites maps dead or redirecting embed prefixes to working ones
var hostRewrites = strings.NewReplacer(
	"https://embedsb.com/e/", "https://watchsb.com/e/",
	"https://ok.ru", "http://ok.ru",
)

// EmbedURLs extracts the de-duplicated embed URLs from player scripts
func EmbedURLs(scripts []string) []string {
	var urls []string
	for _, script := range scripts {
		unescaped := strings.ReplaceAll(script, `\/`, "/")
		for _, u := range parser.ExtractURLs(unescaped) {
			urls = append(urls, hostRewrites.Replace(u))
		}
	}
	return lo.Uniq(urls)
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

	urls := EmbedURLs(parser.ScriptsContaining(doc.Find("script"), linkMarkers...))
	logger.Debug().Str("provider", ID).Str("url", pageURL).Int("embeds", len(urls)).Msg("Found embed URLs")

	err = provider.ResolveAll(ctx, p.opts, ID, em, urls, func(ctx context.Context, embedURL string) error {
		return p.opts.Extractor.Extract(ctx, embedURL, pageURL, em.Stream)
	})
	return em.Summary(), err
}
