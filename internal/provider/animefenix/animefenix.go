// Package animefenix implements the provider for animefenix.com.
package animefenix

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/provider"
)

const (
	// ID is the registry key of the provider
	ID             = "animefenix"
	name           = "Animefenix"
	lang           = "es"
	DefaultBaseURL = "https://animefenix.com"
)

func init() {
	provider.Register(ID, func(opts provider.Options) provider.Provider {
		return New(opts)
	})
}

// Provider scrapes animefenix.com
type Provider struct {
	opts provider.Options
}

// New creates the animefenix provider
func New(opts provider.Options) *Provider {
	return &Provider{opts: opts.WithDefaults(DefaultBaseURL)}
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return name }
func (p *Provider) Lang() string { return lang }

// BaseURL returns the site root the provider talks to
func (p *Provider) BaseURL() string { return p.opts.BaseURL }

// MainPage implements provider.Provider
func (p *Provider) MainPage(ctx context.Context) ([]models.CatalogShelf, error) {
	logger := config.GetLogger()
	logger.Debug().Str("provider", ID).Msg("Loading main page")

	base := p.opts.BaseURL
	listing := func(mediaType models.MediaType) func([]byte) ([]models.CatalogEntry, error) {
		return func(body []byte) ([]models.CatalogEntry, error) {
			return parseListing(bytes.NewReader(body), base, mediaType)
		}
	}

	return provider.LoadShelves(ctx, p.opts, ID, []provider.ShelfSource{
		{
			Label: "Últimos episodios",
			URL:   base + "/",
			Parse: func(body []byte) ([]models.CatalogEntry, error) {
				return parseLatest(bytes.NewReader(body), base)
			},
		},
		{Label: "Animes", URL: base + "/", Parse: listing(models.MediaTypeSeries)},
		{Label: "Peliculas", URL: base + "/animes?type[]=movie&order=default", Parse: listing(models.MediaTypeMovie)},
		{Label: "OVA's", URL: base + "/animes?type[]=ova&order=default", Parse: listing(models.MediaTypeOVA)},
	})
}

// Search implements provider.Provider
func (p *Provider) Search(ctx context.Context, query string) ([]models.CatalogEntry, error) {
	logger := config.GetLogger()
	searchURL := fmt.Sprintf("%s/animes?q=%s", p.opts.BaseURL, url.QueryEscape(query))
	logger.Debug().Str("provider", ID).Str("query", query).Msg("Searching")

	body, err := p.opts.Fetcher.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	entries, err := parseListing(bytes.NewReader(body), p.opts.BaseURL, models.MediaTypeSeries)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return entries, nil
}

// Load implements provider.Provider
func (p *Provider) Load(ctx context.Context, pageURL string) (*models.DetailRecord, error) {
	body, err := p.opts.Fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pageURL, err)
	}
	return parseDetail(bytes.NewReader(body), pageURL, p.opts.BaseURL)
}
