// Package tioanime implements the provider for tioanime.com.
package tioanime

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/parser"
	"github.com/Belphemur/AnimeProviders/internal/provider"

	"github.com/goccy/go-json"
)

const (
	// ID is the registry key of the provider
	ID             = "tioanime"
	name           = "TioAnime"
	lang           = "es"
	DefaultBaseURL = "https://tioanime.com"

	// firstDirectoryYear is the lower bound of the directory year filter
	firstDirectoryYear = 1950
	directoryTypeMovie = "1"
)

func init() {
	provider.Register(ID, func(opts provider.Options) provider.Provider {
		return New(opts)
	})
}

// Provider scrapes tioanime.com
type Provider struct {
	opts provider.Options
}

// New creates the tioanime provider
func New(opts provider.Options) *Provider {
	return &Provider{opts: opts.WithDefaults(DefaultBaseURL)}
}

func (p *Provider) ID() string   { return ID }
func (p *Provider) Name() string { return name }
func (p *Provider) Lang() string { return lang }

// BaseURL returns the site root the provider talks to
func (p *Provider) BaseURL() string { return p.opts.BaseURL }

// directoryURL builds a directory listing URL filtered by status and
// optionally by type, covering every year up to the current one
func (p *Provider) directoryURL(status, kind string) string {
	q := url.Values{}
	if kind != "" {
		q.Set("type[]", kind)
	}
	q.Set("year", fmt.Sprintf("%d,%d", firstDirectoryYear, p.opts.Now().Year()))
	q.Set("status", status)
	q.Set("sort", "recent")
	return p.opts.BaseURL + "/directorio?" + q.Encode()
}

// MainPage implements provider.Provider
func (p *Provider) MainPage(ctx context.Context) ([]models.CatalogShelf, error) {
	logger := config.GetLogger()
	logger.Debug().Str("provider", ID).Msg("Loading main page")

	base := p.opts.BaseURL
	directory := func(mediaType models.MediaType) func([]byte) ([]models.CatalogEntry, error) {
		return func(body []byte) ([]models.CatalogEntry, error) {
			return parseDirectory(bytes.NewReader(body), base, mediaType)
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
		{Label: "Animes", URL: p.directoryURL("2", ""), Parse: directory(models.MediaTypeSeries)},
		{Label: "En Emisión", URL: p.directoryURL("1", ""), Parse: directory(models.MediaTypeSeries)},
		{Label: "Películas", URL: p.directoryURL("2", directoryTypeMovie), Parse: directory(models.MediaTypeMovie)},
	})
}

// searchResult is one element of the /api/search JSON reply
type searchResult struct {
	ID     flexString `json:"id"`
	Title  string     `json:"title"`
	Type   flexString `json:"type"`
	LastID flexString `json:"last_id"`
	Slug   string     `json:"slug"`
}

// flexString accepts either a JSON string or a JSON number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(data)
	}
	return nil
}

// Search implements provider.Provider
func (p *Provider) Search(ctx context.Context, query string) ([]models.CatalogEntry, error) {
	logger := config.GetLogger()
	logger.Debug().Str("provider", ID).Str("query", query).Msg("Searching")

	body, err := p.opts.Fetcher.PostForm(ctx, p.opts.BaseURL+"/api/search", url.Values{"value": {query}},
		client.WithHeader("X-Requested-With", "XMLHttpRequest"),
		client.WithReferer(p.opts.BaseURL+"/"))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var results []searchResult
	if err := json.Unmarshal(bytes.TrimSpace(body), &results); err != nil {
		return nil, fmt.Errorf("search %q: decode response: %w", query, err)
	}

	entries := make([]models.CatalogEntry, 0, len(results))
	for _, r := range results {
		if r.Slug == "" || r.Title == "" {
			continue
		}
		entry := models.CatalogEntry{
			Title:     r.Title,
			URL:       fmt.Sprintf("%s/anime/%s", p.opts.BaseURL, r.Slug),
			Provider:  ID,
			MediaType: models.MediaTypeSeries,
			DubStatus: parser.DubStatusFromTitle(r.Title),
		}
		if r.ID != "" {
			entry.PosterURL = fmt.Sprintf("%s/uploads/portadas/%s.jpg", p.opts.BaseURL, r.ID)
		}
		if string(r.Type) == directoryTypeMovie {
			entry.MediaType = models.MediaTypeMovie
		}
		entries = append(entries, entry)
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
