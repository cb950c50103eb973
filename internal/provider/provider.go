package provider

import (
	"context"
	"time"

	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/extractor"
	"github.com/Belphemur/AnimeProviders/internal/models"
)

// SubtitleCallback receives subtitle tracks found while resolving links
type SubtitleCallback func(models.SubtitleRef)

// StreamCallback receives stream candidates as soon as they are resolved
type StreamCallback func(models.StreamCandidate)

// Provider is the contract every site adapter implements
type Provider interface {
	// ID is the stable registry key, e.g. "tioanime".
	ID() string
	// Name is the human readable site name.
	Name() string
	// Lang is the ISO 639-1 language of the site content.
	Lang() string

	// MainPage returns the labelled home page shelves.
	MainPage(ctx context.Context) ([]models.CatalogShelf, error)
	// Search returns the entries matching query; no match yields an empty slice.
	Search(ctx context.Context, query string) ([]models.CatalogEntry, error)
	// Load parses the detail page at pageURL.
	Load(ctx context.Context, pageURL string) (*models.DetailRecord, error)
	// LoadLinks resolves the streams of the player page at pageURL. Callbacks
	// are never invoked concurrently.
	LoadLinks(ctx context.Context, pageURL string, onSubtitle SubtitleCallback, onStream StreamCallback) (models.LinkSummary, error)
}

// Options holds the collaborators and settings shared by every provider
type Options struct {
	// Fetcher performs outbound HTTP requests.
	Fetcher client.Fetcher
	// Extractor resolves third-party embed URLs.
	Extractor extractor.Extractor
	// BaseURL overrides the site root, for mirrors and tests.
	BaseURL string
	// Concurrency bounds the number of simultaneous sub-requests.
	Concurrency int
	// Strict makes the first failing sub-request abort the whole call.
	Strict bool
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// OptionsFromConfig builds provider options from the application configuration
func OptionsFromConfig(cfg *config.Config, fetcher client.Fetcher, ex extractor.Extractor) Options {
	return Options{
		Fetcher:     fetcher,
		Extractor:   ex,
		Concurrency: cfg.GetConcurrency(),
		Strict:      cfg.IsStrict(),
	}
}

// WithDefaults fills unset fields, using defaultBaseURL when no override is set
func (o Options) WithDefaults(defaultBaseURL string) Options {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Extractor == nil {
		o.Extractor = extractor.NewPassthrough()
	}
	return o
}
