package services

import (
	"context"

	"github.com/Belphemur/AnimeProviders/internal/models"
)

// Catalog routes calls to the registered providers by id
type Catalog interface {
	// Providers lists the registered providers in registration order.
	Providers() []models.ProviderInfo
	// MainPage returns the home shelves of a provider.
	MainPage(ctx context.Context, providerID string) ([]models.CatalogShelf, error)
	// Search runs a free-text query against a provider.
	Search(ctx context.Context, providerID, query string) ([]models.CatalogEntry, error)
	// Load fetches the detail record of a show page.
	Load(ctx context.Context, providerID, pageURL string) (*models.DetailRecord, error)
	// LoadLinks resolves every stream of an episode page and returns them at once.
	LoadLinks(ctx context.Context, providerID, pageURL string) (*models.Links, error)
	// StreamLinks resolves the streams of an episode page, sending each one as
	// soon as it is found. The channel is closed when resolution ends; a failure
	// is sent as the last result.
	StreamLinks(ctx context.Context, providerID, pageURL string) <-chan models.StreamResult[models.StreamCandidate]
}

// HealthReporter receives the outcome of every provider call
type HealthReporter interface {
	Report(providerID string, err error)
}
