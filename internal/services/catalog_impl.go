package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Belphemur/AnimeProviders/internal/cache"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/metrics"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/provider"

	"github.com/goccy/go-json"
)

const (
	opMainPage  = "main_page"
	opSearch    = "search"
	opLoad      = "load"
	opLoadLinks = "load_links"

	statusSuccess = "success"
	statusError   = "error"
	statusCached  = "cached"
)

// streamBuffer is the capacity of the StreamLinks channel
const streamBuffer = 16

// DefaultCatalog implements Catalog on top of a provider registry
type DefaultCatalog struct {
	registry *provider.Registry
	cache    cache.Cache
	health   HealthReporter
}

// NewCatalog creates a catalog service. responseCache and health may be nil.
func NewCatalog(registry *provider.Registry, responseCache cache.Cache, health HealthReporter) *DefaultCatalog {
	return &DefaultCatalog{registry: registry, cache: responseCache, health: health}
}

func (s *DefaultCatalog) Providers() []models.ProviderInfo {
	list := s.registry.List()
	infos := make([]models.ProviderInfo, 0, len(list))
	for _, p := range list {
		infos = append(infos, models.ProviderInfo{ID: p.ID(), Name: p.Name(), Lang: p.Lang()})
	}
	return infos
}

func (s *DefaultCatalog) MainPage(ctx context.Context, providerID string) ([]models.CatalogShelf, error) {
	return cached(s, providerID, opMainPage, "", func(p provider.Provider) ([]models.CatalogShelf, error) {
		return p.MainPage(ctx)
	})
}

func (s *DefaultCatalog) Search(ctx context.Context, providerID, query string) ([]models.CatalogEntry, error) {
	return cached(s, providerID, opSearch, query, func(p provider.Provider) ([]models.CatalogEntry, error) {
		return p.Search(ctx, query)
	})
}

func (s *DefaultCatalog) Load(ctx context.Context, providerID, pageURL string) (*models.DetailRecord, error) {
	return cached(s, providerID, opLoad, pageURL, func(p provider.Provider) (*models.DetailRecord, error) {
		return p.Load(ctx, pageURL)
	})
}

func (s *DefaultCatalog) LoadLinks(ctx context.Context, providerID, pageURL string) (*models.Links, error) {
	links := &models.Links{Streams: []models.StreamCandidate{}, Subtitles: []models.SubtitleRef{}}
	summary, err := s.resolveLinks(ctx, providerID, pageURL,
		func(sub models.SubtitleRef) { links.Subtitles = append(links.Subtitles, sub) },
		func(stream models.StreamCandidate) { links.Streams = append(links.Streams, stream) })
	if err != nil {
		return nil, err
	}
	links.Summary = summary
	return links, nil
}

func (s *DefaultCatalog) StreamLinks(ctx context.Context, providerID, pageURL string) <-chan models.StreamResult[models.StreamCandidate] {
	out := make(chan models.StreamResult[models.StreamCandidate], streamBuffer)

	go func() {
		defer close(out)
		send := func(r models.StreamResult[models.StreamCandidate]) {
			select {
			case out <- r:
			case <-ctx.Done():
			}
		}

		_, err := s.resolveLinks(ctx, providerID, pageURL, nil, func(stream models.StreamCandidate) {
			send(models.StreamResult[models.StreamCandidate]{Value: stream})
		})
		if err != nil {
			send(models.StreamResult[models.StreamCandidate]{Err: err})
		}
	}()

	return out
}

// resolveLinks runs LoadLinks with metrics and health reporting. Links are
// never cached.
func (s *DefaultCatalog) resolveLinks(ctx context.Context, providerID, pageURL string, onSubtitle provider.SubtitleCallback, onStream provider.StreamCallback) (models.LinkSummary, error) {
	logger := config.GetLogger()
	p, err := s.registry.Get(providerID)
	if err != nil {
		return models.LinkSummary{}, err
	}

	start := time.Now()
	summary, err := p.LoadLinks(ctx, pageURL, onSubtitle, onStream)
	s.observe(providerID, opLoadLinks, start, err)

	metrics.StreamsEmittedTotal.WithLabelValues(providerID).Add(float64(summary.Emitted))
	metrics.StreamResolutionFailuresTotal.WithLabelValues(providerID).Add(float64(summary.Failed))

	if err != nil {
		return summary, fmt.Errorf("%s links: %w", providerID, err)
	}
	logger.Debug().
		Str("provider", providerID).
		Str("url", pageURL).
		Int("candidates", summary.Candidates).
		Int("emitted", summary.Emitted).
		Int("failed", summary.Failed).
		Msg("Resolved links")
	return summary, nil
}

// cached serves a provider call from the response cache when possible and
// stores successful results in it
func cached[T any](s *DefaultCatalog, providerID, op, arg string, call func(provider.Provider) (T, error)) (T, error) {
	logger := config.GetLogger()
	var zero T

	p, err := s.registry.Get(providerID)
	if err != nil {
		return zero, err
	}

	key := providerID + ":" + op + ":" + arg
	if s.cache != nil {
		if raw, ok := s.cache.Get(key); ok {
			var value T
			err := json.Unmarshal(raw, &value)
			if err == nil {
				metrics.ProviderRequestsTotal.WithLabelValues(providerID, op, statusCached).Inc()
				return value, nil
			}
			logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		}
	}

	start := time.Now()
	value, err := call(p)
	s.observe(providerID, op, start, err)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", providerID, op, err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(value); err == nil {
			s.cache.Set(key, raw)
		} else {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to encode response for cache")
		}
	}
	return value, nil
}

func (s *DefaultCatalog) observe(providerID, op string, start time.Time, err error) {
	metrics.ProviderRequestDuration.WithLabelValues(providerID, op).Observe(time.Since(start).Seconds())

	status := statusSuccess
	if err != nil {
		status = statusError
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("provider", providerID).Str("operation", op).Msg("Provider call failed")
	}
	metrics.ProviderRequestsTotal.WithLabelValues(providerID, op, status).Inc()

	if s.health != nil && !errors.Is(err, context.Canceled) {
		s.health.Report(providerID, err)
	}
}
