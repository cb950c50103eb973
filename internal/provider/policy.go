package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
)

// ShelfSource describes one home page shelf and how to build it
type ShelfSource struct {
	Label string
	URL   string
	Parse func(body []byte) ([]models.CatalogEntry, error)
}

// LoadShelves fetches and parses every shelf concurrently. Under the partial
// policy a failing shelf is kept as an empty shelf; under the strict policy
// the first failure is returned. Either way the result is
// apperrors.ErrEmptyCatalog when no shelf has an entry.
func LoadShelves(ctx context.Context, opts Options, providerID string, sources []ShelfSource) ([]models.CatalogShelf, error) {
	logger := config.GetLogger()

	shelves := make([]models.CatalogShelf, len(sources))
	for i, src := range sources {
		shelves[i] = models.CatalogShelf{Label: src.Label, Entries: []models.CatalogEntry{}}
	}
	load := func(ctx context.Context, i int, src ShelfSource) error {
		body, err := opts.Fetcher.Get(ctx, src.URL)
		if err != nil {
			return fmt.Errorf("shelf %q: %w", src.Label, err)
		}
		entries, err := src.Parse(body)
		if err != nil {
			return fmt.Errorf("shelf %q: %w", src.Label, err)
		}
		if entries != nil {
			shelves[i].Entries = entries
		}
		return nil
	}

	if opts.Strict {
		if err := ForEach(ctx, opts.Concurrency, sources, load); err != nil {
			return nil, err
		}
	} else {
		_, errs := Map(ctx, opts.Concurrency, sources, func(ctx context.Context, i int, src ShelfSource) (struct{}, error) {
			return struct{}{}, load(ctx, i, src)
		})
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if joined := errors.Join(errs...); joined != nil {
			logger.Warn().Err(joined).Str("provider", providerID).Msg("Partial success loading main page shelves")
		}
	}

	populated := 0
	for _, s := range shelves {
		if len(s.Entries) > 0 {
			populated++
		}
	}
	if populated == 0 {
		return nil, fmt.Errorf("%s: %w", providerID, apperrors.ErrEmptyCatalog)
	}

	logger.Debug().Str("provider", providerID).Int("shelves", len(shelves)).Int("populated", populated).Msg("Main page loaded")
	return shelves, nil
}

// ResolveAll runs resolve for every candidate with bounded concurrency and
// records the outcome on em. Under the partial policy failures are counted
// and logged; under the strict policy the first failure is returned.
func ResolveAll[T any](ctx context.Context, opts Options, providerID string, em *Emitter, candidates []T, resolve func(ctx context.Context, c T) error) error {
	logger := config.GetLogger()
	em.Candidates(len(candidates))

	if opts.Strict {
		return ForEach(ctx, opts.Concurrency, candidates, func(ctx context.Context, _ int, c T) error {
			if err := resolve(ctx, c); err != nil {
				em.Failed()
				return err
			}
			return nil
		})
	}

	_, errs := Map(ctx, opts.Concurrency, candidates, func(ctx context.Context, _ int, c T) (struct{}, error) {
		return struct{}{}, resolve(ctx, c)
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	var failures []error
	for _, err := range errs {
		if err != nil {
			em.Failed()
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		logger.Warn().Err(errors.Join(failures...)).Str("provider", providerID).
			Int("failed", len(failures)).Int("candidates", len(candidates)).Msg("Some links could not be resolved")
	}
	return nil
}
