package api

import (
	"bufio"
	"context"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/models"
	"github.com/Belphemur/AnimeProviders/internal/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type handlers struct {
	catalog services.Catalog
}

func registerRoutes(app *fiber.App, h *handlers) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	v1 := app.Group("/api/v1")
	v1.Get("/providers", h.providers)

	p := v1.Group("/providers/:id")
	p.Get("/home", h.home)
	p.Get("/search", h.search)
	p.Get("/load", h.load)
	p.Get("/links", h.links)
	p.Get("/links/stream", h.streamLinks)
}

// requiredQuery returns the query parameter or a 400 error when it is empty
func requiredQuery(c *fiber.Ctx, key string) (string, error) {
	v := c.Query(key)
	if v == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "missing query parameter "+key)
	}
	return v, nil
}

func (h *handlers) known(id string) bool {
	return lo.ContainsBy(h.catalog.Providers(), func(p models.ProviderInfo) bool { return p.ID == id })
}

func (h *handlers) providers(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Providers())
}

func (h *handlers) home(c *fiber.Ctx) error {
	shelves, err := h.catalog.MainPage(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(shelves)
}

func (h *handlers) search(c *fiber.Ctx) error {
	q, err := requiredQuery(c, "q")
	if err != nil {
		return err
	}
	results, err := h.catalog.Search(c.UserContext(), c.Params("id"), q)
	if err != nil {
		return err
	}
	return c.JSON(results)
}

func (h *handlers) load(c *fiber.Ctx) error {
	pageURL, err := requiredQuery(c, "url")
	if err != nil {
		return err
	}
	record, err := h.catalog.Load(c.UserContext(), c.Params("id"), pageURL)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *handlers) links(c *fiber.Ctx) error {
	pageURL, err := requiredQuery(c, "url")
	if err != nil {
		return err
	}
	links, err := h.catalog.LoadLinks(c.UserContext(), c.Params("id"), pageURL)
	if err != nil {
		return err
	}
	return c.JSON(links)
}

// streamedLink is one line of the newline-delimited links stream
type streamedLink struct {
	Stream *models.StreamCandidate `json:"stream,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

// streamLinks writes every stream as its own JSON line as soon as it is resolved
func (h *handlers) streamLinks(c *fiber.Ctx) error {
	pageURL, err := requiredQuery(c, "url")
	if err != nil {
		return err
	}
	id := c.Params("id")
	if !h.known(id) {
		return apperrors.NewProviderNotFoundError(id)
	}

	// The stream writer outlives the handler, so it gets its own context
	ctx, cancel := context.WithCancel(context.Background())
	results := h.catalog.StreamLinks(ctx, id, pageURL)

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		logger := config.GetLogger()
		enc := json.NewEncoder(w)
		for r := range results {
			line := streamedLink{}
			if r.Err != nil {
				line.Error = r.Err.Error()
			} else {
				stream := r.Value
				line.Stream = &stream
			}
			if err := enc.Encode(line); err != nil {
				logger.Debug().Err(err).Str("provider", id).Msg("Client went away during link stream")
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
