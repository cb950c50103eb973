package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Belphemur/AnimeProviders/internal/cache"
	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/provider/all"
	"github.com/Belphemur/AnimeProviders/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newCatalog).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newCatalog builds the catalog from the loaded configuration
func newCatalog() (services.Catalog, func(), error) {
	cfg := config.GetConfig()

	registry, err := all.NewRegistry(cfg, client.NewClient(cfg))
	if err != nil {
		return nil, nil, err
	}
	responseCache, err := cache.FromConfig(cfg, "")
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if responseCache != nil {
		cleanup = func() { _ = responseCache.Close() }
	}
	return services.NewCatalog(registry, responseCache, nil), cleanup, nil
}
