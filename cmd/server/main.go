package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Belphemur/AnimeProviders/internal/api"
	"github.com/Belphemur/AnimeProviders/internal/cache"
	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/config"
	grpcserver "github.com/Belphemur/AnimeProviders/internal/grpc"
	"github.com/Belphemur/AnimeProviders/internal/metrics"
	"github.com/Belphemur/AnimeProviders/internal/provider/all"
	"github.com/Belphemur/AnimeProviders/internal/services"

	"github.com/getsentry/sentry-go"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Str("server_address", cfg.Server.Address).
		Int("server_port", cfg.Server.Port).
		Int("grpc_port", cfg.GRPC.Port).
		Str("cache", cfg.Cache.Provider).
		Str("error_policy", cfg.Fetch.ErrorPolicy).
		Msg("Application started with configuration")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to initialise Sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	registry, err := all.NewRegistry(cfg, client.NewClient(cfg))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create providers")
	}

	responseCache, err := cache.FromConfig(cfg, "catalog")
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Cache.Provider).Msg("Failed to create response cache")
	}
	if responseCache != nil {
		defer responseCache.Close()
	}

	var ids []string
	for _, p := range registry.List() {
		ids = append(ids, p.ID())
	}
	grpcServer, health := grpcserver.NewGRPCServer(ids)
	catalog := services.NewCatalog(registry, responseCache, health)
	app := api.NewApp(catalog)

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	grpcAddress := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		logger.Fatal().Err(err).Str("address", grpcAddress).Msg("Failed to create gRPC listener")
	}
	go func() {
		logger.Info().Str("address", grpcAddress).Msg("Starting gRPC health server")
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		grpcServer.GracefulStop()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP API")
		}
	}()

	apiAddress := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Info().Str("address", apiAddress).Strs("providers", ids).Msg("Starting HTTP API")
	if err := app.Listen(apiAddress); err != nil {
		logger.Fatal().Err(err).Msg("Failed to serve HTTP API")
	}

	logger.Info().Msg("Server stopped gracefully")
}
