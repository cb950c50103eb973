package grpc

import (
	"errors"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/config"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// servicePrefix namespaces the per-provider health entries
const servicePrefix = "animeproviders.provider."

// ServiceName returns the health service name of a provider
func ServiceName(providerID string) string {
	return servicePrefix + providerID
}

// HealthReporter mirrors provider call outcomes into a gRPC health server.
// A provider is NOT_SERVING after a call failed because the site is down or
// its markup changed, and SERVING again after the next success.
type HealthReporter struct {
	server *health.Server
	known  map[string]bool
}

// NewHealthReporter registers every provider as SERVING on server
func NewHealthReporter(server *health.Server, providerIDs []string) *HealthReporter {
	h := &HealthReporter{server: server, known: make(map[string]bool, len(providerIDs))}
	for _, id := range providerIDs {
		h.known[id] = true
		server.SetServingStatus(ServiceName(id), grpc_health_v1.HealthCheckResponse_SERVING)
	}
	server.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return h
}

// Report implements services.HealthReporter
func (h *HealthReporter) Report(providerID string, err error) {
	// Cancellations and caller errors say nothing about the site
	if !h.known[providerID] || (err != nil && !isSiteFailure(err)) {
		return
	}

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("provider", providerID).Msg("Marking provider as not serving")
	}
	h.server.SetServingStatus(ServiceName(providerID), status)
}

// isSiteFailure reports whether err points at the upstream site rather than the caller
func isSiteFailure(err error) bool {
	return errors.Is(err, &apperrors.UpstreamError{}) ||
		errors.Is(err, &apperrors.ParseError{}) ||
		errors.Is(err, apperrors.ErrEmptyCatalog)
}
