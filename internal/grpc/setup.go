package grpc

import (
	"sync"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// serverMetrics returns the process-wide gRPC metrics, registering them on first use
var serverMetrics = sync.OnceValue(func() *grpcprom.ServerMetrics {
	m := grpcprom.NewServerMetrics(grpcprom.WithServerHandlingTimeHistogram())
	prometheus.MustRegister(m)
	return m
})

// NewGRPCServer creates the gRPC server of the service. It exposes the
// standard health service with one entry per provider id, plus reflection
// so grpcurl and grpc_health_probe work without descriptors. The returned
// reporter keeps the provider entries in sync with call outcomes.
func NewGRPCServer(providerIDs []string) (*grpc.Server, *HealthReporter) {
	m := serverMetrics()
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(m.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(m.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	reflection.Register(srv)
	m.InitializeMetrics(srv)

	return srv, NewHealthReporter(healthServer, providerIDs)
}
