package health

import (
	"context"
	"net"
	"time"

	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"google.golang.org/grpc"

	healthgrpc "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// EngineService is the health service name reported for the process as a whole.
const EngineService = "matching-engine"

// MarketService returns the health service name of one market.
func MarketService(market string) string {
	return "market/" + market
}

// Server wraps grpc health server
type Server struct {
	server *healthgrpc.Server
	logger *logger.Logger
}

// NewServer creates health server using default grpc health server.
func NewServer(log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		server: healthgrpc.NewServer(),
		logger: log,
	}
}

// InitMarkets marks the engine and every market as SERVING.
func (h *Server) InitMarkets(markets []string) {
	h.server.SetServingStatus(EngineService, healthpb.HealthCheckResponse_SERVING)
	for _, market := range markets {
		h.server.SetServingStatus(MarketService(market), healthpb.HealthCheckResponse_SERVING)
	}
}

// SetMarketServing flips the status of one market.
func (h *Server) SetMarketServing(market string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(MarketService(market), status)
}

// Watch runs probe every interval until ctx is done and reports the engine
// as NOT_SERVING while it fails.
func (h *Server) Watch(ctx context.Context, interval time.Duration, probe func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := probe(ctx)
		switch {
		case err != nil && serving:
			serving = false
			h.server.SetServingStatus(EngineService, healthpb.HealthCheckResponse_NOT_SERVING)
			h.logger.Error(err, logger.Field{Key: "action", Value: "health_probe"})
		case err == nil && !serving:
			serving = true
			h.server.SetServingStatus(EngineService, healthpb.HealthCheckResponse_SERVING)
			h.logger.Info("Health probe recovered")
		}
	}
}

// Shutdown sets all serving status to NOT_SERVING.
func (h *Server) Shutdown() {
	h.server.Shutdown()
}

// Register registers health server.
func (h *Server) Register(grpc *grpc.Server) {
	healthpb.RegisterHealthServer(grpc, h.server)
}

// Serve registers the health service on a new grpc server listening on lis
// and serves until ctx is done.
func (h *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	h.Register(srv)

	go func() {
		<-ctx.Done()
		h.Shutdown()
		srv.GracefulStop()
	}()

	h.logger.Info("Health server listening", logger.Field{Key: "addr", Value: lis.Addr().String()})
	if err := srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
