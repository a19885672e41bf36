package bootstrap

import (
	"context"
	"log/slog"
	"net"
	"time"

	"go.uber.org/fx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/eleven-am/whisper-gateway/internal/transcription"
)

// TranscriptionServiceName is the gRPC health service name that mirrors
// transcription readiness. The empty name reports the same status.
const TranscriptionServiceName = "whisper.Transcription"

const readinessPollInterval = time.Second

func NewGRPCServer() *grpc.Server {
	return grpc.NewServer()
}

func NewHealthServer() *health.Server {
	hs := health.NewServer()
	setServing(hs, false)
	return hs
}

func RegisterHealthService(server *grpc.Server, hs *health.Server) {
	healthpb.RegisterHealthServer(server, hs)
}

func StartGRPCServer(lc fx.Lifecycle, server *grpc.Server, cfg *Config, logger *slog.Logger) {
	if cfg.GRPCAddr == "" {
		logger.Info("gRPC health server disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			go func() {
				logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
				if err := server.Serve(lis); err != nil {
					logger.Error("gRPC server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			server.GracefulStop()
			return nil
		},
	})
}

// WatchReadiness keeps the gRPC health status in step with the registry.
func WatchReadiness(lc fx.Lifecycle, hs *health.Server, registry *transcription.Registry) {
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go syncReadiness(hs, registry, readinessPollInterval, stop)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			hs.Shutdown()
			return nil
		},
	})
}

func syncReadiness(hs *health.Server, registry *transcription.Registry, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ready := false
	setServing(hs, ready)
	for {
		if now := registry.IsReady(); now != ready {
			ready = now
			setServing(hs, ready)
		}
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func setServing(hs *health.Server, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(TranscriptionServiceName, status)
}

var GRPCModule = fx.Options(
	fx.Provide(NewGRPCServer, NewHealthServer),
	fx.Invoke(RegisterHealthService),
	fx.Invoke(StartGRPCServer),
	fx.Invoke(WatchReadiness),
)
