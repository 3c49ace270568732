package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/spec-kit/loan-service/internal/config"
	"github.com/spec-kit/loan-service/internal/notification"
	"github.com/spec-kit/loan-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	lis, err := net.Listen("tcp", cfg.Notifier.ListenAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.Notifier.ListenAddr), zap.Error(err))
	}

	srv := grpc.NewServer()
	notification.RegisterNotificationServer(srv, notification.NewLoggingServer(logger))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(notification.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	go func() {
		logger.Info("notification service listening", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil {
			logger.Fatal("grpc serve", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	healthSrv.Shutdown()
	srv.GracefulStop()
}
