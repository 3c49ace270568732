package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/loan-service/internal/api/http"
	"github.com/spec-kit/loan-service/internal/api/http/handlers"
	"github.com/spec-kit/loan-service/internal/auth"
	"github.com/spec-kit/loan-service/internal/config"
	"github.com/spec-kit/loan-service/internal/events"
	"github.com/spec-kit/loan-service/internal/notification"
	"github.com/spec-kit/loan-service/internal/observability"
	"github.com/spec-kit/loan-service/internal/persistence"
	"github.com/spec-kit/loan-service/internal/repository"
	"github.com/spec-kit/loan-service/internal/service"
	"github.com/spec-kit/loan-service/internal/worker"
)

const (
	eventQueueSize    = 256
	notifyWorkers     = 4
	shutdownGraceTime = 15 * time.Second
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

	if !cfg.Auth.SecretUsable() {
		logger.Warn("AUTH_JWT_SECRET shorter than required; token issuance will fail",
			zap.Int("min_length", config.MinJWTSecretLength))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	pool := pg.PoolHandle()
	repos := repository.NewRepositories(pool)
	tokens := auth.NewTokenManager(cfg.Auth)
	sessions := auth.NewRedisSessionStore(redis.Client, cfg.Auth.SessionTTL)

	dispatcher := worker.NewAsyncDispatcher(events.NewInMemoryDispatcher(), eventQueueSize, notifyWorkers, logger)

	var notifier service.Notifier
	if cfg.Notification.GRPCAddr != "" {
		client, err := notification.Dial(cfg.Notification.GRPCAddr)
		if err != nil {
			logger.Fatal("failed to create notification client", zap.Error(err))
		}
		defer client.Close() //nolint:errcheck
		notifier = client
	} else {
		logger.Info("NOTIFY_GRPC_ADDR not set; notifications are logged only")
		notifier = notification.NewLogNotifier(logger)
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   repos.Users,
		Transactor: repository.NewTransactor(pool),
		Sessions:   sessions,
		Tokens:     tokens,
		Logger:     logger,
	})
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		UserRepo:       repos.Users,
		InviteCodeRepo: repos.InviteCodes,
		Logger:         logger,
	})
	loanService := service.NewLoanApplicationService(service.LoanApplicationDependencies{
		LoanApplicationRepo: repos.LoanApplications,
		Dispatcher:          dispatcher,
		Metrics:             metrics,
		Logger:              logger,
	})
	portfolioService := service.NewPortfolioService(repos.LoanApplications)
	notificationService := service.NewNotificationService(cfg.Notification, service.NotificationDependencies{
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Metrics:    metrics,
		Logger:     logger,
	})

	if cfg.Auth.AdminEmail != "" {
		created, err := authService.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			logger.Fatal("failed to seed admin", zap.Error(err))
		}
		if created {
			logger.Info("seeded admin account", zap.String("email", cfg.Auth.AdminEmail))
		}
	}

	worker.StartNotificationWorker(dispatcher, notificationService)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, cfg.App, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:             handlers.NewAuthHandler(authService),
		LoanApplications: handlers.NewLoanApplicationsHandler(loanService),
		Users:            handlers.NewUsersHandler(userService),
		Portfolio:        handlers.NewPortfolioHandler(portfolioService),
		AuthMiddleware:   auth.NewAuthMiddleware(tokens, sessions, logger),
		Metrics:          metrics,
		AuthRateLimit:    cfg.App.AuthRateLimit,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownGraceTime)
	defer stop()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("event queue not drained", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
