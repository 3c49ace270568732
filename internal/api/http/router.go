package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/loan-service/internal/api/http/handlers"
	"github.com/spec-kit/loan-service/internal/auth"
	"github.com/spec-kit/loan-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Auth             *handlers.AuthHandler
	LoanApplications *handlers.LoanApplicationsHandler
	Users            *handlers.UsersHandler
	Portfolio        *handlers.PortfolioHandler
	AuthMiddleware   *auth.AuthMiddleware
	Metrics          *observability.Metrics
	// AuthRateLimit caps requests per minute per client IP on /auth; zero disables it.
	AuthRateLimit int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authGroup := app.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		authGroup.Use(limiter.New(limiter.Config{
			Max:        cfg.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(*fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		}))
	}
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/register/:code", cfg.Auth.RegisterWithCode)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	loans := app.Group("/loan-applications", cfg.AuthMiddleware.Handle)
	loans.Get("/", cfg.LoanApplications.List)
	loans.Post("/", cfg.LoanApplications.Create)
	loans.Get("/:id", cfg.LoanApplications.Get)
	loans.Put("/:id", cfg.LoanApplications.Update)
	loans.Put("/:id/submit", cfg.LoanApplications.Submit)
	loans.Put("/:id/approve", cfg.LoanApplications.Approve)
	loans.Put("/:id/reject", cfg.LoanApplications.Reject)
	loans.Post("/:id/notes", cfg.LoanApplications.AddNote)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	users.Get("/", cfg.Users.List)
	users.Post("/invitation", cfg.Users.CreateInvitation)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)

	app.Get("/portfolio-metrics", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Portfolio.Metrics)
}
