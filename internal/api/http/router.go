package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Worker         *handlers.WorkerHandler
	Manager        *handlers.ManagerHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tenant := protected.Group("/tenant", auth.RequireRole(domain.RoleTenant))
	tenant.Post("/requests", cfg.Requests.Submit)
	tenant.Get("/requests", cfg.Requests.MyRequests)

	workerGroup := protected.Group("/worker", auth.RequireRole(domain.RoleWorker))
	workerGroup.Get("/queue", cfg.Worker.Queue)
	workerGroup.Post("/requests/:id/status", cfg.Worker.UpdateStatus)

	manager := protected.Group("/manager", auth.RequireRole(domain.RoleManager))
	manager.Get("/dashboard", cfg.Manager.Dashboard)
}
