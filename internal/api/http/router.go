package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Categories     *handlers.CategoriesHandler
	Clients        *handlers.ClientsHandler
	Technicians    *handlers.TechniciansHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role gates here are the coarse
// boundary; per-ticket ownership checks run inside the ticket service.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", auth.RequireRoles(domain.RoleClient, domain.RoleAdmin), cfg.Tickets.Create)
	tickets.Get("/", auth.RequireRoles(domain.RoleAdmin), cfg.Tickets.List)
	tickets.Get("/client/:clientId", auth.RequireRoles(), cfg.Tickets.ListByClient)
	tickets.Get("/technician/:technicianId", auth.RequireRoles(), cfg.Tickets.ListByTechnician)
	tickets.Get("/:id", auth.RequireRoles(), cfg.Tickets.Get)
	tickets.Patch("/:id/status", auth.RequireRoles(domain.RoleAdmin, domain.RoleTechnician), cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id", auth.RequireRoles(domain.RoleAdmin, domain.RoleTechnician), cfg.Tickets.Update)
	tickets.Delete("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Tickets.Delete)

	categories := app.Group("/categories", cfg.AuthMiddleware.Handle)
	categories.Get("/", auth.RequireRoles(), cfg.Categories.List)
	categories.Get("/:id", auth.RequireRoles(), cfg.Categories.Get)
	categories.Post("/", auth.RequireRoles(domain.RoleAdmin), cfg.Categories.Create)
	categories.Patch("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Categories.Update)
	categories.Delete("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Categories.Delete)

	clients := app.Group("/clients", cfg.AuthMiddleware.Handle)
	clients.Get("/", auth.RequireRoles(domain.RoleAdmin), cfg.Clients.List)
	clients.Get("/:id", auth.RequireRoles(), cfg.Clients.Get)
	clients.Post("/", auth.RequireRoles(domain.RoleAdmin), cfg.Clients.Create)
	clients.Patch("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Clients.Update)
	clients.Delete("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Clients.Delete)

	technicians := app.Group("/technicians", cfg.AuthMiddleware.Handle)
	technicians.Get("/", auth.RequireRoles(), cfg.Technicians.List)
	technicians.Get("/:id", auth.RequireRoles(), cfg.Technicians.Get)
	technicians.Post("/", auth.RequireRoles(domain.RoleAdmin), cfg.Technicians.Create)
	technicians.Patch("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Technicians.Update)
	technicians.Delete("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Technicians.Delete)
}
