package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/grading-gateway/internal/config"
	"github.com/classpulse/grading-gateway/internal/handler"
	"github.com/classpulse/grading-gateway/internal/middleware"
	"github.com/classpulse/grading-gateway/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradebookHandler *handler.GradebookHandler
	InsightsHandler  *handler.InsightsHandler
	EventsHandler    *handler.EventsHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.Next()
	}, middleware.AuthOptions{Role: middleware.AuthRoleTeacher})

	// Gradebook (submission views & overrides)
	if deps.GradebookHandler != nil {
		gradebook := app.Group("/api/v2/gradebook", jwtMiddleware, teacherOnly)

		overrideLimiter := middleware.RateLimit("gradebook_override", cfg.OverrideRateLimit, cfg.OverrideRateWindow)
		gradebook.Use(func(c *fiber.Ctx) error {
			if c.Method() == fiber.MethodPost {
				return overrideLimiter(c)
			}
			return c.Next()
		})

		deps.GradebookHandler.Register(gradebook)
	}

	// Class insights (recommendations & misconceptions)
	if deps.InsightsHandler != nil {
		insights := app.Group("/api/v2/insights", jwtMiddleware, teacherOnly)
		deps.InsightsHandler.Register(insights)
	}

	// Grading event stream
	if deps.EventsHandler != nil {
		events := app.Group("/api/v2/events", jwtMiddleware)
		deps.EventsHandler.Register(events)
	}
}
