package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nhatminh-dev/lavang-api/internal/config"
	"github.com/nhatminh-dev/lavang-api/internal/handler"
	"github.com/nhatminh-dev/lavang-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EnrollmentHandler *handler.EnrollmentHandler
	SchoolYearHandler *handler.SchoolYearHandler
	FamilyHandler     *handler.FamilyHandler
	ClassHandler      *handler.ClassHandler
	PaymentHandler    *handler.PaymentHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
	AdminMiddleware   fiber.Handler
	EnrollmentLimiter fiber.Handler
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

	noop := func(c *fiber.Ctx) error { return c.Next() }
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = noop
	}
	adminMiddleware := deps.AdminMiddleware
	if adminMiddleware == nil {
		adminMiddleware = noop
	}

	// Public enrollment portal
	if deps.EnrollmentHandler != nil {
		enrollment := app.Group("/api/enrollment")
		if deps.EnrollmentLimiter != nil {
			enrollment.Use(deps.EnrollmentLimiter)
		}
		deps.EnrollmentHandler.Register(enrollment)
	}

	// Staff-facing administration
	if deps.SchoolYearHandler != nil {
		years := app.Group("/api/school-years", jwtMiddleware, adminMiddleware)
		deps.SchoolYearHandler.Register(years)
	}

	if deps.FamilyHandler != nil {
		families := app.Group("/api/families", jwtMiddleware, adminMiddleware)
		deps.FamilyHandler.Register(families)
	}

	if deps.ClassHandler != nil {
		classes := app.Group("/api/classes", jwtMiddleware, adminMiddleware)
		deps.ClassHandler.Register(classes)

		programs := app.Group("/api/programs", jwtMiddleware, adminMiddleware)
		deps.ClassHandler.RegisterPrograms(programs)
	}

	if deps.PaymentHandler != nil {
		payments := app.Group("/api/payments", jwtMiddleware, adminMiddleware)
		deps.PaymentHandler.Register(payments)
	}

	if deps.ActivityHandler != nil {
		activity := app.Group("/api/admin/activity", jwtMiddleware, adminMiddleware)
		deps.ActivityHandler.Register(activity)
	}
}
