package routes

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/vms003/vatsal-medical/internal/auth"
	"github.com/vms003/vatsal-medical/internal/config"
	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/handlers"
	"github.com/vms003/vatsal-medical/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	tokens *auth.TokenIssuer,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	medicineHandler *handlers.MedicineHandler,
	doctorHandler *handlers.DoctorHandler,
	prescriptionHandler *handlers.PrescriptionHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter, RATE_LIMIT_PER_MIN req/min per IP (0 disables)
	if cfg.RateLimitPerIP > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:               cfg.RateLimitPerIP,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}))
	}

	api.Get("/ping", healthHandler.Ping)
	api.Get("/health", healthHandler.Check)

	// Auth (public, stricter limit: 10 req/min per IP)
	var authLimit fiber.Handler = func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimitPerIP > 0 {
		authLimit = limiter.New(limiter.Config{
			Max:               10,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		})
	}
	api.Post("/register", authLimit, authHandler.Register)
	api.Post("/login", authLimit, authHandler.Login)

	// Protected routes (JWT required) - middleware applied per route so
	// public routes never see it
	jwt := middleware.JWTProtected(tokens)

	api.Get("/profile", jwt, profileHandler.Get)
	api.Put("/profile", jwt, profileHandler.Update)

	api.Get("/medicines", jwt, medicineHandler.List)
	api.Post("/medicines", jwt, medicineHandler.Create)
	api.Put("/medicines/:id", jwt, medicineHandler.Update)
	api.Delete("/medicines/:id", jwt, medicineHandler.Delete)

	api.Get("/doctors", jwt, doctorHandler.List)
	api.Post("/doctors", jwt, doctorHandler.Create)
	api.Put("/doctors/:id", jwt, doctorHandler.Update)
	api.Delete("/doctors/:id", jwt, doctorHandler.Delete)

	api.Get("/prescriptions", jwt, prescriptionHandler.List)
	api.Post("/upload_prescription", jwt, prescriptionHandler.Upload)
	api.Delete("/prescriptions/:id", jwt, prescriptionHandler.Delete)

	// Unknown API paths
	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	})

	// Uploaded files (public)
	app.Get("/uploads/:filename", prescriptionHandler.Download)

	// Static frontend
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		app.Static("/", cfg.StaticDir, fiber.Static{Index: "login.html"})
	} else {
		slog.Info("static frontend disabled", "dir", cfg.StaticDir)
	}
}
