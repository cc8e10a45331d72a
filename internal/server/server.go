// Package server assembles the Fiber app: middleware chain, services and routes.
package server

import (
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/vms003/vatsal-medical/internal/auth"
	"github.com/vms003/vatsal-medical/internal/config"
	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/events"
	"github.com/vms003/vatsal-medical/internal/handlers"
	"github.com/vms003/vatsal-medical/internal/middleware"
	"github.com/vms003/vatsal-medical/internal/routes"
	"github.com/vms003/vatsal-medical/internal/services"
	"github.com/vms003/vatsal-medical/internal/storage"
	"github.com/vms003/vatsal-medical/internal/store"
)

func New(cfg *config.Config, st store.Store, files storage.FileStore, publisher events.Publisher) *fiber.App {
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	// Services
	authService := services.NewAuthService(st.Users(), tokens)
	profileService := services.NewProfileService(st.Users())
	medicineService := services.NewMedicineService(st.Medicines())
	doctorService := services.NewDoctorService(st.Doctors())
	prescriptionService := services.NewPrescriptionService(st.Prescriptions(), files, publisher)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	medicineHandler := handlers.NewMedicineHandler(medicineService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	prescriptionHandler := handlers.NewPrescriptionHandler(prescriptionService)
	healthHandler := handlers.NewHealthHandler(st)

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.UploadMaxBytes,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware, only once sentry.Init has run
	if sentry.CurrentHub().Client() != nil {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, tokens, authHandler, profileHandler, medicineHandler, doctorHandler, prescriptionHandler, healthHandler)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals(requestid.ConfigDefault.ContextKey),
			"error", err.Error(),
		)
		message = "internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
