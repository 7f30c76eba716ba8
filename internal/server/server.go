// Package server assembles the Fiber application: services, handlers,
// middleware and routes.
package server

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/config"
	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/handlers"
	"github.com/anjaswicak/test-fullstack/internal/middleware"
	"github.com/anjaswicak/test-fullstack/internal/pagination"
	"github.com/anjaswicak/test-fullstack/internal/routes"
	"github.com/anjaswicak/test-fullstack/internal/services"
	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

const bodyLimit = 64 * 1024

func New(cfg *config.Config, db *gorm.DB) *fiber.App {
	tm := tokens.NewManager(cfg.TokenConfig())
	paging := pagination.Policy{DefaultLimit: cfg.DefaultPageSize, MaxLimit: cfg.MaxPageSize}

	authService := services.NewAuthService(db, tm)
	userService := services.NewUserService(db)
	socialService := services.NewSocialService(db)
	postService := services.NewPostService(db)

	authHandler := handlers.NewAuthHandler(authService, handlers.CookieConfig{
		Secure: cfg.IsProduction(),
		MaxAge: cfg.RefreshExpiry,
	})
	userHandler := handlers.NewUserHandler(userService, paging)
	socialHandler := handlers.NewSocialHandler(socialService)
	postHandler := handlers.NewPostHandler(postService, paging)
	healthHandler := handlers.NewHealthHandler(db)

	app := fiber.New(fiber.Config{
		AppName:      "feed-api",
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, tm, authHandler, userHandler, socialHandler, postHandler, healthHandler)
	return app
}

// ErrorHandler renders errors that escape handlers, such as unknown routes,
// oversized bodies and recovered panics.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only client errors expose their message.
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
