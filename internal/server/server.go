// Package server assembles the Fiber application.
package server

import (
	"errors"
	"strings"
	"time"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/config"
	"restaurant-directory/internal/dashboard"
	"restaurant-directory/internal/logger"
	"restaurant-directory/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Deps struct {
	Store storage.Store
	Stats *dashboard.Service
}

func New(cfg *config.Config, deps Deps) *fiber.App {
	// prices and coordinates go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    20 * 1024 * 1024,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(requestLogger())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	registerRoutes(app, cfg, deps)
	return app
}

// ErrorHandler renders every error as {"detail": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperr.KindUnavailable || ae.Kind == apperr.KindInternal {
			logger.L().Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Stringer("kind", ae.Kind),
				zap.Error(err),
			)
		}
		return c.Status(ae.Kind.Status()).JSON(fiber.Map{"detail": ae.Message})
	}

	logger.L().Error("unexpected error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error"})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			switch {
			case errors.As(err, &fe):
				status = fe.Code
			default:
				status = apperr.KindOf(err).Status()
			}
		}

		logger.L().Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}
