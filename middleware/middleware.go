package middleware

import (
	"errors"
	"time"

	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// SetupMiddleware configures all application middleware
func SetupMiddleware(app *fiber.App, log zerolog.Logger) {
	// Request ID middleware - adds unique ID to each request
	app.Use(requestid.New())

	// Request logging through the application logger
	app.Use(Logger(log))

	// Recover middleware - recovers from panics
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Security middleware
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: false,
		ExposeHeaders:    "X-Request-ID",
		MaxAge:           86400, // 24 hours
	}))
}

// Logger returns a request logging middleware over zerolog.
func Logger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("ip", c.IP()).
			Msg("request completed")

		return err
	}
}

// ErrorHandler maps typed application errors to HTTP responses. Anything
// outside the enumerated kinds becomes a 500 with a generic body.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *errs.Error
		if errors.As(err, &appErr) {
			status := fiber.StatusInternalServerError
			switch appErr.Kind {
			case errs.KindValidation:
				status = fiber.StatusBadRequest
			case errs.KindNotFound:
				status = fiber.StatusNotFound
			case errs.KindConflict:
				status = fiber.StatusConflict
			case errs.KindUnauthorized:
				status = fiber.StatusUnauthorized
			case errs.KindCapacity:
				status = fiber.StatusServiceUnavailable
			}

			if appErr.Kind == errs.KindInternal {
				log.Error().Err(appErr).Str("path", c.Path()).Msg("internal error")
				return c.Status(status).JSON(models.ErrorResponse("Internal Server Error",
					models.ErrorDetail{Kind: string(appErr.Kind), Message: "internal error"}))
			}
			return c.Status(status).JSON(models.ErrorResponse(appErr.Message,
				models.ErrorDetail{Kind: string(appErr.Kind), Message: appErr.Message}))
		}

		// fiber routing errors keep their own status codes
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   true,
				"message": fiberErr.Message,
			})
		}

		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Internal Server Error",
		})
	}
}
