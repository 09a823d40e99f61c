// Package server assembles the fiber application: middleware, auth guards
// and the /api routes.
package server

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yourusername/ministry-site/internal/auth"
	"github.com/yourusername/ministry-site/internal/handlers"
	"github.com/yourusername/ministry-site/internal/metrics"
)

// BodyLimit leaves room for image uploads.
const BodyLimit = 12 * 1024 * 1024

type Options struct {
	Deps          handlers.Deps
	Metrics       metrics.Recorder
	Verifier      *auth.Verifier
	RequireWrites bool
	// ChatRateLimit is requests per minute per client IP; zero disables it.
	ChatRateLimit int
	AccessLog     bool
}

func New(opts Options) *fiber.App {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}
	if opts.Verifier == nil {
		opts.Verifier = auth.NewVerifier("")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Ministry Site",
		ServerHeader: "ministry-site",
		BodyLimit:    BodyLimit,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(instrument(opts.Metrics))

	app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))

	guards := handlers.Guards{
		Admin:     auth.Required(opts.Verifier),
		Writes:    auth.Passthrough,
		Viewer:    auth.Optional(opts.Verifier),
		ChatLimit: auth.Passthrough,
	}
	if opts.RequireWrites {
		guards.Writes = guards.Admin
	}
	if opts.ChatRateLimit > 0 {
		guards.ChatLimit = limiter.New(limiter.Config{
			Max:        opts.ChatRateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many chat requests, try again in a minute"})
			},
		})
	}

	handlers.New(opts.Deps).Register(app.Group("/api"), guards)
	return app
}

// errorHandler renders every unhandled error as {error}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// instrument counts requests per route template.
func instrument(rec metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		route := c.Route().Path
		rec.IncRequestsTotal(route, status)
		rec.ObserveRequestDuration(route, time.Since(start))
		return err
	}
}
