// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/amirphl/cereal-box/app/dto"
	"github.com/amirphl/cereal-box/app/handlers"
	"github.com/amirphl/cereal-box/app/middleware"
	"github.com/amirphl/cereal-box/config"
	"github.com/amirphl/cereal-box/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Options carries the optional pieces of the middleware chain
type Options struct {
	// AccessLog receives one JSON line per request; nil disables access logging
	AccessLog io.Writer
	// Metrics records Prometheus HTTP metrics; nil disables them
	Metrics *middleware.HTTPMetrics
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	visitorHandler handlers.VisitorHandlerInterface
	options        Options
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg config.ServerConfig, visitorHandler handlers.VisitorHandlerInterface, options Options) Router {
	app := fiber.New(fiber.Config{
		AppName:       "cereal.box",
		ServerHeader:  "cereal.box",
		ErrorHandler:  errorHandler,
		StrictRouting: true,
		CaseSensitive: true,
		BodyLimit:     1 * 1024 * 1024, // 1MB, request bodies are ignored
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		IdleTimeout:   cfg.IdleTimeout,
		JSONEncoder:   json.Marshal,
		JSONDecoder:   json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		visitorHandler: visitorHandler,
		options:        options,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Every method is accepted on every path
	r.app.All("/health", r.visitorHandler.Health)
	r.app.All("/db", r.visitorHandler.Database)

	// Everything else greets the visitor
	r.app.Use(r.visitorHandler.Greeting)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'none';",
		ReferrerPolicy:            "no-referrer",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	if r.options.AccessLog != nil {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":${jsonRequestID},"level":"info","method":${jsonMethod},"path":${jsonPath},"protocol":"${protocol}","ip":"${ip}","user_agent":${jsonUA},"status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":${jsonReferer}}` + "\n",
			CustomTags: accessLogTags,
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     r.options.AccessLog,
		}))
	}

	if r.options.Metrics != nil {
		r.app.Use(r.options.Metrics.Handler())
	}

	// Recovery middleware; the panic ends up in errorHandler
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			utils.LogEvent("error", "panic", map[string]any{
				"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
				"error":      fmt.Sprint(e),
				"path":       c.Path(),
				"method":     c.Method(),
				"ip":         c.IP(),
			})
		},
	}))
}

// accessLogTags JSON-encode the client-controlled fields of the access log line
var accessLogTags = map[string]logger.LogFunc{
	"jsonRequestID": jsonTag(func(c fiber.Ctx) string { return c.GetRespHeader(fiber.HeaderXRequestID) }),
	"jsonMethod":    jsonTag(func(c fiber.Ctx) string { return c.Method() }),
	"jsonPath":      jsonTag(func(c fiber.Ctx) string { return c.Path() }),
	"jsonUA":        jsonTag(func(c fiber.Ctx) string { return c.Get(fiber.HeaderUserAgent) }),
	"jsonReferer":   jsonTag(func(c fiber.Ctx) string { return c.Get(fiber.HeaderReferer) }),
}

func jsonTag(value func(c fiber.Ctx) string) logger.LogFunc {
	return func(output logger.Buffer, c fiber.Ctx, _ *logger.Data, _ string) (int, error) {
		encoded, err := json.Marshal(value(c))
		if err != nil {
			return 0, err
		}
		return output.Write(encoded)
	}
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Server running on %s", address)
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// errorHandler answers every unhandled error with a 200 JSON body; clients of
// this service never see a non-200 status.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	requestID := c.GetRespHeader(fiber.HeaderXRequestID)
	utils.LogEvent("error", "unhandled_error", map[string]any{
		"request_id": requestID,
		"status":     code,
		"path":       c.Path(),
		"error":      err.Error(),
	})

	return c.Status(fiber.StatusOK).JSON(dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: message,
			Details: fiber.Map{
				"status":     code,
				"request_id": requestID,
			},
		},
		Timestamp: utils.UTCNowISO(),
	})
}
