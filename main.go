// Package main provides the main entry point for the cereal.box visitor service
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/cereal-box/app/handlers"
	"github.com/amirphl/cereal-box/app/middleware"
	"github.com/amirphl/cereal-box/app/router"
	"github.com/amirphl/cereal-box/app/services"
	businessflow "github.com/amirphl/cereal-box/business_flow"
	"github.com/amirphl/cereal-box/config"
	_ "github.com/amirphl/cereal-box/docs"
	"github.com/amirphl/cereal-box/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	config        *config.Config
	gateway       repository.ManagedGateway
	metrics       services.MetricsService
	router        router.Router
	server        *fiber.App
	registry      *prometheus.Registry
	metricsServer *http.Server
	logWriter     io.Writer
	logCloser     io.Closer
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logWriter, logCloser := initializeLogging(cfg.Logging)
	log.Printf("Starting cereal.box %s (%s)...", cfg.Deployment.Version, cfg.Deployment.Environment)

	// Initialize application
	app, err := initializeApplication(cfg, logWriter, logCloser)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.connectDatabase(context.Background()); err != nil {
		log.Fatalf("Database unavailable and DB_FAIL_OPEN is false: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	app.startMetricsServer()

	// Start server in goroutine
	go func() {
		if err := app.router.Start(cfg.Server.Address()); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Printf("Received %s, shutting down gracefully...", sig)

	app.shutdown()
	log.Println("Server stopped")
}

// initializeLogging routes the standard logger to stdout, a rotated file, or both
func initializeLogging(cfg config.LoggingConfig) (io.Writer, io.Closer) {
	log.SetFlags(log.LstdFlags | log.LUTC)

	var rotator *lumberjack.Logger
	if cfg.Output == "file" || cfg.Output == "both" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  false,
		}
	}

	var writer io.Writer
	switch cfg.Output {
	case "file":
		writer = rotator
	case "both":
		writer = io.MultiWriter(os.Stdout, rotator)
	default:
		writer = os.Stdout
	}
	log.SetOutput(writer)

	if rotator == nil {
		return writer, nil
	}
	return writer, rotator
}

// newGormLogger binds gorm's logger to the application log writer
func newGormLogger(writer io.Writer, level string, cfg config.DatabaseConfig) logger.Interface {
	logLevel := logger.Warn
	switch level {
	case "debug":
		logLevel = logger.Info
	case "error":
		logLevel = logger.Error
	}

	return logger.New(log.New(writer, "\r\n", log.LstdFlags|log.LUTC), logger.Config{
		SlowThreshold:             cfg.SlowQueryTime,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.Config, logWriter io.Writer, logCloser io.Closer) (*Application, error) {
	// Metrics registry shared by the HTTP middleware and the visitor flow
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metricsService, err := services.NewPrometheusMetricsService(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	// Initialize database gateway; it stays disconnected until connectDatabase
	gateway := repository.NewDatabaseGateway(cfg.Database, newGormLogger(logWriter, cfg.Logging.Level, cfg.Database))

	// Initialize business flows
	visitorFlow := businessflow.NewVisitorFlow(gateway, metricsService)

	// Initialize handlers
	visitorHandler := handlers.NewVisitorHandler(visitorFlow, cfg.Deployment.Version, cfg.Server.RequestTimeout)

	options := router.Options{}
	if cfg.Logging.EnableAccessLog {
		options.AccessLog = logWriter
	}
	if cfg.Metrics.Enabled {
		options.Metrics = middleware.NewHTTPMetrics(registry)
	}

	// Initialize router
	appRouter := router.NewFiberRouter(cfg.Server, visitorHandler, options)

	return &Application{
		config:    cfg,
		gateway:   gateway,
		metrics:   metricsService,
		router:    appRouter,
		server:    appRouter.GetApp(),
		registry:  registry,
		logWriter: logWriter,
		logCloser: logCloser,
	}, nil
}

// connectDatabase connects and bootstraps the database. Failures are logged and absorbed
// unless fail-open is disabled, in which case the error is returned.
func (a *Application) connectDatabase(ctx context.Context) error {
	defer func() {
		a.metrics.SetDatabaseConnected(a.gateway.Connected())
	}()

	if !a.config.Database.Configured() {
		log.Println("DATABASE_URL not set, running without persistence")
		return nil
	}

	if err := a.gateway.Connect(ctx); err != nil {
		if repository.IsConnectionFailure(err) {
			log.Printf("Database connection failed: %v", err)
		} else {
			log.Printf("Database startup failed: %v", err)
		}
		if a.config.Database.FailOpen {
			log.Println("Continuing without persistence")
			return nil
		}
		return err
	}

	log.Println("Database connected and visitor counter ready")
	return nil
}

// metricsHandler serves Prometheus metrics and, in development, the API document
func (a *Application) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(a.config.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))

	if a.config.Deployment.IsDevelopment() {
		mux.HandleFunc("/swagger.json", func(w http.ResponseWriter, _ *http.Request) {
			doc, err := swag.ReadDoc()
			if err != nil {
				http.Error(w, "Failed to load Swagger documentation", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, doc)
		})
		log.Println("API documentation enabled for development")
	}

	return mux
}

// startMetricsServer starts the metrics listener when enabled
func (a *Application) startMetricsServer() {
	if !a.config.Metrics.Enabled {
		return
	}

	a.metricsServer = &http.Server{
		Addr:         a.config.Metrics.Address(),
		Handler:      a.metricsHandler(),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Metrics server starting on %s%s", a.metricsServer.Addr, a.config.Metrics.Path)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server failed: %v", err)
		}
	}()
}

// shutdown releases the database handle first, then stops the listeners
func (a *Application) shutdown() {
	if err := a.gateway.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed")
	}
	a.metrics.SetDatabaseConnected(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error stopping metrics server: %v", err)
		}
	}

	if err := a.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	} else {
		log.Println("HTTP server closed")
	}

	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}
