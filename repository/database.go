package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/amirphl/cereal-box/config"
	"github.com/amirphl/cereal-box/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseGateway owns the single database handle shared by every request.
// A failed Connect leaves the gateway disconnected for the rest of the process lifetime.
type DatabaseGateway struct {
	cfg        config.DatabaseConfig
	gormLogger logger.Interface

	mu        sync.RWMutex
	db        *gorm.DB
	counters  VisitorCounterRepository
	connected bool
}

// NewDatabaseGateway creates a disconnected gateway. A nil gormLogger falls back to gorm's default.
func NewDatabaseGateway(cfg config.DatabaseConfig, gormLogger logger.Interface) *DatabaseGateway {
	if gormLogger == nil {
		gormLogger = logger.Default
	}
	return &DatabaseGateway{
		cfg:        cfg,
		gormLogger: gormLogger,
	}
}

// Connect opens the connection and bootstraps the schema, both bounded by the configured
// connect timeout. The gateway is only marked connected when both steps succeed.
func (g *DatabaseGateway) Connect(ctx context.Context) error {
	if !g.cfg.Configured() {
		return ErrDatabaseNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.ConnectTimeout)
	defer cancel()

	db, err := openDatabase(ctx, g.cfg, g.gormLogger)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.db = db
	g.counters = NewVisitorCounterRepository(db)
	g.mu.Unlock()

	if err := g.Bootstrap(ctx); err != nil {
		_ = g.Close()
		return err
	}

	g.mu.Lock()
	g.connected = true
	g.mu.Unlock()

	return nil
}

// Bootstrap ensures the visitor counter table and its singleton row exist
func (g *DatabaseGateway) Bootstrap(ctx context.Context) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.counters == nil {
		return ErrDatabaseNotConfigured
	}
	if err := g.counters.Bootstrap(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return nil
}

// IncrementAndFetch bumps the singleton counter. It returns (nil, nil) while disconnected.
func (g *DatabaseGateway) IncrementAndFetch(ctx context.Context) (*models.VisitorCounter, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.connected || g.counters == nil {
		return nil, nil
	}
	return g.counters.IncrementAndFetch(ctx)
}

func (g *DatabaseGateway) Configured() bool {
	return g.cfg.Configured()
}

func (g *DatabaseGateway) Connected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connected
}

// DB exposes the underlying handle, nil while disconnected
func (g *DatabaseGateway) DB() *gorm.DB {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db
}

// Close waits for in-flight statements, then releases the handle. Safe to call more than once.
func (g *DatabaseGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.connected = false
	g.counters = nil
	if g.db == nil {
		return nil
	}

	sqlDB, err := g.db.DB()
	g.db = nil
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// openDatabase opens the postgres handle and verifies it with a context-bound ping
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:               gormLogger,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, classifyConnectError(err)
	}

	// Get underlying sql.DB for connection settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, classifyConnectError(err)
	}

	return db, nil
}
