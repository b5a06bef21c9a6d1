// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/cereal-box/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// VisitorCounterRepository defines operations for the singleton visitor counter row
type VisitorCounterRepository interface {
	Repository[models.VisitorCounter, models.VisitorCounterFilter]
	// Bootstrap creates the table if needed and seeds the singleton row when the table is empty
	Bootstrap(ctx context.Context) error
	// IncrementAndFetch atomically bumps the counter and returns the updated row
	IncrementAndFetch(ctx context.Context) (*models.VisitorCounter, error)
}

// Gateway is the read side of the database gateway used by the business flows
type Gateway interface {
	Configured() bool
	Connected() bool
	// IncrementAndFetch returns (nil, nil) when no connection is established
	IncrementAndFetch(ctx context.Context) (*models.VisitorCounter, error)
}

// ManagedGateway adds the lifecycle operations owned by the process
type ManagedGateway interface {
	Gateway
	Connect(ctx context.Context) error
	Close() error
}
