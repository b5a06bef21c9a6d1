package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Connection failure taxonomy
var (
	ErrDatabaseNotConfigured = errors.New("database not configured")
	ErrDatabaseUnreachable   = errors.New("database unreachable")
	ErrDatabaseTimeout       = errors.New("database connection timed out")
	ErrDatabaseAuth          = errors.New("database authentication failed")
	ErrSchema                = errors.New("database schema bootstrap failed")
)

// SQLSTATE class 28 is "invalid authorization specification"
const pgAuthErrorClass = "28"

// classifyConnectError maps a driver error raised while connecting onto the taxonomy above.
// The driver error stays in the chain.
func classifyConnectError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	var netErr net.Error
	switch {
	case errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, pgAuthErrorClass):
		return fmt.Errorf("%w: %w", ErrDatabaseAuth, err)
	case errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", ErrDatabaseTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrDatabaseUnreachable, err)
	}
}

// IsConnectionFailure reports whether err belongs to the connection failure taxonomy
func IsConnectionFailure(err error) bool {
	return errors.Is(err, ErrDatabaseUnreachable) ||
		errors.Is(err, ErrDatabaseTimeout) ||
		errors.Is(err, ErrDatabaseAuth) ||
		errors.Is(err, ErrSchema)
}
