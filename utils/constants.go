package utils

import (
	"time"
)

type contextKey string

// Request-scoped context keys set by the handlers
const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
	TimeoutKey   contextKey = "timeout"
)

// Visitor counter constants
const (
	// VisitorCounterRowID is the primary key of the singleton counter row
	VisitorCounterRowID = 1

	// GreetingMessage is returned by the default route
	GreetingMessage = "Hello from cereal.box!"

	// Unavailable replaces the visitor count when the database cannot serve it
	Unavailable = "unavailable"
)

// Database status labels
const (
	DatabaseConnected     = "connected"
	DatabaseDisconnected  = "disconnected"
	DatabaseConfigured    = "configured"
	DatabaseNotConfigured = "not configured"
)

const (
	// DefaultConnectTimeout bounds connect + bootstrap at startup
	DefaultConnectTimeout = 5 * time.Second

	// DefaultRequestTimeout bounds a single request's database work
	DefaultRequestTimeout = 10 * time.Second
)
