// Package dto holds the JSON shapes served by the HTTP layer
package dto

// VisitorSnapshot is the counter state returned by a single increment.
// LastVisit is an ISO-8601 UTC timestamp with millisecond precision.
type VisitorSnapshot struct {
	Count     int64  `json:"count"`
	LastVisit string `json:"lastVisit"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// DatabaseInfo describes the database configuration and connection state on /db
type DatabaseInfo struct {
	URL       string `json:"url"`
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// DatabaseResponse is returned by /db
type DatabaseResponse struct {
	Database  DatabaseInfo     `json:"database"`
	Visitor   *VisitorSnapshot `json:"visitor"`
	Timestamp string           `json:"timestamp"`
}

// GreetingResponse is returned by every other path.
// VisitorCount holds the count, or the string "unavailable" when it cannot be read.
type GreetingResponse struct {
	Message      string  `json:"message"`
	VisitorCount any     `json:"visitorCount"`
	LastVisit    *string `json:"lastVisit"`
	Database     string  `json:"database"`
	Version      string  `json:"version"`
	Timestamp    string  `json:"timestamp"`
}

// ErrorResponse is the degraded body written by the global error handler.
// It is still served with status 200.
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	Timestamp string      `json:"timestamp"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
