package handlers

import (
	"time"

	"github.com/amirphl/cereal-box/app/dto"
	businessflow "github.com/amirphl/cereal-box/business_flow"
	"github.com/amirphl/cereal-box/utils"
	"github.com/gofiber/fiber/v3"
)

// VisitorHandlerInterface defines the contract for the visitor routes
type VisitorHandlerInterface interface {
	Health(c fiber.Ctx) error
	Database(c fiber.Ctx) error
	Greeting(c fiber.Ctx) error
}

// VisitorHandler serves the three visitor routes. Every response is 200: database
// trouble only changes the body.
type VisitorHandler struct {
	visitorFlow    businessflow.VisitorFlow
	version        string
	requestTimeout time.Duration
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(visitorFlow businessflow.VisitorFlow, version string, requestTimeout time.Duration) *VisitorHandler {
	if requestTimeout <= 0 {
		requestTimeout = utils.DefaultRequestTimeout
	}
	return &VisitorHandler{
		visitorFlow:    visitorFlow,
		version:        version,
		requestTimeout: requestTimeout,
	}
}

// Health reports liveness and the cached database state without touching the counter
// @Summary Health check
// @Description Reports service health and whether the database connected at startup
// @Tags Visitor
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *VisitorHandler) Health(c fiber.Ctx) error {
	status := h.visitorFlow.DatabaseStatus()

	return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{
		Status:    "healthy",
		Database:  status.Label(),
		Version:   h.version,
		Timestamp: utils.UTCNowISO(),
	})
}

// Database records a visit and reports database details
// @Summary Database status
// @Description Records a visit and reports database configuration, connectivity and the new counter value
// @Tags Visitor
// @Produce json
// @Success 200 {object} dto.DatabaseResponse
// @Router /db [get]
func (h *VisitorHandler) Database(c fiber.Ctx) error {
	snapshot := h.recordVisit(c, "/db")
	status := h.visitorFlow.DatabaseStatus()

	return c.Status(fiber.StatusOK).JSON(dto.DatabaseResponse{
		Database: dto.DatabaseInfo{
			URL:       status.URLLabel(),
			Connected: status.Connected,
			Message:   status.Message(),
		},
		Visitor:   snapshot,
		Timestamp: utils.UTCNowISO(),
	})
}

// Greeting records a visit and greets the caller; it serves every path not matched elsewhere
// @Summary Greeting
// @Description Records a visit and returns the greeting with the visitor count
// @Tags Visitor
// @Produce json
// @Success 200 {object} dto.GreetingResponse
// @Router / [get]
func (h *VisitorHandler) Greeting(c fiber.Ctx) error {
	snapshot := h.recordVisit(c, c.Path())
	status := h.visitorFlow.DatabaseStatus()

	resp := dto.GreetingResponse{
		Message:      utils.GreetingMessage,
		VisitorCount: utils.Unavailable,
		Database:     status.Label(),
		Version:      h.version,
		Timestamp:    utils.UTCNowISO(),
	}
	if snapshot != nil {
		resp.VisitorCount = snapshot.Count
		resp.LastVisit = utils.ToPtr(snapshot.LastVisit)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// recordVisit increments the counter, logging and absorbing query failures
func (h *VisitorHandler) recordVisit(c fiber.Ctx, endpoint string) *dto.VisitorSnapshot {
	ctx, cancel := createRequestContextWithTimeout(c, endpoint, h.requestTimeout)
	defer cancel()

	snapshot, err := h.visitorFlow.RecordVisit(ctx)
	if err != nil {
		utils.LogEvent("error", "visit_record_failed", map[string]any{
			"request_id": requestID(c),
			"code":       businessflow.ErrorCode(err),
			"path":       endpoint,
			"error":      err.Error(),
		})
		return nil
	}
	return snapshot
}
