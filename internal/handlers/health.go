package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Changaizkhan/autopair-final/database"
	"github.com/Changaizkhan/autopair-final/internal/jobs"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version    string
	db         *gorm.DB
	poller     *jobs.LeadPoller
	guard      *jobs.DedupGuard
	dispatcher *jobs.Dispatcher
}

// NewHealthHandler creates a new health handler. db is nil in memory mode.
func NewHealthHandler(version string, db *gorm.DB, poller *jobs.LeadPoller, guard *jobs.DedupGuard, dispatcher *jobs.Dispatcher) *HealthHandler {
	return &HealthHandler{
		Version:    version,
		db:         db,
		poller:     poller,
		guard:      guard,
		dispatcher: dispatcher,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":  "OK",
		"service": "Autopair Lead Service",
		"version": h.Version,
		"storage": "memory",
	}

	if h.db != nil {
		resp["storage"] = "database"
		dbStatus := "connected"
		if err := database.Ping(h.db); err != nil {
			dbStatus = "error: " + err.Error()
		}
		resp["database"] = fiber.Map{"status": dbStatus}
	}
	if h.poller != nil {
		mark := h.poller.Watermark()
		watermark := fiber.Map{"lead_id": mark.LeadID}
		if !mark.IsZero() {
			watermark["created_at"] = mark.CreatedAt
		}
		resp["watermark"] = watermark
	}
	if h.guard != nil {
		resp["in_flight_leads"] = h.guard.Len()
	}
	if h.dispatcher != nil {
		resp["running_tasks"] = h.dispatcher.InFlight()
	}
	return c.JSON(resp)
}
