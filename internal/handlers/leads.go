package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Changaizkhan/autopair-final/internal/apperr"
	"github.com/Changaizkhan/autopair-final/internal/jobs"
	"github.com/Changaizkhan/autopair-final/internal/storage"
)

const defaultActivityLimit = 50

// LeadHandler exposes operational endpoints for individual leads.
type LeadHandler struct {
	processor  *jobs.LeadProcessor
	dispatcher *jobs.Dispatcher
	activities storage.ActivityStore
	validate   *validator.Validate
}

func NewLeadHandler(processor *jobs.LeadProcessor, dispatcher *jobs.Dispatcher, activities storage.ActivityStore) *LeadHandler {
	return &LeadHandler{
		processor:  processor,
		dispatcher: dispatcher,
		activities: activities,
		validate:   validator.New(),
	}
}

// Process queues the qualification pipeline for one lead and returns at once.
func (h *LeadHandler) Process(c *fiber.Ctx) error {
	leadID := c.Params("leadID")
	if leadID == "" {
		return apperr.BadRequest("Missing lead id")
	}

	h.dispatcher.Detach(c.UserContext(), "process lead "+leadID, func(ctx context.Context) {
		h.processor.ProcessLead(ctx, leadID)
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "accepted",
		"lead_id": leadID,
	})
}

type activityQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=200"`
}

// Activity lists the newest journal entries for a lead.
func (h *LeadHandler) Activity(c *fiber.Ctx) error {
	var q activityQuery
	if err := c.QueryParser(&q); err != nil {
		return apperr.BadRequest("Invalid query")
	}
	if err := h.validate.Struct(q); err != nil {
		return apperr.Validation("limit must be between 1 and 200")
	}
	if q.Limit == 0 {
		q.Limit = defaultActivityLimit
	}

	leadID := c.Params("leadID")
	activities, err := h.activities.ListActivities(c.UserContext(), leadID, q.Limit)
	if err != nil {
		return apperr.Internal("Failed to load activity", err)
	}

	return c.JSON(fiber.Map{
		"lead_id":    leadID,
		"activities": activities,
		"count":      len(activities),
	})
}
