package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Changaizkhan/autopair-final/internal/handlers"
)

// Dependencies are the handlers mounted by SetupRoutes.
type Dependencies struct {
	Webhooks *handlers.WebhookHandler
	Leads    *handlers.LeadHandler
	Health   *handlers.HealthHandler
	// TwilioAuth guards Twilio-facing routes; nil leaves them open.
	TwilioAuth fiber.Handler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Autopair lead service",
			"version": deps.Health.Version,
			"endpoints": fiber.Map{
				"health":          "/health",
				"sms_webhook":     "/sms-webhook",
				"voice_inbound":   "/voice-inbound",
				"hubspot_webhook": "/hubspot-webhook",
				"api":             "/api",
			},
		})
	})

	app.Get("/health", deps.Health.Check)

	// Twilio webhooks
	twilioPost := func(path string, handler fiber.Handler) {
		if deps.TwilioAuth != nil {
			app.Post(path, deps.TwilioAuth, handler)
			return
		}
		app.Post(path, handler)
	}
	twilioPost("/call-handler/:leadID", deps.Webhooks.CallHandler)
	twilioPost("/ivr-handler/:leadID", deps.Webhooks.IVRHandler)
	twilioPost("/sms-webhook", deps.Webhooks.HandleSMS)
	twilioPost("/voice-inbound", deps.Webhooks.VoiceInbound)

	// CRM webhook
	app.Post("/hubspot-webhook", deps.Webhooks.HubSpotWebhook)

	api := app.Group("/api")
	leads := api.Group("/leads")
	leads.Post("/:leadID/process", deps.Leads.Process)
	leads.Get("/:leadID/activity", deps.Leads.Activity)
}
