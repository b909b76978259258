package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/services"
)

// WebhookHandler serves the Twilio and HubSpot callbacks.
type WebhookHandler struct {
	conversation *services.ConversationService
	voice        *services.VoiceService
}

func NewWebhookHandler(conversation *services.ConversationService, voice *services.VoiceService) *WebhookHandler {
	return &WebhookHandler{
		conversation: conversation,
		voice:        voice,
	}
}

// TwilioSMSPayload is the subset of Twilio's inbound SMS form we read.
type TwilioSMSPayload struct {
	From string `form:"From"`
	To   string `form:"To"`
	Body string `form:"Body"`
}

// HandleSMS processes an inbound SMS from a lead.
func (h *WebhookHandler) HandleSMS(c *fiber.Ctx) error {
	var payload TwilioSMSPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Errorf("Error parsing webhook: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "Invalid webhook payload")
	}

	log.Infof("📱 SMS from %s: %s", payload.From, payload.Body)

	result, err := h.conversation.HandleInboundSMS(c.UserContext(), payload.From, payload.Body)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// CallHandler returns the callback menu for leadID.
func (h *WebhookHandler) CallHandler(c *fiber.Ctx) error {
	xml, err := h.voice.CallPrompt(c.Params("leadID"))
	if err != nil {
		return err
	}
	return sendTwiML(c, xml)
}

// IVRHandler answers the digit the lead pressed.
func (h *WebhookHandler) IVRHandler(c *fiber.Ctx) error {
	xml, err := h.voice.HandleIVRDigit(c.UserContext(), c.Params("leadID"), c.FormValue("Digits"))
	if err != nil {
		return err
	}
	return sendTwiML(c, xml)
}

// VoiceInbound forwards a direct call to the inbound line.
func (h *WebhookHandler) VoiceInbound(c *fiber.Ctx) error {
	xml, err := h.voice.InboundVoice()
	if err != nil {
		return err
	}
	return sendTwiML(c, xml)
}

// HubSpotWebhook acknowledges CRM change notifications. New leads are found by polling.
func (h *WebhookHandler) HubSpotWebhook(c *fiber.Ctx) error {
	var payload any
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		log.Warnf("⚠️  HubSpot webhook with unreadable body: %v", err)
	} else {
		log.Infof("📥 Received HubSpot webhook: %v", payload)
	}
	return c.JSON(fiber.Map{"status": "received"})
}

func sendTwiML(c *fiber.Ctx, xml string) error {
	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(xml)
}
