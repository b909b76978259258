package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	twilioclient "github.com/twilio/twilio-go/client"

	"github.com/Changaizkhan/autopair-final/internal/apperr"
)

// ValidateTwilioSignature rejects webhook requests whose X-Twilio-Signature does
// not match. Twilio signs the public URL it called, so publicBaseURL must be the
// externally visible origin (the ngrok URL in development).
func ValidateTwilioSignature(authToken, publicBaseURL string) fiber.Handler {
	validator := twilioclient.NewRequestValidator(authToken)

	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Twilio-Signature")
		if signature == "" {
			return apperr.Unauthorized("Missing Twilio signature")
		}

		params := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			params[string(key)] = string(value)
		})

		fullURL := publicBaseURL + c.OriginalURL()
		if !validator.Validate(fullURL, params, signature) {
			log.Warnf("⚠️  Invalid Twilio signature for %s", fullURL)
			return apperr.Unauthorized("Invalid signature")
		}

		return c.Next()
	}
}
