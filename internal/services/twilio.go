package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"

	"github.com/Changaizkhan/autopair-final/internal/apperr"
	"github.com/Changaizkhan/autopair-final/internal/config"
	"github.com/Changaizkhan/autopair-final/internal/utils"
)

// Messenger sends text messages and places outbound calls.
type Messenger interface {
	SendSMS(ctx context.Context, to, body string) error
	// PlaceCall dials to; Twilio fetches call instructions from handlerURL.
	PlaceCall(ctx context.Context, to, handlerURL string) error
}

// twilioAPI is the subset of the Twilio REST API the service uses.
type twilioAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

type TwilioService struct {
	api     twilioAPI
	from    string
	limiter *rate.Limiter
	retry   RetryPolicy
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig, policy RetryPolicy) (*TwilioService, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.PhoneNumber == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newTwilioService(client.Api, cfg.PhoneNumber, cfg.SendRate, policy), nil
}

func newTwilioService(api twilioAPI, from string, sendRate float64, policy RetryPolicy) *TwilioService {
	if sendRate <= 0 {
		sendRate = 1
	}
	return &TwilioService{
		api:     api,
		from:    from,
		limiter: rate.NewLimiter(rate.Limit(sendRate), 1),
		retry:   policy,
	}
}

// SendSMS sends body to the E.164 form of to.
func (t *TwilioService) SendSMS(ctx context.Context, to, body string) error {
	phone, err := utils.NormalizePhone(to)
	if err != nil {
		log.Errorf("❌ Invalid phone number format: %s", to)
		return apperr.Validation("Invalid phone number")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(phone)
	params.SetBody(body)

	attempt := 0
	err = t.retry.Do(ctx, "send sms", func(ctx context.Context) error {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
		attempt++
		log.Infof("📨 Sending SMS to %s (Attempt %d)", phone, attempt)
		resp, err := t.api.CreateMessage(params)
		if err != nil {
			return classifyTwilioError(err)
		}
		if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
			return fmt.Errorf("twilio error %d", *resp.ErrorCode)
		}
		return nil
	})
	if err != nil {
		log.Errorf("❌ Twilio error sending SMS to %s: %v", phone, err)
		return fmt.Errorf("send sms to %s: %w", phone, err)
	}

	log.Infof("✅ SMS sent to %s", phone)
	return nil
}

// PlaceCall starts an outbound voice call that fetches TwiML from handlerURL.
func (t *TwilioService) PlaceCall(ctx context.Context, to, handlerURL string) error {
	phone, err := utils.NormalizePhone(to)
	if err != nil {
		return apperr.Validation("Invalid phone number")
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(phone)
	params.SetFrom(t.from)
	params.SetUrl(handlerURL)
	params.SetMethod("POST")

	var sid string
	err = t.retry.Do(ctx, "place call", func(ctx context.Context) error {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
		resp, err := t.api.CreateCall(params)
		if err != nil {
			return classifyTwilioError(err)
		}
		if resp.Sid != nil {
			sid = *resp.Sid
		}
		return nil
	})
	if err != nil {
		log.Errorf("❌ Call failed to %s: %v", phone, err)
		return fmt.Errorf("place call to %s: %w", phone, err)
	}

	log.Infof("📞 Call initiated to %s, SID: %s", phone, sid)
	return nil
}

func classifyTwilioError(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		if isTransientStatus(restErr.Status) {
			return transient(err)
		}
		return err
	}
	if isConnectionError(err) {
		return transient(err)
	}
	return err
}
