package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/twilio/twilio-go/twiml"

	"github.com/Changaizkhan/autopair-final/internal/config"
	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/storage"
	"github.com/Changaizkhan/autopair-final/internal/utils"
)

const (
	callMenuPrompt       = "Hello! This is Auto Pair Warranty Services. Press 1 to talk to a specialist. Press 2 to hear about our warranty plans."
	callNoInputMessage   = "We didn't get your response. We'll call you back later."
	connectingMessage    = "Connecting you to a specialist, please hold."
	noSpecialistMessage  = "We're sorry. We could not connect you to a specialist right now."
	coverageSummary      = "Our warranty plans cover engine, transmission, and drivetrain components. They include roadside assistance and have a $100 deductible per visit. Coverage begins after a 30-day waiting period."
	invalidDigitMessage  = "Invalid option. Please try again."
	inboundVoiceGreeting = "Welcome to Auto Pair Warranty. Please wait while we connect you."

	gatherTimeoutSeconds = "10"
	dialTimeoutSeconds   = "20"
	recordFromAnswer     = "record-from-answer"
)

// VoiceService renders the TwiML for outbound callbacks and inbound calls.
type VoiceService struct {
	leads   storage.LeadStore
	journal *Journal
	voice   config.VoiceConfig
	baseURL string
	now     func() time.Time
}

func NewVoiceService(leads storage.LeadStore, journal *Journal, voice config.VoiceConfig, baseURL string) *VoiceService {
	return &VoiceService{
		leads:   leads,
		journal: journal,
		voice:   voice,
		baseURL: baseURL,
		now:     utils.NowInBusinessZone,
	}
}

// CallHandlerURL is where Twilio fetches the menu for a callback to leadID.
func (v *VoiceService) CallHandlerURL(leadID string) string {
	return fmt.Sprintf("%s/call-handler/%s", v.baseURL, leadID)
}

func (v *VoiceService) ivrHandlerURL(leadID string) string {
	return fmt.Sprintf("%s/ivr-handler/%s", v.baseURL, leadID)
}

// CallPrompt gathers one digit for the callback menu.
func (v *VoiceService) CallPrompt(leadID string) (string, error) {
	log.Infof("✅ Twilio reached /call-handler/%s", leadID)

	gather := &twiml.VoiceGather{
		NumDigits: "1",
		Action:    v.ivrHandlerURL(leadID),
		Method:    "POST",
		Timeout:   gatherTimeoutSeconds,
		InnerElements: []twiml.Element{
			&twiml.VoiceSay{Message: callMenuPrompt},
		},
	}
	return twiml.Voice([]twiml.Element{
		gather,
		&twiml.VoiceSay{Message: callNoInputMessage},
	})
}

// HandleIVRDigit records the pressed digit and answers it.
func (v *VoiceService) HandleIVRDigit(ctx context.Context, leadID, digit string) (string, error) {
	log.Infof("IVR input received from lead %s: %s", leadID, digit)

	updates := map[string]string{
		models.PropLastDigitPressed: digit,
		models.PropLastResponse:     strconv.FormatInt(utils.EpochMillis(v.now()), 10),
	}
	if ok, err := v.leads.UpdateLead(ctx, leadID, updates); err != nil {
		log.Errorf("❌ Failed to record IVR digit for lead %s: %v", leadID, err)
	} else if !ok {
		log.Warnf("⚠️  Lead %s not found while recording IVR digit", leadID)
	}
	v.journal.Record(ctx, leadID, models.ChannelVoice, models.DirectionInbound, digit, "ivr")

	var elements []twiml.Element
	switch digit {
	case "1":
		elements = []twiml.Element{
			&twiml.VoiceSay{Message: connectingMessage},
			&twiml.VoiceDial{
				Timeout: dialTimeoutSeconds,
				Record:  recordFromAnswer,
				InnerElements: []twiml.Element{
					&twiml.VoiceNumber{PhoneNumber: v.voice.SpecialistPrimary},
					&twiml.VoiceNumber{PhoneNumber: v.voice.SpecialistFallback},
				},
			},
			&twiml.VoiceSay{Message: noSpecialistMessage},
			&twiml.VoiceHangup{},
		}
	case "2":
		elements = []twiml.Element{&twiml.VoiceSay{Message: coverageSummary}}
	default:
		elements = []twiml.Element{
			&twiml.VoiceSay{Message: invalidDigitMessage},
			&twiml.VoiceRedirect{Url: v.CallHandlerURL(leadID)},
		}
	}
	return twiml.Voice(elements)
}

// InboundVoice greets a caller and forwards them to the inbound line, recorded.
func (v *VoiceService) InboundVoice() (string, error) {
	return twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: inboundVoiceGreeting},
		&twiml.VoiceDial{
			Number: v.voice.InboundForward,
			Record: recordFromAnswer,
		},
	})
}
