package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/apperr"
	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/storage"
	"github.com/Changaizkhan/autopair-final/internal/utils"
)

// Replies sent during the SMS conversation.
const (
	CallingNowMessage      = "We're calling you now! Please pick up."
	CallFailedMessage      = "We're having trouble calling. Please try again later."
	ScheduleRequestMessage = "We're available Mon–Fri, 9am–6pm Eastern Time. When should we call you? (e.g. 'Tomorrow 10am' or 'Friday afternoon')"
	QuestionRequestMessage = "What would you like to know about your warranty options?"
	ScheduleRetryMessage   = "I didn't understand that time. Please try again (e.g. 'Friday 2pm')."
	scheduleConfirmFormat  = "Thank you! We've scheduled your callback for %s (Eastern Time)."
)

// Action is the step the conversation takes for an inbound message.
type Action string

const (
	ActionCallNow         Action = "call_now"
	ActionRequestSchedule Action = "request_schedule"
	ActionRequestQuestion Action = "request_question"
	ActionSubmitSchedule  Action = "submit_schedule"
	ActionAnswerQuestion  Action = "answer_question"
)

// NextAction decides what to do with body given the lead's current status.
// Menu replies win over any pending state.
func NextAction(status models.ConversationStatus, body string) Action {
	b := strings.ToLower(strings.TrimSpace(body))
	switch b {
	case "1", "call now":
		return ActionCallNow
	case "2", "schedule call":
		return ActionRequestSchedule
	case "3", "questions":
		return ActionRequestQuestion
	}
	if status == models.StatusAwaitingSchedule && IsScheduleLike(b) {
		return ActionSubmitSchedule
	}
	return ActionAnswerQuestion
}

// CallbackScheduler arranges a callback call to a lead at a given time.
type CallbackScheduler interface {
	ScheduleCallback(ctx context.Context, leadID string, at time.Time) error
}

// SMSResult is the JSON reply to Twilio's inbound SMS webhook.
type SMSResult struct {
	Status   string `json:"status"`
	Action   string `json:"action,omitempty"`
	Response string `json:"response,omitempty"`
}

// ConversationService drives the SMS conversation with a lead.
type ConversationService struct {
	leads     storage.LeadStore
	messenger Messenger
	knowledge *KnowledgeService
	voice     *VoiceService
	scheduler CallbackScheduler
	journal   *Journal
	now       func() time.Time
}

func NewConversationService(
	leads storage.LeadStore,
	messenger Messenger,
	knowledge *KnowledgeService,
	voice *VoiceService,
	scheduler CallbackScheduler,
	journal *Journal,
) *ConversationService {
	return &ConversationService{
		leads:     leads,
		messenger: messenger,
		knowledge: knowledge,
		voice:     voice,
		scheduler: scheduler,
		journal:   journal,
		now:       utils.NowInBusinessZone,
	}
}

// HandleInboundSMS routes one inbound text from a lead.
func (s *ConversationService) HandleInboundSMS(ctx context.Context, from, body string) (result *SMSResult, err error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, apperr.Validation("Missing phone")
	}

	lead, err := s.leads.FindLeadByPhone(ctx, from)
	if err != nil {
		return nil, apperr.Internal("Lead lookup failed", err).WithOp("find lead by phone")
	}
	if lead == nil {
		log.Warnf("⚠️  No lead found for inbound SMS from %s", from)
		return nil, apperr.NotFound("Lead not found")
	}

	phone, err := utils.NormalizePhone(lead.Phone())
	if err != nil {
		return nil, apperr.Validation("Invalid phone number")
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("❌ Panic while handling SMS for lead %s: %v", lead.ID, r)
			s.reply(ctx, lead.ID, phone, SpecialistFallback)
			result = nil
			err = apperr.Internal("Internal error", fmt.Errorf("panic: %v", r))
		}
	}()

	body = strings.TrimSpace(body)
	s.journal.Record(ctx, lead.ID, models.ChannelSMS, models.DirectionInbound, body, string(lead.Status()))

	action := NextAction(lead.Status(), body)
	log.Infof("💬 SMS from lead %s (status %q) -> %s", lead.ID, lead.Status(), action)

	switch action {
	case ActionCallNow:
		return s.callNow(ctx, lead, phone)
	case ActionRequestSchedule:
		s.reply(ctx, lead.ID, phone, ScheduleRequestMessage)
		s.update(ctx, lead.ID, s.statusUpdate(models.StatusAwaitingSchedule))
		return &SMSResult{Status: "success", Action: "Schedule requested"}, nil
	case ActionRequestQuestion:
		s.reply(ctx, lead.ID, phone, QuestionRequestMessage)
		s.update(ctx, lead.ID, s.statusUpdate(models.StatusAwaitingQuestion))
		return &SMSResult{Status: "success", Action: "Question requested"}, nil
	case ActionSubmitSchedule:
		return s.submitSchedule(ctx, lead, phone, body)
	default:
		return s.answerQuestion(ctx, lead, phone, body)
	}
}

func (s *ConversationService) callNow(ctx context.Context, lead *models.Lead, phone string) (*SMSResult, error) {
	s.update(ctx, lead.ID, s.statusUpdate(models.StatusCallRequested))

	if err := s.messenger.PlaceCall(ctx, phone, s.voice.CallHandlerURL(lead.ID)); err != nil {
		log.Errorf("❌ Call failed for lead %s: %v", lead.ID, err)
		s.reply(ctx, lead.ID, phone, CallFailedMessage)
		return nil, apperr.Internal("Call failed", err)
	}
	s.journal.Record(ctx, lead.ID, models.ChannelVoice, models.DirectionOutbound, s.voice.CallHandlerURL(lead.ID), "call placed")

	s.reply(ctx, lead.ID, phone, CallingNowMessage)
	return &SMSResult{Status: "success", Action: "Call initiated"}, nil
}

func (s *ConversationService) submitSchedule(ctx context.Context, lead *models.Lead, phone, text string) (*SMSResult, error) {
	at, err := ParseSchedule(text, s.now())
	if err != nil {
		s.reply(ctx, lead.ID, phone, ScheduleRetryMessage)
		s.update(ctx, lead.ID, map[string]string{models.PropLastResponse: s.nowMillis()})
		return &SMSResult{Status: "success"}, nil
	}

	s.reply(ctx, lead.ID, phone, fmt.Sprintf(scheduleConfirmFormat, at.Format(ScheduleLayout)))

	updates := s.statusUpdate(models.StatusCallScheduled)
	updates[models.PropScheduledTime] = strconv.FormatInt(utils.EpochMillis(at), 10)
	s.update(ctx, lead.ID, updates)

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleCallback(ctx, lead.ID, at); err != nil {
			log.Warnf("⚠️  Could not enqueue callback for lead %s at %s: %v", lead.ID, at.Format(time.RFC3339), err)
		}
	}
	return &SMSResult{Status: "success"}, nil
}

func (s *ConversationService) answerQuestion(ctx context.Context, lead *models.Lead, phone, question string) (*SMSResult, error) {
	answer := s.knowledge.Answer(ctx, question, lead.ConversationContext())
	s.reply(ctx, lead.ID, phone, answer)

	updates := s.statusUpdate(models.StatusQuestionAnswered)
	updates[models.PropLastQuestion] = question
	s.update(ctx, lead.ID, updates)

	return &SMSResult{Status: "success", Response: answer}, nil
}

// reply sends an SMS; a failed send is logged and the conversation moves on.
func (s *ConversationService) reply(ctx context.Context, leadID, phone, message string) {
	status := "sent"
	if err := s.messenger.SendSMS(ctx, phone, message); err != nil {
		log.Errorf("❌ Failed to send SMS to lead %s: %v", leadID, err)
		status = "failed"
	}
	s.journal.Record(ctx, leadID, models.ChannelSMS, models.DirectionOutbound, message, status)
}

func (s *ConversationService) update(ctx context.Context, leadID string, updates map[string]string) {
	ok, err := s.leads.UpdateLead(ctx, leadID, updates)
	switch {
	case err != nil:
		log.Errorf("❌ Failed to update lead %s: %v", leadID, err)
	case !ok:
		log.Warnf("⚠️  Lead %s disappeared before it could be updated", leadID)
	}
}

func (s *ConversationService) statusUpdate(status models.ConversationStatus) map[string]string {
	return map[string]string{
		models.PropStatus:       string(status),
		models.PropLastResponse: s.nowMillis(),
	}
}

func (s *ConversationService) nowMillis() string {
	return strconv.FormatInt(utils.EpochMillis(s.now()), 10)
}
