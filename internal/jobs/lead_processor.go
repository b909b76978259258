package jobs

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/services"
	"github.com/Changaizkhan/autopair-final/internal/storage"
	"github.com/Changaizkhan/autopair-final/internal/utils"
)

// ProcessOutcome says how far a lead got through ProcessLead.
type ProcessOutcome string

const (
	OutcomeBusy             ProcessOutcome = "busy"
	OutcomeNotFound         ProcessOutcome = "not_found"
	OutcomeAlreadyProcessed ProcessOutcome = "already_processed"
	OutcomeMissingFields    ProcessOutcome = "missing_fields"
	OutcomeNotified         ProcessOutcome = "notified"
	OutcomeNotifyFailed     ProcessOutcome = "notify_failed"
)

// Notifier sends the qualification result to a lead.
type Notifier interface {
	Notify(ctx context.Context, lead *models.Lead, result models.QualificationResult) error
}

// LeadProcessor qualifies a new lead, notifies it and records the outcome in the CRM.
type LeadProcessor struct {
	leads    storage.LeadStore
	notifier Notifier
	guard    *DedupGuard
	journal  *services.Journal
	now      func() time.Time
}

func NewLeadProcessor(leads storage.LeadStore, notifier Notifier, guard *DedupGuard, journal *services.Journal) *LeadProcessor {
	return &LeadProcessor{
		leads:    leads,
		notifier: notifier,
		guard:    guard,
		journal:  journal,
		now:      utils.NowInBusinessZone,
	}
}

// ProcessLead runs the qualification pipeline for leadID at most once at a time.
// A failed notification leaves the lead unprocessed.
func (p *LeadProcessor) ProcessLead(ctx context.Context, leadID string) ProcessOutcome {
	if !p.guard.TryAcquire(leadID) {
		log.Infof("Lead %s already processing", leadID)
		return OutcomeBusy
	}
	defer p.guard.Release(leadID)

	log.Infof("🚀 Processing lead %s", leadID)

	lead, err := p.leads.GetLead(ctx, leadID)
	if err != nil && !errors.Is(err, storage.ErrLeadNotFound) {
		log.Errorf("❌ No data for lead %s: %v", leadID, err)
		return OutcomeNotFound
	}
	if lead == nil {
		log.Errorf("❌ No data for lead %s", leadID)
		return OutcomeNotFound
	}

	if lead.Processed() {
		log.Infof("Lead %s already processed", leadID)
		return OutcomeAlreadyProcessed
	}
	if missing := lead.MissingFields(); len(missing) > 0 {
		log.Errorf("❌ Lead %s missing required fields: %v", leadID, missing)
		return OutcomeMissingFields
	}

	result := services.Qualify(lead.Prop(models.PropVehicleYear), lead.Prop(models.PropVehicleMileage), p.now())
	if result.Error != "" {
		log.Warnf("⚠️  Qualification error for lead %s: %s", leadID, result.Error)
	}

	updates := map[string]string{
		models.PropQualified:      strconv.FormatBool(result.Qualified),
		models.PropQualifiedPlans: strings.Join(result.PlanNames(), ", "),
	}

	outcome := OutcomeNotifyFailed
	if err := p.notifier.Notify(ctx, lead, result); err == nil {
		outcome = OutcomeNotified
		updates[models.PropProcessed] = "true"
		updates[models.PropLastProcessed] = strconv.FormatInt(utils.EpochMillis(p.now()), 10)
	}
	p.journal.Record(ctx, leadID, models.ChannelPoller, models.DirectionOutbound,
		services.QualificationMessage(lead, result), string(outcome))

	if ok, err := p.leads.UpdateLead(ctx, leadID, updates); err != nil {
		log.Errorf("❌ Failed to record qualification for lead %s: %v", leadID, err)
	} else if !ok {
		log.Warnf("⚠️  Lead %s vanished before qualification could be recorded", leadID)
	}

	log.Infof("✅ Lead %s processed: %s", leadID, outcome)
	return outcome
}
