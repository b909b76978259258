package jobs

import (
	"context"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/config"
	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/storage"
)

const leadLifecycleStage = "lead"

// Watermark is the newest lead creation time the poller has already handled,
// plus the ids seen at exactly that time.
type Watermark struct {
	LeadID     string
	CreatedAt  time.Time
	SeenAtMark map[string]struct{}
}

func (w Watermark) IsZero() bool {
	return w.CreatedAt.IsZero()
}

// Covers reports whether lead is at or below the mark.
func (w Watermark) Covers(lead *models.Lead) bool {
	if w.IsZero() {
		return false
	}
	if lead.CreatedAt.Before(w.CreatedAt) {
		return true
	}
	if lead.CreatedAt.Equal(w.CreatedAt) {
		_, seen := w.SeenAtMark[lead.ID]
		return seen
	}
	return false
}

// Advance returns the mark moved to the newest of leads. It never moves backwards.
func (w Watermark) Advance(leads []*models.Lead) Watermark {
	next := w.clone()
	for _, lead := range leads {
		switch {
		case next.IsZero() || lead.CreatedAt.After(next.CreatedAt):
			next.LeadID = lead.ID
			next.CreatedAt = lead.CreatedAt
			next.SeenAtMark = map[string]struct{}{lead.ID: {}}
		case lead.CreatedAt.Equal(next.CreatedAt):
			next.SeenAtMark[lead.ID] = struct{}{}
		}
	}
	return next
}

func (w Watermark) clone() Watermark {
	seen := make(map[string]struct{}, len(w.SeenAtMark))
	for id := range w.SeenAtMark {
		seen[id] = struct{}{}
	}
	return Watermark{LeadID: w.LeadID, CreatedAt: w.CreatedAt, SeenAtMark: seen}
}

// FilterNew keeps the leads above mark that are unprocessed and complete,
// newest first. It does not touch mark.
func FilterNew(records []*models.Lead, mark Watermark) []*models.Lead {
	fresh := make([]*models.Lead, 0, len(records))
	for _, lead := range records {
		if lead == nil || mark.Covers(lead) {
			continue
		}
		if lead.Processed() {
			continue
		}
		if missing := lead.MissingFields(); len(missing) > 0 {
			log.Infof("Lead %s missing required fields: %v", lead.ID, missing)
			continue
		}
		fresh = append(fresh, lead)
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].CreatedAt.After(fresh[j].CreatedAt)
	})
	return fresh
}

// LeadHandler runs the pipeline for one lead.
type LeadHandler interface {
	ProcessLead(ctx context.Context, leadID string) ProcessOutcome
}

// LeadPoller discovers new CRM leads and hands each one to the processor exactly once.
type LeadPoller struct {
	leads      storage.LeadStore
	handler    LeadHandler
	dispatcher *Dispatcher
	interval   time.Duration
	pageSize   int

	mu   sync.Mutex
	mark Watermark
}

func NewLeadPoller(leads storage.LeadStore, handler LeadHandler, dispatcher *Dispatcher, cfg config.PollerConfig) *LeadPoller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &LeadPoller{
		leads:      leads,
		handler:    handler,
		dispatcher: dispatcher,
		interval:   interval,
		pageSize:   pageSize,
	}
}

// PollOnce fetches the newest leads. Errors are logged and yield an empty slice.
func (p *LeadPoller) PollOnce(ctx context.Context) []*models.Lead {
	leads, err := p.leads.SearchLeads(ctx, models.LeadSearch{
		LifecycleStage: leadLifecycleStage,
		SortProperty:   models.PropCreateDate,
		Descending:     true,
		Properties:     models.PollProperties,
		Limit:          p.pageSize,
	})
	if err != nil {
		log.Errorf("❌ Error fetching leads: %v", err)
		return []*models.Lead{}
	}
	return leads
}

// IdentifyNew filters records against the watermark and advances it.
func (p *LeadPoller) IdentifyNew(records []*models.Lead) []*models.Lead {
	p.mu.Lock()
	defer p.mu.Unlock()

	fresh := FilterNew(records, p.mark)
	if len(fresh) > 0 {
		p.mark = p.mark.Advance(fresh)
	}
	return fresh
}

// Seed sets the watermark to the newest existing lead without dispatching anything.
func (p *LeadPoller) Seed(ctx context.Context) {
	records := p.PollOnce(ctx)
	if len(records) == 0 {
		log.Infof("Lead monitor initialized with an empty CRM")
		return
	}

	newest := records[0]
	for _, lead := range records[1:] {
		if lead.CreatedAt.After(newest.CreatedAt) {
			newest = lead
		}
	}
	var atNewest []*models.Lead
	for _, lead := range records {
		if lead.CreatedAt.Equal(newest.CreatedAt) {
			atNewest = append(atNewest, lead)
		}
	}

	p.mu.Lock()
	p.mark = p.mark.Advance(atNewest)
	p.mu.Unlock()
	log.Infof("Lead monitor initialized. Most recent lead: %s", newest.ID)
}

// Watermark returns a copy of the current mark.
func (p *LeadPoller) Watermark() Watermark {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mark.clone()
}

// Run seeds the watermark, then polls every interval until ctx is cancelled.
func (p *LeadPoller) Run(ctx context.Context) error {
	log.Infof("Lead monitoring started (every %v)", p.interval)
	p.Seed(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("Lead monitoring stopped")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *LeadPoller) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("❌ Error in lead monitor: %v\n%s", r, debug.Stack())
		}
	}()

	log.Infof("Checking for new leads...")
	fresh := p.IdentifyNew(p.PollOnce(ctx))

	for i := len(fresh) - 1; i >= 0; i-- {
		leadID := fresh[i].ID
		log.Infof("Processing new lead from polling: %s", leadID)
		p.dispatcher.Detach(ctx, "process lead "+leadID, func(ctx context.Context) {
			p.handler.ProcessLead(ctx, leadID)
		})
	}
}
