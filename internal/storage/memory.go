package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/utils"
)

// MemoryStore holds leads and the activity journal in memory. It backs
// USE_MEMORY_STORE mode and the tests.
type MemoryStore struct {
	leads      map[string]*models.Lead
	activities []*models.Activity

	leadMu     sync.RWMutex
	activityMu sync.RWMutex

	leadCounter int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads: make(map[string]*models.Lead),
	}
}

// AddLead inserts a lead, assigning an id and creation time when missing.
func (m *MemoryStore) AddLead(lead *models.Lead) *models.Lead {
	m.leadMu.Lock()
	defer m.leadMu.Unlock()

	m.leadCounter++
	if lead.ID == "" {
		lead.ID = fmt.Sprintf("%d", 1000+m.leadCounter)
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.Properties == nil {
		lead.Properties = make(map[string]string)
	}
	m.leads[lead.ID] = cloneLead(lead)
	return lead
}

func (m *MemoryStore) SearchLeads(_ context.Context, search models.LeadSearch) ([]*models.Lead, error) {
	m.leadMu.RLock()
	defer m.leadMu.RUnlock()

	results := make([]*models.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		if search.LifecycleStage != "" && !strings.EqualFold(lead.Prop(models.PropLifecycleStage), search.LifecycleStage) {
			continue
		}
		results = append(results, cloneLead(lead))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID < results[j].ID
		}
		if search.Descending {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})

	if search.Limit > 0 && len(results) > search.Limit {
		results = results[:search.Limit]
	}
	return results, nil
}

func (m *MemoryStore) GetLead(_ context.Context, leadID string) (*models.Lead, error) {
	m.leadMu.RLock()
	defer m.leadMu.RUnlock()

	lead, exists := m.leads[leadID]
	if !exists {
		return nil, ErrLeadNotFound
	}
	return cloneLead(lead), nil
}

func (m *MemoryStore) UpdateLead(_ context.Context, leadID string, properties map[string]string) (bool, error) {
	m.leadMu.Lock()
	defer m.leadMu.Unlock()

	lead, exists := m.leads[leadID]
	if !exists {
		return false, nil
	}
	for k, v := range properties {
		lead.Properties[k] = v
	}
	return true, nil
}

func (m *MemoryStore) FindLeadByPhone(_ context.Context, phone string) (*models.Lead, error) {
	m.leadMu.RLock()
	defer m.leadMu.RUnlock()

	for _, pattern := range utils.PhoneSearchPatterns(phone) {
		digits := utils.DigitsOnly(pattern)
		if digits == "" {
			continue
		}
		for _, lead := range m.sortedLeadsLocked() {
			if strings.HasSuffix(utils.DigitsOnly(lead.Phone()), digits) {
				return cloneLead(lead), nil
			}
		}
	}
	return nil, nil
}

func (m *MemoryStore) sortedLeadsLocked() []*models.Lead {
	leads := make([]*models.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		leads = append(leads, lead)
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i].ID < leads[j].ID })
	return leads
}

// Activity operations
func (m *MemoryStore) RecordActivity(_ context.Context, activity *models.Activity) error {
	m.activityMu.Lock()
	defer m.activityMu.Unlock()

	if activity.EntryID == "" {
		activity.EntryID = uuid.NewString()
	}
	if activity.At.IsZero() {
		activity.At = time.Now().UTC()
	}
	copied := *activity
	m.activities = append(m.activities, &copied)
	return nil
}

// ListActivities returns the newest entries first.
func (m *MemoryStore) ListActivities(_ context.Context, leadID string, limit int) ([]*models.Activity, error) {
	m.activityMu.RLock()
	defer m.activityMu.RUnlock()

	var results []*models.Activity
	for i := len(m.activities) - 1; i >= 0; i-- {
		a := m.activities[i]
		if a.LeadID != leadID {
			continue
		}
		copied := *a
		results = append(results, &copied)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

func cloneLead(lead *models.Lead) *models.Lead {
	props := make(map[string]string, len(lead.Properties))
	for k, v := range lead.Properties {
		props[k] = v
	}
	return &models.Lead{ID: lead.ID, CreatedAt: lead.CreatedAt, Properties: props}
}
