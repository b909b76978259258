package storage

import (
	"context"
	"errors"

	"github.com/Changaizkhan/autopair-final/internal/models"
)

// ErrLeadNotFound is returned by LeadStore.GetLead when the CRM has no such record.
var ErrLeadNotFound = errors.New("lead not found")

// LeadStore is the CRM record store. Lead state lives there; the service only
// reads and issues partial property updates.
type LeadStore interface {
	SearchLeads(ctx context.Context, search models.LeadSearch) ([]*models.Lead, error)
	GetLead(ctx context.Context, leadID string) (*models.Lead, error)
	// UpdateLead returns false, nil when the lead no longer exists.
	UpdateLead(ctx context.Context, leadID string, properties map[string]string) (bool, error)
	// FindLeadByPhone returns nil, nil when no lead matches.
	FindLeadByPhone(ctx context.Context, phone string) (*models.Lead, error)
}

// ActivityStore journals conversation events per lead.
type ActivityStore interface {
	RecordActivity(ctx context.Context, activity *models.Activity) error
	ListActivities(ctx context.Context, leadID string, limit int) ([]*models.Activity, error)
}
