package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Changaizkhan/autopair-final/internal/models"
)

// DatabaseStore keeps the activity journal in PostgreSQL.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) RecordActivity(ctx context.Context, activity *models.Activity) error {
	if activity.EntryID == "" {
		activity.EntryID = uuid.NewString()
	}
	if activity.At.IsZero() {
		activity.At = time.Now().UTC()
	}
	if err := d.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("record activity for lead %s: %w", activity.LeadID, err)
	}
	return nil
}

func (d *DatabaseStore) ListActivities(ctx context.Context, leadID string, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity
	query := d.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities for lead %s: %w", leadID, err)
	}
	return activities, nil
}
