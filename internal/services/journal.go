package services

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/storage"
)

// Journal appends conversation events to the activity store. A nil Journal or
// a failing store only logs; the conversation never depends on it.
type Journal struct {
	store storage.ActivityStore
}

func NewJournal(store storage.ActivityStore) *Journal {
	return &Journal{store: store}
}

// Record writes one event for leadID.
func (j *Journal) Record(ctx context.Context, leadID, channel, direction, body, status string) {
	if j == nil || j.store == nil {
		return
	}
	activity := &models.Activity{
		LeadID:    leadID,
		Channel:   channel,
		Direction: direction,
		Body:      body,
		Status:    status,
	}
	if err := j.store.RecordActivity(ctx, activity); err != nil {
		log.Warnf("⚠️  Failed to journal %s %s activity for lead %s: %v", channel, direction, leadID, err)
	}
}
