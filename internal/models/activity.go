package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity channels.
const (
	ChannelSMS    = "sms"
	ChannelVoice  = "voice"
	ChannelPoller = "poller"
)

// Activity directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
	DirectionInternal = "internal"
)

// Activity is one journal line of a lead's conversation: an inbound message, an
// outbound reply, or a poller decision. It is never read back as lead state.
type Activity struct {
	gorm.Model
	EntryID   string    `json:"entry_id" gorm:"uniqueIndex;size:36"`
	LeadID    string    `json:"lead_id" gorm:"index"`
	Channel   string    `json:"channel"`
	Direction string    `json:"direction"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	At        time.Time `json:"at" gorm:"index"`
}
