package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/models"
)

// QualificationNotifier tells a new lead which plans its vehicle qualifies for.
type QualificationNotifier struct {
	messenger Messenger
}

func NewQualificationNotifier(messenger Messenger) *QualificationNotifier {
	return &QualificationNotifier{messenger: messenger}
}

// QualificationMessage renders the SMS for a qualification result.
func QualificationMessage(lead *models.Lead, result models.QualificationResult) string {
	firstName := lead.FirstName()
	if firstName == "" {
		firstName = "there"
	}

	if !result.Qualified {
		return fmt.Sprintf("Hi %s, your vehicle doesn't qualify for our warranty plans.", firstName)
	}

	lines := make([]string, 0, len(result.Plans))
	for _, p := range result.Plans {
		lines = append(lines, fmt.Sprintf("○ %s: %s", p.Name, p.Duration))
	}
	return fmt.Sprintf("Hi %s, your %s qualifies for:\n%s\n\nReply with:\n1⃣ Call now\n2⃣ Schedule call\n3⃣ Questions",
		firstName, lead.Vehicle(), strings.Join(lines, "\n"))
}

// Notify sends the qualification SMS to the lead's phone.
func (n *QualificationNotifier) Notify(ctx context.Context, lead *models.Lead, result models.QualificationResult) error {
	message := QualificationMessage(lead, result)
	log.Infof("📲 Sending qualification SMS for lead %s", lead.ID)

	if err := n.messenger.SendSMS(ctx, lead.Phone(), message); err != nil {
		log.Errorf("❌ SMS send failed for lead %s: %v", lead.ID, err)
		return err
	}
	return nil
}
