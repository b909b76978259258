package models

// ConversationStatus is the label stored on the lead that decides what the next inbound message means.
type ConversationStatus string

const (
	StatusNew              ConversationStatus = ""
	StatusSMSSent          ConversationStatus = "SMS Sent"
	StatusCallRequested    ConversationStatus = "Call Requested"
	StatusAwaitingSchedule ConversationStatus = "Awaiting Schedule"
	StatusAwaitingQuestion ConversationStatus = "Awaiting Question"
	StatusCallScheduled    ConversationStatus = "Call Scheduled"
	StatusQuestionAnswered ConversationStatus = "Question Answered"
)

// Plan is a warranty tier a vehicle is eligible for.
type Plan struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
}

// QualificationResult is derived from vehicle age and mileage and never persisted.
type QualificationResult struct {
	Qualified bool   `json:"qualified"`
	Plans     []Plan `json:"plans,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PlanNames returns the plan names in order.
func (q QualificationResult) PlanNames() []string {
	names := make([]string, 0, len(q.Plans))
	for _, p := range q.Plans {
		names = append(names, p.Name)
	}
	return names
}
