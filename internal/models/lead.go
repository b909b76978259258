package models

import (
	"fmt"
	"strings"
	"time"
)

// CRM property names read and written by the service.
const (
	PropFirstName      = "firstname"
	PropLastName       = "lastname"
	PropEmail          = "email"
	PropPhone          = "phone"
	PropCreateDate     = "createdate"
	PropLifecycleStage = "lifecyclestage"
	PropObjectID       = "hs_object_id"

	PropVehicleYear    = "vehicle_year"
	PropVehicleMake    = "vehicle_make"
	PropVehicleModel   = "vehicle_model"
	PropVehicleMileage = "vehicle_mileage"

	PropProcessed        = "autopair_processed"
	PropStatus           = "autopair_status"
	PropQualified        = "autopair_qualified"
	PropQualifiedPlans   = "autopair_qualified_plans"
	PropLastProcessed    = "autopair_last_processed"
	PropLastResponse     = "autopair_last_response"
	PropScheduledTime    = "autopair_scheduled_time"
	PropLastQuestion     = "autopair_last_question"
	PropLastDigitPressed = "autopair_last_digit_pressed"
)

// RequiredLeadFields must be present before a lead can be qualified and notified.
var RequiredLeadFields = []string{PropPhone, PropVehicleYear, PropVehicleMileage}

// PollProperties is the property set requested when searching for new leads.
var PollProperties = []string{
	PropFirstName, PropLastName, PropEmail, PropPhone, PropCreateDate,
	PropVehicleMake, PropVehicleModel, PropVehicleYear, PropVehicleMileage,
	PropProcessed, PropObjectID,
}

// DetailProperties is the property set requested when reading a single lead.
var DetailProperties = []string{
	PropFirstName, PropLastName, PropPhone, PropEmail,
	PropVehicleMake, PropVehicleModel, PropVehicleYear, PropVehicleMileage,
	PropProcessed, PropStatus, PropQualifiedPlans, PropScheduledTime, PropObjectID,
}

// Lead is a CRM contact in the "lead" lifecycle stage.
type Lead struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Properties map[string]string `json:"properties"`
}

// Prop returns the trimmed value of a property, or "" when absent.
func (l *Lead) Prop(name string) string {
	if l == nil || l.Properties == nil {
		return ""
	}
	return strings.TrimSpace(l.Properties[name])
}

func (l *Lead) FirstName() string { return l.Prop(PropFirstName) }
func (l *Lead) Phone() string     { return l.Prop(PropPhone) }

// Processed reports whether the qualification SMS already went out.
func (l *Lead) Processed() bool {
	return strings.EqualFold(l.Prop(PropProcessed), "true")
}

func (l *Lead) Status() ConversationStatus {
	return ConversationStatus(l.Prop(PropStatus))
}

// Vehicle renders "year make model", skipping blanks.
func (l *Lead) Vehicle() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{PropVehicleYear, PropVehicleMake, PropVehicleModel} {
		if v := l.Prop(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// QualifiedPlans returns the stored plan list, or "Unknown" when none was recorded.
func (l *Lead) QualifiedPlans() string {
	if v := l.Prop(PropQualifiedPlans); v != "" {
		return v
	}
	return "Unknown"
}

// MissingFields lists the required properties that are empty.
func (l *Lead) MissingFields() []string {
	var missing []string
	for _, f := range RequiredLeadFields {
		if l.Prop(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// ConversationContext is the lead summary handed to the knowledge service.
func (l *Lead) ConversationContext() string {
	return fmt.Sprintf("Customer: %s, Vehicle: %s, Qualified plans: %s",
		l.FirstName(), l.Vehicle(), l.QualifiedPlans())
}

// LeadSearch describes a CRM search request.
type LeadSearch struct {
	LifecycleStage string
	SortProperty   string
	Descending     bool
	Properties     []string
	Limit          int
}
