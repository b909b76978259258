package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/models"
)

// Plan catalogue, in the order plans are offered.
var (
	PlanWorks     = models.Plan{Name: "Works Plan", Duration: "24 months / 50,000 km"}
	PlanWorksPlus = models.Plan{Name: "Works Plus Plan", Duration: "48 months / 100,000 km"}
	PlanStandard  = models.Plan{Name: "Standard Plan", Duration: "Basic coverage"}
)

// Eligibility limits. Ages are inclusive, mileages exclusive.
const (
	worksMaxAge         = 6
	worksMaxMileage     = 120000
	standardMaxAge      = 10
	standardMaxMileage  = 200000
	invalidVehicleError = "invalid vehicle data"
)

// Qualify decides which plans a vehicle is eligible for. The vehicle age is
// measured against now's year. Unparseable input is reported as not qualified.
func Qualify(vehicleYear, mileage string, now time.Time) models.QualificationResult {
	year, err := strconv.Atoi(strings.TrimSpace(vehicleYear))
	if err != nil {
		log.Errorf("❌ Qualification error: vehicle year %q: %v", vehicleYear, err)
		return models.QualificationResult{Qualified: false, Error: invalidVehicleError}
	}
	km, err := ParseMileage(mileage)
	if err != nil {
		log.Errorf("❌ Qualification error: mileage %q: %v", mileage, err)
		return models.QualificationResult{Qualified: false, Error: invalidVehicleError}
	}

	age := now.Year() - year
	switch {
	case age <= worksMaxAge && km < worksMaxMileage:
		return models.QualificationResult{Qualified: true, Plans: []models.Plan{PlanWorks, PlanWorksPlus}}
	case age <= standardMaxAge && km < standardMaxMileage:
		return models.QualificationResult{Qualified: true, Plans: []models.Plan{PlanStandard}}
	default:
		return models.QualificationResult{Qualified: false}
	}
}

// ParseMileage reads an odometer value such as " 120,000 ".
func ParseMileage(raw string) (int, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	return strconv.Atoi(cleaned)
}
