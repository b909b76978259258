package utils

import (
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2/log"
)

// BusinessTimeZone is the zone every "now" and every scheduled callback is resolved in.
const BusinessTimeZone = "America/Toronto"

var businessLocation = loadBusinessLocation()

func loadBusinessLocation() *time.Location {
	loc, err := time.LoadLocation(BusinessTimeZone)
	if err != nil {
		log.Warnf("⚠️  Could not load %s, falling back to UTC: %v", BusinessTimeZone, err)
		return time.UTC
	}
	return loc
}

// BusinessLocation returns the fixed business time zone.
func BusinessLocation() *time.Location {
	return businessLocation
}

// NowInBusinessZone returns the current time in the business time zone.
func NowInBusinessZone() time.Time {
	return time.Now().In(businessLocation)
}

// EpochMillis formats t the way the CRM stores datetime properties.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
