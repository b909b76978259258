package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/utils"
)

// ScheduleLayout renders a callback time as "Friday, October 16 at 02:00 PM".
const ScheduleLayout = "Monday, January 02 at 03:04 PM"

// ErrUnparseableSchedule means the text looked like a time but could not be turned into one.
var ErrUnparseableSchedule = errors.New("could not understand the requested time")

const (
	defaultCallbackHour   = 9
	afternoonCallbackHour = 14
	eveningCallbackHour   = 18
	// Before this hour a vague request is booked for this afternoon.
	sameDayCutoffHour = 16
)

var (
	scheduleTimePattern = regexp.MustCompile(`\d{1,2}(:\d{2})?\s*(am|pm|a\.m\.|p\.m\.)?`)
	clockPattern        = regexp.MustCompile(`(\d+)(?::(\d+))?\s*(am|pm|a\.m\.|p\.m\.)?`)
)

var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// IsScheduleLike reports whether text mentions tomorrow, a weekday or a time of day.
func IsScheduleLike(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if strings.Contains(t, "tomorrow") {
		return true
	}
	for _, wd := range weekdayNames {
		if strings.Contains(t, wd.name) {
			return true
		}
	}
	return scheduleTimePattern.MatchString(t)
}

// ParseSchedule turns a phrase like "tomorrow 10am" or "Friday afternoon" into a
// callback time in the business time zone. The result is always after now.
func ParseSchedule(text string, now time.Time) (time.Time, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	loc := utils.BusinessLocation()
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if strings.Contains(t, "tomorrow") {
		hour, minute, err := clockOrDefault(t, defaultCallbackHour)
		if err != nil {
			log.Errorf("❌ Error parsing schedule text '%s': %v", t, err)
			return time.Time{}, err
		}
		return atClock(today.AddDate(0, 0, 1), hour, minute), nil
	}

	for _, wd := range weekdayNames {
		if !strings.Contains(t, wd.name) {
			continue
		}
		day := nextWeekday(today, wd.day)
		switch {
		case strings.Contains(t, "afternoon"):
			return atClock(day, afternoonCallbackHour, 0), nil
		case strings.Contains(t, "evening"):
			return atClock(day, eveningCallbackHour, 0), nil
		}
		hour, minute, err := clockOrDefault(t, defaultCallbackHour)
		if err != nil {
			log.Errorf("❌ Error parsing schedule text '%s': %v", t, err)
			return time.Time{}, err
		}
		return atClock(day, hour, minute), nil
	}

	if now.Hour() < sameDayCutoffHour {
		if slot := atClock(today, afternoonCallbackHour, 0); slot.After(now) {
			return slot, nil
		}
	}
	return atClock(nextBusinessDay(today), defaultCallbackHour, 0), nil
}

// clockOrDefault extracts "2", "2pm", "10:30 a.m." from t, or returns defaultHour:00.
func clockOrDefault(t string, defaultHour int) (int, int, error) {
	m := clockPattern.FindStringSubmatch(t)
	if m == nil {
		return defaultHour, 0, nil
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, ErrUnparseableSchedule
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return 0, 0, ErrUnparseableSchedule
		}
	}
	if strings.HasPrefix(m[3], "p") && hour < 12 {
		hour += 12
	}
	if hour > 23 || minute > 59 {
		return 0, 0, ErrUnparseableSchedule
	}
	return hour, minute, nil
}

// nextWeekday returns the next date falling on wd, never today.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	daysAhead := int(wd) - int(today.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return today.AddDate(0, 0, daysAhead)
}

// nextBusinessDay returns tomorrow, or the coming Monday when tomorrow is a weekend day.
func nextBusinessDay(today time.Time) time.Time {
	next := today.AddDate(0, 0, 1)
	if next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		return nextWeekday(today, time.Monday)
	}
	return next
}

func atClock(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
