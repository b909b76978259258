package utils

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhone is returned when a number cannot be parsed into a valid E.164 number.
var ErrInvalidPhone = errors.New("invalid phone number")

// Regions tried, in order, for numbers written without a country code.
var fallbackRegions = []string{"US", "GB", "PK", "IN", "CA", "AU"}

// NormalizePhone formats a phone number to E.164.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidPhone
	}

	if strings.HasPrefix(trimmed, "+") {
		number, err := phonenumbers.Parse(trimmed, "")
		if err != nil || !phonenumbers.IsValidNumber(number) {
			return "", ErrInvalidPhone
		}
		return phonenumbers.Format(number, phonenumbers.E164), nil
	}

	for _, region := range fallbackRegions {
		number, err := phonenumbers.Parse(trimmed, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(number) {
			return phonenumbers.Format(number, phonenumbers.E164), nil
		}
	}
	return "", ErrInvalidPhone
}

// PhoneSearchPatterns lists the spellings a CRM may have stored for an inbound number:
// as received, without the leading "+", and without "+1" for NANP numbers.
func PhoneSearchPatterns(phone string) []string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	patterns := []string{phone}
	if strings.HasPrefix(phone, "+") {
		patterns = append(patterns, phone[1:])
	}
	if strings.HasPrefix(phone, "+1") && len(phone) == 12 {
		patterns = append(patterns, phone[2:])
	}
	return patterns
}

// DigitsOnly strips everything but 0-9 from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
