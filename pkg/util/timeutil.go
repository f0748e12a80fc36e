package util

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDateRange parses two YYYY-MM-DD dates and checks that end is not before start.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	from, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("startDate: %w", err)
	}
	to, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("endDate: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("endDate must not be before startDate")
	}
	return from, to, nil
}
