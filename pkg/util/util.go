package util

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// DateLayout is the layout of an all-day event's start and of the date
// prefix of a timed event's start.
const DateLayout = "2006-01-02"

// EventDate returns the date an event starts on as YYYY-MM-DD. The timed
// start is preferred over the all-day one; only the date portion is read,
// so a timed event keeps the date of its own UTC offset.
func EventDate(event *calendar.Event) (string, error) {
	if event == nil || event.Start == nil {
		return "", fmt.Errorf("event has no start")
	}

	start := event.Start.DateTime
	if start == "" {
		start = event.Start.Date
	}
	if len(start) < len(DateLayout) {
		return "", fmt.Errorf("event %q has an invalid start %q", event.Summary, start)
	}

	date := start[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", fmt.Errorf("event %q has an invalid start date: %w", event.Summary, err)
	}
	return date, nil
}

// DateOf formats t as YYYY-MM-DD in t's own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}
