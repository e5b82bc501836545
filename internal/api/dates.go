// internal/api/dates.go
package api

import (
	"fmt"
	"time"
)

// WireDate is the request-side date layout (yyyy-MM-dd, no time).
const WireDate = "2006-01-02"

// Response dates arrive in a handful of ISO-8601 shapes depending on
// whether the backend serialized a date, a local date-time, or a full
// timestamp.
var responseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	WireDate,
}

// ParseDate parses an ISO-8601 date or timestamp as received from the
// backend.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range responseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FormatWire renders a date for request payloads.
func FormatWire(t time.Time) string { return t.Format(WireDate) }

// FormatDisplay renders a date for list and summary views (MMM dd, yyyy).
func FormatDisplay(t time.Time) string { return t.Format("Jan 02, 2006") }

// FormatLong renders a date in the long form used on receipts.
func FormatLong(t time.Time) string { return t.Format("January 2, 2006") }

// DateOnly truncates t to midnight in its own location. Due-date
// comparisons ignore the time of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
