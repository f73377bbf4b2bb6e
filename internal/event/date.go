package event

import (
	"strings"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"github.com/araddon/dateparse"
)

// DefaultTimezone is the zone listings are published in
const DefaultTimezone = "America/Edmonton"

var local atomic.Pointer[time.Location]

func init() {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	local.Store(loc)
}

// Location returns the zone used for timestamps that carry no offset
func Location() *time.Location {
	return local.Load()
}

// SetLocation replaces the zone used for timestamps that carry no offset.
// A nil loc is ignored.
func SetLocation(loc *time.Location) {
	if loc != nil {
		local.Store(loc)
	}
}

// yearlessLayouts appear on listing cards that omit the year
var yearlessLayouts = []string{
	"Mon, Jan 2, 3:04 PM",
	"Mon, Jan 2 3:04 PM",
	"Monday, January 2, 3:04 PM",
	"Mon, Jan 2",
	"Jan 2",
}

// ParseTime parses a source timestamp. Values without an offset are wall
// clock times in Location(). It returns nil for empty values, placeholders
// like "TBA", and anything it cannot recognise.
func ParseTime(value string) *time.Time {
	loc := Location()
	return ParseTimeAt(value, time.Now().In(loc))
}

// ParseTimeAt is ParseTime with the reference time used to fill in a
// missing year. Values without an offset are read in now's location.
func ParseTimeAt(value string, now time.Time) *time.Time {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil
	}
	switch strings.ToUpper(text) {
	case "TBA", "TBD":
		return nil
	}

	loc := now.Location()

	for _, layout := range yearlessLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
			return &t
		}
	}

	t, err := dateparse.ParseIn(text, loc)
	if err != nil {
		return nil
	}
	return &t
}

// FormatTime renders an optional timestamp as RFC 3339, or "" when absent
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
