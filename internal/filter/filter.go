// Package filter narrows a list of processed events for display.
//
// Filters combine several criteria; an event must pass all of them:
//   - Date range (from/to, inclusive)
//   - Keywords (substring of the title, case-insensitive)
//   - Sources (exact source name, case-insensitive)
//   - Venues (substring of venue or address, case-insensitive)
//   - Categories (any category equal, case-insensitive)
//   - Weekends only (Saturday/Sunday in the filter's location)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Keywords = []string{"festival"}
//	filtered := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	// Date range filtering on the event start
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	Keywords   []string `json:"keywords,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Venues     []string `json:"venues,omitempty"`
	Categories []string `json:"categories,omitempty"`

	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// Location decides the weekday of a start time. Nil means UTC.
	Location *time.Location `json:"-"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Keywords:   []string{},
		Sources:    []string{},
		Venues:     []string{},
		Categories: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Keywords) == 0 &&
		len(f.Sources) == 0 &&
		len(f.Venues) == 0 &&
		len(f.Categories) == 0 &&
		!f.WeekendsOnly
}

// Matches checks if an event matches all active filter criteria.
// Events without a start time fail any date-based criterion.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil || f.DateTo != nil || f.WeekendsOnly {
		if evt.Start == nil {
			return false
		}
		start := *evt.Start
		if f.DateFrom != nil && start.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && start.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly {
			weekday := start.In(f.location()).Weekday()
			if weekday != time.Saturday && weekday != time.Sunday {
				return false
			}
		}
	}

	if len(f.Keywords) > 0 && !containsAny(evt.Title, f.Keywords) {
		return false
	}

	if len(f.Sources) > 0 && !equalsAny(evt.Source, f.Sources) {
		return false
	}

	if len(f.Venues) > 0 &&
		!containsAny(event.Value(evt.Venue), f.Venues) &&
		!containsAny(event.Value(evt.Address), f.Venues) {
		return false
	}

	if len(f.Categories) > 0 {
		matched := false
		for _, category := range evt.Categories {
			if equalsAny(category, f.Categories) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the events that match all criteria, in their original order.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Jun 1, 2025 | To: Jun 15, 2025 | Keywords: jazz | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}
	if len(f.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("Sources: %s", strings.Join(f.Sources, ", ")))
	}
	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}
	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("Categories: %s", strings.Join(f.Categories, ", ")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}

func (f *Filter) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

func containsAny(value string, needles []string) bool {
	value = strings.ToLower(value)
	for _, needle := range needles {
		if strings.Contains(value, strings.ToLower(strings.TrimSpace(needle))) {
			return true
		}
	}
	return false
}

func equalsAny(value string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.EqualFold(value, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}
