package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByStart  SortOrder = "start"
	SortByTitle  SortOrder = "title"
	SortBySource SortOrder = "source"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(value string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(value))); order {
	case SortByStart, SortByTitle, SortBySource:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'start', 'title' or 'source')", value)
	}
}

// sortEvents sorts a slice of events based on the specified sort order.
// The sort is stable so ties keep pipeline order.
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByStart:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByStart(events[i], events[j])
		})
	case SortBySource:
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].Source != events[j].Source {
				return events[i].Source < events[j].Source
			}
			return compareByStart(events[i], events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Title), strings.ToLower(events[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByStart(events[i], events[j])
		})
	}
}

// compareByStart reports whether i starts before j.
// Events without a start time sort last.
func compareByStart(i, j *event.Event) bool {
	if i.Start != nil && j.Start != nil {
		return i.Start.Before(*j.Start)
	}
	return i.Start != nil && j.Start == nil
}
