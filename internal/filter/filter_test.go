package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}

// Saturday, June 7 2025 and Tuesday, June 10 2025 at 19:00 UTC
var (
	saturday = time.Date(2025, time.June, 7, 19, 0, 0, 0, time.UTC)
	tuesday  = time.Date(2025, time.June, 10, 19, 0, 0, 0, time.UTC)
)

func sampleEvents() []*event.Event {
	jazz := event.New("ExploreEdmonton", "Jazz Night", timePtr(saturday))
	jazz.Venue = strPtr("Yardbird Suite")
	jazz.Categories = []string{"Music"}

	market := event.New("Socrata", "Farmers Market", timePtr(tuesday))
	market.Address = strPtr("10305 97 St NW")
	market.Categories = []string{"Food", "Community"}

	tba := event.New("Eventbrite", "Jazz Workshop", nil)

	return []*event.Event{jazz, market, tba}
}

func titles(events []*event.Event) string {
	names := make([]string, len(events))
	for i, evt := range events {
		names[i] = evt.Title
	}
	return strings.Join(names, ",")
}

func TestFilter_IsEmpty(t *testing.T) {
	if !NewFilter().IsEmpty() {
		t.Error("new filter should be empty")
	}

	f := NewFilter()
	f.WeekendsOnly = true
	if f.IsEmpty() {
		t.Error("filter with WeekendsOnly should not be empty")
	}

	f = NewFilter()
	f.Sources = []string{"Socrata"}
	if f.IsEmpty() {
		t.Error("filter with sources should not be empty")
	}
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *Filter)
		want  string
	}{
		{
			name:  "empty filter keeps everything",
			setup: func(f *Filter) {},
			want:  "Jazz Night,Farmers Market,Jazz Workshop",
		},
		{
			name:  "keyword is case-insensitive substring",
			setup: func(f *Filter) { f.Keywords = []string{"JAZZ"} },
			want:  "Jazz Night,Jazz Workshop",
		},
		{
			name:  "source is exact",
			setup: func(f *Filter) { f.Sources = []string{"socrata", "Explore"} },
			want:  "Farmers Market",
		},
		{
			name:  "venue matches venue or address",
			setup: func(f *Filter) { f.Venues = []string{"yardbird", "97 St"} },
			want:  "Jazz Night,Farmers Market",
		},
		{
			name:  "category",
			setup: func(f *Filter) { f.Categories = []string{"community"} },
			want:  "Farmers Market",
		},
		{
			name:  "date from excludes earlier and undated",
			setup: func(f *Filter) { f.DateFrom = timePtr(time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)) },
			want:  "Farmers Market",
		},
		{
			name:  "date to is inclusive",
			setup: func(f *Filter) { f.DateTo = timePtr(saturday) },
			want:  "Jazz Night",
		},
		{
			name:  "weekends only",
			setup: func(f *Filter) { f.WeekendsOnly = true },
			want:  "Jazz Night",
		},
		{
			name: "criteria combine",
			setup: func(f *Filter) {
				f.Keywords = []string{"jazz"}
				f.WeekendsOnly = true
			},
			want: "Jazz Night",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter()
			tt.setup(f)

			if got := titles(f.Apply(sampleEvents())); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilter_WeekendsOnlyUsesLocation(t *testing.T) {
	// 02:00 UTC Sunday is still Saturday evening in Edmonton
	lateSaturday := time.Date(2025, time.June, 8, 2, 0, 0, 0, time.UTC)
	earlyMonday := time.Date(2025, time.June, 9, 3, 0, 0, 0, time.UTC)
	events := []*event.Event{
		event.New("Eventbrite", "Late Show", &lateSaturday),
		event.New("Eventbrite", "Sunday Brunch Afterparty", &earlyMonday),
	}

	f := NewFilter()
	f.WeekendsOnly = true
	f.Location = time.FixedZone("MDT", -6*60*60)

	if got := titles(f.Apply(events)); got != "Late Show,Sunday Brunch Afterparty" {
		t.Errorf("Apply() = %q", got)
	}

	f.Location = nil
	if got := titles(f.Apply(events)); got != "Late Show" {
		t.Errorf("Apply() in UTC = %q", got)
	}
}

func TestFilter_WeekendsOnlyFloatingTimes(t *testing.T) {
	// Saturday May 4 2024 and Monday May 6 2024, local wall clock
	lateShow := event.New("Socrata", "Late show", event.ParseTime("2024-05-04T00:30:00"))
	monday := event.New("Socrata", "Monday matinee", event.ParseTime("2024-05-06T00:30:00"))

	f := NewFilter()
	f.WeekendsOnly = true
	f.Location = event.Location()

	if !f.Matches(lateShow) {
		t.Error("Saturday 00:30 local should be a weekend event")
	}
	if f.Matches(monday) {
		t.Error("Monday 00:30 local should not be a weekend event")
	}
}

func TestFilter_String(t *testing.T) {
	if got := NewFilter().String(); got != "No active filters" {
		t.Errorf("String() = %q", got)
	}

	f := NewFilter()
	f.DateFrom = timePtr(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	f.Keywords = []string{"jazz", "blues"}
	f.WeekendsOnly = true

	want := "From: Jun 1, 2025 | Keywords: jazz, blues | Weekends only"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
