package event

import (
	"testing"
	"time"
)

func TestGenerateID(t *testing.T) {
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		source string
		title  string
		start  *time.Time
	}{
		{
			name:   "with start",
			source: "ExploreEdmonton",
			title:  "Jazz Night",
			start:  &start,
		},
		{
			name:   "without start",
			source: "Eventbrite",
			title:  "Open Mic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := GenerateID(tt.source, tt.title, tt.start)
			id2 := GenerateID(tt.source, tt.title, tt.start)

			if id1 != id2 {
				t.Errorf("GenerateID should be deterministic, got different IDs: %s vs %s", id1, id2)
			}

			if len(id1) != 40 { // SHA1 produces 40 hex characters
				t.Errorf("expected ID length of 40, got %d", len(id1))
			}
		})
	}
}

func TestGenerateID_IgnoresTitleCaseAndZone(t *testing.T) {
	utc := time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("MDT", -6*60*60))

	if GenerateID("s", "Jazz Night", &utc) != GenerateID("s", "  jazz night ", &local) {
		t.Error("expected same ID for same instant and case-insensitive title")
	}
	if GenerateID("a", "Jazz Night", &utc) == GenerateID("b", "Jazz Night", &utc) {
		t.Error("expected different IDs for different sources")
	}
}

func TestNew(t *testing.T) {
	evt := New("Socrata", "Farmers Market", nil)

	if evt.ID == "" {
		t.Error("expected ID to be generated")
	}
	if evt.City != "Edmonton" || evt.Province != "AB" {
		t.Errorf("expected Edmonton, AB defaults, got %s, %s", evt.City, evt.Province)
	}
	if evt.Categories == nil || len(evt.Categories) != 0 {
		t.Errorf("expected empty categories, got %v", evt.Categories)
	}
	if evt.Raw == nil {
		t.Error("expected raw map to be initialized")
	}
	if evt.HasCoordinates() {
		t.Error("new event should not have coordinates")
	}
}

func TestSetCoordinates(t *testing.T) {
	evt := New("s", "t", nil)
	evt.SetCoordinates(53.5461, -113.4938)

	if !evt.HasCoordinates() {
		t.Fatal("expected coordinates to be set")
	}
	if *evt.Latitude != 53.5461 || *evt.Longitude != -113.4938 {
		t.Errorf("got (%v, %v)", *evt.Latitude, *evt.Longitude)
	}

	lat := 1.0
	partial := New("s", "t", nil)
	partial.Latitude = &lat
	if partial.HasCoordinates() {
		t.Error("event with only latitude should not report coordinates")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"  Jazz \n\t Night  ", strPtr("Jazz Night")},
		{"already clean", strPtr("already clean")},
		{"   \n\t ", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CleanText(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("CleanText(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, *got, *tt.want)
			}
		})
	}

	if CleanTextPtr(nil) != nil {
		t.Error("CleanTextPtr(nil) should be nil")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("Music, Festivals,, ,Family ", ",")
	want := []string{"Music", "Festivals", "Family"}

	if len(got) != len(want) {
		t.Fatalf("SplitList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func strPtr(s string) *string {
	return &s
}
