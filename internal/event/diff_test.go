package event

import (
	"testing"
	"time"
)

func TestDiff(t *testing.T) {
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	old := New("ExploreEdmonton", "Jazz Night", &start)
	fresh := New("Eventbrite", "Comedy Hour", nil)
	alsoFresh := New("ExploreEdmonton", "Folk Fest", nil)

	previous := CreateSnapshot("run-1", []*Event{old}, "2024-04-30T00:00:00Z")

	tests := []struct {
		name     string
		previous *Snapshot
		current  []*Event
		wantNew  int
	}{
		{
			name:     "nil previous treats everything as new",
			previous: nil,
			current:  []*Event{old, fresh},
			wantNew:  2,
		},
		{
			name:     "only unseen events are new",
			previous: previous,
			current:  []*Event{old, fresh, alsoFresh},
			wantNew:  2,
		},
		{
			name:     "no changes",
			previous: previous,
			current:  []*Event{old},
			wantNew:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Diff(tt.previous, tt.current)
			if len(result.NewEvents) != tt.wantNew {
				t.Errorf("Diff() returned %d new events, want %d", len(result.NewEvents), tt.wantNew)
			}
		})
	}

	result := Diff(previous, []*Event{fresh, old, alsoFresh})
	if result.NewEvents[0] != fresh || result.NewEvents[1] != alsoFresh {
		t.Error("Diff() should preserve input order")
	}
	if len(result.BySource["ExploreEdmonton"]) != 1 || len(result.BySource["Eventbrite"]) != 1 {
		t.Errorf("unexpected grouping: %v", result.BySource)
	}
}

func TestCreateSnapshot(t *testing.T) {
	evt := &Event{Source: "Socrata", Title: "Parade"}
	snap := CreateSnapshot("run-2", []*Event{evt, New("Eventbrite", "Gala", nil)}, "2024-05-01T00:00:00Z")

	if evt.ID == "" {
		t.Error("CreateSnapshot should fill missing IDs")
	}
	if len(snap.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(snap.Events))
	}
	if len(snap.Sources) != 2 || snap.Sources[0] != "Eventbrite" {
		t.Errorf("expected sorted sources, got %v", snap.Sources)
	}
	if snap.RunID != "run-2" {
		t.Errorf("RunID = %q", snap.RunID)
	}
}
