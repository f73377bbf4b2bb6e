package event

import (
	"sort"
)

// Snapshot represents the processed events of one harvest run
type Snapshot struct {
	RunID     string            `json:"run_id"`
	Events    map[string]*Event `json:"events"`  // keyed by Event.ID
	Sources   []string          `json:"sources"` // sources that contributed events
	UpdatedAt string            `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events:  make(map[string]*Event),
		Sources: make([]string, 0),
	}
}

// CreateSnapshot creates a snapshot from a list of events
func CreateSnapshot(runID string, events []*Event, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.RunID = runID
	snap.UpdatedAt = updatedAt

	seenSources := make(map[string]bool)
	for _, evt := range events {
		if evt.ID == "" {
			evt.ID = GenerateID(evt.Source, evt.Title, evt.Start)
		}
		snap.Events[evt.ID] = evt
		if !seenSources[evt.Source] {
			seenSources[evt.Source] = true
			snap.Sources = append(snap.Sources, evt.Source)
		}
	}
	sort.Strings(snap.Sources)

	return snap
}

// DiffResult contains the results of comparing a run against a snapshot
type DiffResult struct {
	NewEvents []*Event
	BySource  map[string][]*Event // new events grouped by source
}

// Diff returns the events in current that were not in the previous snapshot.
// Order of current is preserved.
func Diff(previous *Snapshot, current []*Event) *DiffResult {
	result := &DiffResult{
		NewEvents: make([]*Event, 0),
		BySource:  make(map[string][]*Event),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	for _, evt := range current {
		id := evt.ID
		if id == "" {
			id = GenerateID(evt.Source, evt.Title, evt.Start)
		}
		if _, exists := previous.Events[id]; exists {
			continue
		}
		result.NewEvents = append(result.NewEvents, evt)
		result.BySource[evt.Source] = append(result.BySource[evt.Source], evt)
	}

	return result
}
