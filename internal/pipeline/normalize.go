package pipeline

import (
	"github.com/pfrederiksen/yeg-events/internal/event"
)

// NormalizeText collapses whitespace in the free-text fields of each event.
// Optional fields left empty become nil. Running it twice is the same as once.
type NormalizeText struct{}

// NewNormalizeText creates the step
func NewNormalizeText() *NormalizeText {
	return &NormalizeText{}
}

// Name returns the step name
func (s *NormalizeText) Name() string {
	return StepNormalizeText
}

// Run normalizes title, venue, address, description and cost in place
func (s *NormalizeText) Run(events []*event.Event) ([]*event.Event, error) {
	for _, evt := range events {
		evt.Title = event.CollapseWhitespace(evt.Title)
		evt.Venue = event.CleanTextPtr(evt.Venue)
		evt.Address = event.CleanTextPtr(evt.Address)
		evt.Description = event.CleanTextPtr(evt.Description)
		evt.Cost = event.CleanTextPtr(evt.Cost)
	}
	return events, nil
}
