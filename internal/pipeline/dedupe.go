package pipeline

import (
	"strings"
	"time"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

// KeyFunc derives the identity of an event. The returned value must be
// comparable; a non-comparable key panics.
type KeyFunc func(evt *event.Event) any

// Key is the default dedupe identity: lowercased title and start instant.
// Empty strings stand for a missing title or start.
type Key struct {
	Title string
	Start string
}

// DefaultKey maps an event to its lowercased title and UTC start time, so
// the same listing from two sources collapses into one.
func DefaultKey(evt *event.Event) any {
	key := Key{Title: strings.ToLower(evt.Title)}
	if evt.Start != nil {
		key.Start = evt.Start.UTC().Format(time.RFC3339Nano)
	}
	return key
}

// Dedupe drops events whose key was already seen, keeping the first
// occurrence and the original order of survivors.
type Dedupe struct {
	key KeyFunc
}

// DedupeOption configures a Dedupe step
type DedupeOption func(*Dedupe)

// WithKey replaces the default identity key
func WithKey(fn KeyFunc) DedupeOption {
	return func(d *Dedupe) {
		if fn != nil {
			d.key = fn
		}
	}
}

// NewDedupe creates the step using DefaultKey unless overridden
func NewDedupe(opts ...DedupeOption) *Dedupe {
	d := &Dedupe{key: DefaultKey}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the step name
func (s *Dedupe) Name() string {
	return StepDedupe
}

// Run keeps the first event for every key in a single pass
func (s *Dedupe) Run(events []*event.Event) ([]*event.Event, error) {
	seen := make(map[any]struct{}, len(events))
	unique := make([]*event.Event, 0, len(events))

	for _, evt := range events {
		k := s.key(evt)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, evt)
	}

	return unique, nil
}
