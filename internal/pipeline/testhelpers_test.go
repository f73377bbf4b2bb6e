package pipeline

import (
	"time"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

func str(s string) *string {
	return &s
}

func ts(value string) *time.Time {
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func newEvent(title string, start *time.Time) *event.Event {
	return event.New("test", title, start)
}

func titles(events []*event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

// clone deep-copies the fields the steps mutate
func clone(events []*event.Event) []*event.Event {
	out := make([]*event.Event, len(events))
	for i, e := range events {
		c := *e
		c.Venue = copyStr(e.Venue)
		c.Address = copyStr(e.Address)
		c.Description = copyStr(e.Description)
		c.Cost = copyStr(e.Cost)
		out[i] = &c
	}
	return out
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
