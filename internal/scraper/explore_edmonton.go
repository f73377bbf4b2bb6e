package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/yeg-events/internal/calendar"
	"github.com/pfrederiksen/yeg-events/internal/event"
)

const ExploreEdmontonCalendarURL = "https://www.exploreedmonton.com/api/sitecore/Calendar/DownloadCalendar?language=en&category=all"

// ExploreEdmonton reads the Explore Edmonton ICS calendar feed
type ExploreEdmonton struct {
	client *Client
	url    string
}

// NewExploreEdmonton creates the source. An empty calendarURL uses the public feed.
func NewExploreEdmonton(client *Client, calendarURL string) *ExploreEdmonton {
	if calendarURL == "" {
		calendarURL = ExploreEdmontonCalendarURL
	}
	return &ExploreEdmonton{client: client, url: calendarURL}
}

// Name returns the source name
func (s *ExploreEdmonton) Name() string {
	return "ExploreEdmonton"
}

// FetchEvents downloads the feed and converts each VEVENT
func (s *ExploreEdmonton) FetchEvents(ctx context.Context) ([]*event.Event, error) {
	body, err := s.client.Get(ctx, s.url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	return s.parseCalendar(string(body))
}

// parseCalendar converts VEVENTs, skipping those without a summary.
// Floating times are Edmonton wall clock.
func (s *ExploreEdmonton) parseCalendar(content string) ([]*event.Event, error) {
	vevents, err := calendar.ParseString(content)
	if err != nil {
		return nil, err
	}

	loc := event.Location()
	events := make([]*event.Event, 0, len(vevents))
	for _, vevent := range vevents {
		title := event.CollapseWhitespace(vevent.Get("SUMMARY"))
		if title == "" {
			continue
		}

		evt := event.New(s.Name(), title, eventTime(vevent, "DTSTART", loc))
		evt.End = eventTime(vevent, "DTEND", loc)
		location := event.CleanText(vevent.Get("LOCATION"))
		evt.Venue = location
		evt.Address = event.CleanTextPtr(location)
		evt.Categories = vevent.List("CATEGORIES")
		evt.URL = event.CleanText(vevent.Get("URL"))
		evt.Description = event.CleanText(vevent.Get("DESCRIPTION"))
		evt.Raw = vevent.Raw()

		events = append(events, evt)
	}

	return events, nil
}

// eventTime reads an RFC 5545 time, falling back to the lenient parser for
// feeds that publish other formats
func eventTime(vevent calendar.VEvent, name string, loc *time.Location) *time.Time {
	if t := vevent.Time(name, loc); t != nil {
		return t
	}
	return event.ParseTime(vevent.Get(name))
}
