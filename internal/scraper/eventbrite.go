package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

const (
	EventbriteBase       = "https://www.eventbrite.ca"
	EventbriteListingURL = EventbriteBase + "/d/canada--edmonton/events/"
	eventbriteAddress    = "Edmonton, AB"
)

// Eventbrite scrapes the public Eventbrite listing pages for Edmonton
type Eventbrite struct {
	client   *Client
	url      string
	base     string
	maxPages int
}

// NewEventbrite creates the source. Eventbrite paginates heavily, so only
// the first few pages are read.
func NewEventbrite(client *Client, listingURL string, maxPages int) *Eventbrite {
	if listingURL == "" {
		listingURL = EventbriteListingURL
	}
	if maxPages <= 0 {
		maxPages = 3
	}
	return &Eventbrite{client: client, url: listingURL, base: EventbriteBase, maxPages: maxPages}
}

// Name returns the source name
func (s *Eventbrite) Name() string {
	return "Eventbrite"
}

// FetchEvents walks the listing pages
func (s *Eventbrite) FetchEvents(ctx context.Context) ([]*event.Event, error) {
	return FetchPages(ctx, s.Name(), s.maxPages, s.fetchPage)
}

func (s *Eventbrite) fetchPage(ctx context.Context, page int) ([]*event.Event, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	body, err := s.client.Get(ctx, s.url, params, nil)
	if err != nil {
		return nil, err
	}
	return s.parseListing(body)
}

// parseListing extracts events from the event cards on one page
func (s *Eventbrite) parseListing(body []byte) ([]*event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	cards := doc.Find(`[data-testid="event-card"]`)
	if cards.Length() == 0 {
		cards = doc.Find(`[data-spec="event-card__content"]`)
	}

	events := make([]*event.Event, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		title := event.CollapseWhitespace(text(card.Find(`[data-spec="event-card__formatted-name"]`)))
		if title == "" {
			return
		}

		dateSel := card.Find(`[data-spec="event-card__date"]`)
		if dateSel.Length() == 0 {
			dateSel = card.Find("time")
		}
		dateText := event.CollapseWhitespace(text(dateSel))

		evt := event.New(s.Name(), title, parseListingDate(dateText))
		evt.Venue = event.CleanText(text(card.Find(`[data-spec="event-card__sub-event-venue"]`)))
		evt.Address = event.CleanText(eventbriteAddress)
		evt.Cost = event.CleanText(text(card.Find(`[data-spec="event-card__price"]`)))
		if href, ok := card.Find("a").First().Attr("href"); ok {
			if strings.HasPrefix(href, "/") {
				href = s.base + href
			}
			evt.URL = event.CleanText(href)
		}
		evt.Raw = map[string]any{"date_text": dateText}

		events = append(events, evt)
	})

	return events, nil
}

// text returns the trimmed text of the first matched element
func text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.First().Text())
}

// parseListingDate parses the start of a date range like "Sat, May 4, 7:00 PM – 9:00 PM"
func parseListingDate(dateText string) *time.Time {
	if dateText == "" {
		return nil
	}
	cleaned := strings.NewReplacer("–", "-", "—", "-").Replace(dateText)
	first, _, _ := strings.Cut(cleaned, " - ")
	if parsed := event.ParseTime(first); parsed != nil {
		return parsed
	}
	first, _, _ = strings.Cut(cleaned, "-")
	return event.ParseTime(first)
}
