package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultCity     = "Edmonton"
	DefaultProvince = "AB"
)

// Event represents a person-attracting event harvested from a public source
type Event struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	Start       *time.Time     `json:"start"`
	End         *time.Time     `json:"end"`
	Venue       *string        `json:"venue"`
	Address     *string        `json:"address"`
	City        string         `json:"city"`
	Province    string         `json:"province"`
	PostalCode  *string        `json:"postal_code"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Categories  []string       `json:"categories"`
	URL         *string        `json:"url"`
	Cost        *string        `json:"cost"`
	Description *string        `json:"description"`
	Raw         map[string]any `json:"raw"` // Original source fields, never interpreted
}

// GenerateID creates a deterministic ID for an event based on stable fields
func GenerateID(source, title string, start *time.Time) string {
	startText := ""
	if start != nil {
		startText = start.UTC().Format(time.RFC3339)
	}

	h := sha1.New()
	h.Write([]byte(source + "|" + strings.ToLower(strings.TrimSpace(title)) + "|" + startText))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// New creates an Event with locality defaults and ID populated
func New(source, title string, start *time.Time) *Event {
	return &Event{
		ID:         GenerateID(source, title, start),
		Source:     source,
		Title:      title,
		Start:      start,
		City:       DefaultCity,
		Province:   DefaultProvince,
		Categories: []string{},
		Raw:        map[string]any{},
	}
}

// HasCoordinates reports whether both latitude and longitude are set
func (e *Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// SetCoordinates assigns latitude and longitude
func (e *Event) SetCoordinates(lat, lon float64) {
	e.Latitude = &lat
	e.Longitude = &lon
}

// Value returns the string behind an optional field, or "" when absent
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
