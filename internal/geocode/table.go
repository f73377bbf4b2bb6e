// Package geocode provides a static venue table usable as a pipeline geocoder.
//
// The table maps venue names, aliases and addresses to coordinates. It is
// loaded from YAML; a table of well-known Edmonton venues is embedded and
// used when no file is configured.
package geocode

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/pipeline"
)

//go:embed venues.yaml
var defaultVenues []byte

// Venue is one table row
type Venue struct {
	Name      string   `yaml:"name"`
	Aliases   []string `yaml:"aliases"`
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
}

type tableFile struct {
	Venues []Venue `yaml:"venues"`
}

// Table resolves lookup keys against known venues
type Table struct {
	entries map[string]pipeline.Coordinates // normalized name → coordinates
}

// normalizeKey makes lookups case- and whitespace-insensitive
func normalizeKey(s string) string {
	return strings.ToLower(event.CollapseWhitespace(s))
}

// NewTable builds a table from venues. Later rows win on duplicate names.
func NewTable(venues []Venue) *Table {
	t := &Table{entries: make(map[string]pipeline.Coordinates)}
	for _, v := range venues {
		coords := pipeline.Coordinates{Latitude: v.Latitude, Longitude: v.Longitude}
		for _, name := range append([]string{v.Name}, v.Aliases...) {
			if key := normalizeKey(name); key != "" {
				t.entries[key] = coords
			}
		}
	}
	return t
}

// Parse reads a YAML venue table
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing venue table: %w", err)
	}
	for i, v := range f.Venues {
		if strings.TrimSpace(v.Name) == "" {
			return nil, fmt.Errorf("venue %d: name is required", i)
		}
		if v.Latitude < -90 || v.Latitude > 90 || v.Longitude < -180 || v.Longitude > 180 {
			return nil, fmt.Errorf("venue %q: coordinates out of range", v.Name)
		}
	}
	return NewTable(f.Venues), nil
}

// Load reads a venue table from path, or the embedded table when path is empty
func Load(path string) (*Table, error) {
	if path == "" {
		return Parse(defaultVenues)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading venue table: %w", err)
	}
	return Parse(data)
}

// Size returns the number of names the table answers to
func (t *Table) Size() int {
	return len(t.entries)
}

// Lookup implements pipeline.Geocoder. Unknown venues yield nil, nil.
func (t *Table) Lookup(evt *event.Event) (*pipeline.Coordinates, error) {
	for _, candidate := range []*string{evt.Venue, evt.Address} {
		key := normalizeKey(event.Value(candidate))
		if key == "" {
			continue
		}
		if coords, ok := t.entries[key]; ok {
			return &coords, nil
		}
	}
	return nil, nil
}
