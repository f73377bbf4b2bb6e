package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/filter"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

const (
	titleWidth = 48
	venueWidth = 28
	startWidth = 16
)

// SourceSummary reports how one source fared in a run
type SourceSummary struct {
	Name   string   `json:"name"`
	Events int      `json:"events"`
	Errors []string `json:"errors,omitempty"`
}

// OutputResult contains data to be output
type OutputResult struct {
	RunID      string                    `json:"run_id,omitempty"`
	CheckedAt  time.Time                 `json:"checked_at"`
	Sources    []SourceSummary           `json:"sources,omitempty"`
	Events     []*event.Event            `json:"events"`
	EventCount int                       `json:"event_count"`
	NewEvents  []*event.Event            `json:"new_events,omitempty"`
	NewCount   int                       `json:"new_count"`
	BySource   map[string][]*event.Event `json:"-"`
	Diffed     bool                      `json:"-"`
}

// applyFilter narrows the displayed and new events. Snapshots are saved
// before this, so filtering never hides events from the next diff.
func (r *OutputResult) applyFilter(f *filter.Filter) {
	if f == nil || f.IsEmpty() {
		return
	}

	r.Events = f.Apply(r.Events)
	r.EventCount = len(r.Events)
	if !r.Diffed {
		return
	}

	r.NewEvents = f.Apply(r.NewEvents)
	r.NewCount = len(r.NewEvents)
	r.BySource = make(map[string][]*event.Event)
	for _, evt := range r.NewEvents {
		r.BySource[evt.Source] = append(r.BySource[evt.Source], evt)
	}
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as an aligned, human-readable table
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	for _, src := range result.Sources {
		status := fmt.Sprintf("%d events", src.Events)
		if len(src.Errors) > 0 {
			status = "FAILED"
		}
		fmt.Fprintf(w, "%s %s\n", runewidth.FillRight(src.Name, 16), status)
		for _, msg := range src.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
	if len(result.Sources) > 0 {
		fmt.Fprintln(w)
	}

	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	isNew := make(map[*event.Event]bool, len(result.NewEvents))
	for _, evt := range result.NewEvents {
		isNew[evt] = true
	}

	for _, evt := range result.Events {
		marker := "   "
		if isNew[evt] {
			marker = "NEW"
		}
		fmt.Fprintf(w, "%s %s  %s  %s  %s\n",
			marker,
			runewidth.FillRight(formatStart(evt), startWidth),
			runewidth.FillRight(runewidth.Truncate(evt.Title, titleWidth, "..."), titleWidth),
			runewidth.FillRight(runewidth.Truncate(event.Value(evt.Venue), venueWidth, "..."), venueWidth),
			evt.Source,
		)
		if verbose {
			fmt.Fprintf(w, "      ID: %s\n", evt.ID)
			if evt.Address != nil {
				fmt.Fprintf(w, "      Address: %s\n", *evt.Address)
			}
			if evt.HasCoordinates() {
				fmt.Fprintf(w, "      Location: %.5f, %.5f\n", *evt.Latitude, *evt.Longitude)
			}
			if evt.URL != nil {
				fmt.Fprintf(w, "      URL: %s\n", *evt.URL)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events", result.EventCount)
	if result.Diffed {
		fmt.Fprintf(w, ", %d new", result.NewCount)
		if len(result.BySource) > 0 {
			sources := make([]string, 0, len(result.BySource))
			for name := range result.BySource {
				sources = append(sources, name)
			}
			sort.Strings(sources)
			for i, name := range sources {
				sep := ", "
				if i == 0 {
					sep = " ("
				}
				fmt.Fprintf(w, "%s%s: %d", sep, name, len(result.BySource[name]))
			}
			fmt.Fprint(w, ")")
		}
	}
	fmt.Fprintln(w)

	return nil
}

// formatStart renders the start time in the local time zone
func formatStart(evt *event.Event) string {
	if evt.Start == nil {
		return "TBA"
	}
	return evt.Start.In(event.Location()).Format("2006-01-02 15:04")
}
