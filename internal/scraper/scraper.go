package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/logger"
)

// Source produces normalized events from one public listing
type Source interface {
	Name() string
	FetchEvents(ctx context.Context) ([]*event.Event, error)
}

// Result contains the events and metadata from one source run
type Result struct {
	RunID     string         `json:"run_id"`
	Source    string         `json:"source"`
	FetchedAt time.Time      `json:"fetched_at"`
	Events    []*event.Event `json:"events"`
	Errors    []string       `json:"errors"`
}

// Failed reports whether the source run recorded an error
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// Run fetches src and records a failure on the result instead of returning
// it, so one broken source does not stop the others. Events a source
// produced before failing are kept.
func Run(ctx context.Context, src Source) *Result {
	result := &Result{
		RunID:     uuid.New().String(),
		Source:    src.Name(),
		FetchedAt: time.Now().UTC(),
		Events:    make([]*event.Event, 0),
		Errors:    make([]string, 0),
	}

	logger.Info("Running source", logger.Fields{"source": result.Source, "run_id": result.RunID})

	events, err := src.FetchEvents(ctx)
	if len(events) > 0 {
		result.Events = events
	}
	if err != nil {
		msg := fmt.Sprintf("%s failed: %v", result.Source, err)
		logger.Error("Source failed", logger.Fields{"source": result.Source, "kept_events": len(result.Events)}, err)
		result.Errors = append(result.Errors, msg)
		return result
	}

	logger.Info("Source finished", logger.Fields{
		"source":   result.Source,
		"events":   len(events),
		"duration": time.Since(result.FetchedAt).String(),
	})

	return result
}

// PageFetcher returns the events on one page; an empty page ends pagination
type PageFetcher func(ctx context.Context, page int) ([]*event.Event, error)

// FetchPages walks pages 1..maxPages and stops at the first empty page.
// On error it returns the events of the pages already fetched.
func FetchPages(ctx context.Context, name string, maxPages int, fetch PageFetcher) ([]*event.Event, error) {
	events := make([]*event.Event, 0)
	for page := 1; page <= maxPages; page++ {
		pageEvents, err := fetch(ctx, page)
		if err != nil {
			return events, fmt.Errorf("page %d: %w", page, err)
		}
		if len(pageEvents) == 0 {
			logger.Debug("No events returned; stopping", logger.Fields{"source": name, "page": page})
			break
		}
		events = append(events, pageEvents...)
	}
	return events, nil
}
