package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/logger"
)

const eventsSchema = `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		title TEXT NOT NULL,
		start_time TIMESTAMPTZ,
		end_time TIMESTAMPTZ,
		venue TEXT,
		address TEXT,
		city TEXT NOT NULL,
		province TEXT NOT NULL,
		postal_code TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		categories TEXT[] NOT NULL DEFAULT '{}',
		url TEXT,
		cost TEXT,
		description TEXT,
		run_id TEXT,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time);
	CREATE INDEX IF NOT EXISTS idx_events_source ON events(source);
`

const upsertEvent = `
	INSERT INTO events (
		id, source, title, start_time, end_time, venue, address, city, province,
		postal_code, latitude, longitude, categories, url, cost, description, run_id, last_seen
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
	)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		venue = EXCLUDED.venue,
		address = EXCLUDED.address,
		postal_code = EXCLUDED.postal_code,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		categories = EXCLUDED.categories,
		url = EXCLUDED.url,
		cost = EXCLUDED.cost,
		description = EXCLUDED.description,
		run_id = EXCLUDED.run_id,
		last_seen = EXCLUDED.last_seen
`

// Postgres writes events to a Postgres "events" table
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// OpenPostgres opens and pings the database at databaseURL
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return NewPostgres(db), nil
}

// NewPostgres wraps an open database handle
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// InitSchema creates the events table if it does not exist
func (p *Postgres) InitSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, eventsSchema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// SaveEvents upserts events in a single transaction
func (p *Postgres) SaveEvents(ctx context.Context, runID string, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, upsertEvent)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	seen := p.now().UTC()
	for _, evt := range events {
		id := evt.ID
		if id == "" {
			id = event.GenerateID(evt.Source, evt.Title, evt.Start)
		}
		categories := evt.Categories
		if categories == nil {
			categories = []string{}
		}

		_, err := stmt.ExecContext(ctx,
			id,
			evt.Source,
			evt.Title,
			nullTime(evt.Start),
			nullTime(evt.End),
			nullString(evt.Venue),
			nullString(evt.Address),
			evt.City,
			evt.Province,
			nullString(evt.PostalCode),
			nullFloat(evt.Latitude),
			nullFloat(evt.Longitude),
			pq.Array(categories),
			nullString(evt.URL),
			nullString(evt.Cost),
			nullString(evt.Description),
			runID,
			seen,
		)
		if err != nil {
			return fmt.Errorf("upserting event %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	logger.Info("Saved events to database", logger.Fields{"events": len(events), "run_id": runID})
	return nil
}

// Close closes the database handle
func (p *Postgres) Close() error {
	return p.db.Close()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
