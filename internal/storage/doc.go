// Package storage persists processed events.
//
// Storage keeps a JSON snapshot of the most recent run in a local data
// directory (snapshot.json) along with the raw per-source results of that run
// (results.json). The snapshot is what the next run diffs against to report
// new events. The default location is ~/.local/share/yeg-events/.
//
// Postgres is an optional sink that upserts events into an "events" table.
package storage
