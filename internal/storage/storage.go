package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/scraper"
)

const (
	DefaultDataDir   = "~/.local/share/yeg-events"
	snapshotFileName = "snapshot.json"
	resultsFileName  = "results.json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Storage handles persistence of event snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the resolved data directory
func (s *Storage) DataDir() string {
	return s.dataDir
}

func (s *Storage) snapshotPath() string {
	return filepath.Join(s.dataDir, snapshotFileName)
}

func (s *Storage) resultsPath() string {
	return filepath.Join(s.dataDir, resultsFileName)
}

// LoadSnapshot loads the last snapshot. A missing file yields an empty snapshot.
func (s *Storage) LoadSnapshot() (*event.Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*event.Event)
	}
	if snapshot.Sources == nil {
		snapshot.Sources = make([]string, 0)
	}

	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk
func (s *Storage) SaveSnapshot(snapshot *event.Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return writeJSON(s.snapshotPath(), snapshot)
}

// CreateSnapshotFromEvents creates and saves a snapshot from a list of events
func (s *Storage) CreateSnapshotFromEvents(runID string, events []*event.Event) (*event.Snapshot, error) {
	snapshot := event.CreateSnapshot(runID, events, time.Now().UTC().Format(time.RFC3339))
	if err := s.SaveSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// SaveResults writes the raw per-source results of the latest run
func (s *Storage) SaveResults(results []*scraper.Result) error {
	return writeJSON(s.resultsPath(), results)
}

// LoadResults reads the results written by SaveResults
func (s *Storage) LoadResults() ([]*scraper.Result, error) {
	data, err := os.ReadFile(s.resultsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []*scraper.Result{}, nil
		}
		return nil, fmt.Errorf("reading results: %w", err)
	}

	var results []*scraper.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing results: %w", err)
	}
	return results, nil
}

// GetEventByID retrieves an event by ID from the snapshot
func (s *Storage) GetEventByID(eventID string) (*event.Event, error) {
	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if evt, exists := snapshot.Events[eventID]; exists {
		return evt, nil
	}

	return nil, fmt.Errorf("event not found: %s", eventID)
}

// writeJSON writes v to a temp file and renames it over path
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}

	return nil
}
