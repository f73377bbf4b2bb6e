package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/yeg-events/internal/config"
	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/geocode"
	"github.com/pfrederiksen/yeg-events/internal/logger"
	"github.com/pfrederiksen/yeg-events/internal/metrics"
	"github.com/pfrederiksen/yeg-events/internal/pipeline"
	"github.com/pfrederiksen/yeg-events/internal/scraper"
	"github.com/pfrederiksen/yeg-events/internal/storage"
)

func newRunCmd(opts *options) *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Harvest all enabled sources and process the results",
		Long: `Fetches every enabled source, runs the combined events through the
configured pipeline, saves a snapshot and prints the events, marking those
that were not present in the previous snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			m := metrics.New()
			result, err := harvest(cmd.Context(), set.cfg, m, !opts.noSave)
			if err != nil {
				return err
			}

			if opts.metricsTextfile != "" {
				if err := m.WriteTextfile(opts.metricsTextfile); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}

			// decided before display filtering
			foundNew := result.NewCount > 0

			result.applyFilter(set.filter)
			sortEvents(result.Events, set.order)
			if err := WriteOutput(cmd.OutOrStdout(), result, set.format, opts.verbose); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			if exitCode && foundNew {
				return &ExitCodeError{Code: ExitNewEvents}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 2 when new events are found")

	return cmd
}

// harvest runs every enabled source, processes the combined events and,
// when save is set, persists them and diffs against the previous snapshot.
func harvest(ctx context.Context, cfg *config.Config, m *metrics.Metrics, save bool) (*OutputResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.New().String()
	log := logger.Default()

	client := scraper.NewClient(scraper.ClientConfig{
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxRetries: cfg.HTTP.MaxRetries,
	})
	sources, err := buildSources(cfg, client)
	if err != nil {
		return nil, err
	}

	pl, err := buildPipeline(cfg, m)
	if err != nil {
		return nil, err
	}

	log.Info("Starting harvest", logger.Fields{"run_id": runID, "sources": len(sources)})

	results := make([]*scraper.Result, 0, len(sources))
	summaries := make([]SourceSummary, 0, len(sources))
	combined := make([]*event.Event, 0)
	for _, src := range sources {
		res := scraper.Run(ctx, src)
		m.ObserveSource(res.Source, len(res.Events), res.Failed())
		results = append(results, res)
		summaries = append(summaries, SourceSummary{Name: res.Source, Events: len(res.Events), Errors: res.Errors})
		combined = append(combined, res.Events...)
	}

	processed, err := pl.Run(combined)
	if err != nil {
		return nil, fmt.Errorf("processing events: %w", err)
	}
	m.MarkRun(time.Now())

	result := &OutputResult{
		RunID:      runID,
		CheckedAt:  time.Now().UTC(),
		Sources:    summaries,
		Events:     processed,
		EventCount: len(processed),
	}

	if !save {
		return result, nil
	}

	store, err := storage.New(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	previous, err := store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	diff := event.Diff(previous, processed)
	result.NewEvents = diff.NewEvents
	result.NewCount = len(diff.NewEvents)
	result.BySource = diff.BySource
	result.Diffed = true

	if _, err := store.CreateSnapshotFromEvents(runID, processed); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	if err := store.SaveResults(results); err != nil {
		return nil, fmt.Errorf("saving results: %w", err)
	}

	if cfg.Storage.DatabaseURL != "" {
		if err := saveToDatabase(ctx, cfg.Storage.DatabaseURL, runID, processed); err != nil {
			return nil, err
		}
	}

	log.Info("Harvest finished", logger.Fields{
		"run_id":     runID,
		"events":     len(processed),
		"new_events": result.NewCount,
	})

	return result, nil
}

func saveToDatabase(ctx context.Context, databaseURL, runID string, events []*event.Event) error {
	db, err := storage.OpenPostgres(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		return err
	}
	return db.SaveEvents(ctx, runID, events)
}

// buildSources creates a scraper for each enabled source in config order
func buildSources(cfg *config.Config, client *scraper.Client) ([]scraper.Source, error) {
	sources := make([]scraper.Source, 0)
	for _, sc := range cfg.EnabledSources() {
		switch sc.Type {
		case config.SourceExploreEdmonton:
			sources = append(sources, scraper.NewExploreEdmonton(client, sc.URL))
		case config.SourceSocrata:
			src, err := scraper.NewSocrata(client, scraper.SocrataConfig{
				DatasetID: sc.DatasetID,
				AppToken:  sc.AppToken,
				FieldMap:  sc.FieldMap,
				Where:     sc.Where,
				MaxPages:  sc.MaxPages,
				PageSize:  sc.PageSize,
				BaseURL:   sc.URL,
			})
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		case config.SourceEventbrite:
			sources = append(sources, scraper.NewEventbrite(client, sc.URL, sc.MaxPages))
		default:
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, sc.Type)
		}
	}
	return sources, nil
}

// buildPipeline creates the configured steps, wiring the venue table and
// metrics. The geocode table is only loaded when enrich_geocode is used.
func buildPipeline(cfg *config.Config, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	var geocoder pipeline.Geocoder
	for _, name := range cfg.Pipeline.Steps {
		if name != pipeline.StepEnrichGeocode {
			continue
		}
		table, err := geocode.Load(cfg.Geocode.VenuesFile)
		if err != nil {
			return nil, fmt.Errorf("loading venue table: %w", err)
		}
		geocoder = table.Lookup
		break
	}

	stepOpts := make([]pipeline.GeocodeOption, 0, 1)
	pipeOpts := []pipeline.Option{pipeline.WithLogger(logger.Default())}
	if m != nil {
		stepOpts = append(stepOpts, pipeline.WithCacheObserver(m))
		pipeOpts = append(pipeOpts, pipeline.WithObserver(m))
	}

	steps, err := pipeline.Build(cfg.Pipeline.Steps, geocoder, stepOpts...)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	return pipeline.New(steps, pipeOpts...), nil
}
