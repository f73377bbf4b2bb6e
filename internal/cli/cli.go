package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/yeg-events/internal/config"
	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/filter"
	"github.com/pfrederiksen/yeg-events/internal/logger"
)

// Version is set at build time
var Version = "dev"

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

// ExitCodeError carries a non-zero exit status without an error message
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// options holds the persistent flags shared by all commands
type options struct {
	configPath      string
	dataDir         string
	format          string
	sortOrder       string
	metricsTextfile string
	verbose         bool
	noSave          bool

	dates        string
	keywords     []string
	onlySources  []string
	venues       []string
	categories   []string
	weekendsOnly bool
}

// settings is the validated result of the shared flags
type settings struct {
	cfg    *config.Config
	format OutputFormat
	order  SortOrder
	filter *filter.Filter
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "yeg-events",
		Short: "Harvest and clean Edmonton event listings",
		Long: `A CLI tool that harvests public Edmonton event listings, normalizes,
deduplicates and geocodes them, and reports events that are new since the last run.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (defaults are used when empty)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Data directory for snapshots (overrides config)")
	flags.StringVar(&opts.format, "format", "text", "Output format: text or json")
	flags.StringVar(&opts.sortOrder, "sort", string(SortByStart), "Sort order: start, title or source")
	flags.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flags.BoolVar(&opts.noSave, "no-save", false, "Do not write snapshots or database rows")
	flags.StringVar(&opts.dates, "dates", "", "Only show events in a date range (e.g., 'Jun 1-15', 'July', '2025-06-01..2025-06-30')")
	flags.StringSliceVar(&opts.keywords, "keyword", nil, "Only show events whose title contains a keyword (repeatable)")
	flags.StringSliceVar(&opts.onlySources, "only-source", nil, "Only show events from these sources (repeatable)")
	flags.StringSliceVar(&opts.venues, "venue", nil, "Only show events whose venue or address contains a value (repeatable)")
	flags.StringSliceVar(&opts.categories, "category", nil, "Only show events in these categories (repeatable)")
	flags.BoolVar(&opts.weekendsOnly, "weekends", false, "Only show events starting on a Saturday or Sunday")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newProcessCmd(opts))
	cmd.AddCommand(newSourcesCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newResultsCmd(opts))

	return cmd
}

// setup validates the shared flags, installs the logger and loads the config
func (o *options) setup(stderr io.Writer) (*settings, error) {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}

	order, err := ParseSortOrder(o.sortOrder)
	if err != nil {
		return nil, err
	}

	level := logger.LevelWarn
	if o.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, stderr))

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.dataDir != "" {
		cfg.Storage.DataDir = o.dataDir
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	event.SetLocation(loc)

	f, err := o.buildFilter(loc)
	if err != nil {
		return nil, err
	}

	return &settings{cfg: cfg, format: format, order: order, filter: f}, nil
}

// buildFilter turns the filter flags into a Filter in the local time zone
func (o *options) buildFilter(loc *time.Location) (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Location = loc

	if o.dates != "" {
		from, to, err := filter.ParseDateRange(o.dates, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid --dates: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}

	f.Keywords = append(f.Keywords, o.keywords...)
	f.Sources = append(f.Sources, o.onlySources...)
	f.Venues = append(f.Venues, o.venues...)
	f.Categories = append(f.Categories, o.categories...)
	f.WeekendsOnly = o.weekendsOnly

	return f, nil
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	_ = logger.Default().Sync()
	if err == nil {
		os.Exit(ExitSuccess)
	}

	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitError)
}
