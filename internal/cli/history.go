package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/scraper"
	"github.com/pfrederiksen/yeg-events/internal/storage"
)

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show one event from the last snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			store, err := storage.New(set.cfg.Storage.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			evt, err := store.GetEventByID(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			if set.format == FormatJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(evt)
			}
			writeEventDetail(cmd.OutOrStdout(), evt)
			return nil
		},
	}
}

func newResultsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show per-source results of the last saved run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			store, err := storage.New(set.cfg.Storage.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			results, err := store.LoadResults()
			if err != nil {
				return err
			}

			if set.format == FormatJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}
			writeResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func writeEventDetail(w io.Writer, evt *event.Event) {
	fmt.Fprintf(w, "%s\n", evt.Title)
	fmt.Fprintf(w, "  ID:       %s\n", evt.ID)
	fmt.Fprintf(w, "  Source:   %s\n", evt.Source)
	fmt.Fprintf(w, "  Start:    %s\n", formatStart(evt))
	if evt.End != nil {
		fmt.Fprintf(w, "  End:      %s\n", evt.End.In(event.Location()).Format("2006-01-02 15:04"))
	}
	if evt.Venue != nil {
		fmt.Fprintf(w, "  Venue:    %s\n", *evt.Venue)
	}
	if evt.Address != nil {
		fmt.Fprintf(w, "  Address:  %s, %s %s\n", *evt.Address, evt.City, evt.Province)
	}
	if evt.HasCoordinates() {
		fmt.Fprintf(w, "  Location: %.5f, %.5f\n", *evt.Latitude, *evt.Longitude)
	}
	if len(evt.Categories) > 0 {
		fmt.Fprintf(w, "  Tags:     %s\n", strings.Join(evt.Categories, ", "))
	}
	if evt.Cost != nil {
		fmt.Fprintf(w, "  Cost:     %s\n", *evt.Cost)
	}
	if evt.URL != nil {
		fmt.Fprintf(w, "  URL:      %s\n", *evt.URL)
	}
	if evt.Description != nil {
		fmt.Fprintf(w, "\n%s\n", *evt.Description)
	}
}

func writeResults(w io.Writer, results []*scraper.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No saved run.")
		return
	}
	for _, res := range results {
		status := fmt.Sprintf("%d events", len(res.Events))
		if res.Failed() {
			status += " (failed)"
		}
		fmt.Fprintf(w, "%s %s %s  %s\n",
			runewidth.FillRight(res.Source, 16),
			runewidth.FillRight(status, 20),
			res.FetchedAt.In(event.Location()).Format("2006-01-02 15:04"),
			res.RunID,
		)
		for _, msg := range res.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}
