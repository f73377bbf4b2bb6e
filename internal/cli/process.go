package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/metrics"
)

func newProcessCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "process [events.json]",
		Short: "Run the pipeline over events read from a JSON file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening events: %w", err)
				}
				defer f.Close()
				in = f
			}

			events, err := readEvents(in)
			if err != nil {
				return err
			}

			m := metrics.New()
			pl, err := buildPipeline(set.cfg, m)
			if err != nil {
				return err
			}
			processed, err := pl.Run(events)
			if err != nil {
				return fmt.Errorf("processing events: %w", err)
			}

			if opts.metricsTextfile != "" {
				if err := m.WriteTextfile(opts.metricsTextfile); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}

			result := &OutputResult{
				CheckedAt:  time.Now().UTC(),
				Events:     processed,
				EventCount: len(processed),
			}
			result.applyFilter(set.filter)
			sortEvents(result.Events, set.order)
			return WriteOutput(cmd.OutOrStdout(), result, set.format, opts.verbose)
		},
	}
}

// readEvents decodes a JSON array of events, filling in missing IDs and
// location defaults.
func readEvents(r io.Reader) ([]*event.Event, error) {
	var events []*event.Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("parsing events: %w", err)
	}

	out := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if evt == nil {
			continue
		}
		if evt.City == "" {
			evt.City = event.DefaultCity
		}
		if evt.Province == "" {
			evt.Province = event.DefaultProvince
		}
		if evt.ID == "" {
			evt.ID = event.GenerateID(evt.Source, evt.Title, evt.Start)
		}
		out = append(out, evt)
	}
	return out, nil
}
