package cli

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/yeg-events/internal/config"
	"github.com/pfrederiksen/yeg-events/internal/scraper"
)

// sourceInfo describes a configured source for listing
type sourceInfo struct {
	Type     string `json:"type"`
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
}

func newSourcesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			infos := describeSources(set.cfg)
			if set.format == FormatJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(infos)
			}
			writeSources(cmd.OutOrStdout(), infos)
			return nil
		},
	}
}

func describeSources(cfg *config.Config) []sourceInfo {
	infos := make([]sourceInfo, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		infos = append(infos, sourceInfo{
			Type:     sc.Type,
			Enabled:  sc.Enabled,
			Endpoint: endpoint(sc),
		})
	}
	return infos
}

// endpoint returns where the source fetches from, applying the scraper defaults
func endpoint(sc config.SourceConfig) string {
	switch sc.Type {
	case config.SourceExploreEdmonton:
		if sc.URL != "" {
			return sc.URL
		}
		return scraper.ExploreEdmontonCalendarURL
	case config.SourceSocrata:
		base := sc.URL
		if base == "" {
			base = scraper.SocrataDomain
		}
		return fmt.Sprintf("%s/resource/%s.json", base, sc.DatasetID)
	case config.SourceEventbrite:
		if sc.URL != "" {
			return sc.URL
		}
		return scraper.EventbriteListingURL
	default:
		return sc.URL
	}
}

func writeSources(w io.Writer, infos []sourceInfo) {
	for _, info := range infos {
		state := "enabled"
		if !info.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(w, "%s %s %s\n",
			runewidth.FillRight(info.Type, 18),
			runewidth.FillRight(state, 9),
			info.Endpoint,
		)
	}
}
