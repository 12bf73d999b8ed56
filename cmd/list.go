package cmd

import (
	"fmt"

	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/aggregate"
	"github.com/agentic-research/tabdex/internal/logger"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var (
	listJSON       bool
	listLocalOnly  bool
	listRemoteOnly bool
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Emit the normalized JSON document")
	listCmd.Flags().BoolVar(&listLocalOnly, "local-only", false, "List only the Safari source")
	listCmd.Flags().BoolVar(&listRemoteOnly, "remote-only", false, "List only the Raindrop source")
	listCmd.MarkFlagsMutuallyExclusive("local-only", "remote-only")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tab groups from the configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := aggregate.New(log, selectSources(listLocalOnly, listRemoteOnly)...)
		profiles, err := agg.Aggregate(cmd.Context())
		if err != nil {
			return err
		}

		doc := api.Document{Profiles: profiles}
		log.Debug("aggregated sources",
			logger.Int("profiles", len(doc.Profiles)),
			logger.Int("groups", doc.GroupCount()),
			logger.Int("tabs", doc.TabCount()))

		if listJSON {
			out, err := oj.Marshal(&doc, 2)
			if err != nil {
				return fmt.Errorf("encode document: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		for _, p := range doc.Profiles {
			for _, g := range p.TabGroups {
				for _, t := range g.Tabs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s / %s / %s (%s)\n",
						p.Name, g.Name, t.Title, t.URL)
				}
			}
		}
		return nil
	},
}
