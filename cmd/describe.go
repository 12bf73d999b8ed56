package cmd

import (
	"fmt"

	"github.com/agentic-research/tabdex/internal/aggregate"
	"github.com/agentic-research/tabdex/internal/enrich"
	"github.com/agentic-research/tabdex/internal/logger"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var describePages int

func init() {
	describeCmd.Flags().IntVar(&describePages, "pages", 0,
		"Fetch up to N tab pages and include excerpts in the analysis (Tier 2)")
	rootCmd.AddCommand(describeCmd)
}

var describeCmd = &cobra.Command{
	Use:   "describe <group-name>",
	Short: "Analyze one tab group with the configured LLM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		agg := aggregate.New(log, selectSources(false, false)...)
		profiles, err := agg.Aggregate(ctx)
		if err != nil {
			return err
		}

		group, profileName, ok := aggregate.FindGroup(profiles, name)
		if !ok {
			return fmt.Errorf("no tab group named %q in any source", name)
		}
		log.Info("describing tab group",
			logger.String("group", group.Name),
			logger.String("profile", profileName),
			logger.Int("tabs", len(group.Tabs)))

		if cfg.LLMKey == "" {
			return fmt.Errorf("describe: TABDEX_LLM_KEY is not set")
		}

		var excerpts []enrich.PageExcerpt
		if describePages > 0 {
			excerpts = enrich.FetchExcerpts(ctx, group.Tabs, describePages, log)
		}

		client := enrich.NewClient(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMKey, log)
		analysis, err := client.Describe(ctx, group, excerpts)
		if err != nil {
			return fmt.Errorf("describe %q: %w", name, err)
		}

		out, err := oj.Marshal(map[string]any{
			"group":    group.Name,
			"profile":  profileName,
			"tabs":     len(group.Tabs),
			"analysis": analysis,
		}, 2)
		if err != nil {
			return fmt.Errorf("encode analysis: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
