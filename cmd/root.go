package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/aggregate"
	"github.com/agentic-research/tabdex/internal/config"
	"github.com/agentic-research/tabdex/internal/logger"
	"github.com/agentic-research/tabdex/internal/normalize"
	"github.com/agentic-research/tabdex/internal/raindrop"
	"github.com/agentic-research/tabdex/internal/safari"
	"github.com/agentic-research/tabdex/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	cacheDir  string
	logLevel  string
	prettyLog bool

	cfg *config.Config
	log logger.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory override")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty", true, "Human-readable colored logs")
}

var rootCmd = &cobra.Command{
	Use:           "tabdex",
	Short:         "Aggregate Safari tab groups and Raindrop.io collections into one view",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cacheDir != "" {
			cfg.CacheDir = cacheDir
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("pretty") {
			cfg.Pretty = prettyLog
		}
		log = logger.New(cfg.LogLevel, cfg.Pretty)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tabdex:", err)
		os.Exit(1)
	}
}

// safariDBPath resolves the configured source database: an explicit path
// from config wins, otherwise the variant's default container location.
func safariDBPath() (string, error) {
	if cfg.SafariDBPath != "" {
		return cfg.SafariDBPath, nil
	}
	return safari.DefaultDBPath(cfg.Safari)
}

// localSource snapshots the Safari database (freshness-checked) and reads
// the reconstructed hierarchy from the cache copy.
func localSource() aggregate.Source {
	return aggregate.SourceFunc{
		SourceName: "safari",
		Fn: func(ctx context.Context) ([]api.Profile, error) {
			src, err := safariDBPath()
			if err != nil {
				return nil, err
			}
			mgr := snapshot.NewManager(src, cfg.CacheDir, log)
			if _, err := mgr.Sync(ctx); err != nil {
				return nil, err
			}
			profiles, err := safari.NewReader(mgr.CachePath(), log).Profiles(ctx)
			if err != nil {
				return nil, err
			}
			return normalize.Local(profiles), nil
		},
	}
}

// remoteSource reads the cached Raindrop snapshot; it never hits the
// network. Run `tabdex sync` to refresh it.
func remoteSource() aggregate.Source {
	return aggregate.SourceFunc{
		SourceName: "raindrop",
		Fn: func(ctx context.Context) ([]api.Profile, error) {
			snap, err := raindrop.LoadSnapshot(cfg.RemoteSnapshotPath())
			if err != nil {
				return nil, err
			}
			return normalize.Remote(snap), nil
		},
	}
}

// selectSources builds the source list for the local/remote flag pair,
// local first so merge order is stable.
func selectSources(localOnly, remoteOnly bool) []aggregate.Source {
	var sources []aggregate.Source
	if !remoteOnly {
		sources = append(sources, localSource())
	}
	if !localOnly {
		sources = append(sources, remoteSource())
	}
	return sources
}
