package cmd

import (
	"fmt"

	"github.com/agentic-research/tabdex/internal/logger"
	"github.com/agentic-research/tabdex/internal/raindrop"
	"github.com/agentic-research/tabdex/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	syncLocalOnly  bool
	syncRemoteOnly bool
)

func init() {
	syncCmd.Flags().BoolVar(&syncLocalOnly, "local-only", false, "Sync only the Safari snapshot")
	syncCmd.Flags().BoolVar(&syncRemoteOnly, "remote-only", false, "Sync only the Raindrop snapshot")
	syncCmd.MarkFlagsMutuallyExclusive("local-only", "remote-only")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local database snapshot and the Raindrop cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		var localErr, remoteErr error
		requested := 0

		if !syncRemoteOnly {
			requested++
			localErr = syncLocal(cmd)
		}
		if !syncLocalOnly {
			requested++
			remoteErr = syncRemote(cmd)
		}

		failed := 0
		for _, err := range []error{localErr, remoteErr} {
			if err != nil {
				failed++
				log.Warn("sync source failed", logger.Error(err))
			}
		}
		if failed == requested {
			if localErr != nil {
				return localErr
			}
			return remoteErr
		}
		return nil
	},
}

func syncLocal(cmd *cobra.Command) error {
	src, err := safariDBPath()
	if err != nil {
		return err
	}
	mgr := snapshot.NewManager(src, cfg.CacheDir, log)
	result, err := mgr.Sync(cmd.Context())
	if err != nil {
		return fmt.Errorf("safari sync: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "safari snapshot: %s\n", result)
	return nil
}

func syncRemote(cmd *cobra.Command) error {
	if cfg.RaindropToken == "" {
		return fmt.Errorf("raindrop sync: RAINDROP_TOKEN is not set")
	}
	client := raindrop.NewClient(cfg.RaindropURL, cfg.RaindropToken, log)
	snap, err := client.FetchAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("raindrop sync: %w", err)
	}
	if err := raindrop.SaveSnapshot(cfg.RemoteSnapshotPath(), snap); err != nil {
		return fmt.Errorf("raindrop sync: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "raindrop snapshot: %d collections, %d items\n",
		len(snap.Collections), len(snap.Raindrops))
	return nil
}
