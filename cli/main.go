// Command vodsync relays newly published channel videos to a delivery sink,
// keeping a crash-safe per-channel ledger of what has been delivered.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vodsync"
	"vodsync/config"
)

var (
	flagPlatform string
	flagChannel  string
	flagLedger   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "vodsync",
		Short:         "Relay channel videos to a delivery sink, exactly once",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagPlatform, "platform", "p", "youtube", "Source platform: youtube or bilibili")
	root.PersistentFlags().StringVarP(&flagChannel, "channel", "c", "", "Channel identifier (required)")
	root.PersistentFlags().StringVarP(&flagLedger, "ledger", "d", "", "Path to the channel ledger (default data/<platform>-<channel>.json)")

	root.AddCommand(newSyncCmd(), newBackfillCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the channel feed and deliver new videos",
		Long: `Sync drains the ledger's undelivered backlog, merges newly observed
remote entries, and delivers each eligible video to the configured sink.
Every state transition is persisted before the next delivery begins, so an
interrupted run resumes without re-sending or losing videos.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, platform, err := loadCommon()
			if err != nil {
				return err
			}
			return vodsync.SyncChannel(cmd.Context(), cfg, platform, flagChannel, flagLedger)
		},
	}
}

func newBackfillCmd() *cobra.Command {
	var (
		includeShorts  bool
		resolvePubdate bool
		target         string
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Rebuild the channel ledger from the complete remote history",
		Long: `Backfill snapshots everything currently visible for the channel,
re-attaches prior delivery status by link, and replaces the ledger's entry
list wholesale. It never delivers; use it for initial seeding or a full
resync.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, platform, err := loadCommon()
			if err != nil {
				return err
			}
			return vodsync.BackfillChannel(cmd.Context(), cfg, platform, flagChannel, flagLedger,
				vodsync.BackfillOptions{
					IncludeShorts:  includeShorts,
					ResolvePubdate: resolvePubdate,
					Target:         target,
				})
		},
	}
	cmd.Flags().BoolVar(&includeShorts, "include-shorts", false, "Keep short-form clips in the rebuilt ledger")
	cmd.Flags().BoolVar(&resolvePubdate, "resolve-pubdate", false, "Resolve publish times and sort newest-first (slow without an API key)")
	cmd.Flags().StringVar(&target, "target", "", "Seed the delivery target on a fresh ledger")
	return cmd
}

func loadCommon() (*config.Config, vodsync.Platform, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	platform, err := vodsync.ParsePlatform(flagPlatform)
	if err != nil {
		return nil, "", err
	}
	if flagChannel == "" {
		return nil, "", fmt.Errorf("--channel is required")
	}
	return cfg, platform, nil
}
