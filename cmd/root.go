// Package cmd provides the CLI commands for the Forest application.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xvierd/forest-cli/internal/adapters/tui"
	"golang.org/x/sync/errgroup"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	configPath   string
	platformFlag string
	logLevelFlag string
	durationFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forest",
	Short: "Forest - grow a tree by staying focused",
	Long: `Forest is a focus timer for the terminal. Start a session and a sapling
grows while you stay with it. Switch away and the tree withers; finish the
session and it joins your forest.

Run "forest" with no arguments to open the timer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runForest,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.forest/config.toml)")
	rootCmd.PersistentFlags().StringVar(&platformFlag, "platform", "", "Platform class: auto, mobile, desktop (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&durationFlag, "duration", "", "Session length, e.g. 25m (overrides config)")

	// Set version - cobra handles --version automatically
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Forest CLI\nVersion: {{.Version}}\n")
}

// runForest opens the timer UI. The session runner and the UI share one
// bridge: terminal focus changes flow into the runner and session events
// flow back to the UI.
func runForest(cmd *cobra.Command, args []string) error {
	bridge := tui.NewBridge(tui.FocusReportingAvailable(os.Stdin), app.logger.With("component", "tui"))
	runner := app.newRunner(bridge, bridge)

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return tui.Run(ctx, tui.NewModel(ctx, runner, bridge))
	})

	if err := g.Wait(); err != nil {
		return err
	}

	app.notifier.Wait()
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
