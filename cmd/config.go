package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/forest-cli/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration Forest runs with, after the config file,
FOREST_* environment variables and command-line flags are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.config
		out := cmd.OutOrStdout()

		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Config file:          %s\n", app.configPath)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Session:")
		fmt.Fprintf(out, "    Duration:           %s\n", formatSeconds(app.session.DurationSeconds))
		fmt.Fprintf(out, "    Wither grace:       %s\n", time.Duration(cfg.Session.WitherGrace))
		fmt.Fprintf(out, "    Interruption grace: %s\n", describeGrace(cfg.Session.InterruptionGrace))
		fmt.Fprintf(out, "    Success notice:     %s\n", time.Duration(cfg.Session.SuccessNotice))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Platform:")
		fmt.Fprintf(out, "    Class:              %s\n", cfg.Platform.Class)
		fmt.Fprintf(out, "    Mobile behavior:    %v\n", app.platform.IsMobileClass())
		fmt.Fprintf(out, "    Wake lock:          %s\n", onOff(cfg.Platform.WakeLock))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Notifications:        %s\n", onOff(cfg.Notifications.Enabled))
		fmt.Fprintf(out, "  Journal:              %s\n", cfg.Journal.DSN)
		fmt.Fprintf(out, "  Log level:            %s\n", cfg.Logging.Level)
		if cfg.Logging.File != "" {
			fmt.Fprintf(out, "  Log file:             %s\n", cfg.Logging.File)
		}
		fmt.Fprintln(out)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(app.configPath); err == nil && !configForce {
			// Load already created a default file on first run.
			fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s (use --force to overwrite)\n", app.configPath)
			return nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check config file: %w", err)
		}

		if err := config.Save(app.configPath, config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", app.configPath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func formatSeconds(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}

func describeGrace(d config.Duration) string {
	if d == 0 {
		return "wait for an answer"
	}
	return time.Duration(d).String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
