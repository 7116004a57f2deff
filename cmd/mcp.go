package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/forest-cli/internal/adapters/mcp"
	"golang.org/x/sync/errgroup"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server runs a headless focus session over stdio. Clients start sessions,
report when the app is hidden or visible, answer leave warnings and read the
forest and attempt history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.ErrOrStderr(), "🌲 Starting MCP server on stdio (Ctrl+C to stop)")

		runner := app.newRunner(nil)
		server := mcp.NewServer(runner, app.history, Version)

		ctx, cancel := context.WithCancel(commandContext(cmd))
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return runner.Run(ctx)
		})
		g.Go(func() error {
			defer cancel()
			if err := server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && ctx.Err() == nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		app.notifier.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
