package cmd

import (
	"context"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/bugboard/internal/dashboard"
	"github.com/joescharf/bugboard/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP stdio server over a fresh bug list",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

The server owns one in-memory session seeded like a new dashboard
session; bugs added through it are discarded when it exits.

  {
    "mcpServers": {
      "bugboard": { "command": "bugboard", "args": ["mcp"] }
    }
  }

Available tools: bug_list, bug_stats, bug_add`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := dashboardOptions()
	if err != nil {
		return err
	}
	d, err := dashboard.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	srv := mcp.NewServer(d.Store(), opts.Environment(), buildVersion)
	return srv.ServeStdio(ctx)
}
