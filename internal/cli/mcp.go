package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/codegauge/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  `Commands for running the MCP (Model Context Protocol) server.`,
	}

	mcpCmd.AddCommand(newMCPServeCmd())
	return mcpCmd
}

func newMCPServeCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Start a JSON-RPC 2.0 MCP server over stdin/stdout.

The server exposes the analysis tools (analyze_code, save_analysis,
list_analyses, get_analysis, delete_analysis) to MCP clients. It reads
requests from stdin and writes responses to stdout, one JSON object per
line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Tool call logs go to --log when set; stdout carries JSON-RPC only.
			logger := slog.Default()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("open log file %s: %w", logFile, err)
				}
				defer f.Close()
				logger = newLogger(f, cfg.Log.Level, verbose)
			}

			svc, st, err := openService(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			registry := mcp.NewRegistry()
			registry.SetLogger(logger)
			registry.Register(mcp.NewAnalysisTools(svc)...)

			server := mcp.NewServer(registry, resolvedVersion())

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			fmt.Fprintln(os.Stderr, "codegauge MCP server started")

			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "path to write tool call logs")

	return cmd
}
