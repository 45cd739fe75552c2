package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/codegauge/internal/indexer"
)

func newWatchCmd() *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Keep stored analyses current as files change",
		Long: `Scan each directory once and store every result, then watch for changes.

Created or modified files are re-analyzed and saved; removed or renamed
files have their stored analysis deleted. Stops on SIGINT or SIGTERM.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			svc, st, err := openService(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			idx := indexer.New(indexer.Config{
				Service:     svc,
				Save:        true,
				Exclude:     append(cfg.Scan.Exclude, exclude...),
				Concurrency: cfg.Scan.Concurrency,
			})

			// Set up signal handling.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %d directories...\n", len(args))
			for _, dir := range args {
				fmt.Fprintf(out, "  %s\n", dir)
			}

			var analyzed, failed, removed int
			err = idx.Watch(ctx, args, func(r indexer.FileResult) {
				switch {
				case r.Removed:
					removed++
					fmt.Fprintf(out, "removed   %s\n", r.Path)
				case r.Failed():
					failed++
					fmt.Fprintf(out, "failed    %s: %s\n", r.Path, r.Error)
				default:
					analyzed++
					fmt.Fprintf(out, "analyzed  %s  cc=%d mi=%s\n",
						r.Path, r.Report.CyclomaticComplexity, r.Report.MaintainabilityIndex)
				}
			})
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			fmt.Fprintf(out, "\nFinal stats:\n")
			fmt.Fprintf(out, "  Analyzed: %d\n", analyzed)
			fmt.Fprintf(out, "  Failed:   %d\n", failed)
			fmt.Fprintf(out, "  Removed:  %d\n", removed)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "additional glob patterns to skip")

	return cmd
}
