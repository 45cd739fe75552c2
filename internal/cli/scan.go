package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/codegauge/internal/indexer"
	"github.com/imyousuf/codegauge/internal/report"
)

func newScanCmd() *cobra.Command {
	var (
		save        bool
		format      string
		concurrency int
		exclude     []string
		failOnError bool
	)

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Analyze every JavaScript file under a directory",
		Long: `Analyze every file with the configured extension under <dir>.

Paths matching scan.exclude, --exclude or a .gitignore file are skipped.
Files are analyzed concurrently (scan.concurrency). With --save every
result is stored by file name; files that fail to parse are stored with
status "failed" and the parser diagnostic.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = cfg.Scan.Concurrency
			}

			icfg := indexer.Config{
				Analyzer:    newAnalyzer(cfg),
				Exclude:     append(cfg.Scan.Exclude, exclude...),
				Concurrency: concurrency,
				Save:        save,
			}
			if save {
				svc, st, err := openService(cfg)
				if err != nil {
					return err
				}
				defer st.Close()
				icfg.Service = svc
			}

			sum, err := indexer.New(icfg).ScanDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w, err := report.New(f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := w.WriteSummary(sum); err != nil {
				return err
			}
			if failOnError && sum.Failed > 0 {
				return fmt.Errorf("%d of %d files failed analysis", sum.Failed, len(sum.Files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store every result")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or markdown")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "files analyzed at once (default: scan.concurrency)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "additional glob patterns to skip")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero when any file fails analysis")

	return cmd
}
