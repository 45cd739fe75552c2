package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imyousuf/codegauge/internal/report"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		save   bool
		format string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one JavaScript file",
		Long: `Analyze one JavaScript file and print its quality report.

The file name (or --name) must end with the configured extension and fit the
configured length limit, and the code must parse. Use "-" to read code from
stdin together with --name.

With --save the result is stored, replacing any stored analysis with the
same file name.

Exit status is 2 when the file is rejected and 1 on other errors.`,
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

			path := args[0]
			fileName := name
			if fileName == "" {
				if path == "-" {
					return errMissingName
				}
				fileName = filepath.Base(path)
			}
			code, err := readSource(cmd, path)
			if err != nil {
				return err
			}

			w, err := report.New(f, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if !save {
				r, err := newAnalyzer(cfg).Analyze(fileName, code)
				if err != nil {
					return err
				}
				return w.WriteReport(fileName, r)
			}

			svc, st, err := openService(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := svc.Save(cmd.Context(), fileName, code, false)
			if err != nil {
				return err
			}
			return w.WriteRecord(rec)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the analysis")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or markdown")
	cmd.Flags().StringVar(&name, "name", "", "file name to validate and store (default: base name of <file>)")

	return cmd
}
