package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imyousuf/codegauge/internal/report"
	"github.com/imyousuf/codegauge/internal/service"
	"github.com/imyousuf/codegauge/internal/store"
)

// findRecord resolves ref as a record ID, falling back to a file name.
func findRecord(ctx context.Context, svc *service.Service, ref string) (*store.Record, error) {
	rec, err := svc.Get(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		rec, err = svc.GetByFileName(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("analysis %q: %w", ref, err)
	}
	return rec, nil
}

func newListCmd() *cobra.Command {
	var (
		format string
		status string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored analyses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, st, err := openService(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				filtered := recs[:0]
				for _, rec := range recs {
					if string(rec.Status) == status {
						filtered = append(filtered, rec)
					}
				}
				recs = filtered
			}

			w, err := report.New(f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return w.WriteRecords(recs)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or markdown")
	cmd.Flags().StringVar(&status, "status", "", "only list analyses with this status (pending, analyzed, failed)")

	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		format   string
		showCode bool
	)

	cmd := &cobra.Command{
		Use:   "show <id|file name>",
		Short: "Show one stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, st, err := openService(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := findRecord(cmd.Context(), svc, args[0])
			if err != nil {
				return err
			}

			w, err := report.New(f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := w.WriteRecord(rec); err != nil {
				return err
			}
			if showCode && f == report.FormatText {
				fmt.Fprintln(cmd.OutOrStdout(), rec.Code)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or markdown")
	cmd.Flags().BoolVar(&showCode, "code", false, "print the stored source after the report (text format)")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	var (
		name     string
		codeFile string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "update <id|file name>",
		Short: "Rename a stored analysis or replace its code",
		Long: `Rename a stored analysis (--name) and/or replace its code (--file).

New code is re-analyzed. A new name must satisfy the same rules as analyze.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if name == "" && codeFile == "" {
				return fmt.Errorf("nothing to update: pass --name and/or --file")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var code string
			if codeFile != "" {
				if code, err = readSource(cmd, codeFile); err != nil {
					return err
				}
			}

			svc, st, err := openService(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := findRecord(cmd.Context(), svc, args[0])
			if err != nil {
				return err
			}
			rec, err = svc.Update(cmd.Context(), rec.ID, name, code)
			if err != nil {
				return err
			}

			w, err := report.New(f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return w.WriteRecord(rec)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new file name")
	cmd.Flags().StringVar(&codeFile, "file", "", `file with the new code ("-" for stdin)`)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or markdown")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id|file name>...",
		Aliases: []string{"rm"},
		Short:   "Delete stored analyses",
		Args:    cobra.MinimumNArgs(1),
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

			for _, ref := range args {
				rec, err := findRecord(cmd.Context(), svc, filepath.Base(ref))
				if err != nil {
					return err
				}
				if err := svc.Delete(cmd.Context(), rec.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", rec.FileName, rec.ID)
			}
			return nil
		},
	}
	return cmd
}
