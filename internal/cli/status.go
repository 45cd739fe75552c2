package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/codegauge/internal/store"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show storage backend and analysis counts",
		Args:  cobra.NoArgs,
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

			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("codegauge status"))
			fmt.Fprintln(out)
			printKV(out, "Backend", cfg.Storage.Backend)
			printKV(out, "Path", cfg.ResolveStoragePath(dbPath))
			printKV(out, "Analyses", fmt.Sprintf("%d", stats.Total))
			fmt.Fprintln(out)

			printSection(out, "By status")
			for _, s := range []store.Status{store.StatusAnalyzed, store.StatusFailed, store.StatusPending} {
				printKV(out, string(s), fmt.Sprintf("%d", stats.ByStatus[s]))
			}
			return nil
		},
	}
	return cmd
}
