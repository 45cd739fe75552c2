package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imyousuf/codegauge/internal/config"
)

func newInitCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .codegauge.yaml config file",
		Long: `Write a .codegauge.yaml configuration file in the current directory.

The file starts from the built-in defaults. With --interactive the values
are chosen through a form first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			path := filepath.Join(cwd, config.DefaultConfigFile+"."+config.DefaultConfigType)

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists; use 'codegauge config edit' to change it", path)
			}

			out := cmd.OutOrStdout()
			cfg := config.Default()

			if interactive {
				ok, err := runConfigForm(cfg, "Write config file?")
				if err != nil {
					return fmt.Errorf("interactive init: %w", err)
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			if err := config.WriteConfig(cfg, path); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}
			fmt.Fprintf(out, "Created %s\n", path)

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Run 'codegauge scan . --save' to analyze the project")
			fmt.Fprintln(out, "  2. Run 'codegauge watch .' to keep results current")
			if cfg.Storage.Path == "" {
				fmt.Fprintf(out, "  Results are stored in %s\n", cfg.ResolveStoragePath(""))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose values through an interactive form")

	return cmd
}
