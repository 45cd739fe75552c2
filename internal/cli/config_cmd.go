package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imyousuf/codegauge/internal/config"
)

// Style definitions for config view.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(18)
	valueStyle = lipgloss.NewStyle()
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `View or edit codegauge configuration.

By default, displays the effective configuration (defaults, .codegauge.yaml
and CODEGAUGE_* environment variables merged).
Use 'config edit' to edit .codegauge.yaml interactively.`,
		Args: cobra.NoArgs,
		RunE: runConfigView,
	}

	cmd.AddCommand(newConfigEditCmd())

	return cmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	fmt.Fprintln(out, headerStyle.Render("codegauge Configuration"))
	fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 23)))
	fmt.Fprintln(out)

	printSection(out, "Analyzer")
	printKV(out, "Max name length", strconv.Itoa(cfg.Analyzer.MaxFileNameLength))
	printKV(out, "Extension", cfg.Analyzer.Extension)
	printKV(out, "Source type", cfg.Analyzer.SourceType)
	fmt.Fprintln(out)

	printSection(out, "Storage")
	printKV(out, "Backend", cfg.Storage.Backend)
	printKV(out, "Path", cfg.ResolveStoragePath(dbPath))
	fmt.Fprintln(out)

	printSection(out, "Scan")
	printKV(out, "Concurrency", strconv.Itoa(cfg.Scan.Concurrency))
	if len(cfg.Scan.Exclude) == 0 {
		fmt.Fprintln(out, "    (no exclusions)")
	}
	for _, pattern := range cfg.Scan.Exclude {
		fmt.Fprintf(out, "    %s\n", pattern)
	}
	fmt.Fprintln(out)

	printSection(out, "Log")
	printKV(out, "Level", cfg.Log.Level)
	fmt.Fprintln(out)

	return nil
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "  %s\n", headerStyle.Render(title))
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "    %s%s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func newConfigEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration interactively",
		Long:  `Edit the codegauge configuration file using an interactive form.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigEdit(cmd)
		},
	}

	return cmd
}

// configFilePath is the file config edit writes: --config when set,
// else .codegauge.yaml in the working directory.
func configFilePath() string {
	if p := viper.GetString("config_file"); p != "" {
		return p
	}
	return config.DefaultConfigFile + "." + config.DefaultConfigType
}

func runConfigEdit(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	path := configFilePath()

	saved, err := runConfigForm(cfg, "Save changes?")
	if err != nil {
		return fmt.Errorf("interactive config edit: %w", err)
	}
	if !saved {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	if err := config.WriteConfig(cfg, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	abs, _ := filepath.Abs(path)
	fmt.Fprintf(out, "Configuration saved to %s\n", abs)
	return nil
}

// runConfigForm edits cfg in place through a huh form. It reports false
// when the user cancels or declines the final confirmation, in which case
// cfg is left unchanged.
func runConfigForm(cfg *config.Config, confirmTitle string) (bool, error) {
	maxLen := strconv.Itoa(cfg.Analyzer.MaxFileNameLength)
	extension := cfg.Analyzer.Extension
	sourceType := cfg.Analyzer.SourceType
	backendName := cfg.Storage.Backend
	storagePath := cfg.Storage.Path
	concurrency := strconv.Itoa(cfg.Scan.Concurrency)
	logLevel := cfg.Log.Level
	var confirm bool

	positiveInt := func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("must be a positive number")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Maximum file name length").
				Value(&maxLen).
				Validate(positiveInt),
			huh.NewInput().
				Title("Required file extension").
				Value(&extension).
				Placeholder(".js").
				Validate(func(s string) error {
					if !strings.HasPrefix(s, ".") || len(s) < 2 {
						return fmt.Errorf("extension must start with a dot")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Source type").
				Options(
					huh.NewOption("Script (import/export rejected)", config.SourceScript),
					huh.NewOption("ES module", config.SourceModule),
				).
				Value(&sourceType),
		).Title("Analyzer"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage backend").
				Options(
					huh.NewOption("Badger (embedded key/value)", config.BackendBadger),
					huh.NewOption("SQLite", config.BackendSQLite),
				).
				Value(&backendName),
			huh.NewInput().
				Title("Database directory").
				Description("Leave empty for the XDG data directory").
				Value(&storagePath),
		).Title("Storage"),

		huh.NewGroup(
			huh.NewInput().
				Title("Scan concurrency").
				Value(&concurrency).
				Validate(positiveInt),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&logLevel),
		).Title("Scanning & Logging"),

		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				DescriptionFunc(func() string {
					path := storagePath
					if path == "" {
						path = "(XDG data directory)"
					}
					return fmt.Sprintf(
						"Max name:    %s\n"+
							"Extension:   %s\n"+
							"Source type: %s\n"+
							"Backend:     %s\n"+
							"Path:        %s\n"+
							"Concurrency: %s\n"+
							"Log level:   %s",
						maxLen, extension, sourceType, backendName, path, concurrency, logLevel,
					)
				}, &backendName),
			huh.NewConfirm().
				Title(confirmTitle).
				Value(&confirm).
				Affirmative("Save").
				Negative("Cancel"),
		).Title("Confirm"),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	if !confirm {
		return false, nil
	}

	// Inputs were validated by the form.
	cfg.Analyzer.MaxFileNameLength, _ = strconv.Atoi(strings.TrimSpace(maxLen))
	cfg.Analyzer.Extension = extension
	cfg.Analyzer.SourceType = sourceType
	cfg.Storage.Backend = backendName
	cfg.Storage.Path = strings.TrimSpace(storagePath)
	cfg.Scan.Concurrency, _ = strconv.Atoi(strings.TrimSpace(concurrency))
	cfg.Log.Level = logLevel
	return true, cfg.Validate()
}
