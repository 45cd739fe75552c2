// Package cli implements the command-line interface for codegauge.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/config"
)

var (
	cfgFile string
	verbose bool
	dbPath  string
	backend string
)

// Exit codes returned by the codegauge binary.
const (
	ExitOK    = 0
	ExitError = 1
	// ExitInput means the source unit was rejected (validation or syntax).
	ExitInput = 2
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "codegauge",
	Short: "codegauge - JavaScript code quality metrics",
	Long: `codegauge measures JavaScript source files: line counts, comment density,
cyclomatic complexity and maintainability index. Results can be stored
and browsed later, kept current by watching a directory, or served to MCP
clients over stdio.

Commands:
  analyze    Analyze one file
  scan       Analyze every file under a directory
  watch      Keep stored analyses current as files change
  list       List stored analyses
  show       Show one stored analysis
  update     Change a stored analysis
  delete     Delete a stored analysis
  status     Show storage statistics
  config     View or edit configuration
  init       Write a .codegauge.yaml config file
  mcp serve  Serve tools over stdio`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case analyzer.IsInputError(err):
		return ExitInput
	default:
		return ExitError
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .codegauge.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVar(&dbPath, "db-path", "", "database directory (default: storage.path or the XDG data directory)")
	pf.StringVar(&backend, "backend", "", "storage backend: badger or sqlite (default: storage.backend)")

	// Bind flags to viper
	bindFlag := func(key, flag string) {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
	bindFlag("config_file", "config")

	// Add subcommands
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig loads configuration, applies the global flag overrides and
// installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if backend != "" {
		cfg.Storage.Backend = backend
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --backend: %w", err)
		}
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.Log.Level, verbose))
	return cfg, nil
}

// newLogger builds the text logger used by every command.
func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl := parseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// readSource reads code from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// errMissingName is returned when code comes from stdin without --name.
var errMissingName = errors.New("--name is required when reading from stdin")
