package cli

import (
	"fmt"
	"log/slog"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/config"
	"github.com/imyousuf/codegauge/internal/parser"
	"github.com/imyousuf/codegauge/internal/service"
	"github.com/imyousuf/codegauge/internal/store"
	"github.com/imyousuf/codegauge/internal/store/embedded"
	"github.com/imyousuf/codegauge/internal/store/sqlite"
)

// openStore opens the configured storage backend. The --db-path flag wins
// over storage.path, which wins over the XDG data directory.
// Returns the store and the resolved database directory.
func openStore(cfg *config.Config) (store.Store, string, error) {
	path := cfg.ResolveStoragePath(dbPath)
	var (
		st  store.Store
		err error
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		st, err = sqlite.NewStore(path)
	default:
		st, err = embedded.NewStore(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s store at %s: %w", cfg.Storage.Backend, path, err)
	}
	slog.Debug("store opened", "backend", cfg.Storage.Backend, "path", path)
	return st, path, nil
}

// newAnalyzer builds an analyzer from the analyzer section of cfg, which
// config.Validate has already checked.
func newAnalyzer(cfg *config.Config) *analyzer.Analyzer {
	sourceType, _ := parser.ParseSourceType(cfg.Analyzer.SourceType)
	return analyzer.New(analyzer.Config{
		MaxFileNameLength: cfg.Analyzer.MaxFileNameLength,
		Extension:         cfg.Analyzer.Extension,
		SourceType:        sourceType,
	})
}

// openService opens the store and wraps it in a service. The caller closes
// the returned store.
func openService(cfg *config.Config) (*service.Service, store.Store, error) {
	st, _, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.New(newAnalyzer(cfg), st, service.WithLogger(slog.Default())), st, nil
}
