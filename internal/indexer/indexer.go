// Package indexer analyzes every source file under a directory tree and
// keeps stored analyses in step with file changes.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/service"
	"github.com/imyousuf/codegauge/internal/store"
	"github.com/imyousuf/codegauge/internal/watcher"
)

// DefaultConcurrency is the number of files analyzed at once when unset.
const DefaultConcurrency = 8

// ErrNameCollision marks a file whose base name was already taken by another
// file in the same scan. Records are keyed by file name, so it is skipped.
var ErrNameCollision = errors.New("another file in this scan has the same name")

// Config holds configuration for the Indexer.
type Config struct {
	// Analyzer runs the analysis when results are not saved. Defaults to the
	// service's analyzer, or a default analyzer when Service is nil.
	Analyzer *analyzer.Analyzer
	// Service persists results. Required when Save is set and for Watch.
	Service *service.Service
	// Save stores every result, including failures, through Service.
	Save bool
	// Exclude lists glob patterns for paths to skip.
	Exclude []string
	// Concurrency bounds the number of files analyzed at once.
	Concurrency int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	Path     string                  `json:"path" yaml:"path"`
	FileName string                  `json:"fileName" yaml:"fileName"`
	Report   *analyzer.QualityReport `json:"report,omitempty" yaml:"report,omitempty"`
	RecordID string                  `json:"recordId,omitempty" yaml:"recordId,omitempty"`
	Removed  bool                    `json:"removed,omitempty" yaml:"removed,omitempty"`
	Error    string                  `json:"error,omitempty" yaml:"error,omitempty"`

	err error
}

// Err returns the analysis error, if any.
func (r FileResult) Err() error {
	return r.err
}

// Failed reports whether the file could not be analyzed.
func (r FileResult) Failed() bool {
	return r.err != nil
}

// Totals aggregates the reports of all analyzed files.
type Totals struct {
	LOC                    int     `json:"loc" yaml:"loc"`
	SLOC                   int     `json:"sloc" yaml:"sloc"`
	LLOC                   int     `json:"lloc" yaml:"lloc"`
	Comments               int     `json:"comments" yaml:"comments"`
	MaxComplexity          int     `json:"maxComplexity" yaml:"maxComplexity"`
	AverageComplexity      float64 `json:"averageComplexity" yaml:"averageComplexity"`
	AverageMaintainability float64 `json:"averageMaintainability" yaml:"averageMaintainability"`
}

// Summary is the result of scanning one directory tree.
type Summary struct {
	Root     string        `json:"root" yaml:"root"`
	Files    []FileResult  `json:"files" yaml:"files"`
	Analyzed int           `json:"analyzed" yaml:"analyzed"`
	Failed   int           `json:"failed" yaml:"failed"`
	Totals   Totals        `json:"totals" yaml:"totals"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Indexer scans directories and processes watcher events.
type Indexer struct {
	analyzer    *analyzer.Analyzer
	svc         *service.Service
	save        bool
	exclude     []string
	concurrency int
	log         *slog.Logger
}

// New creates an Indexer, filling unset Config fields with defaults.
func New(cfg Config) *Indexer {
	idx := &Indexer{
		analyzer:    cfg.Analyzer,
		svc:         cfg.Service,
		save:        cfg.Save,
		exclude:     cfg.Exclude,
		concurrency: cfg.Concurrency,
		log:         cfg.Logger,
	}
	if idx.analyzer == nil {
		if idx.svc != nil {
			idx.analyzer = idx.svc.Analyzer()
		} else {
			idx.analyzer = analyzer.New(analyzer.Config{})
		}
	}
	if idx.concurrency <= 0 {
		idx.concurrency = DefaultConcurrency
	}
	if idx.log == nil {
		idx.log = slog.Default()
	}
	return idx
}

// extension returns the suffix a file must carry to be analyzed.
func (idx *Indexer) extension() string {
	return idx.analyzer.Extension()
}

// ScanDirectory analyzes every matching file under root. Per-file analysis
// failures are reported in the summary; storage failures abort the scan.
func (idx *Indexer) ScanDirectory(ctx context.Context, root string) (*Summary, error) {
	if idx.save && idx.svc == nil {
		return nil, fmt.Errorf("saving scan results requires a service")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	start := time.Now()
	paths, err := idx.collect(ctx, root)
	if err != nil {
		return nil, err
	}
	idx.log.Debug("scan started", "root", root, "files", len(paths), "concurrency", idx.concurrency)

	results := make([]FileResult, len(paths))
	seen := make(map[string]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.concurrency)

	for i, path := range paths {
		name := filepath.Base(path)
		if first, dup := seen[name]; dup {
			results[i] = failure(path, fmt.Errorf("%w: %s", ErrNameCollision, first))
			continue
		}
		seen[name] = path

		g.Go(func() error {
			res, err := idx.analyzeFile(gctx, path, idx.save)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := summarize(root, results)
	sum.Elapsed = time.Since(start)
	idx.log.Info("scan complete", "root", root, "analyzed", sum.Analyzed, "failed", sum.Failed,
		"elapsed", sum.Elapsed)
	return sum, nil
}

// collect returns the sorted paths of all files to analyze under root.
func (idx *Indexer) collect(ctx context.Context, root string) ([]string, error) {
	matcher := watcher.NewMatcher([]string{root}, idx.exclude)
	if err := matcher.Load(); err != nil {
		return nil, fmt.Errorf("load exclude patterns: %w", err)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && matcher.Match(path) {
				idx.log.Debug("skipping directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(path, idx.extension()) {
			return nil
		}
		if matcher.Match(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// AnalyzeFile analyzes (and, when saving, stores) a single file.
func (idx *Indexer) AnalyzeFile(ctx context.Context, path string) (FileResult, error) {
	if idx.save && idx.svc == nil {
		return FileResult{}, fmt.Errorf("saving results requires a service")
	}
	return idx.analyzeFile(ctx, path, idx.save)
}

// analyzeFile returns an error only for failures unrelated to the file's
// content, such as the store being unavailable.
func (idx *Indexer) analyzeFile(ctx context.Context, path string, save bool) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return failure(path, fmt.Errorf("read file: %w", err)), nil
	}
	name := filepath.Base(path)
	code := string(content)

	if !save {
		report, err := idx.analyzer.Analyze(name, code)
		if err != nil {
			idx.log.Debug("analysis failed", "path", path, "error", err)
			return failure(path, err), nil
		}
		return FileResult{Path: path, FileName: name, Report: report}, nil
	}

	rec, err := idx.svc.Save(ctx, name, code, true)
	if err != nil && !analyzer.IsInputError(err) {
		return FileResult{}, fmt.Errorf("save %s: %w", path, err)
	}
	res := FileResult{Path: path, FileName: name}
	if rec != nil {
		res.RecordID = rec.ID
	}
	if err != nil {
		idx.log.Debug("analysis failed", "path", path, "error", err)
		res.err = err
		res.Error = err.Error()
		return res, nil
	}
	report := rec.QualityReport
	res.Report = &report
	return res, nil
}

func failure(path string, err error) FileResult {
	return FileResult{
		Path:     path,
		FileName: filepath.Base(path),
		Error:    err.Error(),
		err:      err,
	}
}

func summarize(root string, results []FileResult) *Summary {
	sum := &Summary{Root: root, Files: results}
	var cc, mi float64
	for _, r := range results {
		if r.Failed() || r.Report == nil {
			sum.Failed++
			continue
		}
		sum.Analyzed++
		sum.Totals.LOC += r.Report.LOC
		sum.Totals.SLOC += r.Report.SLOC
		sum.Totals.LLOC += r.Report.LLOC
		sum.Totals.Comments += r.Report.Comments
		sum.Totals.MaxComplexity = max(sum.Totals.MaxComplexity, r.Report.CyclomaticComplexity)
		cc += float64(r.Report.CyclomaticComplexity)
		mi += r.Report.MaintainabilityScore()
	}
	if sum.Analyzed > 0 {
		sum.Totals.AverageComplexity = cc / float64(sum.Analyzed)
		sum.Totals.AverageMaintainability = mi / float64(sum.Analyzed)
	}
	return sum
}

// Watch scans every path once, then re-analyzes changed files and removes
// records of deleted files until ctx is cancelled. onResult, when set,
// receives every per-file outcome.
func (idx *Indexer) Watch(ctx context.Context, paths []string, onResult func(FileResult)) error {
	if idx.svc == nil {
		return fmt.Errorf("watching requires a service")
	}
	if onResult == nil {
		onResult = func(FileResult) {}
	}

	for _, root := range paths {
		sum, err := idx.ScanDirectory(ctx, root)
		if err != nil {
			return fmt.Errorf("initial scan of %s: %w", root, err)
		}
		for _, r := range sum.Files {
			onResult(r)
		}
	}

	w, err := watcher.New(watcher.Config{
		Paths:      paths,
		Exclude:    idx.exclude,
		Extensions: []string{idx.extension()},
		Logger:     idx.log,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	events, err := w.Start(ctx)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			res, err := idx.HandleEvent(ctx, evt)
			if err != nil {
				idx.log.Warn("handle change", "path", evt.Path, "op", evt.Op.String(), "error", err)
				continue
			}
			onResult(res)
		}
	}
}

// HandleEvent applies one file change: created or written files are
// re-analyzed and saved; removed or renamed-away files lose their record.
func (idx *Indexer) HandleEvent(ctx context.Context, evt watcher.Event) (FileResult, error) {
	if idx.svc == nil {
		return FileResult{}, fmt.Errorf("handling changes requires a service")
	}
	switch evt.Op {
	case watcher.Create, watcher.Write:
		return idx.analyzeFile(ctx, evt.Path, true)

	case watcher.Remove, watcher.Rename:
		name := filepath.Base(evt.Path)
		res := FileResult{Path: evt.Path, FileName: name, Removed: true}
		rec, err := idx.svc.GetByFileName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return res, nil
		}
		if err != nil {
			return FileResult{}, err
		}
		res.RecordID = rec.ID
		if err := idx.svc.Delete(ctx, rec.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return FileResult{}, err
		}
		return res, nil
	}
	return FileResult{}, fmt.Errorf("unsupported change %s", evt.Op)
}
