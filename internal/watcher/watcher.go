// Package watcher emits debounced change events for source files under a set
// of directories.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change a file went through.
type Op int

const (
	Create Op = iota
	Write
	Remove
	Rename
)

// String returns the string representation of Op.
func (op Op) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event is a debounced file change.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// DefaultDebounce is the quiet period before a burst of changes to one path
// is reported as a single event.
const DefaultDebounce = 100 * time.Millisecond

// Config holds configuration for the Watcher.
type Config struct {
	// Paths are the directories watched recursively.
	Paths []string
	// Exclude lists glob patterns for paths that never produce events.
	Exclude []string
	// Extensions limits events to files with one of these suffixes. Empty means all files.
	Extensions []string
	// Debounce overrides DefaultDebounce.
	Debounce time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher watches directories and emits debounced events.
type Watcher struct {
	cfg     Config
	matcher *Matcher
	log     *slog.Logger

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	closed bool
}

// New creates a watcher. Exclude patterns and .gitignore files under the
// watched paths are loaded immediately.
func New(cfg Config) (*Watcher, error) {
	matcher := NewMatcher(cfg.Paths, cfg.Exclude)
	if err := matcher.Load(); err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{cfg: cfg, matcher: matcher, log: log}, nil
}

// Matcher returns the exclude matcher built from the configuration.
func (w *Watcher) Matcher() *Matcher {
	return w.matcher
}

// Start begins watching and returns the event channel, which is closed when
// ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	for _, root := range w.cfg.Paths {
		if err := w.addTree(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	out := make(chan Event, 100)
	go w.loop(ctx, fsw, out)
	return out, nil
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.matcher.Match(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// wanted reports whether events for path should be emitted.
func (w *Watcher) wanted(path string) bool {
	if w.matcher.Match(path) {
		return false
	}
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	for _, ext := range w.cfg.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Event) {
	var (
		mu      sync.Mutex
		done    bool
		stop    = make(chan struct{})
		pending = make(map[string]*time.Timer)
		latest  = make(map[string]Event)
	)

	defer func() {
		close(stop)
		mu.Lock()
		done = true
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
		close(out)
	}()

	// schedule restarts the quiet period for evt.Path; only the newest event
	// of a burst is emitted. Sends happen under mu so none can follow close(out).
	schedule := func(evt Event) {
		mu.Lock()
		defer mu.Unlock()
		latest[evt.Path] = evt
		if t, ok := pending[evt.Path]; ok {
			t.Stop()
		}
		pending[evt.Path] = time.AfterFunc(w.cfg.Debounce, func() {
			mu.Lock()
			defer mu.Unlock()
			e, ok := latest[evt.Path]
			delete(latest, evt.Path)
			delete(pending, evt.Path)
			if !ok || done {
				return
			}
			select {
			case out <- e:
			case <-ctx.Done():
			case <-stop:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}
			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if !w.matcher.Match(fsEvent.Name) {
						if err := w.addTree(fsEvent.Name); err != nil {
							w.log.Warn("watch new directory", "path", fsEvent.Name, "error", err)
						}
					}
					continue
				}
			}

			if !w.wanted(fsEvent.Name) {
				continue
			}
			schedule(Event{Path: fsEvent.Name, Op: op, Time: time.Now()})

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func convertOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
