package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"phpsniff/internal/trace"
)

const defaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Discover DiscoverOptions
	// Debounce is how long a file must stay quiet before it is reported.
	Debounce time.Duration
}

// Watch reports changed source files below paths until ctx is done. A burst
// of events for one file is folded into a single report once the file has
// been quiet for the debounce interval; onChange receives each batch sorted.
// Directories created while watching are picked up.
func Watch(ctx context.Context, paths []string, opts WatchOptions, onChange func(changed []string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	w := newWatcher(fsw, opts.Discover)
	for _, root := range paths {
		if err := w.addRoot(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	ticker := time.NewTicker(max(debounce/2, time.Millisecond))
	defer ticker.Stop()

	tracer := trace.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if err := w.handle(ev, time.Now()); err != nil {
				trace.Point(tracer, trace.ScopePass, "watch-add-failed", err.Error())
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			trace.Point(tracer, trace.ScopePass, "watch-error", err.Error())
		case now := <-ticker.C:
			if batch := w.settled(now, debounce); len(batch) > 0 {
				onChange(batch)
			}
		}
	}
}

// watcher is owned by the Watch loop; it is not safe for concurrent use.
type watcher struct {
	fsw      *fsnotify.Watcher
	exts     []string
	exclude  []string
	dirRoots []string
	explicit map[string]struct{}
	pending  map[string]time.Time
}

func newWatcher(fsw *fsnotify.Watcher, opts DiscoverOptions) *watcher {
	return &watcher{
		fsw:      fsw,
		exts:     normalizeExtensions(opts.Extensions),
		exclude:  opts.Exclude,
		explicit: make(map[string]struct{}),
		pending:  make(map[string]time.Time),
	}
}

// addRoot watches a directory tree, or the parent directory of a file.
func (w *watcher) addRoot(root string) error {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.explicit[root] = struct{}{}
		if w.fsw == nil {
			return nil
		}
		return w.fsw.Add(filepath.Dir(root))
	}
	w.dirRoots = append(w.dirRoots, root)
	return w.addTree(root)
}

func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.isExcluded(path) {
			return filepath.SkipDir
		}
		if w.fsw == nil {
			return nil
		}
		return w.fsw.Add(path)
	})
}

func (w *watcher) handle(ev fsnotify.Event, now time.Time) error {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return nil
	}
	path := filepath.Clean(ev.Name)
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if _, ok := w.rootOf(path); ok && !w.isExcluded(path) {
				return w.addTree(path)
			}
			return nil
		}
	}
	if w.accepts(path) {
		w.pending[path] = now
	}
	return nil
}

// settled removes and returns the pending files quiet for at least d.
func (w *watcher) settled(now time.Time, d time.Duration) []string {
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= d {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(out)
	return out
}

func (w *watcher) accepts(path string) bool {
	if _, ok := w.explicit[path]; ok {
		return true
	}
	if _, ok := w.rootOf(path); !ok {
		return false
	}
	return !w.isExcluded(path) && hasExtension(path, w.exts)
}

func (w *watcher) isExcluded(path string) bool {
	rel, ok := w.rootOf(path)
	return ok && rel != "." && excluded(rel, w.exclude)
}

// rootOf returns path relative to the watched directory root holding it.
func (w *watcher) rootOf(path string) (string, bool) {
	for _, root := range w.dirRoots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return rel, true
	}
	return "", false
}
