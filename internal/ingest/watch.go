// watch.go implements the debounced recursive filesystem watcher (spec.md
// §4.2 "Watch"), grounded on the teacher's fsnotify usage pattern in
// untoldecay-BeadsLog's cmd/bd/daemon_watcher.go (FileWatcher: per-path
// watcher.Add, debounce via a trigger, Errors channel drained alongside
// Events) and on original_source/src-tauri/src/scan/mod.rs's watch_repo,
// which keys a per-path debounce map by last-seen Instant.
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mtreilly/mdkb/internal/ignore"
)

// ScanEvent is the payload of the progress.scan event emitted after a
// successful watch-triggered upsert (spec.md §4.2).
type ScanEvent struct {
	Event string `json:"event"` // create | modify | remove | other
	Path  string `json:"path"`
}

// Watcher drives a recursive, debounced fsnotify watch over a repo root.
type Watcher struct {
	svc        *Service
	repoRoot   string
	repoName   string
	matcher    *ignore.Matcher
	debounce   time.Duration
	fsw        *fsnotify.Watcher
	onEvent    func(ScanEvent)

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// Watch starts a recursive FS watcher over repoRoot. Events are filtered
// (directories and non-.md paths are ignored), coalesced per path within the
// debounce window, and, on successful upsert, reported via onEvent. Watch
// blocks until ctx is canceled; callers run it in its own goroutine, per
// spec.md §5 ("watcher runs on its own thread").
func (s *Service) Watch(ctx context.Context, repoRoot, repoName string, include, exclude []string, debounce time.Duration, onEvent func(ScanEvent)) error {
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := &Watcher{
		svc:      s,
		repoRoot: root,
		repoName: repoName,
		matcher:  ignore.New(root, include, exclude),
		debounce: debounce,
		fsw:      fsw,
		onEvent:  onEvent,
		lastSeen: make(map[string]time.Time),
	}
	if debounce <= 0 {
		w.debounce = 300 * time.Millisecond
	}

	if err := w.addTreeWatches(root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case _, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			// Errors are surfaced to the caller's log, not fatal to the watch loop.
		}
	}
}

func (w *Watcher) addTreeWatches(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			if rel != "." && w.matcher.Skip(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
			_ = w.fsw.Add(p)
		}
		return nil
	})
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if isDir(event.Name) {
			_ = w.addTreeWatches(event.Name)
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".md") {
		return
	}
	rel, err := filepath.Rel(w.repoRoot, event.Name)
	if err != nil {
		return
	}
	relSlash := filepath.ToSlash(rel)
	if w.matcher.Skip(relSlash) {
		return
	}

	if w.debounced(event.Name) {
		return
	}

	kind := "other"
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = "create"
	case event.Op&fsnotify.Write != 0:
		kind = "modify"
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = "remove"
	}

	if kind == "remove" {
		if w.onEvent != nil {
			w.onEvent(ScanEvent{Event: kind, Path: relSlash})
		}
		return
	}

	if _, err := w.svc.ScanOneFile(ctx, w.repoRoot, w.repoName, event.Name); err != nil {
		return
	}
	if w.onEvent != nil {
		w.onEvent(ScanEvent{Event: kind, Path: relSlash})
	}
}

// debounced reports whether event.Name was already seen within the window,
// per original_source's HashMap<PathBuf,Instant> coalescing: a second event
// for the same path inside the window is dropped.
func (w *Watcher) debounced(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < w.debounce {
		w.lastSeen[path] = now
		return true
	}
	w.lastSeen[path] = now
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
