// Package watch drives incremental reindexing off filesystem change events:
// it debounces bursts of events per path, waits for a write to go quiet
// before touching the file, and calls back into the indexer one file at a
// time rather than re-walking the whole tree.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/codeindex/internal/collect"
)

// defaultDebounceMillis is used when New is given a zero or negative
// debounceMillis. The same value also governs the write-stability wait;
// pollInterval has no configurable knob.
const (
	defaultDebounceMillis = 200
	pollInterval          = 50 * time.Millisecond
)

// Reindexer is the subset of *index.Indexer the watcher depends on.
type Reindexer interface {
	ReindexFile(ctx context.Context, rel string) error
}

// Watcher watches root for changes to admissible files and reindexes them
// one at a time as they settle.
type Watcher struct {
	root      string
	reindexer Reindexer
	opts      collect.Options
	fsw       *fsnotify.Watcher

	debounceWindow time.Duration
	stablePeriod   time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// New creates a Watcher over root, adding every non-pruned directory to the
// underlying fsnotify watch set. debounceMillis sets both the per-path
// debounce window and the write-stability period; a value <= 0 falls back
// to the 200ms default.
func New(root string, reindexer Reindexer, opts collect.Options, debounceMillis int) (*Watcher, error) {
	if debounceMillis <= 0 {
		debounceMillis = defaultDebounceMillis
	}
	window := time.Duration(debounceMillis) * time.Millisecond

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:           root,
		reindexer:      reindexer,
		opts:           opts,
		fsw:            fsw,
		debounceWindow: window,
		stablePeriod:   window,
		timers:         make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}

	if err := w.addDirs(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start runs the event loop in a background goroutine until the context is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop shuts down the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.fsw.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirs(event.Name); err != nil {
				log.Printf("watch: failed to add new directory %s: %v", event.Name, err)
			}
			return
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if !collect.Admissible(w.root, rel, w.opts) {
		return
	}

	w.debounce(ctx, rel)
}

// debounce resets rel's per-path timer on every event; the timer only fires
// once events for that path stop arriving for the debounce window.
func (w *Watcher) debounce(ctx context.Context, rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[rel]; ok {
		t.Stop()
	}
	w.timers[rel] = time.AfterFunc(w.debounceWindow, func() {
		w.mu.Lock()
		delete(w.timers, rel)
		w.mu.Unlock()
		w.reindex(ctx, rel)
	})
}

// reindex waits for rel to stop changing, then hands it to the indexer. A
// file that never stabilizes within the poll budget is reindexed anyway on
// its current content; the next settled write will catch up.
func (w *Watcher) reindex(ctx context.Context, rel string) {
	w.waitForStable(filepath.Join(w.root, rel))

	start := time.Now()
	if err := w.reindexer.ReindexFile(ctx, rel); err != nil {
		log.Printf("watch: reindex %s failed: %v", rel, err)
		return
	}
	log.Printf("watch: reindexed %s in %v", rel, time.Since(start))
}

// waitForStable polls path's mtime and size until they hold steady for
// w.stablePeriod, or it gives up after ten times that budget with no
// stable read.
func (w *Watcher) waitForStable(path string) {
	deadline := time.Now().Add(w.stablePeriod * 10)
	var lastSize int64 = -1
	var lastMod time.Time
	var stableSince time.Time

	for time.Now().Before(deadline) {
		info, err := os.Stat(path)
		if err != nil {
			return // gone or unreadable; let the indexer's own os.ReadFile handle it
		}

		if info.Size() == lastSize && info.ModTime().Equal(lastMod) {
			if stableSince.IsZero() {
				stableSince = time.Now()
			}
			if time.Since(stableSince) >= w.stablePeriod {
				return
			}
		} else {
			lastSize = info.Size()
			lastMod = info.ModTime()
			stableSince = time.Time{}
		}

		time.Sleep(pollInterval)
	}
}

func (w *Watcher) addDirs(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		if rel != "." && !collect.DirAdmissible(w.root, filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("watch: failed to watch %s: %v", path, err)
			return nil
		}
		return nil
	})
}
