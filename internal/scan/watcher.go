package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/assetid/internal/debug"
)

// EventType is the kind of change a debounced batch reports for a path.
type EventType int

const (
	EventWrite EventType = iota
	EventCreate
	EventRemove
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventRemove:
		return "remove"
	default:
		return "write"
	}
}

// Update describes one file after a debounced batch was applied to the index.
type Update struct {
	Path  string
	Event EventType
	// Added holds identifiers the index had not seen before.
	Added []Entry
}

// WatchStats contains statistics about file watching operations
type WatchStats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// Watcher keeps an Index current while files under the scanner root change.
type Watcher struct {
	scanner   *Scanner
	index     *Index
	watcher   *fsnotify.Watcher
	debouncer *eventDebouncer
	onUpdate  func(Update)

	wg   sync.WaitGroup
	once sync.Once

	// statsMu guards ctx and cancel as well as the counters below.
	statsMu         sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc
	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
}

// NewWatcher creates a watcher that applies changes to ix and reports each
// changed file to onUpdate. onUpdate runs on the debouncer goroutine.
func NewWatcher(s *Scanner, ix *Index, debounce time.Duration, onUpdate func(Update)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	w := &Watcher{
		scanner:  s,
		index:    ix,
		watcher:  fsw,
		onUpdate: onUpdate,
	}
	w.debouncer = newEventDebouncer(debounce, w.apply)
	return w, nil
}

// Start adds watches for every non-excluded directory and begins processing
// events. It returns once the watches are in place; the watcher stops when
// ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.statsMu.Lock()
	w.ctx, w.cancel = ctx, cancel
	w.statsMu.Unlock()

	if err := w.addWatches(w.scanner.Root()); err != nil {
		cancel()
		return err
	}

	w.wg.Add(1)
	go w.processEvents()

	debug.LogScan("watching %s", w.scanner.Root())
	return nil
}

// Close stops the watcher and waits for its goroutines. Pending debounced
// events are dropped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.statsMu.RLock()
		cancel := w.cancel
		w.statsMu.RUnlock()
		if cancel != nil {
			cancel()
		}
		w.debouncer.stop()
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// Stats returns current watch mode statistics
func (w *Watcher) Stats() WatchStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return WatchStats{
		EventsProcessed: w.eventsProcessed,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
		IsActive:        w.ctx != nil && w.ctx.Err() == nil,
	}
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		// Symlink cycles
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return filepath.SkipDir
		}
		if visited[realPath] {
			return filepath.SkipDir
		}
		visited[realPath] = true

		if rel, ok := w.scanner.rel(path); ok && rel != "." && w.scanner.excluded(rel) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			debug.LogScan("failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.incrementStats(0, 1)
			debug.LogScan("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	rel, ok := w.scanner.rel(path)
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.scanner.Matches(rel) {
			w.debouncer.add(path, EventRemove)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.scanner.excluded(rel) {
			if err := w.addWatches(path); err != nil {
				debug.LogScan("failed to watch new directory %s: %v", path, err)
			}
		}
		return
	}

	if !w.scanner.Matches(rel) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.debouncer.add(path, EventCreate)
	case event.Op&fsnotify.Write != 0:
		w.debouncer.add(path, EventWrite)
	}
}

// apply runs on the debouncer with the latest event per path.
func (w *Watcher) apply(events map[string]EventType) {
	if w.ctx.Err() != nil {
		return
	}
	for path, ev := range events {
		key := w.scanner.key(path)
		update := Update{Path: key, Event: ev}

		if ev == EventRemove {
			w.index.Remove(key)
		} else {
			occ, err := w.scanner.ScanFile(path)
			if err != nil {
				w.incrementStats(1, 1)
				if errors.Is(err, fs.ErrNotExist) {
					w.index.Remove(key)
				}
				debug.LogScan("%v", err)
				continue
			}
			update.Added = w.index.Set(key, occ)
		}

		w.incrementStats(1, 0)
		if w.onUpdate != nil {
			w.onUpdate(update)
		}
	}
}

func (w *Watcher) incrementStats(events, errs int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.eventsProcessed += events
	w.errorCount += errs
	w.lastEventTime = time.Now()
}

// eventDebouncer batches file events so a burst of writes triggers one read.
type eventDebouncer struct {
	mu       sync.Mutex
	events   map[string]EventType
	debounce time.Duration
	timer    *time.Timer
	flushFn  func(map[string]EventType)
	stopped  bool
	running  sync.WaitGroup
}

func newEventDebouncer(debounce time.Duration, flush func(map[string]EventType)) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		flushFn:  flush,
	}
}

func (d *eventDebouncer) add(path string, ev EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	// A create followed by writes is still a create
	if prev, ok := d.events[path]; !ok || !(prev == EventCreate && ev == EventWrite) {
		d.events[path] = ev
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.events) == 0 {
		d.mu.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]EventType)
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	debug.LogScan("processing %d debounced file events", len(events))
	d.flushFn(events)
}

// stop drops pending events and waits for an in-flight flush to return.
func (d *eventDebouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]EventType)
	d.mu.Unlock()

	d.running.Wait()
}
