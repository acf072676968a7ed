// Package hot_reload keeps compiled shader pipelines in step with their WGSL files on disk.
//
// Changes are detected either by comparing modification time and size once per frame or by
// fsnotify events. In both modes the new artifact is only swapped in from PollAndReload, which the
// render loop calls at a single point before executing the graph. A failed compile leaves the
// previous artifact in place and is reported once to the DiagnosticSink.
package hot_reload

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_cache"
	"github.com/fsnotify/fsnotify"
)

// Mode selects how file changes are detected.
type Mode int

const (
	// ModePoll stats every watched file on each PollAndReload call.
	ModePoll Mode = iota

	// ModeNotify marks entries pending from fsnotify events and only examines pending entries.
	ModeNotify
)

func (m Mode) String() string {
	if m == ModeNotify {
		return "notify"
	}
	return "poll"
}

// ParseMode maps "poll" or "notify" to a Mode. Unknown values select ModePoll.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "notify") {
		return ModeNotify
	}
	return ModePoll
}

// ReloadResult summarises one PollAndReload call.
type ReloadResult struct {
	// Changed is the number of entries whose file changed.
	Changed int
	// Swapped is the number of entries that now hold a new artifact.
	Swapped int
	// Failed is the number of entries that kept their previous artifact.
	Failed int
}

type watcher struct {
	mu      *sync.Mutex
	entries map[string]*watchEntry
	order   []*watchEntry

	mode    Mode
	sink    DiagnosticSink
	retire  func(pipeline.Pipeline)
	workers int
	pool    worker.DynamicWorkerPool

	notify      *fsnotify.Watcher
	watchedDirs map[string]bool
	done        chan struct{}
	closeOnce   sync.Once
	closed      atomic.Bool
}

// Watcher owns every WatchEntry and applies reloads.
type Watcher interface {
	// Register starts watching path. The first registration reads and compiles the file
	// synchronously; later registrations of the same path return the existing entry and ignore
	// compile.
	//
	// Parameters:
	//   - path: the WGSL file path
	//   - compile: the function that builds a pipeline from source
	//
	// Returns:
	//   - WatchEntry: the shared entry for path
	//   - error: an error wrapping common.ErrSetup if the initial read or compile fails
	Register(path string, compile CompileFunc) (WatchEntry, error)

	// PollAndReload checks every watched file and recompiles those that changed. Successful
	// compiles replace the entry's artifact; failures are reported and leave it untouched.
	// Must be called from the render goroutine before the graph executes.
	//
	// Returns:
	//   - ReloadResult: counts of changed, swapped and failed entries
	PollAndReload() ReloadResult

	// Entry returns the entry for path if it is registered.
	Entry(path string) (WatchEntry, bool)

	// Entries returns every entry in registration order.
	Entries() []WatchEntry

	// Mode returns the change detection mode.
	Mode() Mode

	// Close stops the notifier and the read workers. PollAndReload keeps working afterwards and
	// reads changed files inline.
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher. In ModeNotify an fsnotify watcher is started.
//
// Parameters:
//   - options: optional builder options such as WithMode and WithSink
//
// Returns:
//   - Watcher: the watcher
//   - error: an error wrapping common.ErrSetup if the notifier cannot be created
func NewWatcher(options ...WatcherBuilderOption) (Watcher, error) {
	w := &watcher{
		mu:          &sync.Mutex{},
		entries:     make(map[string]*watchEntry),
		mode:        ModePoll,
		sink:        LogSink{},
		workers:     2,
		watchedDirs: make(map[string]bool),
	}
	for _, opt := range options {
		opt(w)
	}

	if w.workers > 0 {
		w.pool = worker.NewDynamicWorkerPool(w.workers, 64, time.Second)
	}

	if w.mode == ModeNotify {
		n, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("%w: file notifications: %v", common.ErrSetup, err)
		}
		w.notify = n
		w.done = make(chan struct{})
		go w.listen()
	}
	return w, nil
}

func (w *watcher) Register(path string, compile CompileFunc) (WatchEntry, error) {
	key, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrSetup, path, err)
	}

	w.mu.Lock()
	if e, ok := w.entries[key]; ok {
		w.mu.Unlock()
		return e, nil
	}
	w.mu.Unlock()

	stamp, err := statFingerprint(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrSetup, &CompileError{Path: key, Err: err})
	}
	source, err := shader_cache.ReadSource(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrSetup, &CompileError{Path: key, Err: err})
	}
	artifact, err := compile(key, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrSetup, &CompileError{Path: key, Err: err})
	}
	if artifact == nil {
		return nil, fmt.Errorf("%w: %s: compile returned no pipeline", common.ErrSetup, key)
	}

	e := &watchEntry{
		path:       key,
		compile:    compile,
		artifact:   artifact,
		stamp:      stamp,
		generation: 1,
	}

	w.mu.Lock()
	w.entries[key] = e
	w.order = append(w.order, e)
	w.mu.Unlock()

	if w.notify != nil {
		if err := w.watchDir(filepath.Dir(key)); err != nil {
			common.Logger().Warn("file notifications unavailable, falling back to polling", "path", key, "err", err)
		}
	}

	common.Logger().Debug("watching shader", "path", key, "mode", w.mode.String())
	return e, nil
}

// reload is the work for one changed entry within a poll cycle.
type reload struct {
	entry   *watchEntry
	stamp   fingerprint
	source  string
	readErr error
}

func (w *watcher) PollAndReload() ReloadResult {
	w.mu.Lock()
	entries := append([]*watchEntry(nil), w.order...)
	w.mu.Unlock()

	var result ReloadResult
	var changed []*reload
	for _, e := range entries {
		// Entries whose directory has no notifier watch fall back to stat.
		forced := e.pending.Swap(false)
		if w.mode == ModeNotify && !forced && w.dirWatched(filepath.Dir(e.path)) {
			continue
		}

		stamp, statErr := statFingerprint(e.path)
		if stamp.equal(e.stamp) && !forced {
			continue
		}
		if stamp.missing && e.stamp.missing {
			continue
		}
		r := &reload{entry: e, stamp: stamp}
		if statErr != nil {
			r.readErr = statErr
		}
		changed = append(changed, r)
	}
	if len(changed) == 0 {
		return result
	}
	result.Changed = len(changed)

	w.readAll(changed)

	for _, r := range changed {
		if w.apply(r) {
			result.Swapped++
		} else {
			result.Failed++
		}
	}
	return result
}

// readAll reads every changed file, fanning out to the worker pool and waiting for all of them.
func (w *watcher) readAll(changed []*reload) {
	var wg sync.WaitGroup
	inline := w.pool == nil || w.closed.Load()
	for i, r := range changed {
		if r.readErr != nil {
			continue
		}
		if inline {
			r.source, r.readErr = shader_cache.ReadSource(r.entry.path)
			continue
		}
		wg.Add(1)
		rCap := r
		w.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: rCap.entry.path,
			Do: func() (any, error) {
				defer wg.Done()
				rCap.source, rCap.readErr = shader_cache.ReadSource(rCap.entry.path)
				return nil, rCap.readErr
			},
		})
	}
	wg.Wait()
}

// apply compiles one changed entry and swaps the artifact on success. The fingerprint advances
// either way so a failure is reported once per change.
func (w *watcher) apply(r *reload) bool {
	e := r.entry
	e.stamp = r.stamp
	log := common.Logger()

	if r.readErr != nil {
		w.report(e.path, r.readErr)
		return false
	}

	e.state.Store(int32(StateRecompiling))
	defer e.state.Store(int32(StateValid))

	log.Info("reloading shader", "path", e.path)
	artifact, err := e.compile(e.path, r.source)
	if err != nil {
		w.report(e.path, err)
		return false
	}
	if artifact == nil {
		w.report(e.path, fmt.Errorf("compile returned no pipeline"))
		return false
	}

	old := e.artifact
	e.artifact = artifact
	e.generation++
	if w.retire != nil && old != nil && old != artifact {
		w.retire(old)
	}
	log.Info("shader compiled", "path", e.path, "generation", e.generation)
	return true
}

func (w *watcher) report(path string, err error) {
	if w.sink == nil {
		return
	}
	w.sink.Report(Diagnostic{
		Path: path,
		Err:  &CompileError{Path: path, Err: err},
		Time: time.Now(),
	})
}

func (w *watcher) Entry(path string) (WatchEntry, bool) {
	key, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[key]
	if !ok {
		return nil, false
	}
	return e, true
}

func (w *watcher) Entries() []WatchEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WatchEntry, len(w.order))
	for i, e := range w.order {
		out[i] = e
	}
	return out
}

func (w *watcher) Mode() Mode {
	return w.mode
}

func (w *watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		if w.notify != nil {
			close(w.done)
			err = w.notify.Close()
		}
		if w.pool != nil {
			w.pool.Stop()
		}
	})
	return err
}
