package hot_reload

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
)

// State is the reload state of a WatchEntry.
type State int32

const (
	// StateValid means the entry holds a compiled artifact and no reload is in progress.
	StateValid State = iota

	// StateRecompiling is held only while PollAndReload compiles a changed file.
	StateRecompiling
)

func (s State) String() string {
	if s == StateRecompiling {
		return "recompiling"
	}
	return "valid"
}

// CompileFunc turns WGSL source into a registered pipeline. It must not retain partially built
// GPU objects when it returns an error.
type CompileFunc func(path, source string) (pipeline.Pipeline, error)

// fingerprint identifies one on-disk revision of a watched file.
type fingerprint struct {
	modTime time.Time
	size    int64
	missing bool
}

func statFingerprint(path string) (fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{missing: true}, err
	}
	return fingerprint{modTime: info.ModTime(), size: info.Size()}, nil
}

func (f fingerprint) equal(o fingerprint) bool {
	return f.missing == o.missing && f.size == o.size && f.modTime.Equal(o.modTime)
}

type watchEntry struct {
	path    string
	compile CompileFunc

	// artifact and stamp are only written by the goroutine calling PollAndReload.
	artifact   pipeline.Pipeline
	stamp      fingerprint
	generation uint64

	state   atomic.Int32
	pending atomic.Bool
}

// WatchEntry is the shared handle for one watched shader path. Every pass built from the same path
// holds the same entry and reads the artifact through it, so a swap is seen by all of them at once.
type WatchEntry interface {
	// Path returns the cleaned absolute path being watched.
	Path() string

	// Artifact returns the last successfully compiled pipeline. Never nil after Register succeeds.
	//
	// Returns:
	//   - pipeline.Pipeline: the current artifact
	Artifact() pipeline.Pipeline

	// Generation counts successful compiles, starting at 1 for the initial compile.
	//
	// Returns:
	//   - uint64: the generation of the current artifact
	Generation() uint64

	// ModTime returns the modification time of the revision last examined.
	ModTime() time.Time

	// State returns the reload state.
	State() State

	// Pending reports whether a filesystem notification arrived since the last poll.
	Pending() bool
}

var _ WatchEntry = &watchEntry{}

func (e *watchEntry) Path() string {
	return e.path
}

func (e *watchEntry) Artifact() pipeline.Pipeline {
	return e.artifact
}

func (e *watchEntry) Generation() uint64 {
	return e.generation
}

func (e *watchEntry) ModTime() time.Time {
	return e.stamp.modTime
}

func (e *watchEntry) State() State {
	return State(e.state.Load())
}

func (e *watchEntry) Pending() bool {
	return e.pending.Load()
}
