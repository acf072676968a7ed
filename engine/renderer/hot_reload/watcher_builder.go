package hot_reload

import "github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"

// WatcherBuilderOption configures a Watcher during construction.
type WatcherBuilderOption func(*watcher)

// WithMode selects polling or fsnotify change detection.
//
// Parameters:
//   - mode: the detection mode
//
// Returns:
//   - WatcherBuilderOption: the option
func WithMode(mode Mode) WatcherBuilderOption {
	return func(w *watcher) {
		w.mode = mode
	}
}

// WithSink sets where reload failures are reported. Defaults to a LogSink.
//
// Parameters:
//   - sink: the diagnostics sink
//
// Returns:
//   - WatcherBuilderOption: the option
func WithSink(sink DiagnosticSink) WatcherBuilderOption {
	return func(w *watcher) {
		w.sink = sink
	}
}

// WithRetire sets a function that receives each artifact replaced by a successful reload,
// typically to release its GPU objects.
//
// Parameters:
//   - retire: called with the superseded pipeline
//
// Returns:
//   - WatcherBuilderOption: the option
func WithRetire(retire func(pipeline.Pipeline)) WatcherBuilderOption {
	return func(w *watcher) {
		w.retire = retire
	}
}

// WithWorkers sets how many goroutines read changed files concurrently. Zero reads inline.
//
// Parameters:
//   - n: the maximum number of read workers
//
// Returns:
//   - WatcherBuilderOption: the option
func WithWorkers(n int) WatcherBuilderOption {
	return func(w *watcher) {
		w.workers = max(n, 0)
	}
}
