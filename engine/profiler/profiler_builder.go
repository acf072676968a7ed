package profiler

import (
	"log/slog"
	"time"
)

// ProfilerBuilderOption configures a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often reports are logged. Non-positive values keep the one second default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sends reports to l instead of the engine logger.
func WithLogger(l *slog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.out = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithMemoryStats toggles runtime.ReadMemStats on each report. It is enabled by default.
func WithMemoryStats(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.readMem = enabled
	}
}
