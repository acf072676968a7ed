// Package profiler samples frame rate, memory and render graph statistics and logs them at a
// fixed interval.
package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// FrameSample is what the render loop reports for one frame.
type FrameSample struct {
	Passes         int
	MeshDraws      int
	OverlayRuns    int
	Reloads        int
	ReloadFailures int
}

// Report summarises one profiling interval.
type Report struct {
	FPS         float64
	Frames      int
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPause   time.Duration
	MaxPause    time.Duration

	// Passes, MeshDraws and OverlayRuns are per-frame averages over the interval.
	Passes      float64
	MeshDraws   float64
	OverlayRuns float64
	// Reloads and ReloadFailures are totals over the interval.
	Reloads        int
	ReloadFailures int
}

// Profiler tracks frame rate, memory and graph statistics. Tick is called from the render loop;
// Last may be read from any goroutine.
type Profiler struct {
	mu             sync.Mutex
	out            *slog.Logger
	now            func() time.Time
	updateInterval time.Duration
	readMem        bool

	frameCount  int
	lastTime    time.Time
	totals      FrameSample
	memStats    runtime.MemStats
	lastGCCount uint32
	lastAlloc   uint64

	last Report
}

// NewProfiler creates a Profiler that reports once per second to the engine logger.
//
// Parameters:
//   - options: functional options such as WithInterval
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
		readMem:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame. When the interval has elapsed it logs a report at Info with
// component=profiler and starts a new interval.
//
// Parameters:
//   - s: the frame's statistics
//
// Returns:
//   - Report: the finished report, valid when ok is true
//   - bool: true if an interval finished on this tick
func (p *Profiler) Tick(s FrameSample) (Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	p.totals.Passes += s.Passes
	p.totals.MeshDraws += s.MeshDraws
	p.totals.OverlayRuns += s.OverlayRuns
	p.totals.Reloads += s.Reloads
	p.totals.ReloadFailures += s.ReloadFailures

	now := p.now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return Report{}, false
	}

	frames := float64(p.frameCount)
	r := Report{
		FPS:            frames / elapsed.Seconds(),
		Frames:         p.frameCount,
		Passes:         float64(p.totals.Passes) / frames,
		MeshDraws:      float64(p.totals.MeshDraws) / frames,
		OverlayRuns:    float64(p.totals.OverlayRuns) / frames,
		Reloads:        p.totals.Reloads,
		ReloadFailures: p.totals.ReloadFailures,
	}
	if p.readMem {
		p.sampleMemory(&r, elapsed)
	}

	p.logger().Info("frame stats",
		"component", "profiler",
		"fps", r.FPS,
		"heap_mb", r.HeapMB,
		"alloc_mb_s", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last", r.LastPause,
		"gc_max", r.MaxPause,
		"sys_mb", r.SysMB,
		"passes", r.Passes,
		"mesh_draws", r.MeshDraws,
		"overlay_runs", r.OverlayRuns,
		"reloads", r.Reloads,
		"reload_failures", r.ReloadFailures,
	)

	p.frameCount = 0
	p.totals = FrameSample{}
	p.lastTime = now
	p.last = r
	return r, true
}

// sampleMemory fills the memory fields of r. The GC pause buffer is circular over the last 256
// collections.
func (p *Profiler) sampleMemory(r *Report, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastAlloc) / 1024 / 1024 / elapsed.Seconds()

	gc := p.memStats.NumGC
	r.GCCount = gc
	if gc > 0 {
		r.LastPause = time.Duration(p.memStats.PauseNs[(gc-1)%256])
		start := p.lastGCCount
		if gc-start > 256 {
			start = gc - 256
		}
		for i := start; i < gc; i++ {
			r.MaxPause = max(r.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}
	p.lastGCCount = gc
	p.lastAlloc = p.memStats.TotalAlloc
}

func (p *Profiler) logger() *slog.Logger {
	if p.out != nil {
		return p.out
	}
	return common.Logger()
}

// Last returns the most recent finished report.
func (p *Profiler) Last() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
