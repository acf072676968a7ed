// Package engine runs the render loop: it owns the window, the GPU context and the render graph,
// applies resizes between frames, hands each frame's context to the application and executes the
// graph.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/config"
	"github.com/Carmen-Shannon/oxy-fx/engine/frame"
	"github.com/Carmen-Shannon/oxy-fx/engine/light"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	cfg          *config.Config
	windowOpts   []window.WindowBuilderOption
	rendererOpts []renderer.RendererBuilderOption
	graphOpts    []render_graph.RenderGraphBuilderOption

	window     window.Window
	renderer   renderer.Renderer
	graph      render_graph.RenderGraph
	camera     camera.Camera
	controller camera.CameraController
	light      *light.Directional
	ctx        *frame.Context

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  func(ctx *frame.Context)

	// resizeMu guards pendingResize, written by the window thread and consumed by the render loop.
	resizeMu      sync.Mutex
	pendingResize *[2]int
	width, height int

	start            time.Time
	renderFrameLimit time.Duration
}

// Engine is the main entry point. It runs the render loop against a window, a GPU context and a
// render graph built from its options.
type Engine interface {
	// Window returns the window frames are presented to.
	Window() window.Window

	// Renderer returns the GPU context, or nil when the engine was given a prebuilt graph only.
	Renderer() renderer.Renderer

	// Graph returns the render graph.
	Graph() render_graph.RenderGraph

	// Camera returns the camera snapshotted at the start of every frame.
	Camera() camera.Camera

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables periodic performance logging.
	EnableProfiler()

	// DisableProfiler disables periodic performance logging.
	DisableProfiler()

	// SetTickRate sets the fixed update rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each fixed tick, on the tick goroutine.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called on the render goroutine before each frame
	// executes. It records mesh draws and overlay commands into ctx; the context is only valid
	// during the call.
	//
	// Parameters:
	//   - callback: the frame function
	SetFrameCallback(callback func(ctx *frame.Context))

	// SetRenderFrameLimit caps the render loop in frames per second. 0 uncaps it.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render goroutines and runs the window message loop on the calling
	// goroutine, which must be the main one. It returns once the window closes or Quit is called,
	// after releasing the graph and closing the window.
	//
	// Returns:
	//   - error: an error if the render goroutine stopped on a panic
	Run() error

	// Quit signals all engine goroutines to stop. Safe to call multiple times.
	Quit()
}

// NewEngine creates the window, GPU context and render graph described by options. Options that
// supply a prebuilt window, renderer or graph skip the corresponding step.
//
// Parameters:
//   - options: functional options such as WithConfig and WithGraphOptions
//
// Returns:
//   - Engine: the engine, ready to Run
//   - error: an error wrapping common.ErrSetup
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}

	if err := e.applyConfig(); err != nil {
		return nil, err
	}
	if err := e.build(); err != nil {
		if e.graph != nil {
			e.graph.Release()
		}
		return nil, err
	}
	return e, nil
}

// applyConfig turns the configuration into builder options. Explicit options given alongside the
// configuration are applied after it and win.
func (e *engine) applyConfig() error {
	if e.cfg == nil {
		return nil
	}
	cfg := *e.cfg
	cfg.Log.Install()

	e.windowOpts = append([]window.WindowBuilderOption{
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	}, e.windowOpts...)
	e.rendererOpts = append([]renderer.RendererBuilderOption{
		renderer.WithPresentMode(cfg.Renderer.Mode()),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
	}, e.rendererOpts...)

	graphOpts, err := cfg.GraphOptions()
	if err != nil {
		return err
	}
	e.graphOpts = append(graphOpts, e.graphOpts...)
	if e.light == nil {
		sun := cfg.Light.Directional()
		e.light = &sun
	}
	if e.renderFrameLimit == 0 {
		e.SetRenderFrameLimit(cfg.Window.FrameLimit)
	}
	return nil
}

func (e *engine) build() error {
	var err error
	if e.window == nil {
		if e.window, err = window.NewWindow(e.windowOpts...); err != nil {
			return err
		}
	}
	e.width, e.height = e.window.Width(), e.window.Height()

	if e.graph == nil {
		if e.renderer == nil {
			if e.renderer, err = renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, e.rendererOpts...); err != nil {
				return err
			}
		}
		if e.graph, err = render_graph.NewRenderGraph(e.renderer, e.graphOpts...); err != nil {
			return err
		}
	}

	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.ctx == nil {
		e.ctx = frame.NewContext(nil)
	}
	if e.light != nil {
		e.ctx.Light = *e.light
	}

	e.window.SetResizeCallback(e.requestResize)
	if e.controller != nil {
		e.window.SetScrollCallback(e.controller.Zoom)
		e.window.SetDragCallback(e.controller.Drag)
	}
	return nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Graph() render_graph.RenderGraph {
	return e.graph
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() error {
	e.running.Store(true)
	e.start = time.Now()

	errc := make(chan error, 1)
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender(errc)

	// Stop the message loop when the render goroutine quits on its own.
	go func() {
		<-e.quitChannel
		e.window.RequestClose()
	}()

	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()

	e.graph.Release()
	if err := e.window.Close(); err != nil {
		common.Logger().Warn("closing window", "err", err)
	}

	select {
	case err := <-errc:
		return err
	default:
		return nil
	}
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// requestResize records a new framebuffer size. It runs on the window thread; the render loop
// applies the latest request before its next frame.
func (e *engine) requestResize(width, height int) {
	e.resizeMu.Lock()
	defer e.resizeMu.Unlock()
	e.pendingResize = &[2]int{width, height}
}

func (e *engine) takeResize() ([2]int, bool) {
	e.resizeMu.Lock()
	defer e.resizeMu.Unlock()
	if e.pendingResize == nil {
		return [2]int{}, false
	}
	size := *e.pendingResize
	e.pendingResize = nil
	return size, true
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop in its own goroutine until quit. A panic in the frame
// callback or the graph is recovered, reported on errc and stops the engine.
func (e *engine) handleRender(errc chan<- error) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			errc <- fmt.Errorf("render loop panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		e.renderFrame(float32(now.Sub(e.start).Seconds()), dt)

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame applies a pending resize, runs the frame callback and executes the graph. Frame
// errors are logged and never stop the loop.
func (e *engine) renderFrame(elapsed, dt float32) {
	if size, ok := e.takeResize(); ok {
		if err := e.graph.Resize(size[0], size[1]); err != nil {
			common.Logger().Error("resize failed", "width", size[0], "height", size[1], "err", err)
		} else {
			e.width, e.height = size[0], size[1]
		}
	}
	if e.width <= 0 || e.height <= 0 {
		return
	}

	if e.controller != nil {
		e.controller.Apply(e.camera)
	}
	e.camera.SetAspect(float32(e.width) / float32(e.height))
	e.ctx.Begin(uint32(e.width), uint32(e.height), elapsed, dt, e.camera.Snapshot())

	if e.frameCallback != nil {
		e.frameCallback(e.ctx)
	}
	if err := e.graph.Execute(e.ctx); err != nil {
		logFrameError(e.ctx.Frame, err)
	}

	if e.profilingEnabled.Load() {
		stats := e.graph.Stats()
		e.profiler.Tick(profiler.FrameSample{
			Passes:         stats.Passes,
			MeshDraws:      stats.MeshDraws,
			OverlayRuns:    stats.OverlayRuns,
			Reloads:        stats.Reload.Swapped,
			ReloadFailures: stats.Reload.Failed,
		})
	}
}

func logFrameError(frame uint64, err error) {
	if errors.Is(err, common.ErrProgramming) {
		common.Logger().Error("programming error", "frame", frame, "err", err)
		return
	}
	common.Logger().Warn("frame error", "frame", frame, "err", err)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Replace any pending update so the loop always picks up the latest rate.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback func(ctx *frame.Context)) {
	e.frameCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
