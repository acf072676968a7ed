package engine

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/config"
	"github.com/Carmen-Shannon/oxy-fx/engine/frame"
	"github.com/Carmen-Shannon/oxy-fx/engine/light"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/hot_reload"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	mu            sync.Mutex
	width, height int
	onResize      func(width, height int)
	onScroll      func(delta float32)
	onDrag        func(dx, dy float32)
	closed        bool
	closeReq      chan struct{}
}

var _ window.Window = &fakeWindow{}

func newFakeWindow(w, h int) *fakeWindow {
	return &fakeWindow{width: w, height: h, closeReq: make(chan struct{})}
}

func (w *fakeWindow) SetUpdateCallback(func())                     {}
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))     { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(func(keyCode uint32))      {}
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))        {}
func (w *fakeWindow) SetDragCallback(cb func(dx, dy float32))      { w.onDrag = cb }
func (w *fakeWindow) SetTitle(string)                              {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return !w.closed }
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }

func (w *fakeWindow) RequestClose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.closeReq:
	default:
		close(w.closeReq)
	}
}

func (w *fakeWindow) ProcessMessages() {
	<-w.closeReq
}

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

type fakeGraph struct {
	mu       sync.Mutex
	events   []string
	resizes  [][2]int
	frames   []frame.Context
	err      error
	panicOn  uint64
	stats    render_graph.FrameStats
	released bool
	executed chan struct{}
}

var _ render_graph.RenderGraph = &fakeGraph{}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{executed: make(chan struct{}, 64)}
}

func (g *fakeGraph) Passes() []render_graph.PassNode                { return nil }
func (g *fakeGraph) Watcher() hot_reload.Watcher                    { return nil }
func (g *fakeGraph) MeshLibrary() mesh.Library                      { return nil }
func (g *fakeGraph) CurrentSlot() render_graph.Slot                 { return render_graph.SlotA }
func (g *fakeGraph) Target(render_graph.Slot) renderer.RenderTarget { return nil }
func (g *fakeGraph) DepthTarget() renderer.RenderTarget             { return nil }
func (g *fakeGraph) Stats() render_graph.FrameStats                 { return g.stats }

func (g *fakeGraph) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = true
}

func (g *fakeGraph) Resize(width, height int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, fmt.Sprintf("resize %dx%d", width, height))
	g.resizes = append(g.resizes, [2]int{width, height})
	return nil
}

func (g *fakeGraph) Execute(ctx *frame.Context) error {
	g.mu.Lock()
	g.events = append(g.events, "execute")
	g.frames = append(g.frames, *ctx)
	err := g.err
	g.mu.Unlock()

	if g.panicOn != 0 && ctx.Frame == g.panicOn {
		panic("device lost")
	}
	select {
	case g.executed <- struct{}{}:
	default:
	}
	return err
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := common.Logger()
	buf := &bytes.Buffer{}
	common.SetLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { common.SetLogger(prev) })
	return buf
}

func newTestEngine(t *testing.T, w *fakeWindow, g *fakeGraph, opts ...EngineBuilderOption) *engine {
	t.Helper()
	e, err := NewEngine(append([]EngineBuilderOption{WithWindow(w), WithGraph(g)}, opts...)...)
	require.NoError(t, err)
	return e.(*engine)
}

func TestNewEngineUsesProvidedParts(t *testing.T) {
	w := newFakeWindow(640, 480)
	g := newFakeGraph()
	e := newTestEngine(t, w, g)

	assert.Same(t, w, e.Window())
	assert.Same(t, g, e.Graph())
	assert.Nil(t, e.Renderer())
	assert.NotNil(t, e.Camera())
	assert.NotNil(t, w.onResize)
	assert.Nil(t, w.onScroll)
}

func TestResizeIsAppliedBeforeTheNextFrame(t *testing.T) {
	w := newFakeWindow(640, 480)
	g := newFakeGraph()
	e := newTestEngine(t, w, g)

	var callbackSize [2]uint32
	e.SetFrameCallback(func(ctx *frame.Context) {
		g.events = append(g.events, "callback")
		callbackSize = [2]uint32{ctx.Width, ctx.Height}
	})

	w.onResize(1024, 768)
	w.onResize(1280, 720)
	e.renderFrame(0, 0)

	assert.Equal(t, []string{"resize 1280x720", "callback", "execute"}, g.events)
	assert.Equal(t, [2]uint32{1280, 720}, callbackSize)
	assert.InDelta(t, 1280.0/720.0, e.Camera().Aspect(), 1e-5)

	g.events = nil
	e.renderFrame(0.1, 0.1)
	assert.Equal(t, []string{"callback", "execute"}, g.events)
}

func TestMinimizedWindowSkipsFrames(t *testing.T) {
	w := newFakeWindow(640, 480)
	g := newFakeGraph()
	e := newTestEngine(t, w, g)

	w.onResize(0, 0)
	e.renderFrame(0, 0)
	assert.Equal(t, []string{"resize 0x0"}, g.events)

	w.onResize(320, 240)
	e.renderFrame(0, 0)
	assert.Equal(t, []string{"resize 0x0", "resize 320x240", "execute"}, g.events)
}

func TestFrameContextCarriesTimingAndCamera(t *testing.T) {
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	cam := camera.NewCamera(camera.WithPosition(common.Vec3{1, 2, 3}))
	e := newTestEngine(t, w, g, WithCamera(cam))

	e.renderFrame(1.5, 0.25)
	e.renderFrame(1.75, 0.25)

	require.Len(t, g.frames, 2)
	assert.Equal(t, uint64(1), g.frames[0].Frame)
	assert.Equal(t, uint64(2), g.frames[1].Frame)
	assert.Equal(t, float32(1.75), g.frames[1].Time)
	assert.Equal(t, float32(0.25), g.frames[1].Delta)
	assert.Equal(t, common.Vec3{1, 2, 3}, g.frames[1].Camera.Position)
}

func TestLightPersistsAcrossFrames(t *testing.T) {
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	sun := light.NewDirectional(light.WithDirection(1, 0, 0), light.WithAmbient(0.5))
	e := newTestEngine(t, w, g, WithLight(sun))

	e.SetFrameCallback(func(ctx *frame.Context) {
		if ctx.Frame == 2 {
			ctx.Light.Intensity = 3
		}
	})
	e.renderFrame(0, 0)
	e.renderFrame(0, 0)
	e.renderFrame(0, 0)

	require.Len(t, g.frames, 3)
	assert.Equal(t, sun, g.frames[0].Light)
	assert.Equal(t, float32(3), g.frames[1].Light.Intensity)
	assert.Equal(t, float32(3), g.frames[2].Light.Intensity)
}

func TestConfigLightIsApplied(t *testing.T) {
	captureLogs(t)
	cfg := config.Default()
	cfg.Light.Direction = [3]float32{0, 0, 1}
	cfg.Light.Ambient = 0.4

	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	e := newTestEngine(t, w, g, WithConfig(cfg))
	e.renderFrame(0, 0)

	require.Len(t, g.frames, 1)
	assert.Equal(t, common.Vec3{0, 0, 1}, g.frames[0].Light.Direction)
	assert.Equal(t, float32(0.4), g.frames[0].Light.Ambient)
}

func TestControllerDrivesCamera(t *testing.T) {
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	cc := camera.NewOrbitController(camera.WithRadius(4))
	e := newTestEngine(t, w, g, WithCameraController(cc))

	require.NotNil(t, w.onScroll)
	require.NotNil(t, w.onDrag)
	w.onDrag(10, 0)
	w.onScroll(1)
	e.renderFrame(0, 0)

	assert.Equal(t, cc.Position(), e.Camera().Position())
	assert.Equal(t, cc.Position(), g.frames[0].Camera.Position)
}

func TestFrameErrorsAreLoggedByKind(t *testing.T) {
	logs := captureLogs(t)
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	e := newTestEngine(t, w, g)

	g.err = fmt.Errorf("%w: post-process pass %q has no input", common.ErrProgramming, "invert")
	e.renderFrame(0, 0)
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "programming error")

	logs.Reset()
	g.err = errors.New("pass \"blur\": bind group lost")
	e.renderFrame(0, 0)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "frame error")

	// The loop keeps going after errors.
	assert.Len(t, g.frames, 2)
}

func TestProfilerReceivesGraphStats(t *testing.T) {
	logs := captureLogs(t)
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	g.stats = render_graph.FrameStats{Passes: 3, MeshDraws: 2, Reload: hot_reload.ReloadResult{Swapped: 1, Failed: 1}}

	now := time.Unix(0, 0)
	p := profiler.NewProfiler(
		profiler.WithClock(func() time.Time { return now }),
		profiler.WithMemoryStats(false),
	)
	e := newTestEngine(t, w, g, WithProfiler(p), WithProfiling(true))

	e.renderFrame(0, 0)
	now = now.Add(time.Second)
	e.renderFrame(1, 1)

	r := e.Profiler().Last()
	assert.Equal(t, 2, r.Frames)
	assert.InDelta(t, 3.0, r.Passes, 1e-9)
	assert.InDelta(t, 2.0, r.MeshDraws, 1e-9)
	assert.Equal(t, 2, r.Reloads)
	assert.Equal(t, 2, r.ReloadFailures)
	assert.Contains(t, logs.String(), "frame stats")

	logs.Reset()
	e.DisableProfiler()
	now = now.Add(time.Second)
	e.renderFrame(2, 1)
	assert.NotContains(t, logs.String(), "frame stats")
}

func TestRunStopsOnQuitAndReleases(t *testing.T) {
	captureLogs(t)
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	e := newTestEngine(t, w, g, WithRenderFrameLimit(240))

	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	<-g.executed
	e.Quit()
	require.NoError(t, <-done)

	g.mu.Lock()
	defer g.mu.Unlock()
	assert.True(t, g.released)
	assert.True(t, w.closed)
}

func TestRunReportsRenderPanic(t *testing.T) {
	logs := captureLogs(t)
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	g.panicOn = 1
	e := newTestEngine(t, w, g)

	err := e.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
	assert.Contains(t, logs.String(), "recovered from panic")
	assert.True(t, g.released)
}

func TestTickRateOptions(t *testing.T) {
	w := newFakeWindow(800, 600)
	g := newFakeGraph()
	e := newTestEngine(t, w, g, WithTickRate(0), WithRenderFrameLimit(0))

	assert.Equal(t, int64(1e9/60), int64(e.engineTickRate))
	assert.Zero(t, e.renderFrameLimit)

	e.SetTickRate(120)
	assert.Equal(t, int64(1e9/120), int64(e.engineTickRate))
	e.SetRenderFrameLimit(30)
	assert.Equal(t, int64(1e9/30), int64(e.renderFrameLimit))
}
