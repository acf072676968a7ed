// Package render_graph sequences full-screen passes over a pair of ping-pong targets and composes
// the mesh and overlay stages on top before presenting.
//
// Each frame runs in a fixed order: hot artifacts are resolved, target A is cleared, every pass
// draws from the current target into the next one and the roles swap, meshes are drawn
// depth-tested into the current target, the overlay is drawn on top in submission order, and the
// result is blitted to the surface, blended toward the frame's fade color.
package render_graph

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/frame"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/hot_reload"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
)

// FrameStats describes the most recent Execute call.
type FrameStats struct {
	Frame uint64
	// Passes is the number of passes that drew; Swaps equals it.
	Passes int
	Swaps  int
	// Final is the slot holding the image that was blitted.
	Final       Slot
	MeshDraws   int
	OverlayRuns int
	Reload      hot_reload.ReloadResult
}

type renderGraph struct {
	r renderer.Renderer

	specs  []passSpec
	passes []PassNode
	// owned are the pipelines of static passes, released with the graph.
	owned []pipeline.Pipeline

	pingPong PingPong
	sampler  bind_group_provider.BindGroupProvider
	blit     *blitStage
	overlay  *overlayStage
	mesh     *meshStage

	meshEnabled bool
	meshLib     mesh.Library
	clear       common.Color

	watcher      hot_reload.Watcher
	ownsWatcher  bool
	watcherOpts  []hot_reload.WatcherBuilderOption
	watchedKinds map[string]PassKind

	stats FrameStats
}

// RenderGraph owns the pass list, the ping-pong targets and the terminal stages.
type RenderGraph interface {
	// Passes returns the passes in execution order.
	Passes() []PassNode

	// Watcher returns the hot-reload watcher, or nil when no pass is watched.
	Watcher() hot_reload.Watcher

	// MeshLibrary returns the library mesh draws resolve handles against, or nil when the mesh
	// stage is disabled.
	MeshLibrary() mesh.Library

	// Resize resizes the surface, both ping-pong targets and the depth target. Calling it with the
	// current size does nothing; zero sizes are ignored.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: an allocation error
	Resize(width, height int) error

	// Execute renders and presents one frame from ctx. Programming errors and per-pass failures
	// are returned joined after the frame is presented; they never abort the frame.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: the joined errors of the frame, or nil
	Execute(ctx *frame.Context) error

	// CurrentSlot returns the slot holding the scene after the last Execute.
	CurrentSlot() Slot

	// Target returns the ping-pong target in slot s.
	Target(s Slot) renderer.RenderTarget

	// DepthTarget returns the mesh depth target, or nil when the mesh stage is disabled.
	DepthTarget() renderer.RenderTarget

	// Stats returns statistics of the last Execute.
	Stats() FrameStats

	// Release frees every GPU object the graph created, and closes the watcher if the graph
	// created it.
	Release()
}

var _ RenderGraph = &renderGraph{}

// NewRenderGraph compiles every pass and stage and allocates the targets at the renderer's size.
//
// Parameters:
//   - r: the renderer
//   - options: builder options adding passes and configuring stages
//
// Returns:
//   - RenderGraph: the graph
//   - error: an error wrapping common.ErrSetup if any shader fails to compile or any resource
//     cannot be created
func NewRenderGraph(r renderer.Renderer, options ...RenderGraphBuilderOption) (RenderGraph, error) {
	g := &renderGraph{
		r:            r,
		clear:        common.RGBA(0, 0, 0, 1),
		watchedKinds: make(map[string]PassKind),
	}
	for _, opt := range options {
		opt(g)
	}

	if err := g.build(); err != nil {
		g.Release()
		if !errors.Is(err, common.ErrSetup) {
			err = fmt.Errorf("%w: %w", common.ErrSetup, err)
		}
		return nil, err
	}
	return g, nil
}

func (g *renderGraph) build() error {
	g.sampler = bind_group_provider.NewBindGroupProvider("graph sampler")
	if err := g.r.InitSampler(g.sampler, 0, *common.LinearClampSampler()); err != nil {
		return fmt.Errorf("graph sampler: %w", err)
	}

	if g.watcher == nil && g.needsWatcher() {
		opts := append([]hot_reload.WatcherBuilderOption{hot_reload.WithRetire(g.r.ReleasePipeline)}, g.watcherOpts...)
		w, err := hot_reload.NewWatcher(opts...)
		if err != nil {
			return err
		}
		g.watcher = w
		g.ownsWatcher = true
	}

	for _, spec := range g.specs {
		source, err := g.resolve(spec)
		if err != nil {
			return err
		}
		opts := []PassNodeBuilderOption{WithSharedSampler(g.sampler)}
		if !spec.kind.IsPostProcess() {
			opts = append(opts, WithPassClearColor(g.clear))
		}
		node, err := NewPassNode(g.r, spec.label, spec.kind, source, opts...)
		if err != nil {
			return err
		}
		g.passes = append(g.passes, node)
	}

	var err error
	if g.blit, err = newBlitStage(g.r, g.sampler); err != nil {
		return err
	}
	if g.overlay, err = newOverlayStage(g.r, g.sampler); err != nil {
		return err
	}
	if g.meshEnabled {
		if g.meshLib == nil {
			g.meshLib = mesh.NewLibrary()
		}
		if g.mesh, err = newMeshStage(g.r, g.meshLib, g.sampler); err != nil {
			return err
		}
	}

	w, h := g.r.Size()
	return g.Resize(int(w), int(h))
}

func (g *renderGraph) needsWatcher() bool {
	for _, s := range g.specs {
		if s.path != "" {
			return true
		}
		if s.cache != nil {
			if e, ok := s.cache.Entry(s.id); ok && e.Path != "" {
				return true
			}
		}
	}
	return false
}

// resolve compiles a static pass or registers a watched one.
func (g *renderGraph) resolve(spec passSpec) (ArtifactSource, error) {
	source, path := spec.source, spec.path
	if spec.cache != nil {
		e, ok := spec.cache.Entry(spec.id)
		if !ok {
			return nil, fmt.Errorf("pass %q: unknown shader %q", spec.label, spec.id)
		}
		source, path = e.Static, e.Path
	}

	if path == "" {
		p, err := CompilePass(g.r, spec.kind, spec.label, source)
		if err != nil {
			return nil, err
		}
		g.owned = append(g.owned, p)
		return StaticArtifact{Pipeline: p}, nil
	}

	entry, err := g.watcher.Register(path, Compiler(g.r, spec.kind))
	if err != nil {
		return nil, err
	}
	if kind, ok := g.watchedKinds[entry.Path()]; ok && kind != spec.kind {
		return nil, fmt.Errorf("%s is used as both a %s and a %s pass", entry.Path(), kind, spec.kind)
	}
	g.watchedKinds[entry.Path()] = spec.kind
	return entry, nil
}

func (g *renderGraph) Passes() []PassNode {
	return g.passes
}

func (g *renderGraph) Watcher() hot_reload.Watcher {
	return g.watcher
}

func (g *renderGraph) MeshLibrary() mesh.Library {
	return g.meshLib
}

func (g *renderGraph) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	g.r.Resize(width, height)

	changed, err := g.pingPong.Resize(g.r, uint32(width), uint32(height))
	if err != nil {
		return err
	}
	if changed {
		for _, n := range g.passes {
			n.InvalidateInputs()
		}
		if g.blit != nil {
			g.blit.invalidate()
		}
	}
	if g.mesh != nil {
		if _, err := g.mesh.resize(uint32(width), uint32(height)); err != nil {
			return err
		}
	}
	return nil
}

func (g *renderGraph) Execute(ctx *frame.Context) error {
	stats := FrameStats{Frame: ctx.Frame}
	if g.watcher != nil {
		stats.Reload = g.watcher.PollAndReload()
	}

	width, height := g.r.Size()
	if width == 0 || height == 0 {
		g.stats = stats
		return nil
	}
	if err := g.Resize(int(width), int(height)); err != nil {
		return err
	}
	if g.pingPong.Current() == nil {
		return fmt.Errorf("%w: render targets not allocated", common.ErrProgramming)
	}

	enc, err := g.r.BeginFrame()
	if err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	var errs []error
	g.pingPong.Reset()
	clear := g.clear
	enc.BeginRenderPass(renderer.PassDescriptor{Label: "clear", Target: g.pingPong.Current(), Clear: &clear}).End()

	for _, n := range g.passes {
		n.UpdateUniforms(ctx)
		var input renderer.RenderTarget
		if n.Kind().IsPostProcess() {
			input = g.pingPong.Current()
		}
		if err := n.BindAndDraw(enc, input, g.pingPong.Next()); err != nil {
			errs = append(errs, err)
			continue
		}
		g.pingPong.Swap()
		stats.Passes++
		stats.Swaps++
	}

	if g.mesh != nil && ctx.Meshes != nil {
		if err := g.mesh.prepare(ctx); err != nil {
			errs = append(errs, err)
		}
		stats.MeshDraws = g.mesh.record(enc, g.pingPong.Current())
	}

	if ctx.Overlay != nil {
		runs, err := g.overlay.record(enc, g.pingPong.Current(), ctx.Overlay, width, height)
		if err != nil {
			errs = append(errs, err)
		}
		stats.OverlayRuns = runs
	}

	if err := g.blit.record(enc, g.pingPong.Current(), ctx.Fade); err != nil {
		errs = append(errs, err)
	}
	stats.Final = g.pingPong.CurrentSlot()

	if err := g.r.EndFrame(enc); err != nil {
		errs = append(errs, fmt.Errorf("submit: %w", err))
	}
	g.r.Present()

	g.stats = stats
	return errors.Join(errs...)
}

func (g *renderGraph) CurrentSlot() Slot {
	return g.pingPong.CurrentSlot()
}

func (g *renderGraph) Target(s Slot) renderer.RenderTarget {
	return g.pingPong.Target(s)
}

func (g *renderGraph) DepthTarget() renderer.RenderTarget {
	if g.mesh == nil {
		return nil
	}
	return g.mesh.depth
}

func (g *renderGraph) Stats() FrameStats {
	return g.stats
}

func (g *renderGraph) Release() {
	for _, n := range g.passes {
		n.Release()
	}
	g.passes = nil
	for _, p := range g.owned {
		g.r.ReleasePipeline(p)
	}
	g.owned = nil

	if g.watcher != nil && g.ownsWatcher {
		for _, e := range g.watcher.Entries() {
			g.r.ReleasePipeline(e.Artifact())
		}
		if err := g.watcher.Close(); err != nil {
			common.Logger().Warn("closing shader watcher", "err", err)
		}
		g.watcher = nil
	}

	if g.mesh != nil {
		g.mesh.release()
		g.mesh = nil
	}
	if g.overlay != nil {
		g.overlay.release()
		g.overlay = nil
	}
	if g.blit != nil {
		g.blit.release()
		g.blit = nil
	}
	if g.sampler != nil {
		g.r.Release(g.sampler)
		g.sampler = nil
	}
	g.pingPong.Release()
}
