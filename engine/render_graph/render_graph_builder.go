package render_graph

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/hot_reload"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_cache"
)

// passSpec records a pass requested through a builder option; passes are built in option order.
type passSpec struct {
	kind  PassKind
	label string
	// source is set for static passes, path for watched passes, cache and id for cached passes.
	source string
	path   string
	cache  shader_cache.ShaderCache
	id     string
}

// RenderGraphBuilderOption configures a RenderGraph during construction.
type RenderGraphBuilderOption func(*renderGraph)

// WithPass appends a pass compiled once from source.
//
// Parameters:
//   - kind: the pass kind
//   - label: a debug label
//   - source: the WGSL source
//
// Returns:
//   - RenderGraphBuilderOption: the option
func WithPass(kind PassKind, label, source string) RenderGraphBuilderOption {
	return func(g *renderGraph) {
		g.specs = append(g.specs, passSpec{kind: kind, label: label, source: source})
	}
}

// WithHotPass appends a pass whose shader is read from path and reloaded when the file changes.
//
// Parameters:
//   - kind: the pass kind
//   - path: the WGSL file path
//
// Returns:
//   - RenderGraphBuilderOption: the option
func WithHotPass(kind PassKind, path string) RenderGraphBuilderOption {
	return func(g *renderGraph) {
		g.specs = append(g.specs, passSpec{kind: kind, label: path, path: path})
	}
}

// WithCachedPass appends a pass whose shader is looked up in cache. Static entries are compiled
// once; file entries are watched.
//
// Parameters:
//   - kind: the pass kind
//   - cache: the shader source cache
//   - id: the shader identifier
//
// Returns:
//   - RenderGraphBuilderOption: the option
func WithCachedPass(kind PassKind, cache shader_cache.ShaderCache, id string) RenderGraphBuilderOption {
	return func(g *renderGraph) {
		g.specs = append(g.specs, passSpec{kind: kind, label: id, cache: cache, id: id})
	}
}

// WithMeshPass enables the depth-tested mesh stage. A nil library creates an empty one, available
// through MeshLibrary.
//
// Parameters:
//   - lib: the mesh library draw handles refer to
//
// Returns:
//   - RenderGraphBuilderOption: the option
func WithMeshPass(lib mesh.Library) RenderGraphBuilderOption {
	return func(g *renderGraph) {
		g.meshEnabled = true
		g.meshLib = lib
	}
}

// WithClearColor sets the background target A is cleared to each frame. Effect passes clear their
// output to it as well.
//
// Parameters:
//   - c: the background color
//
// Returns:
//   - RenderGraphBuilderOption: the option
func WithClearColor(c common.Color) RenderGraphBuilderOption {
	return func(g *renderGraph) {
		g.clear = c
	}
}

// WithWatcher uses an existing watcher for hot passes instead of creating one. The caller keeps
// ownership and should configure hot_reload.WithRetire.
//
// Parameters:
//   - w: the watcher
//
// Returns:
//   - RenderGraphBuilderOption: the option
func WithWatcher(w hot_reload.Watcher) RenderGraphBuilderOption {
	return func(g *renderGraph) {
		g.watcher = w
		g.ownsWatcher = false
	}
}

// WithWatcherOptions configures the watcher the graph creates for hot passes.
//
// Parameters:
//   - opts: watcher options such as hot_reload.WithMode and hot_reload.WithSink
//
// Returns:
//   - RenderGraphBuilderOption: the option
func WithWatcherOptions(opts ...hot_reload.WatcherBuilderOption) RenderGraphBuilderOption {
	return func(g *renderGraph) {
		g.watcherOpts = append(g.watcherOpts, opts...)
	}
}
