package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/light"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/hot_reload"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_cache"
)

// NewLogger builds the logger described by the log section, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: common.ParseLevel(c.Level)}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Install makes the configured logger the engine logger, writing to stderr.
func (c LogConfig) Install() {
	common.SetLogger(c.NewLogger(os.Stderr))
}

// Mode returns the configured present mode.
func (c RendererConfig) Mode() renderer.PresentMode {
	return renderer.ParsePresentMode(strings.ToLower(c.PresentMode))
}

// Directional converts the light section into the mesh pass light.
func (c LightConfig) Directional() light.Directional {
	d, col := c.Direction, c.Color
	return light.NewDirectional(
		light.WithDirection(d[0], d[1], d[2]),
		light.WithColor(common.RGBA(col[0], col[1], col[2], 1)),
		light.WithIntensity(c.Intensity),
		light.WithAmbient(c.Ambient),
	)
}

// WatcherOptions converts the hot_reload section into watcher builder options.
func (c HotReloadConfig) WatcherOptions() []hot_reload.WatcherBuilderOption {
	return []hot_reload.WatcherBuilderOption{
		hot_reload.WithMode(hot_reload.ParseMode(c.Mode)),
		hot_reload.WithWorkers(c.Workers),
	}
}

// ShaderCache registers every pass shader under its label: hot passes as watched files, the rest
// read once as static sources.
//
// Returns:
//   - shader_cache.ShaderCache: the cache
//   - error: an error wrapping common.ErrSetup if a file cannot be read
func (c GraphConfig) ShaderCache() (shader_cache.ShaderCache, error) {
	var opts []shader_cache.ShaderCacheBuilderOption
	for i, p := range c.Passes {
		id := passLabel(i, p)
		if p.Hot {
			opts = append(opts, shader_cache.WithFile(id, p.Path))
			continue
		}
		src, err := shader_cache.ReadSource(p.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: pass %q: %w", common.ErrSetup, id, err)
		}
		opts = append(opts, shader_cache.WithStatic(id, src))
	}
	return shader_cache.NewShaderCache(opts...)
}

// GraphOptions converts the graph and hot_reload sections into render graph builder options.
//
// Returns:
//   - []render_graph.RenderGraphBuilderOption: the options, passes in file order
//   - error: an error wrapping common.ErrSetup
func (c Config) GraphOptions() ([]render_graph.RenderGraphBuilderOption, error) {
	cache, err := c.Graph.ShaderCache()
	if err != nil {
		return nil, err
	}
	cc := c.Graph.ClearColor
	opts := []render_graph.RenderGraphBuilderOption{
		render_graph.WithClearColor(common.RGBA(cc[0], cc[1], cc[2], cc[3])),
		render_graph.WithWatcherOptions(c.HotReload.WatcherOptions()...),
	}
	if c.Graph.MeshPass {
		opts = append(opts, render_graph.WithMeshPass(nil))
	}
	for i, p := range c.Graph.Passes {
		kind, err := render_graph.ParsePassKind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: pass %d: %w", common.ErrSetup, i, err)
		}
		opts = append(opts, render_graph.WithCachedPass(kind, cache, passLabel(i, p)))
	}
	return opts, nil
}

func passLabel(i int, p PassConfig) string {
	if p.Label != "" {
		return p.Label
	}
	if p.Path != "" {
		return strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path))
	}
	return fmt.Sprintf("pass %d", i)
}
