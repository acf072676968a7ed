package render_graph

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/hot_reload"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// CompilePass builds and registers the pipeline for a full-screen pass. The shader must satisfy the
// kind's contract and must not read vertex buffers. Every failure wraps common.ErrCompile; nothing is
// left registered on failure.
//
// Parameters:
//   - r: the renderer to create GPU objects with
//   - kind: the pass kind
//   - label: a debug label, usually the file path
//   - source: the WGSL source
//
// Returns:
//   - pipeline.Pipeline: the registered pipeline
//   - error: a compile error
func CompilePass(r renderer.Renderer, kind PassKind, label, source string) (pipeline.Pipeline, error) {
	s, err := shader.NewShader(label, source, shader.WithContract(kind.Contract()))
	if err != nil {
		return nil, err
	}
	if n := len(s.VertexLayouts()); n > 0 {
		return nil, fmt.Errorf("%w: %s: full-screen pass vertex entry point reads %d vertex buffers, want none", common.ErrCompile, label, n)
	}

	p := pipeline.NewPipeline(label, s)
	if err := r.RegisterRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCompile, label, err)
	}
	return p, nil
}

// Compiler adapts CompilePass to a hot_reload.CompileFunc for one pass kind.
//
// Parameters:
//   - r: the renderer to create GPU objects with
//   - kind: the pass kind every reload must satisfy
//
// Returns:
//   - hot_reload.CompileFunc: the compile function
func Compiler(r renderer.Renderer, kind PassKind) hot_reload.CompileFunc {
	return func(path, source string) (pipeline.Pipeline, error) {
		return CompilePass(r, kind, path, source)
	}
}

// compileStage builds one of the graph's built-in pipelines.
func compileStage(r renderer.Renderer, label, source string, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	s, err := shader.NewShader(label, source)
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(label, s, opts...)
	if err := r.RegisterRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return p, nil
}
