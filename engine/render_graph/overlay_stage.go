package render_graph

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/overlay"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// overlayStage flushes a DrawList into the current target, one draw per run, in submission order.
type overlayStage struct {
	r         renderer.Renderer
	pipelines [3]pipeline.Pipeline
	// uniforms owns the resolution buffer; groups holds a group 0 bind group per pipeline over it.
	uniforms bind_group_provider.BindGroupProvider
	groups   [3]bind_group_provider.BindGroupProvider
	vertices bind_group_provider.BindGroupProvider

	linear  bind_group_provider.BindGroupProvider
	nearest bind_group_provider.BindGroupProvider
	// textures caches group 1 bind groups by pipeline and the staging data they were uploaded from.
	textures map[overlayTextureKey]bind_group_provider.BindGroupProvider

	lastDropped int
}

// overlayTextureKey separates the text and sprite bind groups of one texture; they differ in layout
// and sampler.
type overlayTextureKey struct {
	kind    overlay.PipelineKind
	staging *common.TextureStagingData
}

func newOverlayStage(r renderer.Renderer, linear bind_group_provider.BindGroupProvider) (*overlayStage, error) {
	s := &overlayStage{
		r:        r,
		linear:   linear,
		textures: make(map[overlayTextureKey]bind_group_provider.BindGroupProvider),
	}

	sources := [3]struct{ label, source string }{
		overlay.PipelineShape:  {"overlay shape", overlay.ShapeShaderSource},
		overlay.PipelineText:   {"overlay text", overlay.TextShaderSource},
		overlay.PipelineSprite: {"overlay sprite", overlay.SpriteShaderSource},
	}
	for kind, src := range sources {
		p, err := compileStage(r, src.label, src.source, pipeline.WithBlendEnabled(true))
		if err != nil {
			s.release()
			return nil, err
		}
		s.pipelines[kind] = p
	}

	shape := s.pipelines[overlay.PipelineShape]
	s.uniforms = bind_group_provider.NewBindGroupProvider("overlay uniforms",
		bind_group_provider.WithBindGroupLayout(shape.BindGroupLayout(0)))
	if err := r.InitBindGroup(s.uniforms, shape.Shader().BindGroupLayoutDescriptor(0)); err != nil {
		s.release()
		return nil, fmt.Errorf("overlay uniforms: %w", err)
	}
	s.groups[overlay.PipelineShape] = s.uniforms

	for _, kind := range []overlay.PipelineKind{overlay.PipelineText, overlay.PipelineSprite} {
		p := s.pipelines[kind]
		g := bind_group_provider.NewBindGroupProvider("overlay "+kind.String()+" uniforms",
			bind_group_provider.WithBindGroupLayout(p.BindGroupLayout(0)),
			bind_group_provider.WithBuffer(0, s.uniforms.Buffer(0)),
		)
		if err := r.InitBindGroup(g, p.Shader().BindGroupLayoutDescriptor(0)); err != nil {
			s.release()
			return nil, fmt.Errorf("overlay %s uniforms: %w", kind, err)
		}
		s.groups[kind] = g
	}

	s.vertices = bind_group_provider.NewBindGroupProvider("overlay vertices")
	if err := r.InitVertexBuffer(s.vertices, uint64(overlay.MaxVertices)*32); err != nil {
		s.release()
		return nil, fmt.Errorf("overlay vertices: %w", err)
	}

	s.nearest = bind_group_provider.NewBindGroupProvider("overlay glyph sampler")
	if err := r.InitSampler(s.nearest, 0, *common.NearestClampSampler()); err != nil {
		s.release()
		return nil, fmt.Errorf("overlay glyph sampler: %w", err)
	}
	return s, nil
}

// texture returns the group 1 bind group for a staging texture, uploading it on first use.
func (s *overlayStage) texture(kind overlay.PipelineKind, staging *common.TextureStagingData, sampler bind_group_provider.BindGroupProvider) (*wgpu.BindGroup, error) {
	key := overlayTextureKey{kind: kind, staging: staging}
	if p, ok := s.textures[key]; ok {
		return p.BindGroup(), nil
	}
	pl := s.pipelines[kind]
	p := bind_group_provider.NewBindGroupProvider("overlay "+kind.String()+" texture",
		bind_group_provider.WithBindGroupLayout(pl.BindGroupLayout(1)),
		bind_group_provider.WithSampler(1, sampler.Sampler(0)),
	)
	if err := s.r.InitTextureView(p, 0, *staging); err != nil {
		return nil, err
	}
	if err := s.r.InitBindGroup(p, pl.Shader().BindGroupLayoutDescriptor(1)); err != nil {
		s.r.Release(p)
		return nil, err
	}
	s.textures[key] = p
	return p.BindGroup(), nil
}

// record draws list into target. Runs whose sprite cannot be resolved are skipped and reported.
//
// Returns the number of runs drawn.
func (s *overlayStage) record(enc renderer.Encoder, target renderer.RenderTarget, list *overlay.DrawList, width, height uint32) (int, error) {
	if dropped := list.Dropped(); dropped > 0 && s.lastDropped == 0 {
		common.Logger().Warn("overlay vertex budget exceeded, commands dropped", "dropped", dropped, "max_vertices", overlay.MaxVertices)
	}
	s.lastDropped = list.Dropped()
	if list.Empty() {
		return 0, nil
	}

	runs := list.Runs()
	groups := make([]*wgpu.BindGroup, len(runs))
	skip := make([]bool, len(runs))
	var errs []error
	for i, run := range runs {
		switch run.Pipeline {
		case overlay.PipelineText:
			bg, err := s.texture(run.Pipeline, list.Font().Atlas(), s.nearest)
			if err != nil {
				errs = append(errs, fmt.Errorf("overlay glyph atlas: %w", err))
				skip[i] = true
				continue
			}
			groups[i] = bg
		case overlay.PipelineSprite:
			staging, err := list.Sprites().Get(run.Sprite)
			if err == nil {
				groups[i], err = s.texture(run.Pipeline, staging, s.linear)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("overlay sprite %d: %w", run.Sprite, err))
				skip[i] = true
			}
		}
	}

	u := overlay.GPUOverlayUniforms{Resolution: [2]float32{float32(width), float32(height)}}
	vertexData := common.SliceToBytes(list.Vertices())
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: s.uniforms, Binding: 0, Data: u.Marshal()},
		{Provider: s.vertices, Vertex: true, Data: vertexData},
	})

	pass := enc.BeginRenderPass(renderer.PassDescriptor{Label: "overlay", Target: target})
	pass.SetVertexBuffer(s.vertices.VertexBuffer(), 0, uint64(len(vertexData)))
	drawn := 0
	for i, run := range runs {
		if skip[i] {
			continue
		}
		pass.SetPipeline(s.pipelines[run.Pipeline])
		pass.SetBindGroup(0, s.groups[run.Pipeline].BindGroup())
		if groups[i] != nil {
			pass.SetBindGroup(1, groups[i])
		}
		pass.Draw(run.Count, 1, run.First)
		drawn++
	}
	pass.End()
	return drawn, errors.Join(errs...)
}

func (s *overlayStage) release() {
	for k, p := range s.textures {
		s.r.Release(p)
		delete(s.textures, k)
	}
	for i, g := range s.groups {
		if g != nil && g != s.uniforms {
			s.r.Release(g)
		}
		s.groups[i] = nil
	}
	for _, p := range []bind_group_provider.BindGroupProvider{s.uniforms, s.vertices, s.nearest} {
		if p != nil {
			s.r.Release(p)
		}
	}
	s.uniforms, s.vertices, s.nearest = nil, nil, nil
	for i, p := range s.pipelines {
		if p != nil {
			s.r.ReleasePipeline(p)
			s.pipelines[i] = nil
		}
	}
}
