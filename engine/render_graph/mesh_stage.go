package render_graph

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/frame"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// meshDraw is one validated mesh draw for the current frame.
type meshDraw struct {
	buffers bind_group_provider.BindGroupProvider
	texture bind_group_provider.BindGroupProvider
}

// meshStage renders the frame's mesh queue depth-tested into the current target.
type meshStage struct {
	r        renderer.Renderer
	lib      mesh.Library
	pipeline pipeline.Pipeline
	sampler  bind_group_provider.BindGroupProvider

	camera   bind_group_provider.BindGroupProvider
	meshes   map[mesh.Handle]bind_group_provider.BindGroupProvider
	textures map[mesh.TextureHandle]bind_group_provider.BindGroupProvider
	// slots hold one model uniform buffer per draw index; they grow with the busiest frame.
	slots []bind_group_provider.BindGroupProvider
	draws []meshDraw

	depth renderer.RenderTarget
}

func newMeshStage(r renderer.Renderer, lib mesh.Library, sampler bind_group_provider.BindGroupProvider) (*meshStage, error) {
	p, err := compileStage(r, "mesh", MeshShaderSource,
		pipeline.WithDepthFormat(renderer.DepthFormat),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithBlendEnabled(true),
	)
	if err != nil {
		return nil, err
	}

	s := &meshStage{
		r:        r,
		lib:      lib,
		pipeline: p,
		sampler:  sampler,
		meshes:   make(map[mesh.Handle]bind_group_provider.BindGroupProvider),
		textures: make(map[mesh.TextureHandle]bind_group_provider.BindGroupProvider),
	}

	s.camera = bind_group_provider.NewBindGroupProvider("mesh camera",
		bind_group_provider.WithBindGroupLayout(p.BindGroupLayout(0)))
	if err := r.InitBindGroup(s.camera, p.Shader().BindGroupLayoutDescriptor(0)); err != nil {
		r.ReleasePipeline(p)
		return nil, fmt.Errorf("mesh camera: %w", err)
	}

	if _, err := s.texture(mesh.NoTexture); err != nil {
		s.release()
		return nil, err
	}
	return s, nil
}

func (s *meshStage) resize(width, height uint32) (bool, error) {
	if width == 0 || height == 0 {
		return false, nil
	}
	if s.depth != nil && s.depth.Width() == width && s.depth.Height() == height {
		return false, nil
	}
	depth, err := s.r.CreateDepthTarget("mesh depth", width, height)
	if err != nil {
		return false, fmt.Errorf("mesh depth: %w", err)
	}
	if s.depth != nil {
		s.depth.Release()
	}
	s.depth = depth
	return true, nil
}

// meshBuffers uploads a library mesh on first use.
func (s *meshStage) meshBuffers(h mesh.Handle) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := s.meshes[h]; ok {
		return p, nil
	}
	m, err := s.lib.Mesh(h)
	if err != nil {
		return nil, err
	}
	p := bind_group_provider.NewBindGroupProvider("mesh " + m.Name())
	if err := s.r.InitMeshBuffers(p, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return nil, fmt.Errorf("mesh %s buffers: %w", m.Name(), err)
	}
	s.meshes[h] = p
	return p, nil
}

// texture uploads a library texture on first use. NoTexture maps to a 1x1 white texture.
func (s *meshStage) texture(h mesh.TextureHandle) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := s.textures[h]; ok {
		return p, nil
	}
	staging := common.WhiteTexel()
	if h != mesh.NoTexture {
		var err error
		if staging, err = s.lib.Texture(h); err != nil {
			return nil, err
		}
	}

	p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("mesh texture %d", h),
		bind_group_provider.WithBindGroupLayout(s.pipeline.BindGroupLayout(2)),
		bind_group_provider.WithSampler(1, s.sampler.Sampler(0)),
	)
	if err := s.r.InitTextureView(p, 0, *staging); err != nil {
		return nil, fmt.Errorf("mesh texture %d: %w", h, err)
	}
	if err := s.r.InitBindGroup(p, s.pipeline.Shader().BindGroupLayoutDescriptor(2)); err != nil {
		s.r.Release(p)
		return nil, fmt.Errorf("mesh texture %d: %w", h, err)
	}
	s.textures[h] = p
	return p, nil
}

func (s *meshStage) slot(i int) (bind_group_provider.BindGroupProvider, error) {
	for len(s.slots) <= i {
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("mesh model %d", len(s.slots)),
			bind_group_provider.WithBindGroupLayout(s.pipeline.BindGroupLayout(1)))
		if err := s.r.InitBindGroup(p, s.pipeline.Shader().BindGroupLayoutDescriptor(1)); err != nil {
			return nil, fmt.Errorf("mesh model uniform: %w", err)
		}
		s.slots = append(s.slots, p)
	}
	return s.slots[i], nil
}

// prepare validates the frame's draws and queues the camera, light and model uniform writes. Draws that
// reference unknown handles are skipped and reported as programming errors.
func (s *meshStage) prepare(ctx *frame.Context) error {
	s.draws = s.draws[:0]
	var errs []error

	cam := ctx.Camera
	if ctx.Height > 0 && cam.Near > 0 && cam.Far > cam.Near {
		cam.Projection = common.Perspective(cam.Fov, float32(ctx.Width)/float32(ctx.Height), cam.Near, cam.Far)
	}
	camUniform := cam.GPUUniform(ctx.Time)
	lightUniform := ctx.Light.GPUUniform()
	writes := []bind_group_provider.BufferWrite{
		{Provider: s.camera, Binding: 0, Data: camUniform.Marshal()},
		{Provider: s.camera, Binding: 1, Data: lightUniform.Marshal()},
	}

	for _, cmd := range ctx.Meshes.Commands() {
		buffers, err := s.meshBuffers(cmd.Mesh)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tex, err := s.texture(cmd.Texture)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		slot, err := s.slot(len(s.draws))
		if err != nil {
			errs = append(errs, err)
			break
		}
		model := mesh.NewModelUniform(cmd.Transform, cmd.Tint)
		writes = append(writes, bind_group_provider.BufferWrite{Provider: slot, Binding: 0, Data: model.Marshal()})
		s.draws = append(s.draws, meshDraw{buffers: buffers, texture: tex})
	}

	if len(s.draws) > 0 {
		s.r.WriteBuffers(writes)
	}
	return errors.Join(errs...)
}

// record draws the prepared meshes into color, clearing the depth target first.
func (s *meshStage) record(enc renderer.Encoder, color renderer.RenderTarget) int {
	if len(s.draws) == 0 {
		return 0
	}
	pass := enc.BeginRenderPass(renderer.PassDescriptor{
		Label:      "mesh",
		Target:     color,
		Depth:      s.depth,
		ClearDepth: true,
	})
	pass.SetPipeline(s.pipeline)
	pass.SetBindGroup(0, s.camera.BindGroup())
	for i, d := range s.draws {
		pass.SetBindGroup(1, s.slots[i].BindGroup())
		pass.SetBindGroup(2, d.texture.BindGroup())
		pass.SetVertexBuffer(d.buffers.VertexBuffer(), 0, d.buffers.VertexCapacity())
		pass.SetIndexBuffer(d.buffers.IndexBuffer())
		pass.DrawIndexed(uint32(d.buffers.IndexCount()), 1)
	}
	pass.End()
	return len(s.draws)
}

func (s *meshStage) release() {
	for _, p := range s.slots {
		s.r.Release(p)
	}
	s.slots = nil
	for h, p := range s.meshes {
		s.r.Release(p)
		delete(s.meshes, h)
	}
	for h, p := range s.textures {
		s.r.Release(p)
		delete(s.textures, h)
	}
	if s.camera != nil {
		s.r.Release(s.camera)
		s.camera = nil
	}
	if s.depth != nil {
		s.depth.Release()
		s.depth = nil
	}
	s.r.ReleasePipeline(s.pipeline)
}
