package render_graph

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/frame"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// blitStage copies the final ping-pong target onto the surface, blending it toward the frame's
// fade color on the way.
type blitStage struct {
	r        renderer.Renderer
	pipeline pipeline.Pipeline
	sampler  bind_group_provider.BindGroupProvider
	fade     bind_group_provider.BindGroupProvider
	bound    map[*wgpu.TextureView]bind_group_provider.BindGroupProvider
}

func newBlitStage(r renderer.Renderer, sampler bind_group_provider.BindGroupProvider) (*blitStage, error) {
	p, err := compileStage(r, "blit", BlitShaderSource)
	if err != nil {
		return nil, err
	}
	fade := bind_group_provider.NewBindGroupProvider("blit fade",
		bind_group_provider.WithBindGroupLayout(p.BindGroupLayout(1)))
	if err := r.InitBindGroup(fade, p.Shader().BindGroupLayoutDescriptor(1)); err != nil {
		r.ReleasePipeline(p)
		return nil, fmt.Errorf("blit fade: %w", err)
	}
	return &blitStage{
		r:        r,
		pipeline: p,
		sampler:  sampler,
		fade:     fade,
		bound:    make(map[*wgpu.TextureView]bind_group_provider.BindGroupProvider),
	}, nil
}

func (b *blitStage) record(enc renderer.Encoder, source renderer.RenderTarget, fade frame.Fade) error {
	view := source.View()
	p, ok := b.bound[view]
	if !ok {
		p = bind_group_provider.NewBindGroupProvider("blit "+source.Label(),
			bind_group_provider.WithBindGroupLayout(b.pipeline.BindGroupLayout(0)),
			bind_group_provider.WithTextureView(0, view),
			bind_group_provider.WithSampler(1, b.sampler.Sampler(0)),
		)
		if err := b.r.InitBindGroup(p, b.pipeline.Shader().BindGroupLayoutDescriptor(0)); err != nil {
			return fmt.Errorf("blit bind group: %w", err)
		}
		b.bound[view] = p
	}

	u := fade.Uniform()
	b.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: b.fade, Binding: 0, Data: u.Marshal()},
	})

	black := common.RGBA(0, 0, 0, 1)
	pass := enc.BeginRenderPass(renderer.PassDescriptor{Label: "blit", Clear: &black})
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, p.BindGroup())
	pass.SetBindGroup(1, b.fade.BindGroup())
	pass.Draw(3, 1, 0)
	pass.End()
	return nil
}

// invalidate drops bind groups for targets that were recreated.
func (b *blitStage) invalidate() {
	for v, p := range b.bound {
		b.r.Release(p)
		delete(b.bound, v)
	}
}

func (b *blitStage) release() {
	b.invalidate()
	b.r.Release(b.fade)
	b.r.ReleasePipeline(b.pipeline)
}
