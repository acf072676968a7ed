package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestDefaultsSuitFullScreenPasses(t *testing.T) {
	p := NewPipeline("effect", nil)

	assert.Equal(t, "effect", p.PipelineKey())
	assert.False(t, p.Registered())
	assert.False(t, p.DepthTestEnabled())
	assert.Equal(t, wgpu.TextureFormatUndefined, p.DepthFormat())
	assert.Equal(t, wgpu.TextureFormatUndefined, p.ColorFormat())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Nil(t, p.BindGroupLayout(0))
}

func TestOptions(t *testing.T) {
	p := NewPipeline("mesh", nil,
		WithDepthFormat(wgpu.TextureFormatDepth32Float),
		WithCullMode(wgpu.CullModeBack),
		WithBlendEnabled(true),
		WithColorFormat(wgpu.TextureFormatRGBA8Unorm),
	)
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.TextureFormatDepth32Float, p.DepthFormat())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, p.ColorFormat())
}

func TestSetRenderPipeline(t *testing.T) {
	p := NewPipeline("overlay", nil)
	layouts := []*wgpu.BindGroupLayout{{}, {}}
	p.SetRenderPipeline(&wgpu.RenderPipeline{}, layouts)

	assert.True(t, p.Registered())
	assert.Same(t, layouts[1], p.BindGroupLayout(1))
	assert.Nil(t, p.BindGroupLayout(2))
	assert.Nil(t, p.BindGroupLayout(-1))
}
