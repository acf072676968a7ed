package renderer

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PassDescriptor describes the attachments of one render pass.
type PassDescriptor struct {
	// Label names the pass for debugging.
	Label string
	// Target is the color attachment. nil renders to the frame's surface texture.
	Target RenderTarget
	// Clear clears the color attachment first; nil loads the existing contents.
	Clear *common.Color
	// Depth is the optional depth attachment.
	Depth RenderTarget
	// ClearDepth clears Depth to 1.0 first instead of loading it.
	ClearDepth bool
}

// Encoder records the render passes of one frame.
type Encoder interface {
	// BeginRenderPass starts a pass. The pass must be ended before the next one begins.
	//
	// Parameters:
	//   - desc: the attachments
	//
	// Returns:
	//   - RenderPass: the pass recorder
	BeginRenderPass(desc PassDescriptor) RenderPass
}

// RenderPass records the commands of a single render pass.
type RenderPass interface {
	// SetPipeline binds a registered pipeline.
	SetPipeline(p pipeline.Pipeline)

	// SetBindGroup binds bg at the given group index.
	SetBindGroup(group uint32, bg *wgpu.BindGroup)

	// SetVertexBuffer binds size bytes of buf starting at offset to vertex slot 0.
	SetVertexBuffer(buf *wgpu.Buffer, offset, size uint64)

	// SetIndexBuffer binds a uint32 index buffer.
	SetIndexBuffer(buf *wgpu.Buffer)

	// Draw issues a non-indexed draw.
	Draw(vertexCount, instanceCount, firstVertex uint32)

	// DrawIndexed issues an indexed draw.
	DrawIndexed(indexCount, instanceCount uint32)

	// End finishes the pass.
	End()
}

type wgpuEncoder struct {
	encoder        *wgpu.CommandEncoder
	surfaceTexture *wgpu.Texture
	surfaceView    *wgpu.TextureView
}

var _ Encoder = &wgpuEncoder{}

func (e *wgpuEncoder) BeginRenderPass(desc PassDescriptor) RenderPass {
	view := e.surfaceView
	if desc.Target != nil {
		view = desc.Target.View()
	}

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if desc.Clear != nil {
		color.LoadOp = wgpu.LoadOpClear
		color.ClearValue = desc.Clear.WGPU()
	}

	rpd := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
	}
	if desc.Depth != nil {
		loadOp := wgpu.LoadOpLoad
		if desc.ClearDepth {
			loadOp = wgpu.LoadOpClear
		}
		rpd.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            desc.Depth.View(),
			DepthLoadOp:     loadOp,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}
	return &wgpuRenderPass{pass: e.encoder.BeginRenderPass(rpd)}
}

type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

var _ RenderPass = &wgpuRenderPass{}

func (p *wgpuRenderPass) SetPipeline(pl pipeline.Pipeline) {
	p.pass.SetPipeline(pl.RenderPipeline())
}

func (p *wgpuRenderPass) SetBindGroup(group uint32, bg *wgpu.BindGroup) {
	p.pass.SetBindGroup(group, bg, nil)
}

func (p *wgpuRenderPass) SetVertexBuffer(buf *wgpu.Buffer, offset, size uint64) {
	p.pass.SetVertexBuffer(0, buf, offset, size)
}

func (p *wgpuRenderPass) SetIndexBuffer(buf *wgpu.Buffer) {
	p.pass.SetIndexBuffer(buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) Draw(vertexCount, instanceCount, firstVertex uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, 0)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (p *wgpuRenderPass) End() {
	p.pass.End()
}
