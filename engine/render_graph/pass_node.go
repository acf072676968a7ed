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

// bindKey identifies one bind group a pass can draw with: the artifact whose layout it was built
// against and the input view it samples.
type bindKey struct {
	artifact pipeline.Pipeline
	input    *wgpu.TextureView
}

type passNode struct {
	label  string
	kind   PassKind
	source ArtifactSource
	clear  common.Color

	r        renderer.Renderer
	uniforms bind_group_provider.BindGroupProvider
	sampler  bind_group_provider.BindGroupProvider
	// ownsSampler is false when the sampler provider is shared with other passes.
	ownsSampler bool

	bound    map[bindKey]bind_group_provider.BindGroupProvider
	boundFor pipeline.Pipeline
	drawn    pipeline.Pipeline
}

// PassNode is one full-screen pass of the render graph.
type PassNode interface {
	// Label returns the pass label.
	Label() string

	// Kind returns the immutable pass kind.
	Kind() PassKind

	// Artifact returns the pipeline the next draw will use.
	//
	// Returns:
	//   - pipeline.Pipeline: the current artifact of the pass source
	Artifact() pipeline.Pipeline

	// LastDrawn returns the pipeline used by the most recent successful BindAndDraw, or nil.
	LastDrawn() pipeline.Pipeline

	// UpdateUniforms queues a write of this frame's uniforms: ScreenUniforms for screen kinds,
	// WorldUniforms (with the camera snapshot) for world kinds.
	//
	// Parameters:
	//   - ctx: the frame context
	UpdateUniforms(ctx *frame.Context)

	// BindAndDraw records one full-screen triangle into output using the current artifact.
	// Post-process kinds sample input; other kinds ignore it.
	//
	// Parameters:
	//   - enc: the frame encoder
	//   - input: the previous target, required for post-process kinds
	//   - output: the target to draw into
	//
	// Returns:
	//   - error: an error wrapping common.ErrProgramming when a required target is missing, or the
	//     bind group creation error
	BindAndDraw(enc renderer.Encoder, input, output renderer.RenderTarget) error

	// InvalidateInputs drops bind groups that reference input views, after the targets were recreated.
	InvalidateInputs()

	// Release frees the pass's uniform buffer and bind groups. The artifact is not released.
	Release()
}

var _ PassNode = &passNode{}

// NewPassNode creates a pass and allocates its uniform buffer.
//
// Parameters:
//   - r: the renderer
//   - label: a debug label
//   - kind: the pass kind
//   - source: where the pass reads its artifact from
//   - options: optional builder options such as WithPassClearColor
//
// Returns:
//   - PassNode: the pass
//   - error: an error if the uniform buffer or sampler could not be created
func NewPassNode(r renderer.Renderer, label string, kind PassKind, source ArtifactSource, options ...PassNodeBuilderOption) (PassNode, error) {
	if source == nil || source.Artifact() == nil {
		return nil, fmt.Errorf("%w: pass %q has no compiled artifact", common.ErrProgramming, label)
	}
	n := &passNode{
		label:  label,
		kind:   kind,
		source: source,
		r:      r,
		bound:  make(map[bindKey]bind_group_provider.BindGroupProvider),
	}
	if kind.IsPostProcess() {
		n.clear = common.RGBA(0, 0, 0, 1)
	}
	for _, opt := range options {
		opt(n)
	}

	n.uniforms = bind_group_provider.NewBindGroupProvider(label + " uniforms")
	if err := r.InitBindGroup(n.uniforms, uniformLayout(label, kind.UniformSize())); err != nil {
		return nil, fmt.Errorf("pass %q uniforms: %w", label, err)
	}

	if kind.IsPostProcess() && n.sampler == nil {
		n.sampler = bind_group_provider.NewBindGroupProvider(label + " sampler")
		if err := r.InitSampler(n.sampler, 0, *common.LinearClampSampler()); err != nil {
			r.Release(n.uniforms)
			return nil, fmt.Errorf("pass %q sampler: %w", label, err)
		}
		n.ownsSampler = true
	}
	return n, nil
}

// uniformLayout describes a bind group holding one uniform buffer of the given size.
func uniformLayout(label string, size uint64) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

func (n *passNode) Label() string {
	return n.label
}

func (n *passNode) Kind() PassKind {
	return n.kind
}

func (n *passNode) Artifact() pipeline.Pipeline {
	return n.source.Artifact()
}

func (n *passNode) LastDrawn() pipeline.Pipeline {
	return n.drawn
}

func (n *passNode) UpdateUniforms(ctx *frame.Context) {
	var data []byte
	if n.kind.IsWorld() {
		u := ctx.WorldUniforms()
		data = u.Marshal()
	} else {
		u := ctx.ScreenUniforms()
		data = u.Marshal()
	}
	n.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: n.uniforms, Binding: 0, Data: data},
	})
}

func (n *passNode) BindAndDraw(enc renderer.Encoder, input, output renderer.RenderTarget) error {
	if output == nil {
		return fmt.Errorf("%w: %s pass %q drawn without an output target", common.ErrProgramming, n.kind, n.label)
	}
	if n.kind.IsPostProcess() && input == nil {
		return fmt.Errorf("%w: %s pass %q drawn without an input texture", common.ErrProgramming, n.kind, n.label)
	}
	if !n.kind.IsPostProcess() {
		input = nil
	}

	// Read the artifact once so the pipeline and its bind group come from the same compile.
	artifact := n.source.Artifact()
	if artifact == nil || !artifact.Registered() {
		return fmt.Errorf("%w: pass %q has no registered artifact", common.ErrProgramming, n.label)
	}

	bg, err := n.bindGroup(artifact, input)
	if err != nil {
		return err
	}

	clear := n.clear
	pass := enc.BeginRenderPass(renderer.PassDescriptor{
		Label:  n.label,
		Target: output,
		Clear:  &clear,
	})
	pass.SetPipeline(artifact)
	pass.SetBindGroup(0, bg)
	pass.Draw(3, 1, 0)
	pass.End()

	n.drawn = artifact
	return nil
}

// bindGroup returns the bind group for artifact and input, building it on first use. A new
// artifact invalidates every bind group built against the previous one.
func (n *passNode) bindGroup(artifact pipeline.Pipeline, input renderer.RenderTarget) (*wgpu.BindGroup, error) {
	if n.boundFor != artifact {
		n.releaseBound()
		n.boundFor = artifact
	}

	var view *wgpu.TextureView
	if input != nil {
		view = input.View()
	}
	key := bindKey{artifact: artifact, input: view}
	if p, ok := n.bound[key]; ok {
		return p.BindGroup(), nil
	}

	opts := []bind_group_provider.BindGroupProviderOption{
		bind_group_provider.WithBindGroupLayout(artifact.BindGroupLayout(0)),
		bind_group_provider.WithBuffer(0, n.uniforms.Buffer(0)),
	}
	if n.kind.IsPostProcess() {
		opts = append(opts,
			bind_group_provider.WithTextureView(1, view),
			bind_group_provider.WithSampler(2, n.sampler.Sampler(0)),
		)
	}
	p := bind_group_provider.NewBindGroupProvider(n.label+" bind group", opts...)
	if err := n.r.InitBindGroup(p, artifact.Shader().BindGroupLayoutDescriptor(0)); err != nil {
		return nil, fmt.Errorf("pass %q bind group: %w", n.label, err)
	}
	n.bound[key] = p
	return p.BindGroup(), nil
}

func (n *passNode) releaseBound() {
	for k, p := range n.bound {
		n.r.Release(p)
		delete(n.bound, k)
	}
}

func (n *passNode) InvalidateInputs() {
	if !n.kind.IsPostProcess() {
		return
	}
	n.releaseBound()
}

func (n *passNode) Release() {
	n.releaseBound()
	if n.uniforms != nil {
		n.r.Release(n.uniforms)
		n.uniforms = nil
	}
	if n.sampler != nil && n.ownsSampler {
		n.r.Release(n.sampler)
	}
	n.sampler = nil
}
