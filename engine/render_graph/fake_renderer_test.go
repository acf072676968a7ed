package render_graph

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"
)

const screenEffect = `
struct ScreenUniforms {
    resolution: vec2<f32>,
    time: f32,
}

@group(0) @binding(0) var<uniform> screen: ScreenUniforms;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(i) / 2) * 4.0 - 1.0;
    let y = f32(i32(i) % 2) * 4.0 - 1.0;
    return vec4<f32>(x, y, 0.0, 1.0);
}

@fragment
fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    let uv = pos.xy / screen.resolution;
    return vec4<f32>(uv, 0.5 + 0.5 * sin(screen.time), 1.0);
}
`

const screenEffectV2 = `
struct ScreenUniforms {
    resolution: vec2<f32>,
    time: f32,
}

@group(0) @binding(0) var<uniform> screen: ScreenUniforms;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(i) / 2) * 4.0 - 1.0;
    let y = f32(i32(i) % 2) * 4.0 - 1.0;
    return vec4<f32>(x, y, 0.0, 1.0);
}

@fragment
fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    let uv = pos.xy / screen.resolution;
    return vec4<f32>(1.0 - uv, 0.25, 1.0);
}
`

const brokenEffect = `
@group(0) @binding(0) var<uniform> screen: ScreenUniforms;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    let c = ;
    return c;
}
`

const invertPostProcess = `
//@oxy:include screen
//@oxy:group 0 0 uniform screen screen
//@oxy:group 0 1 handle input_texture texture_2d<f32>
//@oxy:group 0 2 handle input_sampler sampler

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> VertexOutput {
    var out: VertexOutput;
    let uv = vec2<f32>(f32((i << 1u) & 2u), f32(i & 2u));
    out.position = vec4<f32>(uv * 2.0 - 1.0, 0.0, 1.0);
    out.uv = vec2<f32>(uv.x, 1.0 - uv.y);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let c = textureSample(input_texture, input_sampler, in.uv);
    return vec4<f32>(1.0 - c.rgb, c.a);
}
`

const skyEffect = `
//@oxy:include world
//@oxy:group 0 0 uniform world world

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(i) / 2) * 4.0 - 1.0;
    let y = f32(i32(i) % 2) * 4.0 - 1.0;
    return vec4<f32>(x, y, 0.0, 1.0);
}

@fragment
fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    let uv = pos.xy / world.resolution;
    let up = max(world.camera_forward.y, 0.0);
    return vec4<f32>(uv.x * 0.2, uv.y * 0.4, 0.6 + up * 0.4, 1.0);
}
`

type fakeTarget struct {
	label    string
	width    uint32
	height   uint32
	format   wgpu.TextureFormat
	view     *wgpu.TextureView
	released bool
}

func (t *fakeTarget) Label() string              { return t.label }
func (t *fakeTarget) Width() uint32              { return t.width }
func (t *fakeTarget) Height() uint32             { return t.height }
func (t *fakeTarget) Format() wgpu.TextureFormat { return t.format }
func (t *fakeTarget) View() *wgpu.TextureView    { return t.view }
func (t *fakeTarget) Release()                   { t.released = true }

type fakeDraw struct {
	pipeline   pipeline.Pipeline
	groups     map[uint32]*wgpu.BindGroup
	vertices   uint32
	firstVert  uint32
	indices    uint32
	vertexBuf  bool
	indexedBuf bool
}

type fakePass struct {
	desc  renderer.PassDescriptor
	draws []fakeDraw
	ended bool

	pipeline  pipeline.Pipeline
	groups    map[uint32]*wgpu.BindGroup
	vertexBuf bool
	indexBuf  bool
}

func (p *fakePass) SetPipeline(pl pipeline.Pipeline) { p.pipeline = pl }

func (p *fakePass) SetBindGroup(group uint32, bg *wgpu.BindGroup) {
	if p.groups == nil {
		p.groups = make(map[uint32]*wgpu.BindGroup)
	}
	p.groups[group] = bg
}

func (p *fakePass) SetVertexBuffer(buf *wgpu.Buffer, offset, size uint64) { p.vertexBuf = buf != nil }
func (p *fakePass) SetIndexBuffer(buf *wgpu.Buffer)                       { p.indexBuf = buf != nil }

func (p *fakePass) snapshot() fakeDraw {
	groups := make(map[uint32]*wgpu.BindGroup, len(p.groups))
	for k, v := range p.groups {
		groups[k] = v
	}
	return fakeDraw{pipeline: p.pipeline, groups: groups, vertexBuf: p.vertexBuf, indexedBuf: p.indexBuf}
}

func (p *fakePass) Draw(vertexCount, instanceCount, firstVertex uint32) {
	d := p.snapshot()
	d.vertices, d.firstVert = vertexCount, firstVertex
	p.draws = append(p.draws, d)
}

func (p *fakePass) DrawIndexed(indexCount, instanceCount uint32) {
	d := p.snapshot()
	d.indices = indexCount
	p.draws = append(p.draws, d)
}

func (p *fakePass) End() { p.ended = true }

type fakeEncoder struct {
	passes []*fakePass
}

func (e *fakeEncoder) BeginRenderPass(desc renderer.PassDescriptor) renderer.RenderPass {
	p := &fakePass{desc: desc}
	e.passes = append(e.passes, p)
	return p
}

// pass returns the first recorded pass with the given label.
func (e *fakeEncoder) pass(t *testing.T, label string) *fakePass {
	t.Helper()
	for _, p := range e.passes {
		if p.desc.Label == label {
			return p
		}
	}
	require.Failf(t, "missing pass", "no pass labelled %q", label)
	return nil
}

func (e *fakeEncoder) labels() []string {
	out := make([]string, len(e.passes))
	for i, p := range e.passes {
		out[i] = p.desc.Label
	}
	return out
}

// fakeRenderer stands in for the GPU. Every object it hands out is a zero-valued wgpu handle that
// is never passed to the native library.
type fakeRenderer struct {
	width, height uint32

	registered []pipeline.Pipeline
	released   []pipeline.Pipeline
	targets    []*fakeTarget
	providers  map[*wgpu.BindGroup]bind_group_provider.BindGroupProvider
	writes     []bind_group_provider.BufferWrite
	frees      int

	encoders []*fakeEncoder
	open     *fakeEncoder
	ended    int
	presents int

	failRegister bool
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer(width, height uint32) *fakeRenderer {
	return &fakeRenderer{
		width:     width,
		height:    height,
		providers: make(map[*wgpu.BindGroup]bind_group_provider.BindGroupProvider),
	}
}

func (f *fakeRenderer) Size() (uint32, uint32) { return f.width, f.height }

func (f *fakeRenderer) SurfaceFormat() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8UnormSrgb }

func (f *fakeRenderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	f.width, f.height = uint32(width), uint32(height)
}

func (f *fakeRenderer) SetPresentMode(mode renderer.PresentMode) {}

func (f *fakeRenderer) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if f.failRegister {
		return errors.New("device lost")
	}
	groups := 0
	for g := range p.Shader().BindGroupLayoutDescriptors() {
		groups = max(groups, g+1)
	}
	layouts := make([]*wgpu.BindGroupLayout, groups)
	for i := range layouts {
		layouts[i] = &wgpu.BindGroupLayout{}
	}
	p.SetRenderPipeline(&wgpu.RenderPipeline{}, layouts)
	f.registered = append(f.registered, p)
	return nil
}

func (f *fakeRenderer) ReleasePipeline(p pipeline.Pipeline) {
	if p != nil {
		f.released = append(f.released, p)
	}
}

func (f *fakeRenderer) wasReleased(p pipeline.Pipeline) bool {
	for _, r := range f.released {
		if r == p {
			return true
		}
	}
	return false
}

func (f *fakeRenderer) newTarget(label string, width, height uint32, format wgpu.TextureFormat) *fakeTarget {
	t := &fakeTarget{label: label, width: width, height: height, format: format, view: &wgpu.TextureView{}}
	f.targets = append(f.targets, t)
	return t
}

func (f *fakeRenderer) CreateRenderTarget(label string, width, height uint32) (renderer.RenderTarget, error) {
	return f.newTarget(label, width, height, f.SurfaceFormat()), nil
}

func (f *fakeRenderer) CreateDepthTarget(label string, width, height uint32) (renderer.RenderTarget, error) {
	return f.newTarget(label, width, height, renderer.DepthFormat), nil
}

func (f *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	provider.SetVertexBuffer(&wgpu.Buffer{}, uint64(len(vertexData)))
	provider.SetIndexBuffer(&wgpu.Buffer{})
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeRenderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, capacity uint64) error {
	provider.SetVertexBuffer(&wgpu.Buffer{}, capacity)
	return nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	for _, e := range descriptor.Entries {
		switch e.Buffer.Type {
		case wgpu.BufferBindingTypeUniform, wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
			if provider.Buffer(int(e.Binding)) == nil {
				provider.SetBuffer(int(e.Binding), &wgpu.Buffer{})
			}
		}
	}
	if provider.BindGroupLayout() == nil {
		provider.SetBindGroupLayout(&wgpu.BindGroupLayout{})
	}
	bg := &wgpu.BindGroup{}
	provider.SetBindGroup(bg)
	f.providers[bg] = provider
	return nil
}

func (f *fakeRenderer) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	provider.SetTextureView(binding, &wgpu.TextureView{})
	return nil
}

func (f *fakeRenderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	provider.SetSampler(binding, &wgpu.Sampler{})
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeRenderer) Release(provider bind_group_provider.BindGroupProvider) {
	f.frees++
}

func (f *fakeRenderer) BeginFrame() (renderer.Encoder, error) {
	if f.open != nil {
		return nil, errors.New("previous frame was not presented")
	}
	f.open = &fakeEncoder{}
	f.encoders = append(f.encoders, f.open)
	return f.open, nil
}

func (f *fakeRenderer) EndFrame(enc renderer.Encoder) error {
	f.ended++
	return nil
}

func (f *fakeRenderer) Present() {
	f.open = nil
	f.presents++
}

// lastFrame returns the encoder of the most recent frame.
func (f *fakeRenderer) lastFrame(t *testing.T) *fakeEncoder {
	t.Helper()
	require.NotEmpty(t, f.encoders)
	return f.encoders[len(f.encoders)-1]
}

// viewOf returns the texture view bound at binding in the bind group bg was created for.
func (f *fakeRenderer) viewOf(t *testing.T, bg *wgpu.BindGroup, binding int) *wgpu.TextureView {
	t.Helper()
	p, ok := f.providers[bg]
	require.True(t, ok, "bind group was not created by the renderer")
	return p.TextureView(binding)
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// writeAt writes contents and pins the modification time so reloads do not depend on the
// filesystem's timestamp resolution.
func writeAt(t *testing.T, path, contents string, tick int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	ts := epoch.Add(time.Duration(tick) * time.Second)
	require.NoError(t, os.Chtimes(path, ts, ts))
}
