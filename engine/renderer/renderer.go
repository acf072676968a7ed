package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	width, height uint32

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
}

// SurfaceSource is the window a Renderer presents to.
type SurfaceSource interface {
	// SurfaceDescriptor returns the platform-specific descriptor for WebGPU surface creation.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	// Width returns the framebuffer width in pixels.
	Width() int
	// Height returns the framebuffer height in pixels.
	Height() int
}

// Renderer is the GPU context every pass renders through. It creates render targets, pipelines and
// bind group resources, records frames through an Encoder and presents them to the surface.
//
// The render graph depends only on this interface, so it can run against any implementation.
type Renderer interface {
	// Size returns the current surface size in pixels.
	//
	// Returns:
	//   - uint32: the width
	//   - uint32: the height
	Size() (uint32, uint32)

	// SurfaceFormat returns the color format of the surface. Offscreen targets use the same format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// Resize reconfigures the surface. Zero sizes (a minimized window) and unchanged sizes are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are delivered. It takes effect on the next surface configuration.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the GPU render pipeline and bind group layouts for p and stores
	// them on it. p is not modified when creation fails.
	//
	// Parameters:
	//   - p: the unregistered pipeline
	//
	// Returns:
	//   - error: an error if the device rejects the shader or pipeline
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// ReleasePipeline frees the GPU objects of a pipeline that is no longer referenced.
	//
	// Parameters:
	//   - p: the pipeline to release
	ReleasePipeline(p pipeline.Pipeline)

	// CreateRenderTarget creates a sampled color target in the surface format.
	//
	// Parameters:
	//   - label: the debug label
	//   - width, height: the size in pixels
	//
	// Returns:
	//   - RenderTarget: the target
	//   - error: an error if texture creation fails
	CreateRenderTarget(label string, width, height uint32) (RenderTarget, error)

	// CreateDepthTarget creates a depth target in DepthFormat.
	//
	// Parameters:
	//   - label: the debug label
	//   - width, height: the size in pixels
	//
	// Returns:
	//   - RenderTarget: the target
	//   - error: an error if texture creation fails
	CreateDepthTarget(label string, width, height uint32) (RenderTarget, error)

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitVertexBuffer creates an empty, writable vertex buffer of the given capacity for data that
	// changes every frame.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffer on
	//   - capacity: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, capacity uint64) error

	// InitBindGroup creates any missing buffers and the bind group described by descriptor. Handle
	// bindings must already be present on the provider, owned or borrowed. The provider's layout is
	// used when set; otherwise one is created from descriptor.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitTextureView creates a GPU texture from staging data and stores the resulting texture view
	// on the given BindGroupProvider at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - binding: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler and stores it on the provider at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - binding: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues buffer writes. They are applied before the next submitted command buffer.
	//
	// Parameters:
	//   - writes: the writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// Release frees the GPU resources a provider owns.
	//
	// Parameters:
	//   - provider: the provider to release
	Release(provider bind_group_provider.BindGroupProvider)

	// BeginFrame acquires the next surface texture and starts recording.
	//
	// Returns:
	//   - Encoder: the frame's encoder
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() (Encoder, error)

	// EndFrame finishes recording and submits the frame's commands.
	//
	// Parameters:
	//   - enc: the encoder returned by BeginFrame
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame(enc Encoder) error

	// Present shows the submitted frame and releases the surface texture.
	Present()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting to the given window surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer with a configured surface
//   - error: an error wrapping common.ErrSetup if no adapter or device is available
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		presentMode: PresentModeVSync,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSetup, err)
	}

	r.backend.SetPresentMode(r.presentMode)
	r.width, r.height = uint32(surface.Width()), uint32(surface.Height())
	r.backend.ConfigureSurface(surface.Width(), surface.Height())
	return r, nil
}

func (r *renderer) Size() (uint32, uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	if uint32(width) == r.width && uint32(height) == r.height {
		r.mu.Unlock()
		return
	}
	r.width, r.height = uint32(width), uint32(height)
	r.mu.Unlock()

	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) RegisterRenderPipeline(p pipeline.Pipeline) error {
	return r.backend.RegisterRenderPipeline(p)
}

func (r *renderer) ReleasePipeline(p pipeline.Pipeline) {
	r.backend.ReleasePipeline(p)
}

func (r *renderer) CreateRenderTarget(label string, width, height uint32) (RenderTarget, error) {
	return r.backend.CreateRenderTarget(label, width, height, r.backend.SurfaceFormat())
}

func (r *renderer) CreateDepthTarget(label string, width, height uint32) (RenderTarget, error) {
	return r.backend.CreateRenderTarget(label, width, height, depthFormat)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, capacity uint64) error {
	return r.backend.InitVertexBuffer(provider, capacity)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, binding, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, binding, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) Release(provider bind_group_provider.BindGroupProvider) {
	provider.Release()
}

func (r *renderer) BeginFrame() (Encoder, error) {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame(enc Encoder) error {
	return r.backend.EndFrame(enc)
}

func (r *renderer) Present() {
	r.backend.Present()
}
