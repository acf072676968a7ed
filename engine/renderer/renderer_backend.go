package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration string to a PresentMode. Unknown values select VSync.
//
// Parameters:
//   - s: "vsync", "fifo", "uncapped" or "immediate"
//
// Returns:
//   - PresentMode: the mode
func ParsePresentMode(s string) PresentMode {
	switch s {
	case "uncapped", "immediate":
		return PresentModeUncapped
	default:
		return PresentModeVSync
	}
}

// DepthFormat is the format of every depth target the renderer creates.
const DepthFormat = depthFormat

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
