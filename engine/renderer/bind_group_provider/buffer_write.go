package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite describes one queued GPU buffer write. It targets the buffer at Binding on Provider,
// or the provider's vertex buffer when Vertex is set.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Vertex   bool
	Offset   uint64
	Data     []byte
}

// Target resolves the destination buffer, nil when the provider has not been initialized.
func (w BufferWrite) Target() *wgpu.Buffer {
	if w.Vertex {
		return w.Provider.VertexBuffer()
	}
	return w.Provider.Buffer(w.Binding)
}
