package overlay

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// GPUVertexSource is the canonical WGSL definition of the OverlayVertex struct.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUOverlayUniformsSource is the canonical WGSL definition of the OverlayUniforms struct.
//
//go:embed assets/overlay_uniforms.wgsl
var GPUOverlayUniformsSource string

// Pipeline shader sources, expanded by the shader pre-processor.
var (
	//go:embed assets/shape.wgsl
	ShapeShaderSource string

	//go:embed assets/text.wgsl
	TextShaderSource string

	//go:embed assets/sprite.wgsl
	SpriteShaderSource string
)

// MaxVertices bounds the vertices a DrawList accepts per frame. Commands that would exceed it are dropped.
const MaxVertices = 16384

// Vertex2D is one overlay vertex in pixel coordinates with the origin at the top-left.
// Size: 32 bytes.
type Vertex2D struct {
	Position [2]float32   // offset  0
	UV       [2]float32   // offset  8
	Color    common.Color // offset 16
}

// GPUOverlayUniforms is bound at @group(0) @binding(0) of every overlay pipeline. Size: 16 bytes.
type GPUOverlayUniforms struct {
	Resolution [2]float32
	_pad       [2]float32
}

// Size returns the size of the GPUOverlayUniforms struct in bytes.
func (g *GPUOverlayUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform little-endian for GPU upload.
func (g *GPUOverlayUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloats(buf, 0, g.Resolution[0], g.Resolution[1])
	return buf
}
