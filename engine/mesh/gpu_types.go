package mesh

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// GPUVertexSource is the canonical WGSL definition of the mesh VertexInput struct.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUModelUniformSource is the canonical WGSL definition of the per-draw ModelUniform struct.
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string

// Vertex3D is one interleaved mesh vertex. Size: 32 bytes, tightly packed.
type Vertex3D struct {
	Position common.Vec3 // offset  0
	Normal   common.Vec3 // offset 12
	UV       [2]float32  // offset 24
}

// GPUModelUniform is the per-draw uniform bound at @group(1) @binding(0) of the mesh pass.
// Size: 144 bytes.
type GPUModelUniform struct {
	Model  common.Mat4  // offset   0
	Normal common.Mat4  // offset  64: inverse-transpose of Model
	Color  common.Color // offset 128
}

// NewModelUniform builds the uniform for a transform and tint, computing the normal matrix on the CPU.
//
// Parameters:
//   - t: the draw transform
//   - tint: the RGBA multiplier
//
// Returns:
//   - GPUModelUniform: the packed uniform
func NewModelUniform(t Transform, tint common.Color) GPUModelUniform {
	model := t.Matrix()
	return GPUModelUniform{
		Model:  model,
		Normal: common.NormalMatrix(model),
		Color:  tint,
	}
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform little-endian for GPU upload.
//
// Returns:
//   - []byte: the serialized bytes
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloats(buf, 0, g.Model[:]...)
	common.PutFloats(buf, 64, g.Normal[:]...)
	common.PutFloats(buf, 128, g.Color[:]...)
	return buf
}
