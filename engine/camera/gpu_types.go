package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the mesh pass CameraUniform struct.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned camera uniform bound at @group(0) @binding(0) of the mesh pass.
// Size: 208 bytes.
type GPUCameraUniform struct {
	ViewProj common.Mat4 // offset   0
	View     common.Mat4 // offset  64
	Proj     common.Mat4 // offset 128
	Position common.Vec3 // offset 192
	Time     float32     // offset 204
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (208)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform little-endian for GPU upload.
//
// Returns:
//   - []byte: the serialized bytes
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloats(buf, 0, g.ViewProj[:]...)
	common.PutFloats(buf, 64, g.View[:]...)
	common.PutFloats(buf, 128, g.Proj[:]...)
	common.PutFloats(buf, 192, g.Position[:]...)
	common.PutFloats(buf, 204, g.Time)
	return buf
}
