package light

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// GPULightUniformSource is the canonical WGSL definition of the LightUniform struct.
//
//go:embed assets/light_uniform.wgsl
var GPULightUniformSource string

// GPULightUniform is bound at @group(0) @binding(1) of the mesh pass. Size: 32 bytes.
type GPULightUniform struct {
	Direction common.Vec3 // offset  0
	Intensity float32     // offset 12
	Color     common.Vec3 // offset 16
	Ambient   float32     // offset 28
}

// Size returns the size of the GPULightUniform struct in bytes.
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform little-endian for GPU upload.
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloats(buf, 0, g.Direction[:]...)
	common.PutFloats(buf, 12, g.Intensity)
	common.PutFloats(buf, 16, g.Color[:]...)
	common.PutFloats(buf, 28, g.Ambient)
	return buf
}
