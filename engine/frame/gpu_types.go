package frame

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// GPUScreenUniformsSource is the canonical WGSL definition of the ScreenUniforms struct.
//
//go:embed assets/screen_uniforms.wgsl
var GPUScreenUniformsSource string

// GPUWorldUniformsSource is the canonical WGSL definition of the WorldUniforms struct.
//
//go:embed assets/world_uniforms.wgsl
var GPUWorldUniformsSource string

// ScreenUniforms is bound at @group(0) @binding(0) of screen effect and screen post-process passes.
// WGSL rounds the struct up to its 8 byte alignment, so the trailing pad is implicit on the GPU side.
// Size: 16 bytes.
type ScreenUniforms struct {
	Resolution [2]float32 // offset  0
	Time       float32    // offset  8
	_pad       float32    // offset 12
}

// Size returns the size of the ScreenUniforms struct in bytes.
func (u *ScreenUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the uniform little-endian for GPU upload.
func (u *ScreenUniforms) Marshal() []byte {
	buf := make([]byte, u.Size())
	common.PutFloats(buf, 0, u.Resolution[0], u.Resolution[1], u.Time)
	return buf
}

// WorldUniforms is bound at @group(0) @binding(0) of world effect and world post-process passes.
// Size: 80 bytes.
type WorldUniforms struct {
	Resolution    [2]float32  // offset  0
	Time          float32     // offset  8
	Fov           float32     // offset 12
	CameraPos     common.Vec3 // offset 16
	_pad0         float32
	CameraForward common.Vec3 // offset 32
	_pad1         float32
	CameraRight   common.Vec3 // offset 48
	_pad2         float32
	CameraUp      common.Vec3 // offset 64
	Aspect        float32     // offset 76
}

// Size returns the size of the WorldUniforms struct in bytes.
func (u *WorldUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the uniform little-endian for GPU upload.
func (u *WorldUniforms) Marshal() []byte {
	buf := make([]byte, u.Size())
	common.PutFloats(buf, 0, u.Resolution[0], u.Resolution[1], u.Time, u.Fov)
	common.PutFloats(buf, 16, u.CameraPos[:]...)
	common.PutFloats(buf, 32, u.CameraForward[:]...)
	common.PutFloats(buf, 48, u.CameraRight[:]...)
	common.PutFloats(buf, 64, u.CameraUp[:]...)
	common.PutFloats(buf, 76, u.Aspect)
	return buf
}
