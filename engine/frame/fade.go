package frame

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// GPUFadeUniformSource is the canonical WGSL definition of the FadeUniform struct.
//
//go:embed assets/fade_uniform.wgsl
var GPUFadeUniformSource string

// Fade blends the presented image toward a solid color. Amount 0 shows the scene unchanged and
// 1 shows only Color; the blend covers the overlay as well.
type Fade struct {
	Color  common.Color
	Amount float32
}

// NoFade leaves the presented image untouched.
func NoFade() Fade {
	return Fade{Color: common.Black}
}

// FadeOut returns the fade at time elapsed of a fade to c lasting duration seconds. A
// non-positive duration cuts straight to c.
//
// Parameters:
//   - c: the color faded to
//   - elapsed: seconds since the fade started
//   - duration: the fade length in seconds
//
// Returns:
//   - Fade: the fade for this frame
func FadeOut(c common.Color, elapsed, duration float32) Fade {
	return Fade{Color: c, Amount: fadeProgress(elapsed, duration)}
}

// FadeIn is the reverse of FadeOut: it starts at c and ends on the scene.
//
// Parameters:
//   - c: the color faded from
//   - elapsed: seconds since the fade started
//   - duration: the fade length in seconds
//
// Returns:
//   - Fade: the fade for this frame
func FadeIn(c common.Color, elapsed, duration float32) Fade {
	return Fade{Color: c, Amount: 1 - fadeProgress(elapsed, duration)}
}

func fadeProgress(elapsed, duration float32) float32 {
	if duration <= 0 {
		return 1
	}
	return common.Clamp01(elapsed / duration)
}

// Active reports whether the fade changes the image.
func (f Fade) Active() bool {
	return common.Clamp01(f.Amount) > 0
}

// Uniform packs the fade for the present stage, clamping Amount to [0, 1].
func (f Fade) Uniform() FadeUniform {
	return FadeUniform{Color: f.Color, Amount: common.Clamp01(f.Amount)}
}

// FadeUniform is bound at @group(1) @binding(0) of the present stage.
// Size: 32 bytes.
type FadeUniform struct {
	Color  common.Color // offset  0
	Amount float32      // offset 16
	_pad   [3]float32
}

// Size returns the size of the FadeUniform struct in bytes.
func (u *FadeUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the uniform little-endian for GPU upload.
func (u *FadeUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	common.PutFloats(buf, 0, u.Color[:]...)
	common.PutFloats(buf, 16, u.Amount)
	return buf
}
