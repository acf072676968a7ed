package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatApprox(t *testing.T, want, got Mat4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "element %d", i)
	}
}

func TestMul4Identity(t *testing.T) {
	m := ModelMatrix(Vec3{1, 2, 3}, Vec3{0.3, 0.2, 0.1}, Vec3{2, 2, 2})
	assert.Equal(t, m, Mul4(Identity4(), m))
	assert.Equal(t, m, Mul4(m, Identity4()))
}

func TestInvert4(t *testing.T) {
	m := ModelMatrix(Vec3{4, -1, 2}, Vec3{0.5, 1.1, -0.4}, Vec3{1, 3, 0.5})
	inv, ok := Invert4(m)
	require.True(t, ok)
	assertMatApprox(t, Identity4(), Mul4(m, inv))

	_, ok = Invert4(Mat4{})
	assert.False(t, ok)
}

func TestNormalMatrix(t *testing.T) {
	t.Run("rigid transform keeps rotation", func(t *testing.T) {
		m := ModelMatrix(Vec3{}, Vec3{0, 0.7, 0}, Vec3{1, 1, 1})
		n := NormalMatrix(m)
		for i := range 3 {
			for j := range 3 {
				assert.InDelta(t, m[i*4+j], n[i*4+j], 1e-5)
			}
		}
	})

	t.Run("non-uniform scale inverts scale", func(t *testing.T) {
		n := NormalMatrix(ModelMatrix(Vec3{}, Vec3{}, Vec3{2, 1, 1}))
		assert.InDelta(t, 0.5, n[0], 1e-6)
		assert.InDelta(t, 1, n[5], 1e-6)
	})

	t.Run("singular falls back to identity", func(t *testing.T) {
		assert.Equal(t, Identity4(), NormalMatrix(Mat4{}))
	})
}

func TestLookToMapsForwardToNegativeZ(t *testing.T) {
	view := LookTo(Vec3{0, 0, 5}, Vec3{0, 0, -1}, Vec3{0, 1, 0})
	p := view.MulPoint(Vec3{0, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, -5, p[2], 1e-6)
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(1.2, 4.0/3.0, 0.1, 100)
	near := proj.MulPoint(Vec3{0, 0, -0.1})
	far := proj.MulPoint(Vec3{0, 0, -100})
	assert.InDelta(t, 0, near[2]/near[3], 1e-5)
	assert.InDelta(t, 1, far[2]/far[3], 1e-4)
}

func TestVec3(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, x.Cross(y))
	assert.Equal(t, float32(0), x.Dot(y))
	assert.InDelta(t, 1, Vec3{3, 4, 12}.Normalize().Length(), 1e-6)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}

func TestPutFloats(t *testing.T) {
	buf := make([]byte, 12)
	PutFloats(buf, 4, 1, 2)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x80, 0x3f, 0, 0, 0, 0x40}, buf)
}

func TestDecodeTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	tex, err := DecodeTexture(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 0, 255}, tex.Pixels)

	_, err = DecodeTexture(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
