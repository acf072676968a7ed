package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirectionalAppliesOptions(t *testing.T) {
	d := NewDirectional(WithDirection(0, 2, 0), WithColor(common.RGBA(1, 0.5, 0, 1)), WithIntensity(3), WithAmbient(0.1))

	assert.Equal(t, common.Vec3{0, 2, 0}, d.Direction)
	assert.Equal(t, float32(3), d.Intensity)
	assert.Equal(t, float32(0.1), d.Ambient)

	u := d.GPUUniform()
	assert.True(t, u.Direction.ApproxEqual(common.Vec3{0, 1, 0}, 1e-6))
	assert.Equal(t, common.Vec3{1, 0.5, 0}, u.Color)
}

func TestGPUUniformClampsAndDefaultsDirection(t *testing.T) {
	u := Directional{Intensity: -1, Ambient: 4}.GPUUniform()

	assert.Equal(t, common.Vec3{0, 1, 0}, u.Direction)
	assert.Equal(t, float32(0), u.Intensity)
	assert.Equal(t, float32(1), u.Ambient)
}

func TestGPULightUniformLayout(t *testing.T) {
	u := GPULightUniform{
		Direction: common.Vec3{1, 2, 3},
		Intensity: 4,
		Color:     common.Vec3{5, 6, 7},
		Ambient:   8,
	}
	require.Equal(t, 32, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 32)
	for i := range 8 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, float32(i+1), got, "float %d", i)
	}
	assert.Contains(t, GPULightUniformSource, "struct LightUniform")
}
