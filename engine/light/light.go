// Package light describes the directional light the mesh pass shades with.
package light

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Directional is a light infinitely far away, shining uniformly along one direction.
type Directional struct {
	// Direction points from a surface toward the light. It is normalized on upload.
	Direction common.Vec3
	// Color is the light color; alpha is ignored.
	Color     common.Color
	Intensity float32
	// Ambient is the fraction of the lit color applied regardless of surface orientation.
	Ambient float32
}

// Default returns a white light from above and slightly in front, with 25% ambient.
func Default() Directional {
	return Directional{
		Direction: common.Vec3{0.4, 1, 0.6},
		Color:     common.RGBA(1, 1, 1, 1),
		Intensity: 1,
		Ambient:   0.25,
	}
}

// NewDirectional creates a light from Default with options applied.
//
// Parameters:
//   - options: builder options overriding the defaults
//
// Returns:
//   - Directional: the light
func NewDirectional(options ...LightBuilderOption) Directional {
	d := Default()
	for _, opt := range options {
		opt(&d)
	}
	return d
}

// GPUUniform packs the light for the mesh pass. A zero direction falls back to straight up.
func (d Directional) GPUUniform() GPULightUniform {
	dir := d.Direction
	if dir.Length() == 0 {
		dir = common.Vec3{0, 1, 0}
	}
	return GPULightUniform{
		Direction: dir.Normalize(),
		Intensity: max(d.Intensity, 0),
		Color:     common.Vec3{d.Color[0], d.Color[1], d.Color[2]},
		Ambient:   common.Clamp01(d.Ambient),
	}
}
