package light

import "github.com/Carmen-Shannon/oxy-fx/common"

// LightBuilderOption configures a Directional during construction.
type LightBuilderOption func(*Directional)

// WithDirection sets the direction from surfaces toward the light.
//
// Parameters:
//   - x, y, z: the direction components
//
// Returns:
//   - LightBuilderOption: the option
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(d *Directional) {
		d.Direction = common.Vec3{x, y, z}
	}
}

// WithColor sets the light color.
func WithColor(c common.Color) LightBuilderOption {
	return func(d *Directional) {
		d.Color = c
	}
}

// WithIntensity scales the diffuse term.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(d *Directional) {
		d.Intensity = intensity
	}
}

// WithAmbient sets the ambient fraction, clamped to [0, 1] on upload.
func WithAmbient(ambient float32) LightBuilderOption {
	return func(d *Directional) {
		d.Ambient = ambient
	}
}
