package camera

import "github.com/Carmen-Shannon/oxy-fx/common"

// State is an immutable snapshot of a camera taken once per frame. Passes read the snapshot so a
// camera mutated mid-frame cannot tear the uniforms of a single frame.
type State struct {
	Position common.Vec3
	// Forward, Right and Up form an orthonormal right-handed basis.
	Forward common.Vec3
	Right   common.Vec3
	Up      common.Vec3

	Fov    float32
	Aspect float32
	Near   float32
	Far    float32

	View       common.Mat4
	Projection common.Mat4
}

// DefaultState is the snapshot of a camera built with no options.
func DefaultState() State {
	return NewCamera().Snapshot()
}

// ViewProjection returns Projection * View.
func (s State) ViewProjection() common.Mat4 {
	return common.Mul4(s.Projection, s.View)
}

// GPUUniform packs the snapshot for the mesh pass camera binding.
//
// Parameters:
//   - time: seconds since start, forwarded to shaders
//
// Returns:
//   - GPUCameraUniform: the packed uniform
func (s State) GPUUniform(time float32) GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj: s.ViewProjection(),
		View:     s.View,
		Proj:     s.Projection,
		Position: s.Position,
		Time:     time,
	}
}

// basis derives the orthonormal right and up vectors: right = normalize(forward x up),
// up = right x forward. A forward parallel to up falls back to +Z as the reference up.
func basis(forward, up common.Vec3) (common.Vec3, common.Vec3, common.Vec3) {
	f := forward.Normalize()
	r := f.Cross(up)
	if r.Length() < 1e-6 {
		r = f.Cross(common.Vec3{0, 0, 1})
	}
	r = r.Normalize()
	return f, r, r.Cross(f)
}
