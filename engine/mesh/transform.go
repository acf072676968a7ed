package mesh

import "github.com/Carmen-Shannon/oxy-fx/common"

// Transform places a mesh in world space.
type Transform struct {
	Position common.Vec3
	// Rotation holds Euler angles in radians, applied Y * X * Z.
	Rotation common.Vec3
	Scale    common.Vec3
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: common.Vec3{1, 1, 1}}
}

// At returns an identity transform moved to p.
func At(p common.Vec3) Transform {
	t := IdentityTransform()
	t.Position = p
	return t
}

// Matrix returns the model matrix.
func (t Transform) Matrix() common.Mat4 {
	return common.ModelMatrix(t.Position, t.Rotation, t.Scale)
}
