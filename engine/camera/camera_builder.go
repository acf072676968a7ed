package camera

import "github.com/Carmen-Shannon/oxy-fx/common"

// CameraBuilderOption is a functional option used to configure a Camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the initial eye position.
//
// Parameters:
//   - p: the eye position in world space
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye position
func WithPosition(p common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = p
	}
}

// WithForward sets the initial viewing direction.
//
// Parameters:
//   - f: the viewing direction, normalized on store
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewing direction
func WithForward(f common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.setForward(f)
	}
}

// WithUp sets the reference up vector.
//
// Parameters:
//   - u: the up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the up vector
func WithUp(u common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		if u.Length() > 0 {
			c.up = u.Normalize()
		}
	}
}

// WithFov sets the vertical field of view in radians.
//
// Parameters:
//   - fov: the field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClip sets the near and far plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClip(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near, c.far = near, far
	}
}
