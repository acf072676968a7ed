package camera

import "github.com/Carmen-Shannon/oxy-fx/common"

// CameraControllerOption is a functional option used to configure a CameraController.
type CameraControllerOption func(*orbitController)

// WithRadius sets the initial distance from the pivot.
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle in radians.
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle in radians.
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.elevation = elevation
	}
}

// WithTarget sets the orbit pivot.
func WithTarget(t common.Vec3) CameraControllerOption {
	return func(cc *orbitController) {
		cc.target = t
	}
}

// WithRadiusBounds limits the orbit radius.
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.minRadius, cc.maxRadius = lo, hi
	}
}

// WithElevationBounds limits the vertical angle in radians.
func WithElevationBounds(lo, hi float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.minElevation, cc.maxElevation = lo, hi
	}
}

// WithOrbitSpeed sets the step used by the OrbitLeft/Right/Up/Down methods.
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.orbitSpeed = speed
	}
}

// WithMouseSensitivity sets the radians per pixel used by Drag.
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the radius change per unit of Zoom delta.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.zoomSpeed = speed
	}
}
