package camera

import "github.com/Carmen-Shannon/oxy-fx/common"

// CameraController drives a Camera from input. Controllers own spherical orbit state around a
// target and write the resulting eye position and direction into the camera on Apply.
type CameraController interface {
	// Target returns the orbit pivot.
	//
	// Returns:
	//   - common.Vec3: the pivot in world space
	Target() common.Vec3

	// SetTarget moves the orbit pivot.
	//
	// Parameters:
	//   - t: the new pivot in world space
	SetTarget(t common.Vec3)

	// Position returns the eye position implied by the orbit state.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Position() common.Vec3

	// Radius returns the distance from the pivot.
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// Orbit rotates around the pivot. Elevation is clamped to the configured bounds.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians
	Orbit(dAzimuth, dElevation float32)

	// OrbitLeft rotates left by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates right by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts up by one orbit speed step.
	OrbitUp()

	// OrbitDown tilts down by one orbit speed step.
	OrbitDown()

	// Drag orbits by a mouse delta in pixels scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx, dy: the cursor movement in pixels
	Drag(dx, dy float32)

	// Zoom changes the orbit radius. Positive delta moves toward the pivot.
	//
	// Parameters:
	//   - delta: zoom amount, scaled by the zoom speed
	Zoom(delta float32)

	// Apply writes the eye position and look direction into cam.
	//
	// Parameters:
	//   - cam: the camera to drive
	Apply(cam Camera)
}
