package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position common.Vec3
	forward  common.Vec3
	up       common.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32
}

// Camera is a caller-owned perspective camera. World-space passes read it through a per-frame
// Snapshot, so it can be moved from input handlers while a frame is being recorded.
type Camera interface {
	// Position returns the eye position in world space.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Position() common.Vec3

	// SetPosition moves the eye.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p common.Vec3)

	// Forward returns the normalized viewing direction.
	//
	// Returns:
	//   - common.Vec3: the viewing direction
	Forward() common.Vec3

	// SetForward changes the viewing direction. A zero vector is ignored.
	//
	// Parameters:
	//   - f: the new direction, normalized on store
	SetForward(f common.Vec3)

	// LookAt points the camera at target. A target equal to the eye is ignored.
	//
	// Parameters:
	//   - target: the world-space point to look at
	LookAt(target common.Vec3)

	// Up returns the reference up vector the basis is derived from.
	//
	// Returns:
	//   - common.Vec3: the reference up vector
	Up() common.Vec3

	// SetUp changes the reference up vector. A zero vector is ignored.
	//
	// Parameters:
	//   - u: the new reference up vector
	SetUp(u common.Vec3)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: the field of view
	Fov() float32

	// SetFov sets the vertical field of view in radians, clamped to (0, pi).
	//
	// Parameters:
	//   - fov: the field of view
	SetFov(fov float32)

	// Aspect returns width / height.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets width / height. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetClip sets the near and far plane distances. Invalid ranges are ignored.
	//
	// Parameters:
	//   - near: near plane distance (> 0)
	//   - far: far plane distance (> near)
	SetClip(near, far float32)

	// Snapshot captures the camera and its derived basis and matrices.
	//
	// Returns:
	//   - State: the snapshot
	Snapshot() State
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (0, 0, 5) looking down -Z with +Y up, a 90 degree vertical field of
// view, aspect 1 and clip planes at 0.1 and 1000.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: common.Vec3{0, 0, 5},
		forward:  common.Vec3{0, 0, -1},
		up:       common.Vec3{0, 1, 0},
		fov:      math32.Pi / 2,
		aspect:   1,
		near:     0.1,
		far:      1000,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) Forward() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward
}

func (c *cameraImpl) SetForward(f common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setForward(f)
}

func (c *cameraImpl) setForward(f common.Vec3) {
	if f.Length() == 0 {
		return
	}
	c.forward = f.Normalize()
}

func (c *cameraImpl) LookAt(target common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setForward(target.Sub(c.position))
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) SetUp(u common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u.Length() == 0 {
		return
	}
	c.up = u.Normalize()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = min(max(fov, 1e-3), math32.Pi-1e-3)
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect > 0 {
		c.aspect = aspect
	}
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if near <= 0 || far <= near {
		return
	}
	c.near, c.far = near, far
}

func (c *cameraImpl) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, r, u := basis(c.forward, c.up)
	return State{
		Position:   c.position,
		Forward:    f,
		Right:      r,
		Up:         u,
		Fov:        c.fov,
		Aspect:     c.aspect,
		Near:       c.near,
		Far:        c.far,
		View:       common.LookTo(c.position, f, u),
		Projection: common.Perspective(c.fov, c.aspect, c.near, c.far),
	}
}
