package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
)

type orbitController struct {
	mu *sync.Mutex

	target common.Vec3

	radius    float32
	azimuth   float32 // around +Y, zero looks down -Z
	elevation float32 // above the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
}

var _ CameraController = &orbitController{}

// NewOrbitController creates a controller orbiting the origin at radius 5 with zero azimuth and
// elevation, which matches the default camera placement.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the controller
func NewOrbitController(options ...CameraControllerOption) CameraController {
	cc := &orbitController{
		mu:               &sync.Mutex{},
		radius:           5,
		minRadius:        0.5,
		maxRadius:        500,
		minElevation:     -math32.Pi/2 + 0.05,
		maxElevation:     math32.Pi/2 - 0.05,
		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
	}
	for _, option := range options {
		option(cc)
	}
	cc.clamp()
	return cc
}

func (cc *orbitController) clamp() {
	cc.radius = min(max(cc.radius, cc.minRadius), cc.maxRadius)
	cc.elevation = min(max(cc.elevation, cc.minElevation), cc.maxElevation)
}

// position must be called with the mutex held.
func (cc *orbitController) position() common.Vec3 {
	sinE, cosE := math32.Sincos(cc.elevation)
	sinA, cosA := math32.Sincos(cc.azimuth)
	return cc.target.Add(common.Vec3{
		cc.radius * cosE * sinA,
		cc.radius * sinE,
		cc.radius * cosE * cosA,
	})
}

func (cc *orbitController) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *orbitController) SetTarget(t common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = t
}

func (cc *orbitController) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position()
}

func (cc *orbitController) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *orbitController) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += dAzimuth
	cc.elevation += dElevation
	cc.clamp()
}

func (cc *orbitController) OrbitLeft() {
	cc.Orbit(-cc.orbitSpeed, 0)
}

func (cc *orbitController) OrbitRight() {
	cc.Orbit(cc.orbitSpeed, 0)
}

func (cc *orbitController) OrbitUp() {
	cc.Orbit(0, cc.orbitSpeed)
}

func (cc *orbitController) OrbitDown() {
	cc.Orbit(0, -cc.orbitSpeed)
}

func (cc *orbitController) Drag(dx, dy float32) {
	cc.Orbit(-dx*cc.mouseSensitivity, dy*cc.mouseSensitivity)
}

func (cc *orbitController) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius -= delta * cc.zoomSpeed
	cc.clamp()
}

func (cc *orbitController) Apply(cam Camera) {
	cc.mu.Lock()
	eye := cc.position()
	target := cc.target
	cc.mu.Unlock()

	cam.SetPosition(eye)
	cam.LookAt(target)
}
