// Package frame carries the explicit per-frame state handed to every pass: surface size, timing,
// a camera snapshot, the scene light, a screen fade and the frame's mesh and overlay submissions.
package frame

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/light"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fx/engine/overlay"
)

// Context is the state of one frame. The render loop fills it with Begin, the application records
// mesh draws and overlay commands into it, and the render graph consumes it in Execute.
type Context struct {
	Width, Height uint32
	// Time is seconds since the loop started; Delta the seconds since the previous frame.
	Time  float32
	Delta float32
	Frame uint64

	Camera camera.State
	// Light shades the mesh pass. Begin leaves it untouched.
	Light light.Directional
	// Fade tints the presented image toward a color. Begin leaves it untouched.
	Fade Fade

	Meshes  *mesh.Queue
	Overlay *overlay.DrawList
}

// NewContext creates a Context with empty submission queues.
//
// Parameters:
//   - list: the overlay draw list to record into, a default one when nil
//
// Returns:
//   - *Context: the context
func NewContext(list *overlay.DrawList) *Context {
	if list == nil {
		list = overlay.NewDrawList(nil, nil)
	}
	return &Context{
		Camera:  camera.DefaultState(),
		Light:   light.Default(),
		Fade:    NoFade(),
		Meshes:  mesh.NewQueue(),
		Overlay: list,
	}
}

// Begin starts a new frame: it records the size, timing and camera snapshot and clears last
// frame's submissions.
//
// Parameters:
//   - width, height: the surface size in pixels
//   - time: seconds since start
//   - delta: seconds since the previous frame
//   - cam: the camera snapshot for this frame
func (c *Context) Begin(width, height uint32, time, delta float32, cam camera.State) {
	c.Width, c.Height = width, height
	c.Time, c.Delta = time, delta
	c.Camera = cam
	c.Frame++
	c.Meshes.Reset()
	c.Overlay.Reset()
}

// Resolution returns the surface size as floats.
func (c *Context) Resolution() [2]float32 {
	return [2]float32{float32(c.Width), float32(c.Height)}
}

// ScreenUniforms packs the screen pass uniform for this frame.
func (c *Context) ScreenUniforms() ScreenUniforms {
	return ScreenUniforms{Resolution: c.Resolution(), Time: c.Time}
}

// WorldUniforms packs the world pass uniform for this frame from the camera snapshot.
// The aspect ratio follows the surface rather than the camera so world passes never stretch.
func (c *Context) WorldUniforms() WorldUniforms {
	aspect := c.Camera.Aspect
	if c.Height > 0 {
		aspect = float32(c.Width) / float32(c.Height)
	}
	return WorldUniforms{
		Resolution:    c.Resolution(),
		Time:          c.Time,
		Fov:           c.Camera.Fov,
		CameraPos:     c.Camera.Position,
		CameraForward: c.Camera.Forward,
		CameraRight:   c.Camera.Right,
		CameraUp:      c.Camera.Up,
		Aspect:        aspect,
	}
}
