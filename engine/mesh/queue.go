package mesh

import "github.com/Carmen-Shannon/oxy-fx/common"

// DrawCommand is one queued mesh draw.
type DrawCommand struct {
	Mesh      Handle
	Transform Transform
	Tint      common.Color
	// Texture is NoTexture for untextured draws.
	Texture TextureHandle
}

// Queue collects the mesh draws of a single frame in submission order.
type Queue struct {
	commands []DrawCommand
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Draw queues an untextured mesh draw.
//
// Parameters:
//   - m: the mesh handle
//   - t: the world transform
//   - tint: the RGBA multiplier
func (q *Queue) Draw(m Handle, t Transform, tint common.Color) {
	q.commands = append(q.commands, DrawCommand{Mesh: m, Transform: t, Tint: tint})
}

// DrawTextured queues a mesh draw sampling tex.
//
// Parameters:
//   - m: the mesh handle
//   - t: the world transform
//   - tint: the RGBA multiplier
//   - tex: the texture handle
func (q *Queue) DrawTextured(m Handle, t Transform, tint common.Color, tex TextureHandle) {
	q.commands = append(q.commands, DrawCommand{Mesh: m, Transform: t, Tint: tint, Texture: tex})
}

// Commands returns the queued draws. The slice is reused after Reset.
func (q *Queue) Commands() []DrawCommand {
	return q.commands
}

// Len returns the number of queued draws.
func (q *Queue) Len() int {
	return len(q.commands)
}

// Reset drops every queued draw, keeping capacity.
func (q *Queue) Reset() {
	q.commands = q.commands[:0]
}
