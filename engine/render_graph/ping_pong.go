package render_graph

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// Slot names one of the two ping-pong targets.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

func (s Slot) String() string {
	if s == SlotB {
		return "B"
	}
	return "A"
}

// PingPong owns the two surface-sized color targets passes alternate between. Exactly one slot is
// current at any point; Swap exchanges the roles.
type PingPong struct {
	targets [2]renderer.RenderTarget
	current Slot
	width   uint32
	height  uint32
}

// Resize allocates both targets at the given size. Calling it with the current size is a no-op and
// keeps the existing targets.
//
// Parameters:
//   - r: the renderer to allocate targets with
//   - width, height: the size in pixels
//
// Returns:
//   - bool: true if the targets were recreated
//   - error: an allocation error, after which the previous targets are kept
func (pp *PingPong) Resize(r renderer.Renderer, width, height uint32) (bool, error) {
	if width == 0 || height == 0 {
		return false, nil
	}
	if pp.targets[0] != nil && pp.width == width && pp.height == height {
		return false, nil
	}

	a, err := r.CreateRenderTarget("ping-pong A", width, height)
	if err != nil {
		return false, fmt.Errorf("ping-pong A: %w", err)
	}
	b, err := r.CreateRenderTarget("ping-pong B", width, height)
	if err != nil {
		a.Release()
		return false, fmt.Errorf("ping-pong B: %w", err)
	}

	pp.Release()
	pp.targets = [2]renderer.RenderTarget{a, b}
	pp.width, pp.height = width, height
	pp.current = SlotA
	return true, nil
}

// Reset makes A current, as at the start of every frame.
func (pp *PingPong) Reset() {
	pp.current = SlotA
}

// Swap exchanges the current and next targets.
func (pp *PingPong) Swap() {
	pp.current = 1 - pp.current
}

// CurrentSlot returns which target currently holds the scene.
func (pp *PingPong) CurrentSlot() Slot {
	return pp.current
}

// Current returns the target holding the scene.
func (pp *PingPong) Current() renderer.RenderTarget {
	return pp.targets[pp.current]
}

// Next returns the target the next pass writes.
func (pp *PingPong) Next() renderer.RenderTarget {
	return pp.targets[1-pp.current]
}

// Target returns the target in slot s.
func (pp *PingPong) Target(s Slot) renderer.RenderTarget {
	return pp.targets[s]
}

// Size returns the allocated size.
func (pp *PingPong) Size() (uint32, uint32) {
	return pp.width, pp.height
}

// Release frees both targets.
func (pp *PingPong) Release() {
	for i, t := range pp.targets {
		if t != nil {
			t.Release()
			pp.targets[i] = nil
		}
	}
}
