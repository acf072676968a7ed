package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RenderTarget is a GPU texture that passes render into and, for color targets, sample from.
type RenderTarget interface {
	// Label returns the debug label.
	Label() string

	// Width returns the width in pixels.
	Width() uint32

	// Height returns the height in pixels.
	Height() uint32

	// Format returns the texture format.
	Format() wgpu.TextureFormat

	// View returns the texture view used both as attachment and as sampled input.
	View() *wgpu.TextureView

	// Release frees the texture and its view.
	Release()
}

type renderTarget struct {
	label   string
	width   uint32
	height  uint32
	format  wgpu.TextureFormat
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

var _ RenderTarget = &renderTarget{}

func (t *renderTarget) Label() string {
	return t.label
}

func (t *renderTarget) Width() uint32 {
	return t.width
}

func (t *renderTarget) Height() uint32 {
	return t.height
}

func (t *renderTarget) Format() wgpu.TextureFormat {
	return t.format
}

func (t *renderTarget) View() *wgpu.TextureView {
	return t.view
}

func (t *renderTarget) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
