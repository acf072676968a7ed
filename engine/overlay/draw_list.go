// Package overlay records immediate-mode 2D draw commands (rectangles, text, sprites and panels)
// into a vertex stream split into ordered pipeline runs.
package overlay

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
)

// PipelineKind selects the overlay pipeline a run is drawn with.
type PipelineKind int

const (
	// PipelineShape draws solid colored triangles.
	PipelineShape PipelineKind = iota
	// PipelineText samples the font atlas coverage.
	PipelineText
	// PipelineSprite samples an RGBA sprite texture.
	PipelineSprite
)

func (k PipelineKind) String() string {
	switch k {
	case PipelineShape:
		return "shape"
	case PipelineText:
		return "text"
	case PipelineSprite:
		return "sprite"
	default:
		return "unknown"
	}
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

// Run is a contiguous range of vertices drawn with one pipeline and texture.
type Run struct {
	Pipeline PipelineKind
	// Sprite is set for PipelineSprite runs.
	Sprite SpriteID
	First  uint32
	Count  uint32
}

// DrawList collects one frame of overlay commands. Consecutive commands sharing a pipeline (and,
// for sprites, a texture) are merged into one Run; runs are kept in submission order so later
// commands always draw over earlier ones.
type DrawList struct {
	font    Font
	sprites *Sprites

	vertices []Vertex2D
	runs     []Run
	dropped  int
}

// NewDrawList creates an empty list drawing text with font and sprites from sprites.
//
// Parameters:
//   - font: the text font, DefaultFont() when nil
//   - sprites: the sprite registry, a new empty one when nil
//
// Returns:
//   - *DrawList: the list
func NewDrawList(font Font, sprites *Sprites) *DrawList {
	if font == nil {
		font = DefaultFont()
	}
	if sprites == nil {
		sprites = NewSprites()
	}
	return &DrawList{font: font, sprites: sprites}
}

// Font returns the text font.
func (d *DrawList) Font() Font {
	return d.font
}

// Sprites returns the sprite registry.
func (d *DrawList) Sprites() *Sprites {
	return d.sprites
}

// Vertices returns the recorded vertices.
func (d *DrawList) Vertices() []Vertex2D {
	return d.vertices
}

// Runs returns the recorded runs in submission order.
func (d *DrawList) Runs() []Run {
	return d.runs
}

// Dropped returns how many commands were discarded this frame because the vertex budget ran out.
func (d *DrawList) Dropped() int {
	return d.dropped
}

// Empty reports whether nothing was recorded.
func (d *DrawList) Empty() bool {
	return len(d.vertices) == 0
}

// Reset clears the list for the next frame, keeping capacity.
func (d *DrawList) Reset() {
	d.vertices = d.vertices[:0]
	d.runs = d.runs[:0]
	d.dropped = 0
}

// reserve reports whether n more vertices fit. A command that does not fit is dropped whole.
func (d *DrawList) reserve(n int) bool {
	if len(d.vertices)+n > MaxVertices {
		d.dropped++
		return false
	}
	return true
}

func (d *DrawList) quad(kind PipelineKind, sprite SpriteID, r Rect, uv [4]float32, c common.Color) {
	u0, v0, u1, v1 := uv[0], uv[1], uv[0]+uv[2], uv[1]+uv[3]
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H

	first := uint32(len(d.vertices))
	d.vertices = append(d.vertices,
		Vertex2D{Position: [2]float32{x0, y0}, UV: [2]float32{u0, v0}, Color: c},
		Vertex2D{Position: [2]float32{x1, y0}, UV: [2]float32{u1, v0}, Color: c},
		Vertex2D{Position: [2]float32{x0, y1}, UV: [2]float32{u0, v1}, Color: c},
		Vertex2D{Position: [2]float32{x1, y0}, UV: [2]float32{u1, v0}, Color: c},
		Vertex2D{Position: [2]float32{x1, y1}, UV: [2]float32{u1, v1}, Color: c},
		Vertex2D{Position: [2]float32{x0, y1}, UV: [2]float32{u0, v1}, Color: c},
	)

	if n := len(d.runs); n > 0 {
		last := &d.runs[n-1]
		if last.Pipeline == kind && last.Sprite == sprite && last.First+last.Count == first {
			last.Count += 6
			return
		}
	}
	d.runs = append(d.runs, Run{Pipeline: kind, Sprite: sprite, First: first, Count: 6})
}

// Rect draws a solid rectangle.
//
// Parameters:
//   - x, y: the top-left corner in pixels
//   - w, h: the size in pixels
//   - c: the fill color
func (d *DrawList) Rect(x, y, w, h float32, c common.Color) {
	if !d.reserve(6) {
		return
	}
	d.quad(PipelineShape, 0, Rect{x, y, w, h}, [4]float32{}, c)
}

// Text draws a single line of text with its baseline Font().Size() below y. Characters without a
// glyph advance the pen by half the font size.
//
// Parameters:
//   - x, y: the top-left of the line in pixels
//   - text: the string to draw
//   - c: the text color
func (d *DrawList) Text(x, y float32, text string, c common.Color) {
	n := 0
	for _, r := range text {
		if g, ok := d.font.Glyph(r); ok && g.Width > 0 && g.Height > 0 {
			n += 6
		}
	}
	if n == 0 || !d.reserve(n) {
		return
	}

	pen := x
	baseline := y + d.font.Size()
	for _, r := range text {
		g, ok := d.font.Glyph(r)
		if !ok {
			pen += d.font.Size() / 2
			continue
		}
		if g.Width > 0 && g.Height > 0 {
			d.quad(PipelineText, 0, Rect{pen + g.BearingX, baseline + g.Top, g.Width, g.Height}, g.UV, c)
		}
		pen += g.Advance
	}
}

// TextWidth measures the pen advance of text.
func (d *DrawList) TextWidth(text string) float32 {
	var w float32
	for _, r := range text {
		if g, ok := d.font.Glyph(r); ok {
			w += g.Advance
		} else {
			w += d.font.Size() / 2
		}
	}
	return w
}

// Sprite draws a sprite at its native size.
//
// Parameters:
//   - id: the sprite
//   - x, y: the top-left corner in pixels
//   - tint: the RGBA multiplier
//
// Returns:
//   - error: an error wrapping common.ErrProgramming for an unknown sprite
func (d *DrawList) Sprite(id SpriteID, x, y float32, tint common.Color) error {
	tex, err := d.sprites.Get(id)
	if err != nil {
		return err
	}
	if d.reserve(6) {
		d.quad(PipelineSprite, id, Rect{x, y, float32(tex.Width), float32(tex.Height)}, [4]float32{0, 0, 1, 1}, tint)
	}
	return nil
}

// SpriteScaled draws a whole sprite stretched to w by h pixels.
//
// Parameters:
//   - id: the sprite
//   - x, y, w, h: the destination rectangle in pixels
//   - tint: the RGBA multiplier
//
// Returns:
//   - error: an error wrapping common.ErrProgramming for an unknown sprite
func (d *DrawList) SpriteScaled(id SpriteID, x, y, w, h float32, tint common.Color) error {
	if _, err := d.sprites.Get(id); err != nil {
		return err
	}
	if d.reserve(6) {
		d.quad(PipelineSprite, id, Rect{x, y, w, h}, [4]float32{0, 0, 1, 1}, tint)
	}
	return nil
}

// SpriteRegion draws the src rectangle of a sprite (in texture pixels) into dst.
//
// Parameters:
//   - id: the sprite
//   - dst: the destination rectangle in pixels
//   - src: the source rectangle in texture pixels
//   - tint: the RGBA multiplier
//
// Returns:
//   - error: an error wrapping common.ErrProgramming for an unknown sprite
func (d *DrawList) SpriteRegion(id SpriteID, dst, src Rect, tint common.Color) error {
	tex, err := d.sprites.Get(id)
	if err != nil {
		return err
	}
	if d.reserve(6) {
		tw, th := float32(tex.Width), float32(tex.Height)
		d.quad(PipelineSprite, id, dst, [4]float32{src.X / tw, src.Y / th, src.W / tw, src.H / th}, tint)
	}
	return nil
}
