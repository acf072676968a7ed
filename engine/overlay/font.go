package overlay

import (
	"image"
	"image/draw"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph locates one rasterized character in a font atlas.
type Glyph struct {
	// Width and Height are the glyph bitmap size in pixels.
	Width, Height float32
	// BearingX is the horizontal offset from the pen position to the bitmap's left edge.
	BearingX float32
	// Top is the vertical offset from the baseline to the bitmap's top edge (negative above).
	Top float32
	// Advance moves the pen to the next character.
	Advance float32
	// UV is the atlas rectangle as u, v, width, height in normalized coordinates.
	UV [4]float32
}

// Font is a bitmap font backed by a single-channel glyph atlas.
type Font interface {
	// Size returns the ascent in pixels. Text baselines sit Size below the requested y.
	//
	// Returns:
	//   - float32: the ascent
	Size() float32

	// LineHeight returns the distance between consecutive baselines.
	//
	// Returns:
	//   - float32: the line height in pixels
	LineHeight() float32

	// Glyph looks up a character.
	//
	// Parameters:
	//   - r: the character
	//
	// Returns:
	//   - Glyph: the glyph metrics and atlas location
	//   - bool: false if the font has no glyph for r
	Glyph(r rune) (Glyph, bool)

	// Atlas returns the R8 coverage atlas.
	//
	// Returns:
	//   - *common.TextureStagingData: the atlas pixels
	Atlas() *common.TextureStagingData
}

type bitmapFont struct {
	size       float32
	lineHeight float32
	glyphs     map[rune]Glyph
	atlas      *common.TextureStagingData
}

var _ Font = &bitmapFont{}

const atlasColumns = 16

// NewBitmapFont rasterizes the printable ASCII range of face into an atlas.
//
// Parameters:
//   - face: the source face, typically a fixed-size bitmap face
//
// Returns:
//   - Font: the atlas-backed font
func NewBitmapFont(face font.Face) Font {
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	cellH := metrics.Height.Ceil()

	const first, last = ' ', '~'
	cellW := 1
	for r := rune(first); r <= last; r++ {
		if dr, _, _, _, ok := face.Glyph(fixed.P(0, ascent), r); ok {
			cellW = max(cellW, dr.Dx())
		}
	}

	rows := (last - first + atlasColumns) / atlasColumns
	atlas := image.NewAlpha(image.Rect(0, 0, atlasColumns*cellW, int(rows)*cellH))
	w, h := float32(atlas.Rect.Dx()), float32(atlas.Rect.Dy())

	f := &bitmapFont{
		size:       float32(ascent),
		lineHeight: float32(cellH),
		glyphs:     make(map[rune]Glyph, last-first+1),
	}
	for r := rune(first); r <= last; r++ {
		i := int(r - first)
		origin := image.Pt((i%atlasColumns)*cellW, (i/atlasColumns)*cellH)

		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		dst := image.Rectangle{Min: origin, Max: origin.Add(dr.Size())}
		draw.DrawMask(atlas, dst, image.Opaque, image.Point{}, mask, maskp, draw.Src)

		f.glyphs[r] = Glyph{
			Width:    float32(dr.Dx()),
			Height:   float32(dr.Dy()),
			BearingX: float32(dr.Min.X),
			Top:      float32(dr.Min.Y),
			Advance:  float32(advance.Round()),
			UV: [4]float32{
				float32(origin.X) / w,
				float32(origin.Y) / h,
				float32(dr.Dx()) / w,
				float32(dr.Dy()) / h,
			},
		}
	}

	f.atlas = &common.TextureStagingData{
		Pixels: atlas.Pix,
		Width:  uint32(atlas.Rect.Dx()),
		Height: uint32(atlas.Rect.Dy()),
		Format: wgpu.TextureFormatR8Unorm,
	}
	return f
}

// DefaultFont returns the 7x13 fixed bitmap font.
func DefaultFont() Font {
	return NewBitmapFont(basicfont.Face7x13)
}

func (f *bitmapFont) Size() float32 {
	return f.size
}

func (f *bitmapFont) LineHeight() float32 {
	return f.lineHeight
}

func (f *bitmapFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

func (f *bitmapFont) Atlas() *common.TextureStagingData {
	return f.atlas
}
