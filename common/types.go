// Package common contains plain data types and helpers shared across the engine: matrix and vector
// math, colors, texture staging data, the package logger and the error categories.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Color is a linear RGBA color with components in [0, 1].
type Color [4]float32

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Red         = Color{1, 0, 0, 1}
	Transparent = Color{0, 0, 0, 0}
)

// RGBA builds a Color from its components.
func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// WGPU converts the color into a clear value for a render pass attachment.
func (c Color) WGPU() wgpu.Color {
	return wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels holds the texel bytes, 4 bytes per pixel (RGBA) unless Format says otherwise.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Format is the texel format. The zero value means wgpu.TextureFormatRGBA8Unorm.
	Format wgpu.TextureFormat
}

// BytesPerPixel returns the texel size for the staging format.
func (t *TextureStagingData) BytesPerPixel() uint32 {
	switch t.Format {
	case wgpu.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}

// TextureFormat returns the staging format, resolving the zero value to RGBA8.
func (t *TextureStagingData) TextureFormat() wgpu.TextureFormat {
	if t.Format == wgpu.TextureFormatUndefined {
		return wgpu.TextureFormatRGBA8Unorm
	}
	return t.Format
}

// WhiteTexel returns a 1x1 opaque white RGBA texture, used wherever a draw has no texture of its own.
func WhiteTexel() *TextureStagingData {
	return &TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside [0, 1].
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp clamp the sampled level of detail.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}

// LinearClampSampler is the sampler used for full-screen passes and overlays.
func LinearClampSampler() *SamplerStagingData {
	return &SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// NearestClampSampler is used for pixel-exact overlay text.
func NearestClampSampler() *SamplerStagingData {
	s := LinearClampSampler()
	s.MagFilter = wgpu.FilterModeNearest
	s.MinFilter = wgpu.FilterModeNearest
	return s
}

// DecodeTexture decodes a PNG, JPEG, BMP or WebP image into RGBA staging data.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - *TextureStagingData: the decoded RGBA pixels
//   - error: an error if the stream is not a supported image
func DecodeTexture(r io.Reader) (*TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// LoadTexture reads and decodes an image file from disk.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - *TextureStagingData: the decoded RGBA pixels
//   - error: an error if the file cannot be read or decoded
func LoadTexture(path string) (*TextureStagingData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture %s: %w", path, err)
	}
	tex, err := DecodeTexture(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	return tex, nil
}
