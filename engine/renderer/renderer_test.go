package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestParsePresentMode(t *testing.T) {
	assert.Equal(t, PresentModeUncapped, ParsePresentMode("uncapped"))
	assert.Equal(t, PresentModeUncapped, ParsePresentMode("immediate"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode("vsync"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode("fifo"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode(""))
}

func TestPreferredSurfaceFormat(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb,
		preferredSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb}))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm,
		preferredSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm}))
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, preferredSurfaceFormat(nil))
}

func TestRenderTargetRelease(t *testing.T) {
	rt := &renderTarget{label: "a", width: 4, height: 2, format: wgpu.TextureFormatRGBA8Unorm}
	assert.Equal(t, "a", rt.Label())
	assert.Equal(t, uint32(4), rt.Width())
	assert.Equal(t, uint32(2), rt.Height())
	assert.NotPanics(t, rt.Release)
	assert.Nil(t, rt.View())
}
