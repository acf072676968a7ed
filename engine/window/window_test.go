package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("fx"),
		WithSize(1024, 768),
		WithMinSize(320, 240),
		WithMaxSize(1920, 1080),
		WithResizable(false),
	)
	assert.Equal(t, "fx", w.title)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 768, w.Height())
	assert.Equal(t, [4]int{320, 240, 1920, 1080}, [4]int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
	assert.False(t, w.resizable)

	w = newEngineWindow(WithSize(0, 10))
	assert.Equal(t, 800, w.Width())
}

func TestFramebufferResizedForwardsSize(t *testing.T) {
	w := newEngineWindow()
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })

	w.framebufferResized(1280, 720)
	assert.Equal(t, [2]int{1280, 720}, got)
	assert.Equal(t, 1280, w.Width())

	w.framebufferResized(0, 0)
	assert.Equal(t, [2]int{0, 0}, got)
}

func TestDragOnlyWhileButtonHeld(t *testing.T) {
	w := newEngineWindow()
	var moves [][2]float32
	w.SetDragCallback(func(dx, dy float32) { moves = append(moves, [2]float32{dx, dy}) })

	w.cursorMoved(10, 10)
	assert.Empty(t, moves)

	w.dragButton(true, 10, 10)
	w.cursorMoved(15, 7)
	w.cursorMoved(20, 7)
	w.dragButton(false, 20, 7)
	w.cursorMoved(40, 40)

	assert.Equal(t, [][2]float32{{5, -3}, {5, 0}}, moves)
}

func TestTitleIsAppliedOnce(t *testing.T) {
	w := newEngineWindow()
	_, ok := w.takeTitle()
	assert.False(t, ok)

	w.SetTitle("fps 60")
	title, ok := w.takeTitle()
	assert.True(t, ok)
	assert.Equal(t, "fps 60", title)
	assert.Equal(t, "fps 60", w.title)

	_, ok = w.takeTitle()
	assert.False(t, ok)
}

func TestRequestCloseStopsWithoutPlatformWindow(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	w.RequestClose()
	assert.False(t, w.IsRunning())
}
