package frame

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/stretchr/testify/assert"
)

func TestFadeUniformLayout(t *testing.T) {
	u := Fade{Color: common.RGBA(0.25, 0.5, 0.75, 1), Amount: 0.4}.Uniform()
	assert.Equal(t, 32, u.Size())
	buf := u.Marshal()
	assert.Len(t, buf, 32)
	assert.Equal(t, float32(0.25), floatAt(buf, 0))
	assert.Equal(t, float32(0.75), floatAt(buf, 8))
	assert.Equal(t, float32(1), floatAt(buf, 12))
	assert.Equal(t, float32(0.4), floatAt(buf, 16))
	assert.Zero(t, floatAt(buf, 20))
}

func TestFadeClampsAmount(t *testing.T) {
	assert.Equal(t, float32(1), Fade{Amount: 3}.Uniform().Amount)
	assert.Zero(t, Fade{Amount: -1}.Uniform().Amount)
	assert.False(t, Fade{Amount: -1}.Active())
	assert.False(t, NoFade().Active())
	assert.True(t, Fade{Amount: 0.01}.Active())
}

func TestFadeOutAndIn(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float32
		duration float32
		out      float32
	}{
		{"start", 0, 2, 0},
		{"halfway", 1, 2, 0.5},
		{"done", 2, 2, 1},
		{"past the end", 5, 2, 1},
		{"instant", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FadeOut(common.White, tt.elapsed, tt.duration)
			in := FadeIn(common.White, tt.elapsed, tt.duration)
			assert.InDelta(t, tt.out, out.Amount, 1e-6)
			assert.InDelta(t, 1-tt.out, in.Amount, 1e-6)
			assert.Equal(t, common.White, out.Color)
		})
	}
}

func TestFadePersistsAcrossBegin(t *testing.T) {
	ctx := NewContext(nil)
	assert.Equal(t, NoFade(), ctx.Fade)
	ctx.Fade = FadeOut(common.Red, 1, 2)
	ctx.Begin(10, 10, 0, 0, camera.DefaultState())
	assert.Equal(t, common.Red, ctx.Fade.Color)
	assert.InDelta(t, 0.5, ctx.Fade.Amount, 1e-6)
}
