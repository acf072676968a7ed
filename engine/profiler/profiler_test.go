package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	// time.Second/60 truncates, so the interval is sixty whole steps.
	step := time.Second / 60
	p := NewProfiler(
		WithClock(clock.now),
		WithInterval(60*step),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithMemoryStats(false),
	)

	for range 59 {
		clock.advance(step)
		_, ok := p.Tick(FrameSample{Passes: 2, MeshDraws: 1})
		require.False(t, ok)
	}
	clock.advance(step)
	r, ok := p.Tick(FrameSample{Passes: 2, MeshDraws: 1, Reloads: 1})
	require.True(t, ok)

	assert.Equal(t, 60, r.Frames)
	assert.InDelta(t, 60, r.FPS, 0.01)
	assert.InDelta(t, 2, r.Passes, 1e-9)
	assert.InDelta(t, 1, r.MeshDraws, 1e-9)
	assert.Equal(t, 1, r.Reloads)
	assert.Equal(t, r, p.Last())
	assert.Contains(t, buf.String(), "component=profiler")
	assert.Contains(t, buf.String(), "msg=\"frame stats\"")

	// The next interval starts empty.
	clock.advance(time.Second)
	r, ok = p.Tick(FrameSample{})
	require.True(t, ok)
	assert.Equal(t, 1, r.Frames)
	assert.Zero(t, r.Reloads)
}

func TestMemoryStats(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(10*time.Millisecond), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	clock.advance(20 * time.Millisecond)

	r, ok := p.Tick(FrameSample{})
	require.True(t, ok)
	assert.Positive(t, r.SysMB)
	assert.Positive(t, r.HeapMB)
}
