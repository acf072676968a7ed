package hot_reload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompiler hands out a fresh pipeline per successful compile and rejects sources containing "broken".
type fakeCompiler struct {
	mu       sync.Mutex
	compiled []pipeline.Pipeline
	calls    int
}

func (c *fakeCompiler) compile(path, source string) (pipeline.Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if strings.Contains(source, "broken") {
		return nil, errors.New("expected expression, found ';'")
	}
	p := pipeline.NewPipeline(filepath.Base(path)+"@"+strings.TrimSpace(source), nil)
	c.compiled = append(c.compiled, p)
	return p, nil
}

type recordingSink struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (s *recordingSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, d)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.diags)
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// writeAt writes contents and pins the modification time so changes are visible regardless of
// filesystem timestamp resolution.
func writeAt(t *testing.T, path, contents string, tick int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	ts := epoch.Add(time.Duration(tick) * time.Second)
	require.NoError(t, os.Chtimes(path, ts, ts))
}

func newTestWatcher(t *testing.T, opts ...WatcherBuilderOption) (Watcher, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	w, err := NewWatcher(append([]WatcherBuilderOption{WithSink(sink)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w, sink
}

func TestRegisterIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	w, _ := newTestWatcher(t)
	c := &fakeCompiler{}

	a, err := w.Register(path, c.compile)
	require.NoError(t, err)
	b, err := w.Register(path, c.compile)
	require.NoError(t, err)

	assert.Same(t, a.(*watchEntry), b.(*watchEntry))
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, uint64(1), a.Generation())
	assert.Len(t, w.Entries(), 1)

	byPath, ok := w.Entry(path)
	require.True(t, ok)
	assert.Same(t, a.(*watchEntry), byPath.(*watchEntry))
}

func TestRegisterInitialFailureIsSetupFatal(t *testing.T) {
	dir := t.TempDir()
	w, sink := newTestWatcher(t)
	c := &fakeCompiler{}

	broken := filepath.Join(dir, "broken.wgsl")
	writeAt(t, broken, "broken", 0)
	_, err := w.Register(broken, c.compile)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSetup)
	assert.ErrorIs(t, err, common.ErrCompile)

	_, err = w.Register(filepath.Join(dir, "missing.wgsl"), c.compile)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSetup)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Empty(t, w.Entries())
	assert.Zero(t, sink.count())
}

func TestReloadFailureKeepsPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	var retired []pipeline.Pipeline
	w, sink := newTestWatcher(t, WithRetire(func(p pipeline.Pipeline) { retired = append(retired, p) }))
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)
	v1 := e.Artifact()

	writeAt(t, path, "broken", 1)
	res := w.PollAndReload()

	assert.Equal(t, ReloadResult{Changed: 1, Failed: 1}, res)
	assert.Same(t, v1, e.Artifact())
	assert.Equal(t, uint64(1), e.Generation())
	assert.Equal(t, StateValid, e.State())
	require.Equal(t, 1, sink.count())
	assert.ErrorIs(t, sink.diags[0].Err, common.ErrCompile)
	assert.Equal(t, e.Path(), sink.diags[0].Path)
	assert.Empty(t, retired)

	// No further change, no further diagnostic.
	res = w.PollAndReload()
	assert.Equal(t, ReloadResult{}, res)
	assert.Equal(t, 1, sink.count())
	assert.Same(t, v1, e.Artifact())
}

func TestReloadSuccessSwapsArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	var retired []pipeline.Pipeline
	w, sink := newTestWatcher(t, WithRetire(func(p pipeline.Pipeline) { retired = append(retired, p) }))
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)
	v1 := e.Artifact()

	writeAt(t, path, "v2", 1)
	res := w.PollAndReload()

	assert.Equal(t, ReloadResult{Changed: 1, Swapped: 1}, res)
	assert.Same(t, c.compiled[1], e.Artifact())
	assert.NotSame(t, v1, e.Artifact())
	assert.Equal(t, uint64(2), e.Generation())
	assert.Equal(t, epoch.Add(time.Second), e.ModTime().UTC())
	assert.Zero(t, sink.count())
	require.Len(t, retired, 1)
	assert.Same(t, v1, retired[0])
}

func TestFailureThenFixRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	w, sink := newTestWatcher(t)
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)

	writeAt(t, path, "broken", 1)
	w.PollAndReload()
	writeAt(t, path, "broken again", 2)
	w.PollAndReload()
	assert.Equal(t, 2, sink.count())

	writeAt(t, path, "v3", 3)
	res := w.PollAndReload()
	assert.Equal(t, 1, res.Swapped)
	assert.Equal(t, "fx.wgsl@v3", e.Artifact().PipelineKey())
}

func TestTruncatedFileIsRetriedOnNextChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	w, sink := newTestWatcher(t)
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)
	v1 := e.Artifact()

	// An editor truncating before writing leaves an empty file for a moment.
	writeAt(t, path, "", 1)
	res := w.PollAndReload()
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, sink.count())
	assert.Same(t, v1, e.Artifact())
	assert.Equal(t, 1, c.calls)

	writeAt(t, path, "v2", 2)
	res = w.PollAndReload()
	assert.Equal(t, 1, res.Swapped)
	assert.Equal(t, "fx.wgsl@v2", e.Artifact().PipelineKey())
}

func TestDeletedFileReportsOnceAndRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	w, sink := newTestWatcher(t)
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)
	v1 := e.Artifact()

	require.NoError(t, os.Remove(path))
	w.PollAndReload()
	w.PollAndReload()
	assert.Equal(t, 1, sink.count())
	assert.ErrorIs(t, sink.diags[0].Err, os.ErrNotExist)
	assert.Same(t, v1, e.Artifact())

	writeAt(t, path, "v2", 5)
	res := w.PollAndReload()
	assert.Equal(t, 1, res.Swapped)
}

func TestPollReadsChangedFilesConcurrently(t *testing.T) {
	dir := t.TempDir()
	w, sink := newTestWatcher(t, WithWorkers(3))
	c := &fakeCompiler{}

	var entries []WatchEntry
	for _, name := range []string{"a.wgsl", "b.wgsl", "c.wgsl", "d.wgsl"} {
		path := filepath.Join(dir, name)
		writeAt(t, path, "v1", 0)
		e, err := w.Register(path, c.compile)
		require.NoError(t, err)
		entries = append(entries, e)
	}

	for i, e := range entries {
		contents := "v2"
		if i == 2 {
			contents = "broken"
		}
		writeAt(t, e.Path(), contents, 1)
	}

	res := w.PollAndReload()
	assert.Equal(t, ReloadResult{Changed: 4, Swapped: 3, Failed: 1}, res)
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, uint64(2), entries[0].Generation())
	assert.Equal(t, uint64(1), entries[2].Generation())
}

func TestInlineReadsWithoutWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	w, _ := newTestWatcher(t, WithWorkers(0))
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)

	writeAt(t, path, "v2", 1)
	assert.Equal(t, 1, w.PollAndReload().Swapped)
	assert.Equal(t, uint64(2), e.Generation())
}

func TestReloadAfterCloseReadsInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	w, _ := newTestWatcher(t, WithWorkers(2))
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	writeAt(t, path, "v2", 1)
	done := make(chan ReloadResult, 1)
	go func() { done <- w.PollAndReload() }()

	select {
	case res := <-done:
		assert.Equal(t, ReloadResult{Changed: 1, Swapped: 1}, res)
		assert.Equal(t, "fx.wgsl@v2", e.Artifact().PipelineKey())
	case <-time.After(2 * time.Second):
		t.Fatal("PollAndReload blocked after Close")
	}
}

func TestNotifyModeMarksPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.wgsl")
	writeAt(t, path, "v1", 0)

	w, _ := newTestWatcher(t, WithMode(ModeNotify))
	assert.Equal(t, ModeNotify, w.Mode())
	c := &fakeCompiler{}
	e, err := w.Register(path, c.compile)
	require.NoError(t, err)

	// Same size and pinned mtime: only the notification can reveal this change.
	writeAt(t, path, "v2", 0)
	require.Eventually(t, e.Pending, 2*time.Second, 10*time.Millisecond)

	res := w.PollAndReload()
	assert.Equal(t, 1, res.Swapped)
	assert.Equal(t, "fx.wgsl@v2", e.Artifact().PipelineKey())
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeNotify, ParseMode("notify"))
	assert.Equal(t, ModeNotify, ParseMode(" Notify "))
	assert.Equal(t, ModePoll, ParseMode("poll"))
	assert.Equal(t, ModePoll, ParseMode("whatever"))
}

func TestLogSinkAndMultiSink(t *testing.T) {
	var got []string
	sink := MultiSink{
		LogSink{},
		SinkFunc(func(d Diagnostic) { got = append(got, d.Path) }),
		nil,
	}
	err := &CompileError{Path: "fx.wgsl", Err: errors.New("bad")}
	assert.NotPanics(t, func() { sink.Report(Diagnostic{Path: "fx.wgsl", Err: err}) })
	assert.Equal(t, []string{"fx.wgsl"}, got)
	assert.Equal(t, "compile fx.wgsl: bad", err.Error())
}
