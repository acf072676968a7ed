package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/light"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
[window]
title = "plasma"
width = 1280
height = 720

[renderer]
present_mode = "immediate"

[graph]
clear_color = [0.1, 0.1, 0.2, 1.0]
mesh_pass = false

[[graph.passes]]
kind = "effect"
path = "shaders/plasma.wgsl"
hot = true

[[graph.passes]]
kind = "post_process"
path = "shaders/vignette.wgsl"
label = "vignette"

[light]
direction = [0.0, 0.0, 1.0]
color = [1.0, 0.9, 0.8]
intensity = 2.0
ambient = 0.1

[hot_reload]
mode = "notify"
workers = 4

[log]
level = "debug"
format = "json"
`

const yamlConfig = `
window:
  width: 640
  height: 480
graph:
  passes:
    - kind: world_effect
      path: /abs/sky.wgsl
      hot: true
log:
  level: warn
`

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.True(t, cfg.Graph.MeshPass)
	assert.Equal(t, light.Default(), cfg.Light.Directional())
	assert.Equal(t, renderer.PresentModeVSync, cfg.Renderer.Mode())
}

func TestDecodeTOML(t *testing.T) {
	cfg, err := Decode(strings.NewReader(tomlConfig), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "plasma", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, renderer.PresentModeUncapped, cfg.Renderer.Mode())
	assert.Equal(t, [4]float32{0.1, 0.1, 0.2, 1.0}, cfg.Graph.ClearColor)
	assert.False(t, cfg.Graph.MeshPass)
	require.Len(t, cfg.Graph.Passes, 2)
	assert.True(t, cfg.Graph.Passes[0].Hot)
	assert.Equal(t, "vignette", cfg.Graph.Passes[1].Label)
	assert.Equal(t, "notify", cfg.HotReload.Mode)
	assert.Equal(t, 4, cfg.HotReload.Workers)
	assert.Equal(t, "json", cfg.Log.Format)

	sun := cfg.Light.Directional()
	assert.Equal(t, common.Vec3{0, 0, 1}, sun.Direction)
	assert.Equal(t, common.RGBA(1, 0.9, 0.8, 1), sun.Color)
	assert.Equal(t, float32(2), sun.Intensity)
	assert.Equal(t, float32(0.1), sun.Ambient)
}

func TestDecodeYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(yamlConfig), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, "oxy-fx", cfg.Window.Title)
	assert.Equal(t, "poll", cfg.HotReload.Mode)
	require.Len(t, cfg.Graph.Passes, 1)
	assert.Equal(t, "world_effect", cfg.Graph.Passes[0].Kind)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestDecodeEmpty(t *testing.T) {
	for _, f := range []Format{FormatTOML, FormatYAML} {
		cfg, err := Decode(strings.NewReader(""), f)
		require.NoError(t, err, f.String())
		assert.Equal(t, Default(), cfg)
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "[window]\nfullscreen = true\n",
		"bad size":       "[window]\nwidth = 0\n",
		"bad kind":       "[[graph.passes]]\nkind = \"bloom\"\npath = \"a.wgsl\"\n",
		"missing path":   "[[graph.passes]]\nkind = \"effect\"\n",
		"bad mode":       "[hot_reload]\nmode = \"inotify\"\n",
		"bad present":    "[renderer]\npresent_mode = \"mailbox\"\n",
		"syntax":         "[window\n",
		"zero light":     "[light]\ndirection = [0.0, 0.0, 0.0]\n",
		"dark light":     "[light]\nintensity = -1.0\n",
		"bright ambient": "[light]\nambient = 1.5\n",
		"duplicate pass": "[[graph.passes]]\nkind = \"effect\"\npath = \"a/fx.wgsl\"\n[[graph.passes]]\nkind = \"effect\"\npath = \"b/fx.wgsl\"\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(src), FormatTOML)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrSetup)
		})
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shaders", "plasma.wgsl"), cfg.Graph.Passes[0].Path)

	ycfg := filepath.Join(dir, "app.yml")
	require.NoError(t, os.WriteFile(ycfg, []byte(yamlConfig), 0o644))
	cfg, err = Load(ycfg)
	require.NoError(t, err)
	assert.Equal(t, "/abs/sky.wgsl", cfg.Graph.Passes[0].Path)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, common.ErrSetup)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("a.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("a.YML"))
	assert.Equal(t, FormatTOML, FormatOf("a.toml"))
	assert.Equal(t, FormatTOML, FormatOf("a"))
}

func TestShaderCacheFromPasses(t *testing.T) {
	dir := t.TempDir()
	hot := filepath.Join(dir, "plasma.wgsl")
	static := filepath.Join(dir, "vignette.wgsl")
	require.NoError(t, os.WriteFile(hot, []byte("// plasma"), 0o644))
	require.NoError(t, os.WriteFile(static, []byte("// vignette"), 0o644))

	g := GraphConfig{Passes: []PassConfig{
		{Kind: "effect", Path: hot, Hot: true},
		{Kind: "post_process", Path: static, Label: "vig"},
	}}
	cache, err := g.ShaderCache()
	require.NoError(t, err)

	e, ok := cache.Entry("plasma")
	require.True(t, ok)
	assert.Equal(t, shader_cache.OriginFile, e.Origin)

	e, ok = cache.Entry("vig")
	require.True(t, ok)
	assert.Equal(t, shader_cache.OriginStatic, e.Origin)
	assert.Equal(t, "// vignette", e.Static)

	g.Passes = append(g.Passes, PassConfig{Kind: "effect", Path: filepath.Join(dir, "gone.wgsl")})
	_, err = g.ShaderCache()
	assert.ErrorIs(t, err, common.ErrSetup)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	assert.Zero(t, buf.Len())

	LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf).Debug("shown", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	LogConfig{Level: "info"}.NewLogger(&buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
