// Package config loads the settings of an oxy-fx application from a TOML or YAML file: the window,
// the GPU context, the pass list of the render graph, the scene light, the shader watcher and logging.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_graph"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// FormatOf picks the encoding from a file extension: .yaml and .yml are YAML, anything else TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Config is the root of a configuration file.
type Config struct {
	Window    WindowConfig    `toml:"window" yaml:"window"`
	Renderer  RendererConfig  `toml:"renderer" yaml:"renderer"`
	Graph     GraphConfig     `toml:"graph" yaml:"graph"`
	Light     LightConfig     `toml:"light" yaml:"light"`
	HotReload HotReloadConfig `toml:"hot_reload" yaml:"hot_reload"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	// FrameLimit caps the render loop in frames per second; 0 leaves it uncapped.
	FrameLimit float64 `toml:"frame_limit" yaml:"frame_limit"`
}

type RendererConfig struct {
	// PresentMode is "fifo" (vsync) or "immediate".
	PresentMode string `toml:"present_mode" yaml:"present_mode"`
	// Software forces the fallback adapter.
	Software bool `toml:"software" yaml:"software"`
}

// PassConfig describes one render graph pass. Relative paths are resolved against the directory of
// the configuration file.
type PassConfig struct {
	Kind  string `toml:"kind" yaml:"kind"`
	Path  string `toml:"path" yaml:"path"`
	Label string `toml:"label" yaml:"label"`
	// Hot watches Path and reloads the pass when the file changes.
	Hot bool `toml:"hot" yaml:"hot"`
}

type GraphConfig struct {
	ClearColor [4]float32   `toml:"clear_color" yaml:"clear_color"`
	MeshPass   bool         `toml:"mesh_pass" yaml:"mesh_pass"`
	Passes     []PassConfig `toml:"passes" yaml:"passes"`
}

// LightConfig is the directional light of the mesh pass.
type LightConfig struct {
	// Direction points from surfaces toward the light.
	Direction [3]float32 `toml:"direction" yaml:"direction"`
	Color     [3]float32 `toml:"color" yaml:"color"`
	Intensity float32    `toml:"intensity" yaml:"intensity"`
	Ambient   float32    `toml:"ambient" yaml:"ambient"`
}

type HotReloadConfig struct {
	// Mode is "poll" or "notify".
	Mode    string `toml:"mode" yaml:"mode"`
	Workers int    `toml:"workers" yaml:"workers"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given: an 800x600 window with vsync, a
// black background, the mesh pass enabled, no full-screen passes and a polling watcher.
func Default() Config {
	return Config{
		Window:    WindowConfig{Title: "oxy-fx", Width: 800, Height: 600},
		Renderer:  RendererConfig{PresentMode: "fifo"},
		Graph:     GraphConfig{ClearColor: [4]float32{0, 0, 0, 1}, MeshPass: true},
		Light:     LightConfig{Direction: [3]float32{0.4, 1, 0.6}, Color: [3]float32{1, 1, 1}, Intensity: 1, Ambient: 0.25},
		HotReload: HotReloadConfig{Mode: "poll", Workers: 2},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of Default and validates the result.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the configuration, with pass paths made absolute
//   - error: an error wrapping common.ErrSetup if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: config: %w", common.ErrSetup, err)
	}
	defer f.Close()

	cfg, err := Decode(bufio.NewReader(f), FormatOf(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, p := range cfg.Graph.Passes {
		if p.Path != "" && !filepath.IsAbs(p.Path) {
			cfg.Graph.Passes[i].Path = filepath.Join(dir, p.Path)
		}
	}
	return cfg, nil
}

// Decode reads a configuration in the given format on top of Default and validates it. Unknown
// keys are rejected.
//
// Parameters:
//   - r: the encoded configuration
//   - format: the encoding
//
// Returns:
//   - Config: the configuration
//   - error: an error wrapping common.ErrSetup
func Decode(r io.Reader, format Format) (Config, error) {
	cfg := Default()

	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode %s: %w", common.ErrSetup, format, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every enumerated value and size.
//
// Returns:
//   - error: the joined problems wrapping common.ErrSetup, or nil
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("window frame_limit %v must not be negative", c.Window.FrameLimit))
	}
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "", "fifo", "vsync", "immediate", "uncapped":
	default:
		errs = append(errs, fmt.Errorf("unknown present_mode %q", c.Renderer.PresentMode))
	}
	if c.Light.Direction == [3]float32{} {
		errs = append(errs, errors.New("light direction must not be zero"))
	}
	if c.Light.Intensity < 0 {
		errs = append(errs, fmt.Errorf("light intensity %v must not be negative", c.Light.Intensity))
	}
	if c.Light.Ambient < 0 || c.Light.Ambient > 1 {
		errs = append(errs, fmt.Errorf("light ambient %v must be within [0, 1]", c.Light.Ambient))
	}
	switch strings.ToLower(c.HotReload.Mode) {
	case "", "poll", "notify":
	default:
		errs = append(errs, fmt.Errorf("unknown hot_reload mode %q", c.HotReload.Mode))
	}
	if c.HotReload.Workers < 0 {
		errs = append(errs, fmt.Errorf("hot_reload workers %d must not be negative", c.HotReload.Workers))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	labels := make(map[string]int, len(c.Graph.Passes))
	for i, p := range c.Graph.Passes {
		label := passLabel(i, p)
		if j, ok := labels[label]; ok {
			errs = append(errs, fmt.Errorf("pass %d: label %q already used by pass %d", i, label, j))
		}
		labels[label] = i
		if _, err := render_graph.ParsePassKind(p.Kind); err != nil {
			errs = append(errs, fmt.Errorf("pass %d: %w", i, err))
		}
		if p.Path == "" {
			errs = append(errs, fmt.Errorf("pass %d: path is required", i))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: invalid config: %w", common.ErrSetup, errors.Join(errs...))
}
