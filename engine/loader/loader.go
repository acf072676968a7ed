// Package loader reads model files into a mesh library so the mesh pass can draw them.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	lib      mesh.Library
	backends map[string]Backend
	models   map[string]Model
}

// Loader decodes model files, registers their primitives and textures with a mesh library and
// caches the result by path.
type Loader interface {
	// Load imports a model file. The format is chosen by extension; .gltf and .glb are built in.
	// A path that was loaded before returns the cached model and ignores options.
	//
	// Parameters:
	//   - path: the model file
	//   - options: post-load processing such as WithCentered and WithNormalized
	//
	// Returns:
	//   - Model: the registered model
	//   - error: an error wrapping common.ErrSetup if the file cannot be loaded
	Load(path string, options ...ProcessOption) (Model, error)

	// LoadReader imports a self-contained model from r and caches it under name. The format is
	// chosen by the extension of name.
	//
	// Parameters:
	//   - name: the cache key, whose extension selects the format
	//   - r: the reader providing the file contents
	//   - options: post-load processing
	//
	// Returns:
	//   - Model: the registered model
	//   - error: an error wrapping common.ErrSetup if the stream cannot be loaded
	LoadReader(name string, r io.Reader, options ...ProcessOption) (Model, error)

	// Get returns a cached model.
	//
	// Parameters:
	//   - key: the path or name it was loaded under
	//
	// Returns:
	//   - Model: the model
	//   - bool: false if nothing is cached under key
	Get(key string) (Model, bool)

	// Models returns a copy of the cache.
	Models() map[string]Model
}

var _ Loader = &loader{}

// NewLoader creates a Loader registering into lib.
//
// Parameters:
//   - lib: the mesh library, usually the render graph's
//   - options: builder options such as WithFormat
//
// Returns:
//   - Loader: the loader
func NewLoader(lib mesh.Library, options ...LoaderBuilderOption) Loader {
	l := &loader{
		lib: lib,
		backends: map[string]Backend{
			".gltf": gltfLoaderBackend{},
			".glb":  gltfLoaderBackend{},
		},
		models: make(map[string]Model),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loader) Load(path string, options ...ProcessOption) (Model, error) {
	if m, ok := l.Get(path); ok {
		return m, nil
	}
	backend, err := l.backend(path)
	if err != nil {
		return Model{}, err
	}
	parts, err := backend.Load(path)
	if err != nil {
		return Model{}, fmt.Errorf("%w: load %s: %w", common.ErrSetup, path, err)
	}
	return l.register(path, parts, options)
}

func (l *loader) LoadReader(name string, r io.Reader, options ...ProcessOption) (Model, error) {
	if m, ok := l.Get(name); ok {
		return m, nil
	}
	backend, err := l.backend(name)
	if err != nil {
		return Model{}, err
	}
	parts, err := backend.LoadReader(r)
	if err != nil {
		return Model{}, fmt.Errorf("%w: load %s: %w", common.ErrSetup, name, err)
	}
	return l.register(name, parts, options)
}

func (l *loader) backend(path string) (Backend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	b, ok := l.backends[ext]
	if !ok {
		return nil, fmt.Errorf("%w: load %s: unsupported format %q", common.ErrSetup, path, ext)
	}
	return b, nil
}

// register processes parts, validates them as meshes and adds them to the library. Nothing is
// registered unless every part is valid.
func (l *loader) register(key string, parts []Geometry, options []ProcessOption) (Model, error) {
	newProcess(options).apply(parts)

	meshes := make([]mesh.Mesh, len(parts))
	for i, g := range parts {
		m, err := mesh.NewMesh(g.Name, g.Vertices, g.Indices)
		if err != nil {
			return Model{}, fmt.Errorf("%w: load %s: %w", common.ErrSetup, key, err)
		}
		meshes[i] = m
	}

	model := Model{Name: strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))}
	model.Min, model.Max = Bounds(parts)
	for i, g := range parts {
		p := Part{Name: g.Name, Mesh: l.lib.AddMesh(meshes[i]), Tint: g.Tint}
		if g.Texture != nil {
			p.Texture = l.lib.AddTexture(g.Texture)
		}
		model.Parts = append(model.Parts, p)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// A concurrent load of the same key may have won; keep the first.
	if m, ok := l.models[key]; ok {
		return m, nil
	}
	l.models[key] = model
	common.Logger().Debug("model loaded", "component", "loader", "model", key, "parts", len(model.Parts))
	return model, nil
}

func (l *loader) Get(key string) (Model, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.models[key]
	return m, ok
}

func (l *loader) Models() map[string]Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]Model, len(l.models))
	for k, v := range l.models {
		out[k] = v
	}
	return out
}
