// Package shader_cache resolves shader identifiers to WGSL source text. A source is either a static
// string compiled into the program or a file on disk that the hot-reload watcher keeps current.
package shader_cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Origin describes where a cached source comes from.
type Origin int

const (
	// OriginStatic is a source string held in memory for the lifetime of the process.
	OriginStatic Origin = iota

	// OriginFile is a source read from a path on every resolve and eligible for hot reload.
	OriginFile
)

func (o Origin) String() string {
	switch o {
	case OriginStatic:
		return "static"
	case OriginFile:
		return "file"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Entry is one registered shader source.
type Entry struct {
	ID     string
	Origin Origin
	// Path is the cleaned file path for OriginFile entries.
	Path string
	// Static is the source text for OriginStatic entries.
	Static string
}

type shaderCache struct {
	mu      *sync.Mutex
	entries map[string]Entry
}

// ShaderCache maps shader identifiers to their sources.
type ShaderCache interface {
	// AddStatic registers an in-memory source under id, replacing any previous entry.
	//
	// Parameters:
	//   - id: the shader identifier
	//   - source: the WGSL source
	AddStatic(id, source string)

	// AddFile registers a file-backed source under id, replacing any previous entry.
	// The file must exist at registration time.
	//
	// Parameters:
	//   - id: the shader identifier
	//   - path: the path of the WGSL file
	//
	// Returns:
	//   - error: an error wrapping common.ErrSetup if the file cannot be accessed
	AddFile(id, path string) error

	// Entry returns the registration for id.
	//
	// Parameters:
	//   - id: the shader identifier
	//
	// Returns:
	//   - Entry: the entry
	//   - bool: false if id is unknown
	Entry(id string) (Entry, bool)

	// Resolve returns the current source text for id. File-backed entries are read from disk.
	//
	// Parameters:
	//   - id: the shader identifier
	//
	// Returns:
	//   - string: the WGSL source
	//   - error: common.ErrProgramming for an unknown id, or the read error
	Resolve(id string) (string, error)

	// IDs returns every registered identifier in sorted order.
	IDs() []string
}

var _ ShaderCache = &shaderCache{}

// NewShaderCache creates an empty cache and applies options.
//
// Parameters:
//   - options: optional builder options such as WithStatic and WithFile
//
// Returns:
//   - ShaderCache: the cache
//   - error: the first error returned by a WithFile option
func NewShaderCache(options ...ShaderCacheBuilderOption) (ShaderCache, error) {
	c := &shaderCache{
		mu:      &sync.Mutex{},
		entries: make(map[string]Entry),
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *shaderCache) AddStatic(id, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = Entry{ID: id, Origin: OriginStatic, Static: source}
}

func (c *shaderCache) AddFile(id, path string) error {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return fmt.Errorf("%w: shader %q: %v", common.ErrSetup, id, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: shader %q: %s is a directory", common.ErrSetup, id, clean)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = Entry{ID: id, Origin: OriginFile, Path: clean}
	return nil
}

func (c *shaderCache) Entry(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}

func (c *shaderCache) Resolve(id string) (string, error) {
	e, ok := c.Entry(id)
	if !ok {
		return "", fmt.Errorf("%w: unknown shader %q", common.ErrProgramming, id)
	}
	if e.Origin == OriginStatic {
		return e.Static, nil
	}
	return ReadSource(e.Path)
}

func (c *shaderCache) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads a WGSL file in full. A leading UTF-8 byte order mark is dropped. An empty or
// whitespace-only file is reported as an error since editors commonly truncate before writing.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - string: the source text
//   - error: the read error, or an error for an empty file
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	return string(data), nil
}
