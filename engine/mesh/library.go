package mesh

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Handle identifies a mesh registered with a Library. The zero Handle is never valid.
type Handle uint32

// TextureHandle identifies a texture registered with a Library. NoTexture means untextured.
type TextureHandle uint32

// NoTexture marks a draw that samples the default white texel.
const NoTexture TextureHandle = 0

type library struct {
	mu       *sync.RWMutex
	meshes   []Mesh
	textures []*common.TextureStagingData
}

// Library owns the meshes and textures a frame may reference by handle. Registrations are
// permanent for the lifetime of the library.
type Library interface {
	// AddMesh registers a mesh.
	//
	// Parameters:
	//   - m: the mesh
	//
	// Returns:
	//   - Handle: the handle to draw it with
	AddMesh(m Mesh) Handle

	// AddTexture registers RGBA texture data.
	//
	// Parameters:
	//   - t: the decoded texture
	//
	// Returns:
	//   - TextureHandle: the handle to sample it with
	AddTexture(t *common.TextureStagingData) TextureHandle

	// Mesh resolves a mesh handle.
	//
	// Parameters:
	//   - h: the handle
	//
	// Returns:
	//   - Mesh: the mesh
	//   - error: an error wrapping common.ErrProgramming for an unknown handle
	Mesh(h Handle) (Mesh, error)

	// Texture resolves a texture handle.
	//
	// Parameters:
	//   - h: the handle, which must not be NoTexture
	//
	// Returns:
	//   - *common.TextureStagingData: the texture data
	//   - error: an error wrapping common.ErrProgramming for an unknown handle
	Texture(h TextureHandle) (*common.TextureStagingData, error)
}

var _ Library = &library{}

// NewLibrary creates an empty Library.
func NewLibrary() Library {
	return &library{mu: &sync.RWMutex{}}
}

func (l *library) AddMesh(m Mesh) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.meshes = append(l.meshes, m)
	return Handle(len(l.meshes))
}

func (l *library) AddTexture(t *common.TextureStagingData) TextureHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.textures = append(l.textures, t)
	return TextureHandle(len(l.textures))
}

func (l *library) Mesh(h Handle) (Mesh, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if h == 0 || int(h) > len(l.meshes) {
		return nil, fmt.Errorf("%w: unknown mesh handle %d", common.ErrProgramming, h)
	}
	return l.meshes[h-1], nil
}

func (l *library) Texture(h TextureHandle) (*common.TextureStagingData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if h == NoTexture || int(h) > len(l.textures) {
		return nil, fmt.Errorf("%w: unknown texture handle %d", common.ErrProgramming, h)
	}
	return l.textures[h-1], nil
}
