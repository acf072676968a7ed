package overlay

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// SpriteID identifies a registered sprite texture. The zero SpriteID is never valid.
type SpriteID uint32

// Sprites registers the RGBA textures overlay sprites sample from.
type Sprites struct {
	mu       sync.RWMutex
	textures []*common.TextureStagingData
}

// NewSprites creates an empty registry.
func NewSprites() *Sprites {
	return &Sprites{}
}

// Add registers a texture and returns its id.
//
// Parameters:
//   - t: the sprite pixels
//
// Returns:
//   - SpriteID: the id to draw with
//   - error: an error wrapping common.ErrProgramming if t is nil
func (s *Sprites) Add(t *common.TextureStagingData) (SpriteID, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: nil sprite texture", common.ErrProgramming)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textures = append(s.textures, t)
	return SpriteID(len(s.textures)), nil
}

// Get resolves an id. Unknown ids are a programming error.
func (s *Sprites) Get(id SpriteID) (*common.TextureStagingData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == 0 || int(id) > len(s.textures) {
		return nil, fmt.Errorf("%w: unknown sprite %d", common.ErrProgramming, id)
	}
	return s.textures[id-1], nil
}

// Len returns the number of registered sprites.
func (s *Sprites) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.textures)
}
