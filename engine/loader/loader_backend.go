package loader

import "io"

// Backend decodes one file format into model-space geometry.
type Backend interface {
	// Load decodes the file at path. External resources resolve relative to the file.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - []Geometry: one entry per primitive
	//   - error: error if the file cannot be read or decoded
	Load(path string) ([]Geometry, error)

	// LoadReader decodes a complete file from r. Only self-contained files can be read this way.
	//
	// Parameters:
	//   - r: the reader
	//
	// Returns:
	//   - []Geometry: one entry per primitive
	//   - error: error if the stream cannot be decoded
	LoadReader(r io.Reader) ([]Geometry, error)
}
