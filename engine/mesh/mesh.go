package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

type mesh struct {
	name     string
	vertices []Vertex3D
	indices  []uint32
	radius   float32
}

// Mesh is immutable indexed triangle geometry on the CPU. The mesh stage uploads it to GPU
// buffers the first time it is drawn.
type Mesh interface {
	// Name returns the debug name.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns the vertex array.
	//
	// Returns:
	//   - []Vertex3D: the vertices
	Vertices() []Vertex3D

	// Indices returns the triangle list indices.
	//
	// Returns:
	//   - []uint32: the indices, three per triangle
	Indices() []uint32

	// VertexData returns the vertices as bytes ready for upload.
	//
	// Returns:
	//   - []byte: the packed vertex bytes
	VertexData() []byte

	// IndexData returns the indices as bytes ready for upload.
	//
	// Returns:
	//   - []byte: the packed index bytes
	IndexData() []byte

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the distance from the origin to the farthest vertex.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Mesh = &mesh{}

// NewMesh validates and builds a mesh. Indices must form whole triangles and reference
// existing vertices.
//
// Parameters:
//   - name: a debug name
//   - vertices: the vertex array
//   - indices: the triangle list indices
//
// Returns:
//   - Mesh: the mesh
//   - error: an error if the geometry is malformed
func NewMesh(name string, vertices []Vertex3D, indices []uint32) (Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh %s: empty geometry", name)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %s: %d indices do not form whole triangles", name, len(indices))
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return nil, fmt.Errorf("mesh %s: index %d out of range for %d vertices", name, i, len(vertices))
		}
	}

	m := &mesh{name: name, vertices: vertices, indices: indices}
	for _, v := range vertices {
		m.radius = max(m.radius, v.Position.Length())
	}
	return m, nil
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []Vertex3D {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) VertexData() []byte {
	return common.SliceToBytes(m.vertices)
}

func (m *mesh) IndexData() []byte {
	return common.SliceToBytes(m.indices)
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) BoundingRadius() float32 {
	return m.radius
}
