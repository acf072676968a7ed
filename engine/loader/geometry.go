package loader

import (
	"math"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
)

// Geometry is one decoded primitive before it is registered with a mesh library.
type Geometry struct {
	Name     string
	Vertices []mesh.Vertex3D
	Indices  []uint32
	// Tint is the material base color, white when the file has none.
	Tint common.Color
	// Texture is the decoded base color texture, or nil.
	Texture *common.TextureStagingData
}

// Bounds returns the axis-aligned bounds of every vertex in parts.
func Bounds(parts []Geometry) (lo, hi common.Vec3) {
	inf := float32(math.Inf(1))
	lo = common.Vec3{inf, inf, inf}
	hi = common.Vec3{-inf, -inf, -inf}
	for _, g := range parts {
		for _, v := range g.Vertices {
			for i := range 3 {
				lo[i] = min(lo[i], v.Position[i])
				hi[i] = max(hi[i], v.Position[i])
			}
		}
	}
	if lo[0] > hi[0] {
		return common.Vec3{}, common.Vec3{}
	}
	return lo, hi
}

func (g *Geometry) translate(offset common.Vec3) {
	for i := range g.Vertices {
		g.Vertices[i].Position = g.Vertices[i].Position.Add(offset)
	}
}

func (g *Geometry) scale(factor float32) {
	for i := range g.Vertices {
		g.Vertices[i].Position = g.Vertices[i].Position.Scale(factor)
	}
}

// transform bakes m into positions and its normal matrix into normals. Mirroring transforms flip
// the winding so front faces stay front faces.
func (g *Geometry) transform(m common.Mat4) {
	n := common.NormalMatrix(m)
	for i := range g.Vertices {
		p := m.MulPoint(g.Vertices[i].Position)
		g.Vertices[i].Position = common.Vec3{p[0], p[1], p[2]}
		g.Vertices[i].Normal = mulDir(n, g.Vertices[i].Normal).Normalize()
	}
	if det3(m) < 0 {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			g.Indices[i+1], g.Indices[i+2] = g.Indices[i+2], g.Indices[i+1]
		}
	}
}

// smoothNormals replaces the normals with area-weighted averages of the adjacent face normals.
func (g *Geometry) smoothNormals() {
	acc := make([]common.Vec3, len(g.Vertices))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if int(max(i0, i1, i2)) >= len(g.Vertices) {
			continue
		}
		p0 := g.Vertices[i0].Position
		face := g.Vertices[i1].Position.Sub(p0).Cross(g.Vertices[i2].Position.Sub(p0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			acc[idx] = acc[idx].Add(face)
		}
	}
	for i := range g.Vertices {
		if acc[i].Length() < 1e-12 {
			g.Vertices[i].Normal = common.Vec3{0, 1, 0}
			continue
		}
		g.Vertices[i].Normal = acc[i].Normalize()
	}
}

// mulDir multiplies the upper 3x3 of m with d.
func mulDir(m common.Mat4, d common.Vec3) common.Vec3 {
	var out common.Vec3
	for row := range 3 {
		out[row] = m[row]*d[0] + m[4+row]*d[1] + m[8+row]*d[2]
	}
	return out
}

func det3(m common.Mat4) float32 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) -
		m[4]*(m[1]*m[10]-m[9]*m[2]) +
		m[8]*(m[1]*m[6]-m[5]*m[2])
}

// Part is one registered primitive of a Model.
type Part struct {
	Name    string
	Mesh    mesh.Handle
	Texture mesh.TextureHandle
	Tint    common.Color
}

// Model is a loaded file whose primitives are registered with a mesh library.
type Model struct {
	Name  string
	Parts []Part
	// Min and Max bound the processed geometry in model space.
	Min, Max common.Vec3
}

// Draw queues every part of the model with the same transform. tint multiplies each part's own
// material color.
//
// Parameters:
//   - q: the frame's mesh queue
//   - t: the world transform
//   - tint: the RGBA multiplier
func (m Model) Draw(q *mesh.Queue, t mesh.Transform, tint common.Color) {
	for _, p := range m.Parts {
		c := common.Color{p.Tint[0] * tint[0], p.Tint[1] * tint[1], p.Tint[2] * tint[2], p.Tint[3] * tint[3]}
		if p.Texture == mesh.NoTexture {
			q.Draw(p.Mesh, t, c)
			continue
		}
		q.DrawTextured(p.Mesh, t, c, p.Texture)
	}
}
