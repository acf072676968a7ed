package mesh

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCube(t *testing.T) {
	c := Cube()
	assert.Len(t, c.Vertices(), 24)
	assert.Equal(t, 36, c.IndexCount())
	assert.Len(t, c.VertexData(), 24*32)
	assert.Len(t, c.IndexData(), 36*4)
	assert.InDelta(t, 0.866, c.BoundingRadius(), 1e-3)
}

func TestPrimitiveWindingFacesOutward(t *testing.T) {
	for _, m := range []Mesh{Cube(), Plane(2), Sphere(12, 8)} {
		v, idx := m.Vertices(), m.Indices()
		for i := 0; i < len(idx); i += 3 {
			a, b, c := v[idx[i]], v[idx[i+1]], v[idx[i+2]]
			n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
			if n.Length() < 1e-6 {
				continue // degenerate pole triangles
			}
			assert.Greater(t, n.Dot(a.Normal), float32(0), "%s triangle %d", m.Name(), i/3)
		}
	}
}

func TestNewMeshValidates(t *testing.T) {
	v := []Vertex3D{{}, {}, {}}
	_, err := NewMesh("bad", v, []uint32{0, 1})
	assert.Error(t, err)
	_, err = NewMesh("bad", v, []uint32{0, 1, 3})
	assert.Error(t, err)
	_, err = NewMesh("empty", nil, nil)
	assert.Error(t, err)
}

func TestLibraryUnknownHandles(t *testing.T) {
	lib := NewLibrary()
	h := lib.AddMesh(Cube())

	m, err := lib.Mesh(h)
	require.NoError(t, err)
	assert.Equal(t, "cube", m.Name())

	_, err = lib.Mesh(h + 1)
	assert.ErrorIs(t, err, common.ErrProgramming)
	_, err = lib.Mesh(0)
	assert.ErrorIs(t, err, common.ErrProgramming)
	_, err = lib.Texture(NoTexture)
	assert.ErrorIs(t, err, common.ErrProgramming)

	tex := lib.AddTexture(common.WhiteTexel())
	_, err = lib.Texture(tex)
	assert.NoError(t, err)
}

func TestQueueKeepsOrder(t *testing.T) {
	q := NewQueue()
	q.Draw(1, IdentityTransform(), common.Red)
	q.DrawTextured(2, At(common.Vec3{1, 0, 0}), common.White, 3)
	require.Equal(t, 2, q.Len())
	assert.Equal(t, Handle(1), q.Commands()[0].Mesh)
	assert.Equal(t, NoTexture, q.Commands()[0].Texture)
	assert.Equal(t, TextureHandle(3), q.Commands()[1].Texture)

	q.Reset()
	assert.Equal(t, 0, q.Len())
}

func TestModelUniform(t *testing.T) {
	tr := IdentityTransform()
	tr.Scale = common.Vec3{2, 1, 1}
	u := NewModelUniform(tr, common.Red)

	assert.Equal(t, 144, u.Size())
	assert.Len(t, u.Marshal(), 144)
	assert.Equal(t, float32(2), u.Model[0])
	assert.InDelta(t, 0.5, u.Normal[0], 1e-6)
	assert.Equal(t, common.Red, u.Color)
}
