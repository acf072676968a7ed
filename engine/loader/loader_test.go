package loader

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticBackend returns a copy of its geometry for every load.
type staticBackend []Geometry

func (b staticBackend) Load(string) ([]Geometry, error) {
	return b.LoadReader(nil)
}

func (b staticBackend) LoadReader(io.Reader) ([]Geometry, error) {
	out := make([]Geometry, len(b))
	for i, g := range b {
		g.Vertices = append([]mesh.Vertex3D(nil), g.Vertices...)
		g.Indices = append([]uint32(nil), g.Indices...)
		out[i] = g
	}
	return out, nil
}

func triangle(a, b, c common.Vec3) Geometry {
	return Geometry{
		Name:     "tri",
		Vertices: []mesh.Vertex3D{{Position: a}, {Position: b}, {Position: c}},
		Indices:  []uint32{0, 1, 2},
		Tint:     common.White,
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadReaderGLB(t *testing.T) {
	data, err := os.ReadFile(writeGLB(t))
	require.NoError(t, err)

	lib := mesh.NewLibrary()
	l := NewLoader(lib)
	m, err := l.LoadReader("tri.glb", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, common.White, m.Parts[0].Tint)
	assert.Equal(t, mesh.NoTexture, m.Parts[0].Texture)
	assert.True(t, m.Min.ApproxEqual(common.Vec3{2, 3, 0}, 1e-6), "min %v", m.Min)
	assert.True(t, m.Max.ApproxEqual(common.Vec3{4, 5, 0}, 1e-6), "max %v", m.Max)

	got, err := lib.Mesh(m.Parts[0].Mesh)
	require.NoError(t, err)
	assert.Equal(t, 3, got.IndexCount())

	cached, ok := l.Get("tri.glb")
	require.True(t, ok)
	assert.Equal(t, m, cached)
}

func TestLoadErrorsAreSetupErrors(t *testing.T) {
	lib := mesh.NewLibrary()
	broken := Geometry{Name: "broken", Vertices: []mesh.Vertex3D{{}}, Indices: []uint32{0, 1, 2}}
	l := NewLoader(lib, WithFormat(".mock", staticBackend{triangle(common.Vec3{}, common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}), broken}))

	cases := map[string]func() error{
		"missing file": func() error {
			_, err := l.Load(filepath.Join(t.TempDir(), "gone.glb"))
			return err
		},
		"unknown format": func() error {
			_, err := l.Load(writeFile(t, "model.obj", []byte("v 0 0 0")))
			return err
		},
		"truncated binary": func() error {
			data, err := os.ReadFile(writeGLB(t))
			require.NoError(t, err)
			_, err = l.LoadReader("cut.glb", bytes.NewReader(data[:20]))
			return err
		},
		"no geometry": func() error {
			_, err := l.LoadReader("empty.gltf", strings.NewReader(`{"asset":{"version":"2.0"}}`))
			return err
		},
		"invalid part": func() error {
			_, err := l.LoadReader("model.mock", nil)
			return err
		},
	}
	for name, load := range cases {
		t.Run(name, func(t *testing.T) {
			err := load()
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrSetup)
		})
	}
	assert.Empty(t, l.Models())
	// The valid part of a rejected model is not registered either.
	_, err := lib.Mesh(mesh.Handle(1))
	assert.Error(t, err)
}

func TestProcessCenterNormalizeScale(t *testing.T) {
	backend := staticBackend{triangle(common.Vec3{10, 10, 10}, common.Vec3{14, 10, 10}, common.Vec3{10, 12, 10})}
	l := NewLoader(mesh.NewLibrary(), WithFormat(".MOCK", backend))
	m, err := l.LoadReader("box.mock", nil, WithCentered(), WithNormalized(), WithScale(2), WithOffset(common.Vec3{0, 1, 0}))
	require.NoError(t, err)

	assert.True(t, m.Min.ApproxEqual(common.Vec3{-1, 0.5, 0}, 1e-5), "min %v", m.Min)
	assert.True(t, m.Max.ApproxEqual(common.Vec3{1, 1.5, 0}, 1e-5), "max %v", m.Max)
}

func TestWithModelPrepopulatesCache(t *testing.T) {
	want := Model{Name: "cached", Parts: []Part{{Mesh: 7}}}
	l := NewLoader(mesh.NewLibrary(), WithModel("cached.glb", want))

	got, err := l.Load("cached.glb")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, l.Models(), 1)
}

func TestProcessUpright(t *testing.T) {
	g := []Geometry{{
		Vertices: []mesh.Vertex3D{{Position: common.Vec3{0, 0, 1}, Normal: common.Vec3{0, 0, 1}}},
		Indices:  []uint32{0, 0, 0},
	}}
	newProcess([]ProcessOption{WithUpright()}).apply(g)

	assert.True(t, g[0].Vertices[0].Position.ApproxEqual(common.Vec3{0, 1, 0}, 1e-6))
	assert.True(t, g[0].Vertices[0].Normal.ApproxEqual(common.Vec3{0, 1, 0}, 1e-6))
}

func TestMirroringTransformFlipsWinding(t *testing.T) {
	g := Geometry{
		Vertices: []mesh.Vertex3D{{}, {Position: common.Vec3{1, 0, 0}}, {Position: common.Vec3{0, 1, 0}}},
		Indices:  []uint32{0, 1, 2},
	}
	g.transform(common.ModelMatrix(common.Vec3{}, common.Vec3{}, common.Vec3{-1, 1, 1}))
	assert.Equal(t, []uint32{0, 2, 1}, g.Indices)
	assert.Equal(t, common.Vec3{-1, 0, 0}, g.Vertices[1].Position)
}

func TestSmoothNormals(t *testing.T) {
	g := Geometry{
		Vertices: []mesh.Vertex3D{
			{Position: common.Vec3{0, 0, 0}},
			{Position: common.Vec3{1, 0, 0}},
			{Position: common.Vec3{0, 0, -1}},
			{Position: common.Vec3{5, 5, 5}},
		},
		Indices: []uint32{0, 1, 2},
	}
	g.smoothNormals()
	for i := range 3 {
		assert.True(t, g.Vertices[i].Normal.ApproxEqual(common.Vec3{0, 1, 0}, 1e-6), "vertex %d: %v", i, g.Vertices[i].Normal)
	}
	// Unreferenced vertices fall back to up.
	assert.Equal(t, common.Vec3{0, 1, 0}, g.Vertices[3].Normal)
}

func writeGLB(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{"POSITION": pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "root", Children: []int{1}, Translation: [3]float64{0, 3, 0}},
		{Name: "leaf", Mesh: gltf.Index(0), Translation: [3]float64{2, 0, 0}, Scale: [3]float64{2, 2, 2}},
	}
	doc.Scene = gltf.Index(0)
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}

	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestLoadGLBBakesNodeTransforms(t *testing.T) {
	lib := mesh.NewLibrary()
	l := NewLoader(lib)

	path := writeGLB(t)
	m, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, "tri", m.Parts[0].Name)

	got, err := lib.Mesh(m.Parts[0].Mesh)
	require.NoError(t, err)
	v := got.Vertices()
	assert.True(t, v[0].Position.ApproxEqual(common.Vec3{2, 3, 0}, 1e-6), "%v", v[0].Position)
	assert.True(t, v[1].Position.ApproxEqual(common.Vec3{4, 3, 0}, 1e-6), "%v", v[1].Position)
	assert.True(t, v[2].Position.ApproxEqual(common.Vec3{2, 5, 0}, 1e-6), "%v", v[2].Position)
	// No NORMAL attribute: normals come from the triangle.
	assert.True(t, v[0].Normal.ApproxEqual(common.Vec3{0, 0, 1}, 1e-6), "%v", v[0].Normal)

	again, err := l.Load(path, WithScale(10))
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestNodeMatrixRotation(t *testing.T) {
	s := float32(math.Sqrt(0.5))
	n := &gltf.Node{Rotation: [4]float64{0, float64(s), 0, float64(s)}, Scale: [3]float64{1, 1, 1}}
	m := nodeMatrix(n)
	p := m.MulPoint(common.Vec3{1, 0, 0})
	assert.True(t, common.Vec3{p[0], p[1], p[2]}.ApproxEqual(common.Vec3{0, 0, -1}, 1e-6), "%v", p)
}

func TestModelDrawQueuesEveryPart(t *testing.T) {
	m := Model{Parts: []Part{
		{Mesh: 1, Tint: common.RGBA(1, 0.5, 1, 1)},
		{Mesh: 2, Tint: common.White, Texture: 3},
	}}
	q := mesh.NewQueue()
	m.Draw(q, mesh.At(common.Vec3{1, 2, 3}), common.RGBA(0.5, 1, 1, 1))

	cmds := q.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, common.RGBA(0.5, 0.5, 1, 1), cmds[0].Tint)
	assert.Equal(t, mesh.NoTexture, cmds[0].Texture)
	assert.Equal(t, mesh.TextureHandle(3), cmds[1].Texture)
	assert.Equal(t, common.Vec3{1, 2, 3}, cmds[1].Transform.Position)
}
