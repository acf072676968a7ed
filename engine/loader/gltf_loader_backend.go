package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfLoaderBackend decodes .gltf and .glb files. Node transforms of the default scene are baked
// into the vertices; each primitive becomes one Geometry carrying its base color factor and
// texture. Skins, animations and the rest of the PBR material are ignored.
type gltfLoaderBackend struct{}

var _ Backend = gltfLoaderBackend{}

func (gltfLoaderBackend) Load(path string) ([]Geometry, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	return newGLTFImport(doc, filepath.Dir(path)).geometries()
}

func (gltfLoaderBackend) LoadReader(r io.Reader) ([]Geometry, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	return newGLTFImport(doc, "").geometries()
}

// gltfImport holds per-document state while walking the node tree.
type gltfImport struct {
	doc *gltf.Document
	dir string

	// textures caches decoded images by texture index; nil entries failed to decode.
	textures map[int]*common.TextureStagingData
	// prims caches decoded primitives in model space by mesh index.
	prims map[int][]Geometry
}

func newGLTFImport(doc *gltf.Document, dir string) *gltfImport {
	return &gltfImport{
		doc:      doc,
		dir:      dir,
		textures: make(map[int]*common.TextureStagingData),
		prims:    make(map[int][]Geometry),
	}
}

func (im *gltfImport) geometries() ([]Geometry, error) {
	var out []Geometry
	var visit func(idx int, parent common.Mat4) error
	visit = func(idx int, parent common.Mat4) error {
		if idx < 0 || idx >= len(im.doc.Nodes) {
			return fmt.Errorf("gltf: node %d out of range", idx)
		}
		node := im.doc.Nodes[idx]
		world := common.Mul4(parent, nodeMatrix(node))
		if node.Mesh != nil {
			prims, err := im.mesh(*node.Mesh)
			if err != nil {
				return err
			}
			for _, p := range prims {
				p.Vertices = append([]mesh.Vertex3D(nil), p.Vertices...)
				p.Indices = append([]uint32(nil), p.Indices...)
				p.transform(world)
				out = append(out, p)
			}
		}
		for _, child := range node.Children {
			if err := visit(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	roots := im.roots()
	if len(roots) == 0 {
		// Geometry-only files without a node tree.
		for i := range im.doc.Meshes {
			prims, err := im.mesh(i)
			if err != nil {
				return nil, err
			}
			out = append(out, prims...)
		}
	}
	for _, r := range roots {
		if err := visit(r, common.Identity4()); err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("gltf: no triangle geometry")
	}
	return out, nil
}

// roots returns the nodes of the default scene, or every parentless node when there is none.
func (im *gltfImport) roots() []int {
	if im.doc.Scene != nil && *im.doc.Scene < len(im.doc.Scenes) {
		return im.doc.Scenes[*im.doc.Scene].Nodes
	}
	hasParent := make([]bool, len(im.doc.Nodes))
	for _, n := range im.doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range im.doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (im *gltfImport) mesh(idx int) ([]Geometry, error) {
	if prims, ok := im.prims[idx]; ok {
		return prims, nil
	}
	if idx < 0 || idx >= len(im.doc.Meshes) {
		return nil, fmt.Errorf("gltf: mesh %d out of range", idx)
	}
	gm := im.doc.Meshes[idx]

	var prims []Geometry
	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			common.Logger().Debug("skipping non-triangle primitive", "component", "loader", "mesh", gm.Name, "primitive", pi)
			continue
		}
		g, err := im.primitive(prim)
		if err != nil {
			return nil, fmt.Errorf("gltf: mesh %d primitive %d: %w", idx, pi, err)
		}
		g.Name = primitiveName(gm.Name, idx, pi)
		prims = append(prims, g)
	}
	im.prims[idx] = prims
	return prims, nil
}

func (im *gltfImport) primitive(prim *gltf.Primitive) (Geometry, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return Geometry{}, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(im.doc, im.doc.Accessors[posIdx], nil)
	if err != nil {
		return Geometry{}, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(im.doc, im.doc.Accessors[idx], nil); err != nil {
			return Geometry{}, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(im.doc, im.doc.Accessors[idx], nil); err != nil {
			return Geometry{}, fmt.Errorf("texcoords: %w", err)
		}
	}

	g := Geometry{Vertices: make([]mesh.Vertex3D, len(positions)), Tint: common.White}
	for i, p := range positions {
		g.Vertices[i].Position = p
		if i < len(uvs) {
			g.Vertices[i].UV = uvs[i]
		}
		if i < len(normals) {
			g.Vertices[i].Normal = normals[i]
		}
	}

	if prim.Indices != nil {
		if g.Indices, err = modeler.ReadIndices(im.doc, im.doc.Accessors[*prim.Indices], nil); err != nil {
			return Geometry{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		g.Indices = make([]uint32, len(positions))
		for i := range g.Indices {
			g.Indices[i] = uint32(i)
		}
	}
	if len(normals) == 0 {
		g.smoothNormals()
	}

	if prim.Material != nil && *prim.Material < len(im.doc.Materials) {
		im.material(im.doc.Materials[*prim.Material], &g)
	}
	return g, nil
}

func (im *gltfImport) material(m *gltf.Material, g *Geometry) {
	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return
	}
	f := pbr.BaseColorFactorOrDefault()
	g.Tint = common.RGBA(float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3]))
	if pbr.BaseColorTexture != nil {
		g.Texture = im.texture(pbr.BaseColorTexture.Index)
	}
}

// texture decodes a base color image. A missing or undecodable image leaves the part untextured
// and is logged rather than failing the whole model.
func (im *gltfImport) texture(idx int) *common.TextureStagingData {
	if tex, ok := im.textures[idx]; ok {
		return tex
	}
	tex, err := im.decodeTexture(idx)
	if err != nil {
		common.Logger().Warn("skipping texture", "component", "loader", "texture", idx, "err", err)
	}
	im.textures[idx] = tex
	return tex
}

func (im *gltfImport) decodeTexture(idx int) (*common.TextureStagingData, error) {
	if idx < 0 || idx >= len(im.doc.Textures) || im.doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture has no image")
	}
	src := *im.doc.Textures[idx].Source
	if src < 0 || src >= len(im.doc.Images) {
		return nil, fmt.Errorf("image %d out of range", src)
	}
	img := im.doc.Images[src]

	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(im.doc, im.doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, err
		}
		return common.DecodeTexture(bytes.NewReader(raw))
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return nil, err
		}
		return common.DecodeTexture(bytes.NewReader(raw))
	case img.URI != "" && im.dir != "":
		return common.LoadTexture(filepath.Join(im.dir, img.URI))
	default:
		return nil, fmt.Errorf("image %d cannot be resolved", src)
	}
}

func primitiveName(meshName string, meshIdx, primIdx int) string {
	if meshName == "" {
		meshName = fmt.Sprintf("mesh_%d", meshIdx)
	}
	if primIdx == 0 {
		return meshName
	}
	return fmt.Sprintf("%s_prim%d", meshName, primIdx)
}

// nodeMatrix returns the node's local transform, from its matrix when set and from its
// translation, rotation and scale otherwise.
func nodeMatrix(n *gltf.Node) common.Mat4 {
	var m common.Mat4
	if n.Matrix != [16]float64{} && n.Matrix != gltf.DefaultMatrix {
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t, r, s := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	x, y, z, w := float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])
	sx, sy, sz := float32(s[0]), float32(s[1]), float32(s[2])
	return common.Mat4{
		(1 - 2*(y*y+z*z)) * sx, 2 * (x*y + z*w) * sx, 2 * (x*z - y*w) * sx, 0,
		2 * (x*y - z*w) * sy, (1 - 2*(x*x+z*z)) * sy, 2 * (y*z + x*w) * sy, 0,
		2 * (x*z + y*w) * sz, 2 * (y*z - x*w) * sz, (1 - 2*(x*x+y*y)) * sz, 0,
		float32(t[0]), float32(t[1]), float32(t[2]), 1,
	}
}
