package mesh

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
)

// cubeFaces lists each face as its normal followed by four corners, counter-clockwise seen from outside.
var cubeFaces = [6][5]common.Vec3{
	{{0, 0, 1}, {-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}},
	{{0, 0, -1}, {0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}},
	{{0, 1, 0}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}},
	{{0, -1, 0}, {-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}},
	{{1, 0, 0}, {0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}},
	{{-1, 0, 0}, {-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}},
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Cube returns a unit cube centered at the origin with per-face normals (24 vertices, 36 indices).
func Cube() Mesh {
	vertices := make([]Vertex3D, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range cubeFaces {
		base := uint32(len(vertices))
		for i, corner := range face[1:] {
			vertices = append(vertices, Vertex3D{Position: corner, Normal: face[0], UV: quadUVs[i]})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	m, _ := NewMesh("cube", vertices, indices)
	return m
}

// Plane returns a square in the XZ plane facing +Y with the given edge length.
func Plane(size float32) Mesh {
	h := size / 2
	up := common.Vec3{0, 1, 0}
	vertices := []Vertex3D{
		{Position: common.Vec3{-h, 0, -h}, Normal: up, UV: quadUVs[0]},
		{Position: common.Vec3{h, 0, -h}, Normal: up, UV: quadUVs[1]},
		{Position: common.Vec3{h, 0, h}, Normal: up, UV: quadUVs[2]},
		{Position: common.Vec3{-h, 0, h}, Normal: up, UV: quadUVs[3]},
	}
	m, _ := NewMesh("plane", vertices, []uint32{0, 2, 1, 2, 0, 3})
	return m
}

// Sphere returns a UV sphere of radius 0.5. segments and rings are clamped to at least 3 and 2.
func Sphere(segments, rings int) Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]Vertex3D, 0, (segments+1)*(rings+1))
	for ring := 0; ring <= rings; ring++ {
		sinPhi, cosPhi := math32.Sincos(math32.Pi * float32(ring) / float32(rings))
		for seg := 0; seg <= segments; seg++ {
			sinTheta, cosTheta := math32.Sincos(2 * math32.Pi * float32(seg) / float32(segments))
			n := common.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			vertices = append(vertices, Vertex3D{
				Position: n.Scale(0.5),
				Normal:   n,
				UV:       [2]float32{float32(seg) / float32(segments), float32(ring) / float32(rings)},
			})
		}
	}

	indices := make([]uint32, 0, segments*rings*6)
	stride := uint32(segments + 1)
	for ring := range uint32(rings) {
		for seg := range uint32(segments) {
			cur := ring*stride + seg
			next := cur + stride
			indices = append(indices, cur, cur+1, next, cur+1, next+1, next)
		}
	}
	m, _ := NewMesh("sphere", vertices, indices)
	return m
}
