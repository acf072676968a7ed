package camera

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
)

// Ray is a half-line used to pick objects under the cursor. Direction is unit length, or zero for
// a degenerate ray that hits nothing.
type Ray struct {
	Origin    common.Vec3
	Direction common.Vec3
}

// NewRay builds a ray, normalizing dir.
func NewRay(origin, dir common.Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) common.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenRay returns the ray through pixel (x, y) of a width x height surface, with y growing
// downward. The ray starts on the near plane. The aspect ratio follows the surface size, as the
// world uniforms do.
//
// Parameters:
//   - x, y: the pixel position
//   - width, height: the surface size in pixels
//
// Returns:
//   - Ray: the picking ray, degenerate when the surface is empty
func (s State) ScreenRay(x, y float32, width, height uint32) Ray {
	if width == 0 || height == 0 {
		return Ray{Origin: s.Position}
	}
	ndcX := 2*x/float32(width) - 1
	ndcY := 1 - 2*y/float32(height)
	aspect := float32(width) / float32(height)

	halfH := math32.Tan(s.Fov / 2)
	// dir has a unit forward component, so scaling it by Near lands on the near plane.
	dir := s.Forward.
		Add(s.Right.Scale(ndcX * halfH * aspect)).
		Add(s.Up.Scale(ndcY * halfH))
	return NewRay(s.Position.Add(dir.Scale(s.Near)), dir)
}

// HitBox intersects the ray with the axis-aligned box [lo, hi] using the slab method. A ray
// starting inside the box hits its far side.
//
// Returns:
//   - float32: the distance to the nearest hit in front of the origin
//   - bool: false when the box is missed or lies behind the ray
func (r Ray) HitBox(lo, hi common.Vec3) (float32, bool) {
	if r.Direction == (common.Vec3{}) {
		return 0, false
	}
	tMin, tMax := math32.Inf(-1), math32.Inf(1)
	for i := range 3 {
		o, d := r.Origin[i], r.Direction[i]
		if math32.Abs(d) < 1e-7 {
			if o < lo[i] || o > hi[i] {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo[i]-o)/d, (hi[i]-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return nearestAhead(tMin, tMax)
}

// HitSphere intersects the ray with a sphere.
//
// Returns:
//   - float32: the distance to the nearest hit in front of the origin
//   - bool: false when the sphere is missed or lies behind the ray
func (r Ray) HitSphere(center common.Vec3, radius float32) (float32, bool) {
	a := r.Direction.Dot(r.Direction)
	if a == 0 {
		return 0, false
	}
	oc := r.Origin.Sub(center)
	b := 2 * oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	return nearestAhead((-b-sq)/(2*a), (-b+sq)/(2*a))
}

func nearestAhead(near, far float32) (float32, bool) {
	switch {
	case near > 0:
		return near, true
	case far > 0:
		return far, true
	default:
		return 0, false
	}
}

// ColliderShape selects the geometry of a Collider.
type ColliderShape int

const (
	// ColliderBox is an axis-aligned box given by its half extents.
	ColliderBox ColliderShape = iota
	// ColliderSphere is a sphere given by its radius.
	ColliderSphere
)

// Collider is a cheap pick shape placed with an object's position and scale.
type Collider struct {
	Shape       ColliderShape
	HalfExtents common.Vec3
	Radius      float32
}

// BoxCollider returns a box collider of the given full size.
func BoxCollider(size common.Vec3) Collider {
	return Collider{Shape: ColliderBox, HalfExtents: size.Scale(0.5)}
}

// SphereCollider returns a sphere collider.
func SphereCollider(radius float32) Collider {
	return Collider{Shape: ColliderSphere, Radius: radius}
}

// Intersect tests the ray against the collider placed at position and scaled by scale. Spheres
// use the mean of the three scale factors.
//
// Parameters:
//   - r: the picking ray
//   - position: the object position
//   - scale: the object scale
//
// Returns:
//   - float32: the hit distance
//   - bool: whether the collider was hit
func (c Collider) Intersect(r Ray, position, scale common.Vec3) (float32, bool) {
	switch c.Shape {
	case ColliderSphere:
		s := (scale[0] + scale[1] + scale[2]) / 3
		return r.HitSphere(position, c.Radius*s)
	default:
		half := common.Vec3{c.HalfExtents[0] * scale[0], c.HalfExtents[1] * scale[1], c.HalfExtents[2] * scale[2]}
		return r.HitBox(position.Sub(half), position.Add(half))
	}
}

// Pickable is one candidate of Pick.
type Pickable struct {
	ID       int
	Collider Collider
	Position common.Vec3
	Scale    common.Vec3
}

// Hit is the result of a successful pick.
type Hit struct {
	ID       int
	Distance float32
	Point    common.Vec3
}

// Pick returns the nearest candidate the ray hits.
//
// Parameters:
//   - r: the picking ray
//   - candidates: the objects to test
//
// Returns:
//   - Hit: the nearest hit
//   - bool: false when nothing is hit
func Pick(r Ray, candidates []Pickable) (Hit, bool) {
	var best Hit
	found := false
	for _, c := range candidates {
		d, ok := c.Collider.Intersect(r, c.Position, c.Scale)
		if !ok || (found && d >= best.Distance) {
			continue
		}
		best = Hit{ID: c.ID, Distance: d, Point: r.At(d)}
		found = true
	}
	return best, found
}
