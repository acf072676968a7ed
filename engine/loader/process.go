package loader

import (
	"math"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// process is the post-load fix-up applied to every part of a model. Steps run in a fixed order:
// center, rotate, normalize, scale, smooth normals, offset.
type process struct {
	center    bool
	upright   bool
	normalize bool
	scale     float32
	smooth    bool
	offset    common.Vec3
}

// ProcessOption adjusts geometry after it is decoded and before it is registered.
type ProcessOption func(*process)

// WithCentered moves the center of the model's bounds to the origin.
func WithCentered() ProcessOption {
	return func(p *process) {
		p.center = true
	}
}

// WithUpright converts Z-up geometry, as exported by most CAD tools, to Y-up.
func WithUpright() ProcessOption {
	return func(p *process) {
		p.upright = true
	}
}

// WithNormalized scales the model so its largest dimension is 1.
func WithNormalized() ProcessOption {
	return func(p *process) {
		p.normalize = true
	}
}

// WithScale scales the model uniformly about the origin. Values <= 0 are ignored.
func WithScale(factor float32) ProcessOption {
	return func(p *process) {
		if factor > 0 {
			p.scale = factor
		}
	}
}

// WithSmoothNormals recomputes normals by averaging adjacent faces, replacing any the file carried.
func WithSmoothNormals() ProcessOption {
	return func(p *process) {
		p.smooth = true
	}
}

// WithOffset translates the model after every other step.
func WithOffset(offset common.Vec3) ProcessOption {
	return func(p *process) {
		p.offset = offset
	}
}

func newProcess(options []ProcessOption) process {
	var p process
	for _, opt := range options {
		opt(&p)
	}
	return p
}

func (p process) apply(parts []Geometry) {
	if p.center {
		lo, hi := Bounds(parts)
		c := lo.Add(hi).Scale(-0.5)
		for i := range parts {
			parts[i].translate(c)
		}
	}
	if p.upright {
		rot := common.ModelMatrix(common.Vec3{}, common.Vec3{-math.Pi / 2, 0, 0}, common.Vec3{1, 1, 1})
		for i := range parts {
			parts[i].transform(rot)
		}
	}
	if p.normalize {
		lo, hi := Bounds(parts)
		size := hi.Sub(lo)
		if d := max(size[0], size[1], size[2]); d > 0 {
			for i := range parts {
				parts[i].scale(1 / d)
			}
		}
	}
	if p.scale > 0 {
		for i := range parts {
			parts[i].scale(p.scale)
		}
	}
	if p.smooth {
		for i := range parts {
			parts[i].smoothNormals()
		}
	}
	if p.offset != (common.Vec3{}) {
		for i := range parts {
			parts[i].translate(p.offset)
		}
	}
}
