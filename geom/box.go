// Package geom provides the axis-aligned geometry used by the narrow-band
// machinery: bounding boxes, box intersection and lattice snapping.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned box, closed on all faces. A box may be degenerate
// (zero thickness) along unused axes of a two-dimensional mesh.
type Box struct {
	Min r3.Vec
	Max r3.Vec
}

// Intersect returns the overlap of a and b. ok is false when the boxes are
// disjoint; the returned box is the zero value in that case. Touching faces
// count as an intersection.
func Intersect(a, b Box) (Box, bool) {
	lo := r3.Vec{
		X: math.Max(a.Min.X, b.Min.X),
		Y: math.Max(a.Min.Y, b.Min.Y),
		Z: math.Max(a.Min.Z, b.Min.Z),
	}
	hi := r3.Vec{
		X: math.Min(a.Max.X, b.Max.X),
		Y: math.Min(a.Max.Y, b.Max.Y),
		Z: math.Min(a.Max.Z, b.Max.Z),
	}
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return Box{}, false
	}
	return Box{Min: lo, Max: hi}, true
}

// Expand grows the box by delta on every side along the first dim axes.
func (b Box) Expand(delta float64, dim int) Box {
	for d := 0; d < dim; d++ {
		b.Min = WithComponent(b.Min, d, Component(b.Min, d)-delta)
		b.Max = WithComponent(b.Max, d, Component(b.Max, d)+delta)
	}
	return b
}

// Snap aligns the box outward to a lattice of pitch h anchored at origin:
// along the first dim axes the min corner moves down to the nearest lattice
// point and the max corner moves up past the next one.
func (b Box) Snap(origin r3.Vec, h float64, dim int) Box {
	for d := 0; d < dim; d++ {
		o := Component(origin, d)
		lo := o + h*math.Floor((Component(b.Min, d)-o)/h)
		hi := o + h*(math.Floor((Component(b.Max, d)-o)/h)+1)
		b.Min = WithComponent(b.Min, d, lo)
		b.Max = WithComponent(b.Max, d, hi)
	}
	return b
}

// Size returns the edge lengths of the box.
func (b Box) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Contains reports whether p lies inside b (boundary included).
func (b Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Component returns the axis-th coordinate of v.
func Component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns v with the axis-th coordinate replaced by x.
func WithComponent(v r3.Vec, axis int, x float64) r3.Vec {
	switch axis {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
	return v
}
