package mesh

import (
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxkit/levelset/core"
	"github.com/voxkit/levelset/geom"
)

// Grid is a uniform Cartesian grid. Cells are identified by their linear
// index i + nx*(j + ny*k). Unused axes of a 2D grid hold a single
// zero-thickness layer.
type Grid struct {
	dim    int
	origin r3.Vec
	n      [3]int
	h      [3]float64
}

var _ Cartesian = (*Grid)(nil)

// NewGrid creates a uniform grid with the given origin, edge lengths and
// per-axis cell counts. Only the first dim components of lengths and cells
// are consulted.
func NewGrid(dim int, origin r3.Vec, lengths r3.Vec, cells [3]int) (*Grid, error) {
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrBadDimension, dim)
	}
	g := &Grid{dim: dim, origin: origin, n: [3]int{1, 1, 1}}
	for d := 0; d < dim; d++ {
		l := geom.Component(lengths, d)
		if cells[d] <= 0 || l <= 0 {
			return nil, fmt.Errorf("%w: axis %d", ErrBadExtent, d)
		}
		g.n[d] = cells[d]
		g.h[d] = l / float64(cells[d])
	}
	return g, nil
}

// Dimension returns the number of spatial dimensions.
func (g *Grid) Dimension() int { return g.dim }

// CellCount returns the total number of cells.
func (g *Grid) CellCount() int { return g.n[0] * g.n[1] * g.n[2] }

// CellIDs iterates all cell ids in ascending order.
func (g *Grid) CellIDs() iter.Seq[core.CellID] {
	return func(yield func(core.CellID) bool) {
		count := g.CellCount()
		for id := 0; id < count; id++ {
			if !yield(core.CellID(id)) {
				return
			}
		}
	}
}

// Spacing returns the cell edge length along axis.
func (g *Grid) Spacing(axis int) float64 { return g.h[axis] }

// CellSpacing returns the cell edge length along axis; every cell of a
// uniform grid shares the same spacing.
func (g *Grid) CellSpacing(_ core.CellID, axis int) float64 { return g.h[axis] }

// CellLinearID converts a cell multi-index to a cell id.
func (g *Grid) CellLinearID(i, j, k int) core.CellID {
	return core.CellID(i + g.n[0]*(j+g.n[1]*k))
}

func (g *Grid) cellIndex(id core.CellID) [3]int {
	l := int(id)
	return [3]int{
		l % g.n[0],
		(l / g.n[0]) % g.n[1],
		l / (g.n[0] * g.n[1]),
	}
}

// FaceNeighbor returns the cell across face f, or ok=false on the boundary.
func (g *Grid) FaceNeighbor(id core.CellID, face int) (core.CellID, bool) {
	if int(id) >= g.CellCount() || face < 0 || face >= 2*g.dim {
		return 0, false
	}
	idx := g.cellIndex(id)
	axis := face / 2
	if face%2 == 0 {
		idx[axis]--
	} else {
		idx[axis]++
	}
	if idx[axis] < 0 || idx[axis] >= g.n[axis] {
		return 0, false
	}
	return g.CellLinearID(idx[0], idx[1], idx[2]), true
}

// BoundingBox returns the grid bounding box.
func (g *Grid) BoundingBox() geom.Box {
	max := g.origin
	for d := 0; d < g.dim; d++ {
		max = geom.WithComponent(max, d, geom.Component(g.origin, d)+float64(g.n[d])*g.h[d])
	}
	return geom.Box{Min: g.origin, Max: max}
}

// CellVertex returns the corner-th vertex of the cell.
func (g *Grid) CellVertex(id core.CellID, corner int) r3.Vec {
	idx := g.cellIndex(id)
	v := g.origin
	for d := 0; d < g.dim; d++ {
		off := idx[d] + (corner>>d)&1
		v = geom.WithComponent(v, d, geom.Component(g.origin, d)+float64(off)*g.h[d])
	}
	return v
}

// ClosestVertex returns the multi-index of the grid vertex nearest to p,
// clamped to the grid bounds.
func (g *Grid) ClosestVertex(p r3.Vec) [3]int {
	var idx [3]int
	for d := 0; d < g.dim; d++ {
		i := int(math.Round((geom.Component(p, d) - geom.Component(g.origin, d)) / g.h[d]))
		if i < 0 {
			i = 0
		}
		if i > g.n[d] {
			i = g.n[d]
		}
		idx[d] = i
	}
	return idx
}
