// Package mesh defines the mesh contracts the level-set engines consume and
// provides reference implementations: a uniform Cartesian grid and an
// adaptive octree.
package mesh

import (
	"errors"
	"iter"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxkit/levelset/core"
	"github.com/voxkit/levelset/geom"
)

var (
	// ErrUnknownCell is returned for a cell id the mesh does not hold.
	ErrUnknownCell = errors.New("mesh: unknown cell id")
	// ErrBadDimension is returned for dimensions other than 2 or 3.
	ErrBadDimension = errors.New("mesh: dimension must be 2 or 3")
	// ErrBadExtent is returned for non-positive mesh extents or cell counts.
	ErrBadExtent = errors.New("mesh: extents and cell counts must be positive")
	// ErrNotSiblings is returned when a coarsening request does not name a
	// complete sibling block.
	ErrNotSiblings = errors.New("mesh: cells do not form a complete sibling block")
)

// Mesh is the part of a mesh kernel the level-set engines consume.
type Mesh interface {
	Dimension() int

	CellCount() int

	// CellIDs iterates all cell ids in ascending order.
	CellIDs() iter.Seq[core.CellID]

	// FaceNeighbor returns the cell across face f of cell id. Faces are
	// numbered 2*axis for the low side and 2*axis+1 for the high side of each
	// axis. ok is false on the domain boundary and for an unknown id.
	FaceNeighbor(id core.CellID, face int) (core.CellID, bool)

	BoundingBox() geom.Box

	// CellVertex returns the corner-th vertex of the cell. Corners are
	// indexed lexicographically: corner 0 is the minimum corner and corner
	// 2^Dimension()-1 the diagonally opposite maximum corner.
	CellVertex(id core.CellID, corner int) r3.Vec

	// CellSpacing is the local edge length of the cell along axis.
	CellSpacing(id core.CellID, axis int) float64
}

// Cartesian is a mesh with uniform per-axis spacing and linear cell indexing.
type Cartesian interface {
	Mesh

	// Spacing is the cell edge length along axis, identical for every cell.
	Spacing(axis int) float64

	// ClosestVertex returns the multi-index of the grid vertex nearest to p,
	// clamped to the grid bounds.
	ClosestVertex(p r3.Vec) [3]int

	// CellLinearID converts a cell multi-index to a cell id.
	CellLinearID(i, j, k int) core.CellID
}

// Octree is an adaptive mesh organized in refinement levels, where level 0 is
// the root and each level halves the cell size.
type Octree interface {
	Mesh

	// CellLevel returns the refinement level of the cell.
	CellLevel(id core.CellID) (int, error)

	// LevelToSize converts a refinement level to a physical cell edge length.
	LevelToSize(level int) float64

	// FinestLevel is the deepest level present in the mesh.
	FinestLevel() int

	// FinestSize is the edge length of the smallest cell present.
	FinestSize() float64
}
