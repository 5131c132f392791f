package mesh

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxkit/levelset/core"
	"github.com/voxkit/levelset/geom"
)

// maxOctreeLevel bounds the refinement depth so level→size stays exact.
const maxOctreeLevel = 24

// octKey places a cell on the lattice of its refinement level.
type octKey struct {
	level   int
	i, j, k int
}

// Tree is an adaptive octree (quadtree in 2D) over a cubic root domain.
// Refining a cell replaces it with 2^dim children at the next level;
// coarsening a complete sibling block replaces it with the parent. Both emit
// the AdaptionInfo records the level-set maintainer consumes. Cell ids are
// recycled after deletion.
type Tree struct {
	dim     int
	origin  r3.Vec
	rootLen float64
	cells   map[core.CellID]octKey
	ids     map[octKey]core.CellID
	nextID  core.CellID
	free    []core.CellID
	finest  int
}

var _ Octree = (*Tree)(nil)

// NewTree creates an octree over a cube of edge rootLen anchored at origin,
// uniformly refined to the given level.
func NewTree(dim int, origin r3.Vec, rootLen float64, level int) (*Tree, error) {
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrBadDimension, dim)
	}
	if rootLen <= 0 {
		return nil, fmt.Errorf("%w: root edge %g", ErrBadExtent, rootLen)
	}
	if level < 0 || level > maxOctreeLevel {
		return nil, fmt.Errorf("%w: level %d", ErrBadExtent, level)
	}

	t := &Tree{
		dim:     dim,
		origin:  origin,
		rootLen: rootLen,
		cells:   make(map[core.CellID]octKey),
		ids:     make(map[octKey]core.CellID),
		finest:  level,
	}

	n := 1 << level
	nk := 1
	if dim == 3 {
		nk = n
	}
	for k := 0; k < nk; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				t.addCell(octKey{level: level, i: i, j: j, k: k})
			}
		}
	}
	return t, nil
}

func (t *Tree) allocID() core.CellID {
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		return id
	}
	id := t.nextID
	t.nextID++
	return id
}

func (t *Tree) addCell(key octKey) core.CellID {
	id := t.allocID()
	t.cells[id] = key
	t.ids[key] = id
	return id
}

func (t *Tree) removeCell(id core.CellID) {
	key := t.cells[id]
	delete(t.cells, id)
	delete(t.ids, key)
	t.free = append(t.free, id)
}

// Dimension returns the number of spatial dimensions.
func (t *Tree) Dimension() int { return t.dim }

// CellCount returns the number of leaf cells.
func (t *Tree) CellCount() int { return len(t.cells) }

// CellIDs iterates all cell ids in ascending order.
func (t *Tree) CellIDs() iter.Seq[core.CellID] {
	return func(yield func(core.CellID) bool) {
		for _, id := range slices.Sorted(maps.Keys(t.cells)) {
			if !yield(id) {
				return
			}
		}
	}
}

// LevelToSize converts a refinement level to a physical cell edge length.
func (t *Tree) LevelToSize(level int) float64 {
	return t.rootLen / float64(uint(1)<<level)
}

// FinestLevel is the deepest refinement level present.
func (t *Tree) FinestLevel() int { return t.finest }

// FinestSize is the edge length of the smallest cell present.
func (t *Tree) FinestSize() float64 { return t.LevelToSize(t.finest) }

// CellLevel returns the refinement level of the cell.
func (t *Tree) CellLevel(id core.CellID) (int, error) {
	key, ok := t.cells[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCell, id)
	}
	return key.level, nil
}

// CellSpacing is the cell edge length; octree cells are cubic, so every axis
// shares it.
func (t *Tree) CellSpacing(id core.CellID, _ int) float64 {
	key, ok := t.cells[id]
	if !ok {
		return 0
	}
	return t.LevelToSize(key.level)
}

func (t *Tree) cellMin(key octKey) r3.Vec {
	size := t.LevelToSize(key.level)
	v := t.origin
	v = geom.WithComponent(v, 0, t.origin.X+float64(key.i)*size)
	v = geom.WithComponent(v, 1, t.origin.Y+float64(key.j)*size)
	if t.dim == 3 {
		v = geom.WithComponent(v, 2, t.origin.Z+float64(key.k)*size)
	}
	return v
}

// CellVertex returns the corner-th vertex of the cell.
func (t *Tree) CellVertex(id core.CellID, corner int) r3.Vec {
	key, ok := t.cells[id]
	if !ok {
		return r3.Vec{}
	}
	size := t.LevelToSize(key.level)
	v := t.cellMin(key)
	for d := 0; d < t.dim; d++ {
		if (corner>>d)&1 == 1 {
			v = geom.WithComponent(v, d, geom.Component(v, d)+size)
		}
	}
	return v
}

// CellCenter returns the centroid of the cell.
func (t *Tree) CellCenter(id core.CellID) r3.Vec {
	key, ok := t.cells[id]
	if !ok {
		return r3.Vec{}
	}
	half := t.LevelToSize(key.level) / 2
	v := t.cellMin(key)
	for d := 0; d < t.dim; d++ {
		v = geom.WithComponent(v, d, geom.Component(v, d)+half)
	}
	return v
}

// BoundingBox returns the root domain box.
func (t *Tree) BoundingBox() geom.Box {
	max := t.origin
	for d := 0; d < t.dim; d++ {
		max = geom.WithComponent(max, d, geom.Component(t.origin, d)+t.rootLen)
	}
	return geom.Box{Min: t.origin, Max: max}
}

// Locate returns the leaf cell containing p, searching from the finest level
// upward so the deepest match wins.
func (t *Tree) Locate(p r3.Vec) (core.CellID, bool) {
	for level := t.finest; level >= 0; level-- {
		size := t.LevelToSize(level)
		key := octKey{
			level: level,
			i:     int(math.Floor((p.X - t.origin.X) / size)),
			j:     int(math.Floor((p.Y - t.origin.Y) / size)),
		}
		if t.dim == 3 {
			key.k = int(math.Floor((p.Z - t.origin.Z) / size))
		}
		if id, ok := t.ids[key]; ok {
			return id, true
		}
	}
	return 0, false
}

// FaceNeighbor returns a cell across face f of cell id. When the neighbor is
// refined finer than id, the leaf touching the face center is returned.
func (t *Tree) FaceNeighbor(id core.CellID, face int) (core.CellID, bool) {
	key, ok := t.cells[id]
	if !ok || face < 0 || face >= 2*t.dim {
		return 0, false
	}
	axis := face / 2
	delta := t.LevelToSize(key.level)/2 + t.FinestSize()/2
	if face%2 == 0 {
		delta = -delta
	}
	p := t.CellCenter(id)
	p = geom.WithComponent(p, axis, geom.Component(p, axis)+delta)
	if !t.BoundingBox().Contains(p) {
		return 0, false
	}
	return t.Locate(p)
}

// RefineCell splits the cell into 2^dim children at the next level and
// returns the adaptation record describing the split. The parent id is
// released for recycling.
func (t *Tree) RefineCell(id core.CellID) (AdaptionInfo, error) {
	key, ok := t.cells[id]
	if !ok {
		return AdaptionInfo{}, fmt.Errorf("%w: %d", ErrUnknownCell, id)
	}
	if key.level >= maxOctreeLevel {
		return AdaptionInfo{}, fmt.Errorf("%w: level %d", ErrBadExtent, key.level+1)
	}

	t.removeCell(id)

	children := make([]core.CellID, 0, 1<<t.dim)
	for b := 0; b < 1<<t.dim; b++ {
		ck := octKey{
			level: key.level + 1,
			i:     2*key.i + b&1,
			j:     2*key.j + (b>>1)&1,
		}
		if t.dim == 3 {
			ck.k = 2*key.k + (b>>2)&1
		}
		children = append(children, t.addCell(ck))
	}

	if key.level+1 > t.finest {
		t.finest = key.level + 1
	}

	return AdaptionInfo{
		Entity:   EntityCell,
		Previous: []core.CellID{id},
		Current:  children,
	}, nil
}

// CoarsenCells merges a complete sibling block into its parent cell and
// returns the adaptation record describing the merge.
func (t *Tree) CoarsenCells(ids []core.CellID) (AdaptionInfo, error) {
	if len(ids) != 1<<t.dim {
		return AdaptionInfo{}, ErrNotSiblings
	}

	var parent octKey
	seen := make(map[octKey]bool, len(ids))
	for n, id := range ids {
		key, ok := t.cells[id]
		if !ok {
			return AdaptionInfo{}, fmt.Errorf("%w: %d", ErrUnknownCell, id)
		}
		if key.level == 0 || seen[key] {
			return AdaptionInfo{}, ErrNotSiblings
		}
		seen[key] = true
		pk := octKey{level: key.level - 1, i: key.i / 2, j: key.j / 2, k: key.k / 2}
		if n == 0 {
			parent = pk
		} else if pk != parent {
			return AdaptionInfo{}, ErrNotSiblings
		}
	}

	previous := slices.Clone(ids)
	for _, id := range previous {
		t.removeCell(id)
	}
	parentID := t.addCell(parent)

	t.finest = 0
	for _, key := range t.cells {
		if key.level > t.finest {
			t.finest = key.level
		}
	}

	return AdaptionInfo{
		Entity:   EntityCell,
		Previous: previous,
		Current:  []core.CellID{parentID},
	}, nil
}
