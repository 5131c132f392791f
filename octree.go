package levelset

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/voxkit/levelset/band"
	"github.com/voxkit/levelset/core"
	"github.com/voxkit/levelset/geom"
	"github.com/voxkit/levelset/mesh"
)

// rSearchLevelEps is the tolerance used when inverting the level/radius
// relation.
const rSearchLevelEps = 1e-8

// rSearchLevelFactor converts a cell edge length to a band half-width. It
// covers a cell plus a neighbor at the coarsest admissible level in 3D
// corner-to-corner distance, and is a fixed design constant.
var rSearchLevelFactor = math.Sqrt(11) / 2

// Octree maintains a narrow-band level-set field over an adaptive octree,
// keeping band membership consistent across refinement and coarsening steps
// without revisiting the whole domain.
type Octree struct {
	engine
	mesh mesh.Octree
}

var _ LevelSet = (*Octree)(nil)

// NewOctree creates an octree level-set engine over m.
func NewOctree(m mesh.Octree, opts ...Option) *Octree {
	return &Octree{
		engine: newEngine(opts),
		mesh:   m,
	}
}

// Mesh returns the underlying octree.
func (o *Octree) Mesh() mesh.Mesh { return o.mesh }

// rSearchFromLevel converts the coarsest band cell level to a search radius.
func (o *Octree) rSearchFromLevel(level int) float64 {
	return o.mesh.LevelToSize(level) * rSearchLevelFactor
}

// LevelFromRSearch returns the coarsest octree level whose cell size still
// covers a band of half-width r.
func (o *Octree) LevelFromRSearch(r float64) int {
	size := r / rSearchLevelFactor
	level := o.mesh.FinestLevel()
	for level > 0 && o.mesh.LevelToSize(level) < size-rSearchLevelEps {
		level--
	}
	return level
}

// Compute sizes the narrow band and asks the surface to populate it. When
// the surface bounding box does not intersect the domain, the band stays
// empty and the radius unset; this is a valid outcome, not an error.
func (o *Octree) Compute(s Surface) error {
	if o.state != stateUninitialized {
		return ErrComputed
	}

	rSearch, ok, err := o.computeRSearch(s)
	if err != nil {
		return err
	}
	if ok {
		o.setRSearch(rSearch)
	}
	if err := s.ComputeLSInNarrowBand(o); err != nil {
		return err
	}

	o.state = stateComputed
	o.logger.LogCompute("octree", o.rSearch, o.hasRSearch, o.store.Len())
	return nil
}

// computeRSearch sizes the band geometrically. The surface bounding box is
// intersected with the domain; a proxy Cartesian grid at the finest octree
// resolution covers the overlap and is banded by a sign-free clone of the
// surface; every octree cell that samples a banded proxy cell between its
// diagonal corners is flagged. The coarsest flagged level is the binding
// constraint: the largest cell in the band needs the largest margin.
// ok is false when the band comes out empty.
func (o *Octree) computeRSearch(s Surface) (float64, bool, error) {
	dim := o.mesh.Dimension()
	size := o.mesh.FinestSize()
	domain := o.mesh.BoundingBox()

	overlap, ok := geom.Intersect(domain, s.BoundingBox())
	if !ok {
		return 0, false, nil
	}

	// One finest cell of slack on every side, snapped to the finest-size
	// lattice anchored at the domain corner, so the proxy never
	// under-resolves the overlap boundary.
	overlap = overlap.Expand(size, dim).Snap(domain.Min, size, dim)

	ext := overlap.Size()
	var cells [3]int
	for d := 0; d < dim; d++ {
		cells[d] = int(math.Round(geom.Component(ext, d) / size))
	}

	proxy, err := mesh.NewGrid(dim, overlap.Min, ext, cells)
	if err != nil {
		return 0, false, err
	}
	aux := NewCartesian(proxy, WithSign(false), WithLogger(o.logger))
	if err := aux.Compute(s.Clone()); err != nil {
		return 0, false, err
	}

	level := -1
	last := 1<<dim - 1
	for id := range o.mesh.CellIDs() {
		i0 := proxy.ClosestVertex(o.mesh.CellVertex(id, 0))
		i1 := proxy.ClosestVertex(o.mesh.CellVertex(id, last))
		if dim < 3 {
			i1[2] = i0[2] + 1
		}

		flagged := false
		for k := i0[2]; k < i1[2] && !flagged; k++ {
			for j := i0[1]; j < i1[1] && !flagged; j++ {
				for i := i0[0]; i < i1[0] && !flagged; i++ {
					flagged = aux.IsInNarrowBand(proxy.CellLinearID(i, j, k))
				}
			}
		}
		if !flagged {
			continue
		}

		cellLevel, err := o.mesh.CellLevel(id)
		if err != nil {
			return 0, false, err
		}
		if level < 0 || cellLevel < level {
			level = cellLevel
		}
	}

	if level < 0 {
		return 0, false, nil
	}
	return o.rSearchFromLevel(level), true, nil
}

// Update incrementally maintains band membership across one adaptation batch
// and asks the surface to refresh values for the delta. It assumes the
// stored band reflects the topology before the batch was applied.
func (o *Octree) Update(s Surface, adaption []mesh.AdaptionInfo) error {
	if o.state == stateUninitialized {
		return ErrNotComputed
	}

	newRSearch, ok, err := o.maintainBand(adaption)
	if err != nil {
		return err
	}
	if err := s.UpdateLSInNarrowBand(o, adaption, newRSearch); err != nil {
		return err
	}
	if ok {
		o.setRSearch(newRSearch)
	} else {
		o.clearRSearch()
	}

	o.state = stateUpdated
	o.logger.LogUpdate("octree", len(adaption), o.rSearch, o.hasRSearch, o.store.Len())
	return o.finishUpdate(o)
}

// maintainBand derives the post-adaptation band membership and radius from
// the adaptation records alone; no geometric bounding-box work is repeated.
// Cells replaced by the batch are evicted from the store, and replacement
// cells of any record that touched the band inherit membership as pending
// records, erring toward keeping newly created fine cells in the band.
func (o *Octree) maintainBand(adaption []mesh.AdaptionInfo) (float64, bool, error) {
	nb := roaring.New()
	for id := range o.store.IDs() {
		if o.store.InBand(id) {
			nb.Add(uint32(id))
		}
	}

	marked := make([]bool, len(adaption))
	for n, rec := range adaption {
		if rec.Entity != mesh.EntityCell {
			continue
		}
		for _, prev := range rec.Previous {
			if !o.store.Contains(prev) {
				continue
			}
			if o.store.InBand(prev) {
				marked[n] = true
			}
			nb.Remove(uint32(prev))
			o.store.Erase(prev)
		}
	}

	for n, rec := range adaption {
		if !marked[n] {
			continue
		}
		for _, id := range rec.Current {
			nb.Add(uint32(id))
			o.store.Insert(id, band.Info{Status: band.StatusPending})
		}
	}

	if nb.IsEmpty() {
		return 0, false, nil
	}

	level := -1
	it := nb.Iterator()
	for it.HasNext() {
		cellLevel, err := o.mesh.CellLevel(core.CellID(it.Next()))
		if err != nil {
			return 0, false, err
		}
		if level < 0 || cellLevel < level {
			level = cellLevel
		}
	}
	return o.rSearchFromLevel(level), true, nil
}

// UpdateEikonal computes the value at cell id from its computed upwind face
// neighbors. See LevelSet.UpdateEikonal.
func (o *Octree) UpdateEikonal(s, g float64, id core.CellID) (float64, error) {
	return o.updateEikonal(o.mesh, s, g, id)
}
