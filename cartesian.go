package levelset

import (
	"math"

	"github.com/voxkit/levelset/core"
	"github.com/voxkit/levelset/mesh"
)

// Cartesian maintains a narrow-band level-set field over a uniform grid.
type Cartesian struct {
	engine
	mesh mesh.Cartesian
}

var _ LevelSet = (*Cartesian)(nil)

// NewCartesian creates a Cartesian level-set engine over m.
func NewCartesian(m mesh.Cartesian, opts ...Option) *Cartesian {
	return &Cartesian{
		engine: newEngine(opts),
		mesh:   m,
	}
}

// Mesh returns the underlying grid.
func (c *Cartesian) Mesh() mesh.Mesh { return c.mesh }

// computeRSearch sizes the band. On a uniform grid one cell width along the
// coarsest axis is sufficient and necessary margin on each side of the
// surface.
func (c *Cartesian) computeRSearch() float64 {
	r := 0.0
	for d := 0; d < c.mesh.Dimension(); d++ {
		r = math.Max(r, c.mesh.Spacing(d))
	}
	return r
}

// Compute sizes the narrow band and asks the surface to populate it.
func (c *Cartesian) Compute(s Surface) error {
	if c.state != stateUninitialized {
		return ErrComputed
	}

	c.setRSearch(c.computeRSearch())
	if err := s.ComputeLSInNarrowBand(c); err != nil {
		return err
	}

	c.state = stateComputed
	c.logger.LogCompute("cartesian", c.rSearch, c.hasRSearch, c.store.Len())
	return nil
}

// Update refreshes the band after a mesh adaptation step. Uniform grids have
// no adaptation events, so the records are passed through to the surface and
// the radius is simply recomputed.
func (c *Cartesian) Update(s Surface, adaption []mesh.AdaptionInfo) error {
	if c.state == stateUninitialized {
		return ErrNotComputed
	}

	newRSearch := c.computeRSearch()
	if err := s.UpdateLSInNarrowBand(c, adaption, newRSearch); err != nil {
		return err
	}
	c.setRSearch(newRSearch)

	c.state = stateUpdated
	c.logger.LogUpdate("cartesian", len(adaption), c.rSearch, c.hasRSearch, c.store.Len())
	return c.finishUpdate(c)
}

// UpdateEikonal computes the value at cell id from its computed upwind face
// neighbors. See LevelSet.UpdateEikonal.
func (c *Cartesian) UpdateEikonal(s, g float64, id core.CellID) (float64, error) {
	return c.updateEikonal(c.mesh, s, g, id)
}
