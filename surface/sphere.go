// Package surface provides analytic zero-level geometries that populate a
// narrow-band level-set field. They stand in for triangulated surfaces in
// tests and examples: distances are exact, so every engine behavior is
// verifiable against closed-form values.
package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxkit/levelset"
	"github.com/voxkit/levelset/band"
	"github.com/voxkit/levelset/core"
	"github.com/voxkit/levelset/geom"
	"github.com/voxkit/levelset/mesh"
)

// Sphere is the zero level of the signed distance to a sphere (a circle on
// 2D meshes). Distances are negative inside.
type Sphere struct {
	center r3.Vec
	radius float64
}

var _ levelset.Surface = (*Sphere)(nil)

// NewSphere creates a sphere surface with the given center and radius.
func NewSphere(center r3.Vec, radius float64) *Sphere {
	return &Sphere{center: center, radius: radius}
}

// Center returns the sphere center.
func (s *Sphere) Center() r3.Vec { return s.center }

// Radius returns the sphere radius.
func (s *Sphere) Radius() float64 { return s.radius }

// Distance returns the signed distance of p to the surface, negative inside.
func (s *Sphere) Distance(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.center)) - s.radius
}

// BoundingBox bounds the surface.
func (s *Sphere) BoundingBox() geom.Box {
	r := r3.Vec{X: s.radius, Y: s.radius, Z: s.radius}
	return geom.Box{Min: r3.Sub(s.center, r), Max: r3.Add(s.center, r)}
}

// Clone returns an independent copy for auxiliary evaluation.
func (s *Sphere) Clone() levelset.Surface {
	c := *s
	return &c
}

// ComputeLSInNarrowBand populates a record for every cell whose center lies
// within the engine's search radius of the surface. An unset radius means an
// empty band and populates nothing.
func (s *Sphere) ComputeLSInNarrowBand(ls levelset.LevelSet) error {
	rSearch, ok := ls.RSearch()
	if !ok {
		return nil
	}

	m := ls.Mesh()
	store := ls.Band()
	for id := range m.CellIDs() {
		d := s.Distance(cellCenter(m, id))
		if math.Abs(d) > rSearch {
			continue
		}
		if !ls.Sign() {
			d = math.Abs(d)
		}
		store.Insert(id, band.Info{Value: d, Status: band.StatusComputed})
	}
	return nil
}

// UpdateLSInNarrowBand refreshes the records band maintenance left pending.
// Inherited membership is kept even for cells beyond the new radius; the
// maintainer errs toward a conservative superset and so does the refresh.
func (s *Sphere) UpdateLSInNarrowBand(ls levelset.LevelSet, _ []mesh.AdaptionInfo, _ float64) error {
	m := ls.Mesh()
	store := ls.Band()

	var pending []core.CellID
	for id, info := range store.Records() {
		if info.Status == band.StatusPending {
			pending = append(pending, id)
		}
	}

	for _, id := range pending {
		d := s.Distance(cellCenter(m, id))
		if !ls.Sign() {
			d = math.Abs(d)
		}
		store.SetValue(id, d)
	}
	return nil
}

func cellCenter(m mesh.Mesh, id core.CellID) r3.Vec {
	last := 1<<m.Dimension() - 1
	lo := m.CellVertex(id, 0)
	hi := m.CellVertex(id, last)
	return r3.Scale(0.5, r3.Add(lo, hi))
}
