package levelset

import (
	"math"

	"github.com/voxkit/levelset/band"
	"github.com/voxkit/levelset/core"
	"github.com/voxkit/levelset/eikonal"
	"github.com/voxkit/levelset/geom"
	"github.com/voxkit/levelset/mesh"
)

// state tracks the engine lifecycle: Compute is valid exactly once, Update
// any number of times afterwards.
type state uint8

const (
	stateUninitialized state = iota
	stateComputed
	stateUpdated
)

// LevelSet is the narrow-band engine contract shared by the Cartesian and
// octree variants. A Surface receives the engine through this interface when
// it populates or refreshes band values.
type LevelSet interface {
	// Compute sizes the narrow band for the surface and asks it to populate
	// band values. Valid only once per engine instance.
	Compute(s Surface) error

	// Update refreshes band membership and values after a mesh adaptation
	// step. Valid only after a Compute. The adaptation batch must be fully
	// applied to the mesh before Update runs, and batches must be serialized
	// by the caller.
	Update(s Surface, adaption []mesh.AdaptionInfo) error

	// IsInNarrowBand reports whether the cell holds a computed band value.
	IsInNarrowBand(id core.CellID) bool

	// RSearch returns the current band half-width in physical units. ok is
	// false while the band is empty; callers must check it before using the
	// radius.
	RSearch() (float64, bool)

	// Mesh returns the mesh the field lives on.
	Mesh() mesh.Mesh

	// Band returns the narrow-band store. Surfaces write values through it.
	Band() *band.Store

	// Sign reports whether the surface should store signed distances. The
	// auxiliary proxy evaluation during octree band sizing runs sign-free.
	Sign() bool

	// UpdateEikonal computes the value at cell id from its already-computed
	// upwind face neighbors, for propagation sign s in {-1, +1} and speed g
	// (g = 1 for pure distance). At least one face neighbor must hold a
	// computed value; otherwise eikonal.ErrNoUpwindAxis is returned.
	UpdateEikonal(s, g float64, id core.CellID) (float64, error)
}

// Surface supplies the zero-level geometry. Implementations compute the
// actual distance values; the engine only sizes and maintains the band.
type Surface interface {
	// BoundingBox bounds the embedded surface.
	BoundingBox() geom.Box

	// Clone returns an independent surface instance, used for auxiliary
	// proxy-grid evaluation.
	Clone() Surface

	// ComputeLSInNarrowBand populates band values for a freshly sized band.
	ComputeLSInNarrowBand(ls LevelSet) error

	// UpdateLSInNarrowBand refreshes values for the cells whose band status
	// changed during an adaptation step. newRSearch is the radius the engine
	// derived for the post-adaptation band; it becomes current once the call
	// returns.
	UpdateLSInNarrowBand(ls LevelSet, adaption []mesh.AdaptionInfo, newRSearch float64) error
}

// BoundaryExchange is invoked after each successful Update. Distributed
// callers hang their halo synchronization here; the default is none.
type BoundaryExchange func(ls LevelSet) error

// engine holds the state shared by both LevelSet variants.
type engine struct {
	store    *band.Store
	logger   *Logger
	sign     bool
	exchange BoundaryExchange

	rSearch    float64
	hasRSearch bool
	state      state
}

func newEngine(opts []Option) engine {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	e := engine{
		store:    band.New(),
		logger:   o.logger,
		sign:     o.sign,
		exchange: o.exchange,
	}
	if o.bandCapacityHint > 0 {
		e.store.Reserve(o.bandCapacityHint)
	}
	return e
}

// IsInNarrowBand reports whether the cell holds a computed band value.
func (e *engine) IsInNarrowBand(id core.CellID) bool { return e.store.InBand(id) }

// RSearch returns the current band half-width; ok is false while the band is
// empty.
func (e *engine) RSearch() (float64, bool) { return e.rSearch, e.hasRSearch }

// Band returns the narrow-band store.
func (e *engine) Band() *band.Store { return e.store }

// Sign reports whether distances are stored signed.
func (e *engine) Sign() bool { return e.sign }

func (e *engine) setRSearch(r float64) {
	e.rSearch = r
	e.hasRSearch = true
}

func (e *engine) clearRSearch() {
	e.rSearch = 0
	e.hasRSearch = false
}

// updateEikonal assembles the upwind stencil of cell id from its face
// neighbors and solves the local Eikonal problem. Axes without a computed
// neighbor are excluded from the quadratic form entirely.
func (e *engine) updateEikonal(m mesh.Mesh, s, g float64, id core.CellID) (float64, error) {
	axes := make([]eikonal.AxisContribution, 0, 3)
	for d := 0; d < m.Dimension(); d++ {
		upwind := math.Inf(1)
		for _, face := range [2]int{2 * d, 2*d + 1} {
			neighbor, ok := m.FaceNeighbor(id, face)
			if !ok {
				continue
			}
			info, ok := e.store.Get(neighbor)
			if !ok || info.Status != band.StatusComputed {
				continue
			}
			upwind = math.Min(upwind, s*info.Value)
		}
		if !math.IsInf(upwind, 1) {
			axes = append(axes, eikonal.AxisContribution{
				Upwind:  upwind,
				Spacing: m.CellSpacing(id, d),
			})
		}
	}
	return eikonal.Solve(axes, g)
}

func (e *engine) finishUpdate(ls LevelSet) error {
	if e.exchange == nil {
		return nil
	}
	return e.exchange(ls)
}
