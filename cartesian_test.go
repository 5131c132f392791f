package levelset_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxkit/levelset"
	"github.com/voxkit/levelset/band"
	"github.com/voxkit/levelset/eikonal"
	"github.com/voxkit/levelset/geom"
	"github.com/voxkit/levelset/mesh"
	"github.com/voxkit/levelset/surface"
)

// failSurface reports a fixed error from every population call.
type failSurface struct {
	err error
}

func (s *failSurface) BoundingBox() geom.Box   { return geom.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}} }
func (s *failSurface) Clone() levelset.Surface { return s }
func (s *failSurface) ComputeLSInNarrowBand(levelset.LevelSet) error {
	return s.err
}
func (s *failSurface) UpdateLSInNarrowBand(levelset.LevelSet, []mesh.AdaptionInfo, float64) error {
	return s.err
}

func newUnitGrid(t *testing.T, cells int) *mesh.Grid {
	t.Helper()
	l := float64(cells)
	g, err := mesh.NewGrid(3, r3.Vec{}, r3.Vec{X: l, Y: l, Z: l}, [3]int{cells, cells, cells})
	require.NoError(t, err)
	return g
}

func TestCartesianRSearch(t *testing.T) {
	t.Run("CoarsestAxisWins", func(t *testing.T) {
		grid, err := mesh.NewGrid(3, r3.Vec{}, r3.Vec{X: 10, Y: 20, Z: 10}, [3]int{10, 10, 10})
		require.NoError(t, err)

		ls := levelset.NewCartesian(grid)
		_, ok := ls.RSearch()
		assert.False(t, ok)

		require.NoError(t, ls.Compute(surface.NewSphere(r3.Vec{X: 5, Y: 10, Z: 5}, 3)))

		r, ok := ls.RSearch()
		require.True(t, ok)
		assert.Equal(t, 2.0, r)
	})

	t.Run("TwoD", func(t *testing.T) {
		grid, err := mesh.NewGrid(2, r3.Vec{}, r3.Vec{X: 4, Y: 2}, [3]int{8, 8, 0})
		require.NoError(t, err)

		ls := levelset.NewCartesian(grid)
		require.NoError(t, ls.Compute(surface.NewSphere(r3.Vec{X: 2, Y: 1}, 0.5)))

		r, ok := ls.RSearch()
		require.True(t, ok)
		assert.Equal(t, 0.5, r)
	})
}

func TestCartesianLifecycle(t *testing.T) {
	sphere := surface.NewSphere(r3.Vec{X: 2, Y: 2, Z: 2}, 1)

	t.Run("ComputeTwice", func(t *testing.T) {
		ls := levelset.NewCartesian(newUnitGrid(t, 4))
		require.NoError(t, ls.Compute(sphere))
		assert.ErrorIs(t, ls.Compute(sphere), levelset.ErrComputed)
	})

	t.Run("UpdateBeforeCompute", func(t *testing.T) {
		ls := levelset.NewCartesian(newUnitGrid(t, 4))
		assert.ErrorIs(t, ls.Update(sphere, nil), levelset.ErrNotComputed)
	})

	t.Run("UpdateAfterCompute", func(t *testing.T) {
		ls := levelset.NewCartesian(newUnitGrid(t, 4))
		require.NoError(t, ls.Compute(sphere))
		require.NoError(t, ls.Update(sphere, nil))
		require.NoError(t, ls.Update(sphere, nil))

		r, ok := ls.RSearch()
		require.True(t, ok)
		assert.Equal(t, 1.0, r)
	})

	t.Run("FailedComputeLeavesUninitialized", func(t *testing.T) {
		ls := levelset.NewCartesian(newUnitGrid(t, 4))
		boom := errors.New("boom")
		assert.ErrorIs(t, ls.Compute(&failSurface{err: boom}), boom)

		// A failed population does not consume the one-shot Compute.
		require.NoError(t, ls.Compute(sphere))
	})

	t.Run("UpdateErrorPropagates", func(t *testing.T) {
		ls := levelset.NewCartesian(newUnitGrid(t, 4))
		require.NoError(t, ls.Compute(sphere))
		boom := errors.New("boom")
		assert.ErrorIs(t, ls.Update(&failSurface{err: boom}, nil), boom)
	})
}

func TestCartesianOptions(t *testing.T) {
	sphere := surface.NewSphere(r3.Vec{X: 2, Y: 2, Z: 2}, 1)

	t.Run("BandCapacityHint", func(t *testing.T) {
		ls := levelset.NewCartesian(newUnitGrid(t, 4), levelset.WithBandCapacityHint(64))
		require.NoError(t, ls.Compute(sphere))
		assert.NotZero(t, ls.Band().Len())
	})

	t.Run("Logger", func(t *testing.T) {
		ls := levelset.NewCartesian(newUnitGrid(t, 4), levelset.WithLogger(nil))
		require.NoError(t, ls.Compute(sphere))
	})

	t.Run("Sign", func(t *testing.T) {
		signed := levelset.NewCartesian(newUnitGrid(t, 4))
		assert.True(t, signed.Sign())
		unsigned := levelset.NewCartesian(newUnitGrid(t, 4), levelset.WithSign(false))
		assert.False(t, unsigned.Sign())
	})

	t.Run("BoundaryExchange", func(t *testing.T) {
		calls := 0
		ls := levelset.NewCartesian(newUnitGrid(t, 4),
			levelset.WithBoundaryExchange(func(levelset.LevelSet) error {
				calls++
				return nil
			}))

		require.NoError(t, ls.Compute(sphere))
		assert.Equal(t, 0, calls) // only Update triggers the exchange

		require.NoError(t, ls.Update(sphere, nil))
		require.NoError(t, ls.Update(sphere, nil))
		assert.Equal(t, 2, calls)
	})

	t.Run("BoundaryExchangeError", func(t *testing.T) {
		boom := errors.New("halo out of sync")
		ls := levelset.NewCartesian(newUnitGrid(t, 4),
			levelset.WithBoundaryExchange(func(levelset.LevelSet) error { return boom }))

		require.NoError(t, ls.Compute(sphere))
		assert.ErrorIs(t, ls.Update(sphere, nil), boom)
	})
}

func TestCartesianUpdateEikonal(t *testing.T) {
	grid, err := mesh.NewGrid(2, r3.Vec{}, r3.Vec{X: 3, Y: 3}, [3]int{3, 3, 0})
	require.NoError(t, err)
	ls := levelset.NewCartesian(grid)
	center := grid.CellLinearID(1, 1, 0)

	t.Run("NoUpwindAxis", func(t *testing.T) {
		_, err := ls.UpdateEikonal(1, 1, center)
		assert.ErrorIs(t, err, eikonal.ErrNoUpwindAxis)
	})

	t.Run("SingleNeighbor", func(t *testing.T) {
		ls.Band().Insert(grid.CellLinearID(0, 1, 0), band.Info{Value: 0.5, Status: band.StatusComputed})

		got, err := ls.UpdateEikonal(1, 1, center)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, got, 1e-12)
	})

	t.Run("PendingNeighborIgnored", func(t *testing.T) {
		ls.Band().Insert(grid.CellLinearID(1, 0, 0), band.Info{Value: 0.1, Status: band.StatusPending})

		got, err := ls.UpdateEikonal(1, 1, center)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, got, 1e-12)
	})

	t.Run("UpwindMinimizesOverFaces", func(t *testing.T) {
		// A closer computed value across the opposite face of the same axis
		// takes over.
		ls.Band().Insert(grid.CellLinearID(2, 1, 0), band.Info{Value: 0.2, Status: band.StatusComputed})

		got, err := ls.UpdateEikonal(1, 1, center)
		require.NoError(t, err)
		assert.InDelta(t, 1.2, got, 1e-12)
	})

	t.Run("NegativeSide", func(t *testing.T) {
		// s = -1 propagates the negative side: upwind = s*value.
		ls2 := levelset.NewCartesian(grid)
		ls2.Band().Insert(grid.CellLinearID(0, 1, 0), band.Info{Value: -0.5, Status: band.StatusComputed})

		got, err := ls2.UpdateEikonal(-1, 1, center)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, got, 1e-12)
	})

	t.Run("TwoAxes", func(t *testing.T) {
		ls3 := levelset.NewCartesian(grid)
		ls3.Band().Insert(grid.CellLinearID(0, 1, 0), band.Info{Value: 0, Status: band.StatusComputed})
		ls3.Band().Insert(grid.CellLinearID(1, 0, 0), band.Info{Value: 0, Status: band.StatusComputed})

		got, err := ls3.UpdateEikonal(1, 1, center)
		require.NoError(t, err)
		assert.InDelta(t, 0.7071067811865476, got, 1e-12)
	})
}
