package eikonal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve(t *testing.T) {
	t.Run("NoUpwindAxis", func(t *testing.T) {
		_, err := Solve(nil, 1)
		assert.ErrorIs(t, err, ErrNoUpwindAxis)

		_, err = Solve([]AxisContribution{}, 1)
		assert.ErrorIs(t, err, ErrNoUpwindAxis)
	})

	t.Run("SingleAxis", func(t *testing.T) {
		// One contributing axis reduces to phi = upwind + h/g.
		for _, tc := range []struct {
			name    string
			upwind  float64
			spacing float64
			g       float64
			want    float64
		}{
			{name: "UnitSpacing", upwind: 0, spacing: 1, g: 1, want: 1},
			{name: "Offset", upwind: 0.5, spacing: 1, g: 1, want: 1.5},
			{name: "FineSpacing", upwind: 2, spacing: 0.25, g: 1, want: 2.25},
			{name: "Speed", upwind: 1, spacing: 1, g: 2, want: 3},
			{name: "Negative", upwind: -1, spacing: 0.5, g: 1, want: -0.5},
		} {
			t.Run(tc.name, func(t *testing.T) {
				got, err := Solve([]AxisContribution{
					{Upwind: tc.upwind, Spacing: tc.spacing},
				}, tc.g)
				require.NoError(t, err)
				assert.InDelta(t, tc.want, got, 1e-12)
			})
		}
	})

	t.Run("TwoAxesSymmetric", func(t *testing.T) {
		// Equal upwind values u on two unit-spacing axes give u + 1/sqrt(2).
		got, err := Solve([]AxisContribution{
			{Upwind: 0, Spacing: 1},
			{Upwind: 0, Spacing: 1},
		}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1/math.Sqrt2, got, 1e-12)

		got, err = Solve([]AxisContribution{
			{Upwind: 3, Spacing: 1},
			{Upwind: 3, Spacing: 1},
		}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 3+1/math.Sqrt2, got, 1e-12)
	})

	t.Run("ThreeAxesSymmetric", func(t *testing.T) {
		got, err := Solve([]AxisContribution{
			{Upwind: 0, Spacing: 1},
			{Upwind: 0, Spacing: 1},
			{Upwind: 0, Spacing: 1},
		}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1/math.Sqrt(3), got, 1e-12)
	})

	t.Run("AnisotropicSpacing", func(t *testing.T) {
		// a = 1/hx^2 + 1/hy^2, u = 0 on both axes: phi = g/sqrt(a).
		hx, hy := 0.5, 0.25
		a := 1/(hx*hx) + 1/(hy*hy)
		got, err := Solve([]AxisContribution{
			{Upwind: 0, Spacing: hx},
			{Upwind: 0, Spacing: hy},
		}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1/math.Sqrt(a), got, 1e-12)
	})

	t.Run("MonotoneInUpwind", func(t *testing.T) {
		lo, err := Solve([]AxisContribution{
			{Upwind: 1, Spacing: 1},
			{Upwind: 1.2, Spacing: 1},
		}, 1)
		require.NoError(t, err)
		hi, err := Solve([]AxisContribution{
			{Upwind: 1.4, Spacing: 1},
			{Upwind: 1.6, Spacing: 1},
		}, 1)
		require.NoError(t, err)
		assert.Greater(t, hi, lo)
	})

	t.Run("ResultExceedsUpwind", func(t *testing.T) {
		got, err := Solve([]AxisContribution{
			{Upwind: 0.3, Spacing: 0.1},
			{Upwind: 0.35, Spacing: 0.1},
			{Upwind: 0.32, Spacing: 0.2},
		}, 1)
		require.NoError(t, err)
		assert.Greater(t, got, 0.35)
	})
}
