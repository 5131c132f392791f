// Package eikonal implements the local first-order upwind discretization of
// |∇φ| = 1/g used to extend signed distances across a narrow band. It is a
// pure per-cell kernel: assembling the stencil from mesh adjacency and
// sweeping the band in upwind order are the caller's responsibility.
package eikonal

import (
	"errors"
	"math"
)

// ErrNoUpwindAxis is returned when no spatial axis contributes a valid upwind
// neighbor. Invoking the solver on such a cell is a caller bug: at least one
// face neighbor must already hold a computed value.
var ErrNoUpwindAxis = errors.New("eikonal: no contributing upwind axis")

// AxisContribution is the upwind sample of one spatial axis.
type AxisContribution struct {
	// Upwind is s * neighborValue, minimized over the two face directions of
	// the axis. Axes without a computed face neighbor must be omitted
	// entirely, not passed with a zero value.
	Upwind float64

	// Spacing is the local cell spacing along the axis.
	Spacing float64
}

// Solve returns the larger admissible root of the quadratic form accumulated
// over the contributing axes, for propagation speed g (g = 1 yields pure
// distance). It returns ErrNoUpwindAxis when axes is empty.
func Solve(axes []AxisContribution, g float64) (float64, error) {
	if len(axes) == 0 {
		return 0, ErrNoUpwindAxis
	}

	var a, b, c float64
	for _, ax := range axes {
		h2 := ax.Spacing * ax.Spacing
		a += 1.0 / h2
		b += -2.0 * ax.Upwind / h2
		c += ax.Upwind * ax.Upwind / h2
	}

	delta := b*b - 4.0*a*(c-g*g)
	return -(b - math.Sqrt(delta)) / (2.0 * a), nil
}
