// Package solve provides a matrix-free iterative linear solver for
// the Newton systems of implicit steppers. The operator is consumed
// only through its vector product, so a Jacobian-vector engine plugs
// in directly without ever assembling a matrix.
package solve

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"gonum.org/v1/gonum/floats"
)

// Operator is anything that can apply itself to a vector.
type Operator interface {
	MulVecTo(dst, x []float64)
}

// BiCGStab solves A x = b for a general (non-symmetric) operator,
// starting from the initial guess in x and leaving the solution
// there. It stops when the residual norm falls below tol * ||b|| and
// returns the number of iterations used. dyn.ErrNoConvergence is
// returned when maxIter is exhausted or the recurrence breaks down.
func BiCGStab(a Operator, b, x []float64, tol float64, maxIter int) (int, error) {
	n := len(b)
	if len(x) != n {
		return 0, fmt.Errorf("%w: guess length %d, rhs length %d", dyn.ErrDimensionMismatch, len(x), n)
	}

	normb := floats.Norm(b, 2)
	if normb == 0 {
		// b = 0 has the trivial solution.
		for i := range x {
			x[i] = 0
		}
		return 0, nil
	}
	limit := tol * normb

	r := make([]float64, n)
	a.MulVecTo(r, x)
	floats.SubTo(r, b, r)
	if floats.Norm(r, 2) <= limit {
		return 0, nil
	}

	rhat := append([]float64(nil), r...)
	p := make([]float64, n)
	v := make([]float64, n)
	s := make([]float64, n)
	t := make([]float64, n)

	rho, alpha, omega := 1.0, 1.0, 1.0

	for it := 1; it <= maxIter; it++ {
		rho1 := floats.Dot(rhat, r)
		if rho1 == 0 {
			return it, fmt.Errorf("%w: bicgstab breakdown (rho = 0)", dyn.ErrNoConvergence)
		}

		if it == 1 {
			copy(p, r)
		} else {
			beta := (rho1 / rho) * (alpha / omega)
			// p = r + beta * (p - omega*v)
			floats.AddScaled(p, -omega, v)
			floats.Scale(beta, p)
			floats.Add(p, r)
		}

		a.MulVecTo(v, p)
		den := floats.Dot(rhat, v)
		if den == 0 {
			return it, fmt.Errorf("%w: bicgstab breakdown (rhat'v = 0)", dyn.ErrNoConvergence)
		}
		alpha = rho1 / den

		// s = r - alpha*v
		copy(s, r)
		floats.AddScaled(s, -alpha, v)
		if floats.Norm(s, 2) <= limit {
			floats.AddScaled(x, alpha, p)
			return it, nil
		}

		a.MulVecTo(t, s)
		tt := floats.Dot(t, t)
		if tt == 0 {
			return it, fmt.Errorf("%w: bicgstab breakdown (t = 0)", dyn.ErrNoConvergence)
		}
		omega = floats.Dot(t, s) / tt

		floats.AddScaled(x, alpha, p)
		floats.AddScaled(x, omega, s)

		// r = s - omega*t
		copy(r, s)
		floats.AddScaled(r, -omega, t)
		if floats.Norm(r, 2) <= limit {
			return it, nil
		}
		if omega == 0 {
			return it, fmt.Errorf("%w: bicgstab breakdown (omega = 0)", dyn.ErrNoConvergence)
		}

		rho = rho1
	}

	return maxIter, fmt.Errorf("%w: bicgstab after %d iterations", dyn.ErrNoConvergence, maxIter)
}
