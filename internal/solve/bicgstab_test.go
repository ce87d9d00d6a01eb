package solve

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

type denseOp struct{ m *mat.Dense }

func (d denseOp) MulVecTo(dst, x []float64) {
	n := len(dst)
	out := mat.NewVecDense(n, dst)
	out.MulVec(d.m, mat.NewVecDense(len(x), x))
}

func residual(op Operator, b, x []float64) float64 {
	r := make([]float64, len(b))
	op.MulVecTo(r, x)
	max := 0.0
	for i := range r {
		if d := math.Abs(r[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}

func TestBiCGStab_Identity(t *testing.T) {
	op := denseOp{mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})}
	b := []float64{1, -2, 3}
	x := make([]float64, 3)

	if _, err := BiCGStab(op, b, x, 1e-12, 10); err != nil {
		t.Fatalf("BiCGStab: %v", err)
	}
	for i := range b {
		if math.Abs(x[i]-b[i]) > 1e-10 {
			t.Errorf("x[%d] = %g, want %g", i, x[i], b[i])
		}
	}
}

func TestBiCGStab_Nonsymmetric(t *testing.T) {
	// Diagonally dominant, non-symmetric.
	op := denseOp{mat.NewDense(4, 4, []float64{
		5, 1, 0, -1,
		0, 4, 1, 0,
		2, 0, 6, 1,
		-1, 1, 0, 3,
	})}
	b := []float64{2, -1, 4, 0}
	x := make([]float64, 4)

	if _, err := BiCGStab(op, b, x, 1e-10, 200); err != nil {
		t.Fatalf("BiCGStab: %v", err)
	}
	if res := residual(op, b, x); res > 1e-8 {
		t.Errorf("residual = %g, want < 1e-8", res)
	}
}

func TestBiCGStab_ZeroRHS(t *testing.T) {
	op := denseOp{mat.NewDense(2, 2, []float64{3, 1, 1, 2})}
	x := []float64{7, 7}
	if _, err := BiCGStab(op, []float64{0, 0}, x, 1e-10, 10); err != nil {
		t.Fatalf("BiCGStab: %v", err)
	}
	if x[0] != 0 || x[1] != 0 {
		t.Errorf("x = %v, want zero vector", x)
	}
}

func TestBiCGStab_WarmStart(t *testing.T) {
	op := denseOp{mat.NewDense(2, 2, []float64{4, 1, 1, 3})}
	b := []float64{1, 2}

	// Exact solution as the initial guess converges immediately.
	want := []float64{1.0 / 11.0, 7.0 / 11.0}
	x := append([]float64(nil), want...)
	iters, err := BiCGStab(op, b, x, 1e-10, 10)
	if err != nil {
		t.Fatalf("BiCGStab: %v", err)
	}
	if iters != 0 {
		t.Errorf("iterations = %d from exact guess, want 0", iters)
	}
}
