package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/netdyn/internal/dyn"
)

func TestDrift_ConservedSum(t *testing.T) {
	d := NewDrift()

	d.OnStep(dyn.State{1, 2, 3}, 0)
	d.OnStep(dyn.State{2, 2, 2}, 0.01)
	d.OnStep(dyn.State{3, 2, 1}, 0.02)

	if d.Value() != 0 {
		t.Errorf("conserved sum: drift = %g, want 0", d.Value())
	}
}

func TestDrift_TracksMaxRelativeError(t *testing.T) {
	d := NewDrift()

	d.OnStep(dyn.State{1, 1}, 0)    // sum 2
	d.OnStep(dyn.State{1, 2}, 0.01) // sum 3, drift 0.5
	d.OnStep(dyn.State{1, 1.5}, 0.02)

	if got, want := d.Value(), 0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("drift = %g, want %g", got, want)
	}
}

func TestDrift_Reset(t *testing.T) {
	d := NewDrift()
	d.OnStep(dyn.State{1}, 0)
	d.OnStep(dyn.State{2}, 0.01)
	if d.Value() == 0 {
		t.Fatal("expected non-zero drift before reset")
	}

	d.Reset()
	if d.Value() != 0 {
		t.Errorf("drift after reset = %g, want 0", d.Value())
	}
}

func TestOrderParameter(t *testing.T) {
	tests := []struct {
		name   string
		phases dyn.State
		want   float64
	}{
		{"aligned", dyn.State{0.7, 0.7, 0.7}, 1.0},
		{"opposed", dyn.State{0, math.Pi}, 0.0},
		{"uniform spread", dyn.State{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrderParameter()
			o.OnStep(tt.phases, 0)
			if got := o.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("r = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestOrderParameter_ReportsLast(t *testing.T) {
	o := NewOrderParameter()
	o.OnStep(dyn.State{0, math.Pi}, 0)
	o.OnStep(dyn.State{1, 1}, 0.01)

	if got := o.Value(); math.Abs(got-1) > 1e-12 {
		t.Errorf("r = %g, want 1 (last observation)", got)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(10)

	s.OnStep(dyn.State{1, 2}, 0)
	s.OnStep(dyn.State{11, 0}, 0.01)
	s.OnStep(dyn.State{3, -4}, 0.02)
	s.OnStep(dyn.State{0, -20}, 0.03)

	if got, want := s.Value(), 0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("stability = %g, want %g", got, want)
	}

	s.Reset()
	if s.Value() != 1.0 {
		t.Errorf("stability after reset = %g, want 1", s.Value())
	}
}
