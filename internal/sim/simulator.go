package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
)

// Simulator drives fixed-step runs of a system with a chosen stepper.
type Simulator struct {
	sys       System
	stepper   Stepper
	observers []Observer
}

func New(sys System, stepper Stepper) *Simulator {
	return &Simulator{sys: sys, stepper: stepper}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// Run integrates from x0 over cfg.Duration and records the trajectory.
// It returns the partial result together with the error when a step
// fails or the context is canceled.
func (s *Simulator) Run(ctx context.Context, x0 dyn.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.Dim() {
		return nil, fmt.Errorf("%w: initial state length %d, system dimension %d", dyn.ErrDimensionMismatch, len(x0), s.sys.Dim())
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States: make([]dyn.State, 0, steps+1),
		Times:  make([]float64, 0, steps+1),
	}

	x := x0.Clone()
	t := 0.0
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		next, err := s.stepper.Step(s.sys, x, t, cfg.Dt)
		if err != nil {
			return result, fmt.Errorf("step %d (t=%.4f): %w", i, t, err)
		}
		if cfg.ValidateState && !next.IsValid() {
			return result, fmt.Errorf("step %d (t=%.4f): %w", i, t, dyn.ErrInvalidState)
		}

		x = next
		t += cfg.Dt
		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)

		for _, o := range s.observers {
			o.OnStep(x, t)
		}
	}

	return result, nil
}
