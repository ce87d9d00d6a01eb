// Package models provides ready-made network dynamical systems:
// topology, evolution functions, and the exact Jacobian callbacks the
// implicit steppers need. Every model routes coupling through incoming
// edges only, the dependency structure the Jacobian operator encodes.
package models

import (
	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/operator"
	"github.com/san-kum/netdyn/internal/sim"
	"github.com/san-kum/netdyn/internal/state"
)

// Model bundles everything needed to simulate one network system.
type Model struct {
	Structure *network.Structure
	InitState dyn.State
	Params    dyn.Params

	VertexFns  []sim.VertexFunc
	EdgeFns    []sim.EdgeFunc
	VertexJacs []operator.VertexJacobian
	EdgeJacs   []operator.EdgeJacobian
}

// Build constructs the runnable system and its Jacobian operator over
// a shared data arena. The returned network and operator window the
// same initial buffers; each rebuilds its own views when the solver
// hands in new state buffers.
func (m *Model) Build(workers int) (*sim.Network, *operator.Operator, error) {
	st := m.Structure
	vbuf := m.InitState.Clone()
	data, err := state.NewData(st, vbuf, make([]float64, st.EdgeDim()))
	if err != nil {
		return nil, nil, err
	}

	nw, err := sim.NewNetwork(st, data, m.VertexFns, m.EdgeFns, m.Params, workers)
	if err != nil {
		return nil, nil, err
	}

	storage, err := operator.NewStorage(st)
	if err != nil {
		return nil, nil, err
	}
	op, err := operator.New(st, data, storage, m.VertexJacs, m.EdgeJacs, vbuf, m.Params, 0, workers)
	if err != nil {
		return nil, nil, err
	}
	return nw, op, nil
}

func ones(n int) []int {
	d := make([]int, n)
	for i := range d {
		d[i] = 1
	}
	return d
}
