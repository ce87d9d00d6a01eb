package metrics

import (
	"math/cmplx"

	"github.com/san-kum/netdyn/internal/dyn"
)

// OrderParameter measures phase synchrony r = |1/N sum exp(i*x_k)|.
// r is 1 when all phases coincide and near 0 when they are spread
// uniformly. Value reports the last observed r.
type OrderParameter struct {
	name    string
	last    float64
	samples int
}

func NewOrderParameter() *OrderParameter {
	return &OrderParameter{name: "order_parameter"}
}

func (o *OrderParameter) Name() string { return o.name }

func (o *OrderParameter) OnStep(x dyn.State, t float64) {
	if len(x) == 0 {
		return
	}
	var z complex128
	for _, theta := range x {
		z += cmplx.Exp(complex(0, theta))
	}
	o.last = cmplx.Abs(z) / float64(len(x))
	o.samples++
}

func (o *OrderParameter) Value() float64 {
	return o.last
}

func (o *OrderParameter) Reset() {
	o.last = 0
	o.samples = 0
}
