package metrics

import (
	"math"

	"github.com/san-kum/netdyn/internal/dyn"
)

// Stability reports the fraction of observed steps in which every
// state component stayed within the given threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{name: "stability", threshold: threshold}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) OnStep(x dyn.State, t float64) {
	s.samples++
	for _, v := range x {
		if math.Abs(v) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
