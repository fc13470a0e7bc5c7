package device

import (
	"math"

	"mnaspice/internal/consts"
	"mnaspice/pkg/matrix"
)

// Diode: exponential junction linearized around the current Newton
// estimate. The junction voltage is clamped at 0.9 V (the exponential
// overflows Newton above that) and seeded at 0.6 V on the very first
// iteration of the very first step.
type Diode struct {
	BaseDevice
}

func NewDiode(name string, a, b int) *Diode {
	return &Diode{BaseDevice{Name: name, Nodes: []int{a, b}}}
}

func (d *Diode) GetType() string { return "D" }

func (d *Diode) Stamp(sys *matrix.System, status *Status) error {
	stampJunction(sys, status, d.Nodes[0], d.Nodes[1])
	return nil
}

// stampJunction writes the linearized diode companion between anode a and
// cathode b and returns the conductance g and the non-tangent current
// remainder id, which the BJT stamp reuses scaled by its alphas.
func stampJunction(sys *matrix.System, status *Status, a, b int) (g, id float64) {
	var v float64
	if status.Step == 0 && status.Iter == 0 {
		v = 0.6
	} else {
		v = status.X[a] - status.X[b]
		if v > consts.DiodeVmax {
			v = consts.DiodeVmax
		}
	}
	ex := math.Exp(v / consts.DiodeVt)
	g = consts.DiodeIs / consts.DiodeVt * ex
	sys.Conductance(a, b, g)
	id = consts.DiodeIs*(ex-1) - g*v
	sys.Source(a, b, id)
	return g, id
}
