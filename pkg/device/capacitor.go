package device

import (
	"mnaspice/pkg/matrix"
)

// Capacitor with an optional initial voltage. Under the trapezoidal rule the
// element carries a companion voltage veq, advanced once per time step on
// the first Newton iteration; Backward Euler needs no scratch beyond the
// previous node voltages.
type Capacitor struct {
	BaseDevice
	IC  float64 // Initial voltage at n=0
	veq float64 // Trapezoidal companion voltage
}

func NewCapacitor(name string, a, b int, value, ic float64) *Capacitor {
	return &Capacitor{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b}, Value: value}, IC: ic}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Stamp(sys *matrix.System, status *Status) error {
	a, b := c.Nodes[0], c.Nodes[1]

	if status.Method != Trap { // BE (FE treats C the same way)
		g := c.Value / status.TimeStep
		sys.Conductance(a, b, g)
		vPrev := c.IC
		if status.Step > 0 {
			vPrev = status.XPrev[a] - status.XPrev[b]
		}
		sys.Source(b, a, g*vPrev)
		return nil
	}

	g := 2 * c.Value / status.TimeStep
	sys.Conductance(a, b, g)
	if status.First {
		if status.Step == 0 {
			c.veq = c.IC // branch current at t=0 ignored
		} else {
			vPrev := status.XPrev[a] - status.XPrev[b]
			iPrev := 2 * c.Value / status.PrevStep * (vPrev - c.veq)
			c.veq = vPrev + iPrev/g
		}
	}
	sys.Source(b, a, g*c.veq)
	return nil
}

// CompanionVoltage exposes the trapezoidal companion state.
func (c *Capacitor) CompanionVoltage() float64 { return c.veq }
