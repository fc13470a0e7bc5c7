package device

import (
	"mnaspice/internal/consts"
	"mnaspice/pkg/matrix"
)

// MOSFET: square-law model with channel-length modulation. Nodes are drain,
// gate, source, bulk; the bulk terminal is accepted and ignored. Drain and
// source are decided by the sign of the channel voltage at the current
// estimate, so the device is symmetric. The first iteration of the first
// step seeds Vgs = 2 V to guarantee the device starts conducting.
type MOSFET struct {
	BaseDevice
	Pol Polarity
	L   float64
	W   float64
}

func NewMOSFET(name string, d, g, s, b int, pol Polarity, l, w float64) *MOSFET {
	return &MOSFET{BaseDevice: BaseDevice{Name: name, Nodes: []int{d, g, s, b}}, Pol: pol, L: l, W: w}
}

func (m *MOSFET) GetType() string { return "M" }

func (m *MOSFET) Stamp(sys *matrix.System, status *Status) error {
	na, gate, nc := m.Nodes[0], m.Nodes[1], m.Nodes[2]
	x := status.X
	seed := status.Step == 0 && status.Iter == 0

	// Effective drain is the higher channel terminal for NMOS, the lower
	// for PMOS; vgs/vds are sign-flipped for PMOS so the square law below
	// always sees positive quantities.
	var drain, source int
	if m.Pol == TypeN {
		if x[na] > x[nc] {
			drain, source = na, nc
		} else {
			drain, source = nc, na
		}
	} else {
		if x[na] < x[nc] {
			drain, source = na, nc
		} else {
			drain, source = nc, na
		}
	}

	vgs := x[gate] - x[source]
	vds := x[drain] - x[source]
	if m.Pol == TypeP {
		vgs, vds = -vgs, -vds
	}
	if seed {
		vgs = 2
	}
	if vgs <= consts.MosfetVt0 {
		return nil // cutoff
	}

	km := consts.MosfetK0 * m.W / m.L
	vov := vgs - consts.MosfetVt0
	lam := consts.MosfetLambda

	var gm, gds, id float64
	if vds > vov { // saturation
		gm = 2 * km * vov * (1 + lam*vds)
		gds = km * vov * vov * lam
		id = km * vov * vov * (1 + lam*vds)
	} else { // triode
		gm = 2 * km * vds * (1 + lam*vds)
		gds = km * (2*vov - 2*vds + 4*lam*vov*vds - 3*lam*vds*vds)
		id = km * (2*vov*vds - vds*vds) * (1 + lam*vds)
	}

	ieq := id - gm*vgs - gds*vds
	if m.Pol == TypeP {
		ieq = -ieq
	}
	sys.Transconductance(drain, source, gate, source, gm)
	sys.Conductance(drain, source, gds)
	sys.Source(drain, source, ieq)
	return nil
}
