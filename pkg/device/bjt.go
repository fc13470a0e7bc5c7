package device

import (
	"mnaspice/internal/consts"
	"mnaspice/pkg/matrix"
)

type Polarity int

const (
	TypeN Polarity = iota // NPN / NMOS
	TypeP                 // PNP / PMOS
)

// BJT in the Ebers-Moll injection form: two junction companions plus the
// alpha-scaled transport sources. Nodes are collector, base, emitter.
type BJT struct {
	BaseDevice
	Pol Polarity
}

func NewBJT(name string, c, b, e int, pol Polarity) *BJT {
	return &BJT{BaseDevice: BaseDevice{Name: name, Nodes: []int{c, b, e}}, Pol: pol}
}

func (q *BJT) GetType() string { return "Q" }

func (q *BJT) Stamp(sys *matrix.System, status *Status) error {
	col, base, emi := q.Nodes[0], q.Nodes[1], q.Nodes[2]

	if q.Pol == TypeN { // NPN
		g, id := stampJunction(sys, status, base, emi)
		sys.Source(col, base, consts.BjtAlpha*id)
		sys.Transconductance(col, base, base, emi, consts.BjtAlpha*g)

		g, id = stampJunction(sys, status, base, col)
		sys.Source(emi, base, consts.BjtAlphaR*id)
		sys.Transconductance(emi, base, base, col, consts.BjtAlphaR*g)
	} else { // PNP: junctions and transport sources mirrored
		g, id := stampJunction(sys, status, emi, base)
		sys.Source(base, col, consts.BjtAlpha*id)
		sys.Transconductance(col, base, base, emi, consts.BjtAlpha*g)

		g, id = stampJunction(sys, status, col, base)
		sys.Source(base, emi, consts.BjtAlphaR*id)
		sys.Transconductance(emi, base, base, col, consts.BjtAlphaR*g)
	}
	return nil
}
