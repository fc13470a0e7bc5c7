package device

import (
	"mnaspice/pkg/matrix"
)

// Inductor in the augmented (branch-current) form: its current is an extra
// unknown, which is what mutual couplings (K) reference.
type Inductor struct {
	BaseDevice
	IC        float64 // Initial current at n=0
	branchIdx int
}

func NewInductor(name string, a, b int, value, ic float64) *Inductor {
	return &Inductor{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b}, Value: value}, IC: ic}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) BranchIndex() int { return l.branchIdx }

func (l *Inductor) SetBranchIndex(idx int) { l.branchIdx = idx }

// PrevCurrent is the branch current at the previous accepted step.
func (l *Inductor) PrevCurrent(status *Status) float64 {
	if status.Step == 0 {
		return l.IC
	}
	return status.XPrev[l.branchIdx]
}

func (l *Inductor) Stamp(sys *matrix.System, status *Status) error {
	a, b, x := l.Nodes[0], l.Nodes[1], l.branchIdx

	r := l.Value / status.TimeStep
	if status.Method == Trap {
		r = 2 * l.Value / status.TimeStep
	}

	sys.Add(a, x, 1)
	sys.Add(b, x, -1)
	if status.Method != FE {
		// Branch row: -va + vb + r*j = r*jprev [+ vprev under trapezoids]
		sys.Add(x, a, -1)
		sys.Add(x, b, 1)
	}
	sys.Add(x, x, r)
	sys.AddRHS(x, r*l.PrevCurrent(status))
	if status.Method != BE && status.Step > 0 {
		// FE and trapezoids carry v(t0) on the excitation side
		sys.AddRHS(x, status.XPrev[a]-status.XPrev[b])
	}
	return nil
}

// NodalInductor is the alternative inductor treated as a pure nodal
// conductance plus companion current, with no branch unknown (netlist card
// "X"). The companion current accumulates once per step on the first Newton
// iteration. Under Forward Euler no conductance is stamped and the update
// uses the current dt rather than the previous one; that combination is
// experimental, kept as the reference engine has it.
type NodalInductor struct {
	BaseDevice
	IC  float64
	ieq float64 // Companion current
}

func NewNodalInductor(name string, a, b int, value, ic float64) *NodalInductor {
	return &NodalInductor{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b}, Value: value}, IC: ic}
}

func (l *NodalInductor) GetType() string { return "X" }

func (l *NodalInductor) Stamp(sys *matrix.System, status *Status) error {
	a, b := l.Nodes[0], l.Nodes[1]

	switch status.Method {
	case FE:
		if status.First {
			if status.Step == 0 {
				l.ieq = l.IC
			} else {
				l.ieq += status.TimeStep * (status.XPrev[a] - status.XPrev[b]) / l.Value
			}
		}
	case Trap:
		sys.Conductance(a, b, status.TimeStep/(2*l.Value))
		if status.First {
			if status.Step == 0 {
				l.ieq = l.IC
			} else {
				l.ieq += (status.PrevStep + status.TimeStep) * (status.XPrev[a] - status.XPrev[b]) / (2 * l.Value)
			}
		}
	default: // BE
		sys.Conductance(a, b, status.TimeStep/l.Value)
		if status.First {
			if status.Step == 0 {
				l.ieq = l.IC
			} else {
				l.ieq += status.PrevStep * (status.XPrev[a] - status.XPrev[b]) / l.Value
			}
		}
	}
	sys.Source(a, b, l.ieq)
	return nil
}

// CompanionCurrent exposes the accumulated companion state.
func (l *NodalInductor) CompanionCurrent() float64 { return l.ieq }
