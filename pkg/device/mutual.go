package device

import (
	"fmt"
	"math"

	"mnaspice/pkg/matrix"
)

// Mutual couples two branch-form inductors with coefficient k. The mutual
// inductance M = k*sqrt(L1*L2) is computed once when the inductors are
// resolved; the stamp then only needs their branch indices and previous
// currents.
type Mutual struct {
	BaseDevice
	names     [2]string // referenced inductor names, resolved at build
	inductors [2]*Inductor
	m         float64 // M = k*sqrt(L1*L2)
}

func NewMutual(name, l1, l2 string, k float64) *Mutual {
	return &Mutual{BaseDevice: BaseDevice{Name: name, Value: k}, names: [2]string{l1, l2}}
}

func (m *Mutual) GetType() string { return "K" }

func (m *Mutual) GetInductorNames() []string { return m.names[:] }

// SetInductor binds one of the two coupled inductors. Both must be bound
// before the first stamp.
func (m *Mutual) SetInductor(index int, ind *Inductor) error {
	if index < 0 || index > 1 {
		return fmt.Errorf("mutual %s: invalid inductor index %d", m.Name, index)
	}
	m.inductors[index] = ind
	if m.inductors[0] != nil && m.inductors[1] != nil {
		m.m = m.Value * math.Sqrt(m.inductors[0].Value*m.inductors[1].Value)
	}
	return nil
}

func (m *Mutual) Stamp(sys *matrix.System, status *Status) error {
	li, lj := m.inductors[0], m.inductors[1]
	if li == nil || lj == nil {
		return fmt.Errorf("mutual %s: unresolved inductors", m.Name)
	}

	r := m.m / status.TimeStep
	if status.Method == Trap {
		r = 2 * m.m / status.TimeStep
	}
	xi, xj := li.BranchIndex(), lj.BranchIndex()
	sys.Add(xi, xj, r)
	sys.Add(xj, xi, r)
	sys.AddRHS(xi, r*lj.PrevCurrent(status))
	sys.AddRHS(xj, r*li.PrevCurrent(status))
	return nil
}
