package device

import (
	"mnaspice/pkg/matrix"
)

// The four controlled sources. Output branch is (a, b), control branch is
// (c, d). F and H short their control branch; the control current becomes
// an extra unknown.

// VCCS is the voltage-controlled current source (G): i(a->b) = gm*(vc-vd).
type VCCS struct {
	BaseDevice
}

func NewVCCS(name string, a, b, c, d int, gm float64) *VCCS {
	return &VCCS{BaseDevice{Name: name, Nodes: []int{a, b, c, d}, Value: gm}}
}

func (g *VCCS) GetType() string { return "G" }

func (g *VCCS) Stamp(sys *matrix.System, status *Status) error {
	n := g.Nodes
	sys.Transconductance(n[0], n[1], n[2], n[3], g.Value)
	return nil
}

// VCVS is the voltage-controlled voltage source (E): va-vb = Av*(vc-vd).
type VCVS struct {
	BaseDevice
	branchIdx int
}

func NewVCVS(name string, a, b, c, d int, av float64) *VCVS {
	return &VCVS{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b, c, d}, Value: av}}
}

func (e *VCVS) GetType() string { return "E" }

func (e *VCVS) BranchIndex() int { return e.branchIdx }

func (e *VCVS) SetBranchIndex(idx int) { e.branchIdx = idx }

func (e *VCVS) Stamp(sys *matrix.System, status *Status) error {
	n, x := e.Nodes, e.branchIdx
	sys.Add(n[0], x, 1)
	sys.Add(n[1], x, -1)
	sys.Add(x, n[0], 1)
	sys.Add(x, n[1], -1)
	sys.Add(x, n[2], -e.Value)
	sys.Add(x, n[3], e.Value)
	return nil
}

// CCCS is the current-controlled current source (F): i(a->b) = Ai*j, where
// j is the current through the shorted control branch.
type CCCS struct {
	BaseDevice
	branchIdx int
}

func NewCCCS(name string, a, b, c, d int, ai float64) *CCCS {
	return &CCCS{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b, c, d}, Value: ai}}
}

func (f *CCCS) GetType() string { return "F" }

func (f *CCCS) BranchIndex() int { return f.branchIdx }

func (f *CCCS) SetBranchIndex(idx int) { f.branchIdx = idx }

func (f *CCCS) Stamp(sys *matrix.System, status *Status) error {
	n, x := f.Nodes, f.branchIdx
	sys.Add(n[0], x, f.Value)
	sys.Add(n[1], x, -f.Value)
	sys.Add(n[2], x, 1)
	sys.Add(n[3], x, -1)
	sys.Add(x, n[2], 1)
	sys.Add(x, n[3], -1)
	return nil
}

// CCVS is the current-controlled voltage source (H): va-vb = Rm*j. It owns
// two branch unknowns, the output current x and the control current y.
type CCVS struct {
	BaseDevice
	branchX int
	branchY int
}

func NewCCVS(name string, a, b, c, d int, rm float64) *CCVS {
	return &CCVS{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b, c, d}, Value: rm}}
}

func (h *CCVS) GetType() string { return "H" }

func (h *CCVS) BranchIndexes() (int, int) { return h.branchX, h.branchY }

func (h *CCVS) SetBranchIndexes(x, y int) { h.branchX, h.branchY = x, y }

func (h *CCVS) Stamp(sys *matrix.System, status *Status) error {
	n, x, y := h.Nodes, h.branchX, h.branchY
	sys.Add(n[0], x, 1)
	sys.Add(n[1], x, -1)
	sys.Add(n[2], y, 1)
	sys.Add(n[3], y, -1)
	sys.Add(x, n[0], 1)
	sys.Add(x, n[1], -1)
	sys.Add(y, n[2], 1)
	sys.Add(y, n[3], -1)
	sys.Add(x, y, -h.Value)
	return nil
}
