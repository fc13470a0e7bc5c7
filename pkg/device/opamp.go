package device

import (
	"mnaspice/pkg/matrix"
)

// OpAmp is the ideal operational amplifier: output branch (a, b), input
// pair (c, d). The branch equation forces vc = vd; the output current is
// whatever the rest of the circuit demands.
type OpAmp struct {
	BaseDevice
	branchIdx int
}

func NewOpAmp(name string, a, b, c, d int) *OpAmp {
	return &OpAmp{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b, c, d}}}
}

func (o *OpAmp) GetType() string { return "O" }

func (o *OpAmp) BranchIndex() int { return o.branchIdx }

func (o *OpAmp) SetBranchIndex(idx int) { o.branchIdx = idx }

func (o *OpAmp) Stamp(sys *matrix.System, status *Status) error {
	n, x := o.Nodes, o.branchIdx
	sys.Add(n[0], x, 1)
	sys.Add(n[1], x, -1)
	sys.Add(x, n[2], 1)
	sys.Add(x, n[3], -1)
	return nil
}
