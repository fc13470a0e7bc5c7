package device

import (
	"mnaspice/pkg/matrix"
)

// VoltageSource forces v(a)-v(b) to its waveform value; its branch current
// is an extra unknown.
type VoltageSource struct {
	BaseDevice
	Shape     Waveform
	branchIdx int
}

func NewVoltageSource(name string, a, b int, shape Waveform) *VoltageSource {
	return &VoltageSource{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b}, Value: shape.P1}, Shape: shape}
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) BranchIndex() int { return v.branchIdx }

func (v *VoltageSource) SetBranchIndex(idx int) { v.branchIdx = idx }

func (v *VoltageSource) Stamp(sys *matrix.System, status *Status) error {
	a, b, x := v.Nodes[0], v.Nodes[1], v.branchIdx

	sys.Add(a, x, 1)
	sys.Add(b, x, -1)
	sys.Add(x, a, 1)
	sys.Add(x, b, -1)
	sys.AddRHS(x, v.Shape.At(status.Time))
	return nil
}
