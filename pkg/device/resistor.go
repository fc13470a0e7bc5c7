package device

import (
	"fmt"

	"mnaspice/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

func NewResistor(name string, a, b int, value float64) *Resistor {
	return &Resistor{BaseDevice{Name: name, Nodes: []int{a, b}, Value: value}}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(sys *matrix.System, status *Status) error {
	if r.Value == 0 {
		return fmt.Errorf("resistor %s: zero resistance", r.Name)
	}
	sys.Conductance(r.Nodes[0], r.Nodes[1], 1/r.Value)
	return nil
}
