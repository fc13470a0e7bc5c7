package device

import (
	"mnaspice/pkg/matrix"
)

// CurrentSource injects its waveform value from node a to node b.
type CurrentSource struct {
	BaseDevice
	Shape Waveform
}

func NewCurrentSource(name string, a, b int, shape Waveform) *CurrentSource {
	return &CurrentSource{BaseDevice: BaseDevice{Name: name, Nodes: []int{a, b}, Value: shape.P1}, Shape: shape}
}

func (s *CurrentSource) GetType() string { return "I" }

func (s *CurrentSource) Stamp(sys *matrix.System, status *Status) error {
	sys.Source(s.Nodes[0], s.Nodes[1], s.Shape.At(status.Time))
	return nil
}
