// Package circuit turns a parsed element list into stampable devices: it
// interns node names, numbers the auxiliary branch-current unknowns, binds
// mutual couplings to their inductors and owns the per-iteration stamp
// sweep.
package circuit

import (
	"errors"
	"fmt"

	"mnaspice/internal/consts"
	"mnaspice/pkg/device"
	"mnaspice/pkg/matrix"
	"mnaspice/pkg/netlist"
	"mnaspice/pkg/symtab"
)

var ErrCapacity = errors.New("too many elements")

// Required node counts per element kind; K references elements, not nodes.
var nodeCounts = map[string]int{
	"R": 2, "C": 2, "L": 2, "X": 2, "I": 2, "V": 2, "D": 2,
	"G": 4, "E": 4, "F": 4, "H": 4, "O": 4, "M": 4,
	"Q": 3, "K": 0,
}

type Circuit struct {
	name      string
	symbols   *symtab.Table
	devices   []device.Device
	method    device.Method
	nonlinear bool
}

// Build wires a parsed netlist into a circuit under the given integration
// rule. Forward Euler is rejected when the circuit has mutual couplings.
func Build(name string, elements []netlist.Element, method device.Method) (*Circuit, error) {
	if len(elements) > consts.MaxElements {
		return nil, fmt.Errorf("%w (max %d)", ErrCapacity, consts.MaxElements)
	}

	c := &Circuit{name: name, symbols: symtab.New(), method: method}
	byName := make(map[string]device.Device)

	// First pass: intern nodes in card order and create every device. The
	// couplings are bound to their inductors later, once branch indices exist.
	for _, elem := range elements {
		if want, ok := nodeCounts[elem.Type]; ok && len(elem.Nodes) != want {
			return nil, fmt.Errorf("%w: %s: needs %d nodes, has %d", netlist.ErrMalformedElement, elem.Name, want, len(elem.Nodes))
		}
		if elem.Type == "K" && len(elem.Refs) != 2 {
			return nil, fmt.Errorf("%w: %s: needs two coupled inductors", netlist.ErrMalformedElement, elem.Name)
		}
		nodes := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			idx, err := c.symbols.Intern(nodeName)
			if err != nil {
				return nil, err
			}
			nodes[i] = idx
		}

		var dev device.Device
		switch elem.Type {
		case "R":
			dev = device.NewResistor(elem.Name, nodes[0], nodes[1], elem.Value)
		case "C":
			dev = device.NewCapacitor(elem.Name, nodes[0], nodes[1], elem.Value, elem.IC)
		case "L":
			dev = device.NewInductor(elem.Name, nodes[0], nodes[1], elem.Value, elem.IC)
		case "X":
			dev = device.NewNodalInductor(elem.Name, nodes[0], nodes[1], elem.Value, elem.IC)
		case "G":
			dev = device.NewVCCS(elem.Name, nodes[0], nodes[1], nodes[2], nodes[3], elem.Value)
		case "E":
			dev = device.NewVCVS(elem.Name, nodes[0], nodes[1], nodes[2], nodes[3], elem.Value)
		case "F":
			dev = device.NewCCCS(elem.Name, nodes[0], nodes[1], nodes[2], nodes[3], elem.Value)
		case "H":
			dev = device.NewCCVS(elem.Name, nodes[0], nodes[1], nodes[2], nodes[3], elem.Value)
		case "O":
			dev = device.NewOpAmp(elem.Name, nodes[0], nodes[1], nodes[2], nodes[3])
		case "I":
			dev = device.NewCurrentSource(elem.Name, nodes[0], nodes[1], elem.Shape)
		case "V":
			dev = device.NewVoltageSource(elem.Name, nodes[0], nodes[1], elem.Shape)
		case "D":
			dev = device.NewDiode(elem.Name, nodes[0], nodes[1])
			c.nonlinear = true
		case "Q":
			dev = device.NewBJT(elem.Name, nodes[0], nodes[1], nodes[2], elem.Pol)
			c.nonlinear = true
		case "M":
			dev = device.NewMOSFET(elem.Name, nodes[0], nodes[1], nodes[2], nodes[3], elem.Pol, elem.L, elem.W)
			c.nonlinear = true
		case "K":
			dev = device.NewMutual(elem.Name, elem.Refs[0], elem.Refs[1], elem.Value)
			if method == device.FE {
				return nil, fmt.Errorf("%w: %s: mutual inductance is not supported under forward Euler", netlist.ErrMalformedElement, elem.Name)
			}
		default:
			return nil, fmt.Errorf("%w: unknown element kind %q", netlist.ErrMalformedElement, elem.Name)
		}

		byName[elem.Name] = dev
		c.devices = append(c.devices, dev)
	}

	// Second pass: number the auxiliary current unknowns in element order.
	for _, dev := range c.devices {
		switch d := dev.(type) {
		case device.BranchDevice:
			idx, err := c.symbols.Current("j", d.GetName())
			if err != nil {
				return nil, err
			}
			d.SetBranchIndex(idx)
		case *device.CCVS:
			x, err := c.symbols.Current("jx", d.GetName())
			if err != nil {
				return nil, err
			}
			y, err := c.symbols.Current("jy", d.GetName())
			if err != nil {
				return nil, err
			}
			d.SetBranchIndexes(x, y)
		}
	}

	// Finally bind couplings to their (already numbered) inductors.
	for _, dev := range c.devices {
		mut, ok := dev.(*device.Mutual)
		if !ok {
			continue
		}
		for i, indName := range mut.GetInductorNames() {
			ind, ok := byName[indName].(*device.Inductor)
			if !ok {
				return nil, fmt.Errorf("%w: %s: coupled inductor %q not declared", netlist.ErrMalformedElement, mut.GetName(), indName)
			}
			if err := mut.SetInductor(i, ind); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

// Stamp assembles every element contribution into sys at the operating
// point carried by status. sys must be cleared by the caller first.
func (c *Circuit) Stamp(sys *matrix.System, status *device.Status) error {
	for _, dev := range c.devices {
		if err := dev.Stamp(sys, status); err != nil {
			return fmt.Errorf("stamping %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

func (c *Circuit) Name() string { return c.name }

func (c *Circuit) Symbols() *symtab.Table { return c.symbols }

func (c *Circuit) Devices() []device.Device { return c.devices }

func (c *Circuit) Method() device.Method { return c.method }

// NumVariables is the unknown count nv (nodes plus auxiliary currents).
func (c *Circuit) NumVariables() int { return c.symbols.NumVariables() }

// Nonlinear reports whether any element requires Newton iteration.
func (c *Circuit) Nonlinear() bool { return c.nonlinear }
