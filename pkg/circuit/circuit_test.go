package circuit_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"mnaspice/pkg/circuit"
	"mnaspice/pkg/device"
	"mnaspice/pkg/netlist"
)

func parse(t *testing.T, src string) *netlist.Circuit {
	t.Helper()
	ckt, err := netlist.Parse(src)
	require.NoError(t, err)
	return ckt
}

func TestBuildNumbering(t *testing.T) {
	parsed := parse(t, `numbering
V1 in 0 DC 1
R1 in out 1k
L1 out 0 1m
H1 a 0 in 0 100
E1 b 0 out 0 2
`)
	ckt, err := circuit.Build(parsed.Title, parsed.Elements, device.BE)
	require.NoError(t, err)

	sym := ckt.Symbols()
	// Nodes first, in card order: in=1, out=2, a=3, b=4.
	require.Equal(t, 1, sym.Lookup("in"))
	require.Equal(t, 2, sym.Lookup("out"))
	require.Equal(t, 4, sym.NumNodes())

	// Auxiliary currents after the nodes, in element order.
	require.Equal(t, 5, sym.Lookup("jV1"))
	require.Equal(t, 6, sym.Lookup("jL1"))
	require.Equal(t, 7, sym.Lookup("jxH1"))
	require.Equal(t, 8, sym.Lookup("jyH1"))
	require.Equal(t, 9, sym.Lookup("jE1"))
	require.Equal(t, 9, ckt.NumVariables())
	require.False(t, ckt.Nonlinear())
}

func TestBuildNonlinearFlag(t *testing.T) {
	parsed := parse(t, `nl
V1 in 0 DC 1
D1 in 0
`)
	ckt, err := circuit.Build(parsed.Title, parsed.Elements, device.BE)
	require.NoError(t, err)
	require.True(t, ckt.Nonlinear())
}

func TestBuildCouplingResolution(t *testing.T) {
	parsed := parse(t, `coupling
V1 in 0 DC 1
L1 in a 1m
L2 a 0 1m
K1 L1 L2 0.5
`)
	ckt, err := circuit.Build(parsed.Title, parsed.Elements, device.Trap)
	require.NoError(t, err)
	require.Equal(t, 5, ckt.NumVariables()) // in, a, jV1, jL1, jL2

	// Undeclared inductor
	parsed = parse(t, `bad coupling
V1 in 0 DC 1
L1 in 0 1m
K1 L1 L9 0.5
`)
	_, err = circuit.Build(parsed.Title, parsed.Elements, device.Trap)
	require.ErrorIs(t, err, netlist.ErrMalformedElement)

	// A nodal-form inductor has no branch current to couple
	parsed = parse(t, `nodal coupling
V1 in 0 DC 1
L1 in 0 1m
X1 in 0 1m
K1 L1 X1 0.5
`)
	_, err = circuit.Build(parsed.Title, parsed.Elements, device.Trap)
	require.ErrorIs(t, err, netlist.ErrMalformedElement)
}

func TestBuildRejectsCouplingUnderFE(t *testing.T) {
	parsed := parse(t, `fe coupling
V1 in 0 DC 1
L1 in a 1m
L2 a 0 1m
K1 L1 L2 0.5
`)
	_, err := circuit.Build(parsed.Title, parsed.Elements, device.FE)
	require.ErrorIs(t, err, netlist.ErrMalformedElement)

	// Plain branch-form inductors are fine under FE
	parsed = parse(t, `fe plain
V1 in 0 DC 1
L1 in 0 1m
`)
	_, err = circuit.Build(parsed.Title, parsed.Elements, device.FE)
	require.NoError(t, err)
}

func TestBuildUnknownKind(t *testing.T) {
	elems := []netlist.Element{{Type: "Z", Name: "Z1", Nodes: []string{"1", "0"}}}
	_, err := circuit.Build("bad", elems, device.BE)
	require.ErrorIs(t, err, netlist.ErrMalformedElement)
}

func TestBuildCapacity(t *testing.T) {
	var elems []netlist.Element
	for i := 0; i < 150; i++ {
		elems = append(elems, netlist.Element{
			Type: "R", Name: fmt.Sprintf("R%d", i),
			Nodes: []string{"a", "0"}, Value: 1,
		})
	}
	_, err := circuit.Build("big", elems, device.BE)
	require.ErrorIs(t, err, circuit.ErrCapacity)
}
