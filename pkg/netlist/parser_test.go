package netlist_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mnaspice/pkg/device"
	"mnaspice/pkg/netlist"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{"1k", 1e3},
		{"4.7u", 4.7e-6},
		{"2meg", 2e6},
		{"1m", 1e-3},
		{"10n", 1e-8},
		{"3p", 3e-12},
		{"-0.5", -0.5},
		{"1e-3", 1e-3},
		{"2.5e3", 2500},
		{"5ms", 5e-3}, // trailing unit letter is tolerated
	}
	for _, c := range cases {
		got, err := netlist.ParseValue(c.in)
		require.NoError(t, err, c.in)
		require.InEpsilon(t, c.want, got, 1e-12, c.in)
	}

	_, err := netlist.ParseValue("abc")
	require.Error(t, err)
}

func TestParseCircuit(t *testing.T) {
	src := `Example circuit
V1 in 0 SIN(0 5 1k)
R1 in out 1k
C1 out 0 1u IC=0.5
L1 out 2 1m IC=1m
X2 2 0 2m
K1 L1 L1b 0.9
L1b 3 0 1m
G1 0 out in 0 2m
E1 4 0 in 0 10
F1 0 4 in 0 2
H1 5 0 in 0 1k
O1 6 0 0 5
D1 6 0
M1 7 6 0 0 NMOS L=1u W=5u
Q1 7 6 0 NPN
I1 0 7 PULSE(0 1m 2u)
.tran 5m 500 10 be
`
	ckt, err := netlist.Parse(src)
	require.NoError(t, err)
	require.Equal(t, "Example circuit", ckt.Title)
	require.Len(t, ckt.Elements, 16)

	v := ckt.Elements[0]
	require.Equal(t, "V", v.Type)
	require.Equal(t, device.SIN, v.Shape.Type)
	require.Equal(t, []string{"in", "0"}, v.Nodes)
	require.Equal(t, 5.0, v.Shape.P2)
	require.Equal(t, 1000.0, v.Shape.P3)

	c := ckt.Elements[2]
	require.Equal(t, 1e-6, c.Value)
	require.Equal(t, 0.5, c.IC)

	l := ckt.Elements[3]
	require.Equal(t, "L", l.Type)
	require.Equal(t, 1e-3, l.IC)

	k := ckt.Elements[5]
	require.Equal(t, []string{"L1", "L1b"}, k.Refs)
	require.Equal(t, 0.9, k.Value)

	m := ckt.Elements[13]
	require.Equal(t, device.TypeN, m.Pol)
	require.InEpsilon(t, 1e-6, m.L, 1e-12)
	require.InEpsilon(t, 5e-6, m.W, 1e-12)
	require.Equal(t, []string{"7", "6", "0", "0"}, m.Nodes)

	q := ckt.Elements[14]
	require.Equal(t, []string{"7", "6", "0"}, q.Nodes)
	require.Equal(t, device.TypeN, q.Pol)

	i := ckt.Elements[15]
	require.Equal(t, device.PULSE, i.Shape.Type)
	require.Equal(t, 2e-6, i.Shape.P3)

	require.True(t, ckt.Tran.Set)
	require.Equal(t, 5e-3, ckt.Tran.Time)
	require.Equal(t, 500, ckt.Tran.Points)
	require.Equal(t, 10, ckt.Tran.Steps)
	require.Equal(t, device.BE, ckt.Tran.Method)
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"title\nZ1 1 0 5",
		"title\nV1 1 0 TRI(1 2 3)",
		"title\nR1 1 0",
		"title\nQ1 1 2 3 XPN",
		"title\nM1 1 2 3 4 NMOS L=1u", // missing W
		"title\nK1 L1 0.5",
	}
	for _, src := range cases {
		_, err := netlist.Parse(src)
		require.ErrorIs(t, err, netlist.ErrMalformedElement, src)
	}
}

func TestParseMethod(t *testing.T) {
	m, err := netlist.ParseMethod("trap")
	require.NoError(t, err)
	require.Equal(t, device.Trap, m)
	_, err = netlist.ParseMethod("rk4")
	require.Error(t, err)
}
