package device_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"mnaspice/pkg/device"
	"mnaspice/pkg/matrix"
)

func newStatus(nv int) *device.Status {
	return &device.Status{
		Method:   device.BE,
		TimeStep: 1e-6,
		First:    true,
		X:        make([]float64, nv+1),
		XPrev:    make([]float64, nv+1),
	}
}

func TestResistorStamp(t *testing.T) {
	sys := matrix.New(2)
	r := device.NewResistor("R1", 1, 2, 2000)
	require.NoError(t, r.Stamp(sys, newStatus(2)))
	require.InDelta(t, 5e-4, sys.Y[1][1], 1e-18)
	require.InDelta(t, -5e-4, sys.Y[1][2], 1e-18)
	require.InDelta(t, -5e-4, sys.Y[2][1], 1e-18)
	require.InDelta(t, 5e-4, sys.Y[2][2], 1e-18)
}

func TestVoltageSourceStamp(t *testing.T) {
	sys := matrix.New(2)
	v := device.NewVoltageSource("V1", 1, 0, device.Waveform{Type: device.DC, P1: 5})
	v.SetBranchIndex(2)
	require.NoError(t, v.Stamp(sys, newStatus(2)))
	require.Equal(t, 1.0, sys.Y[1][2])
	require.Equal(t, 1.0, sys.Y[2][1])
	require.Equal(t, 5.0, sys.Y[2][3]) // branch row RHS carries the waveform
}

func TestVCVSStamp(t *testing.T) {
	sys := matrix.New(5)
	e := device.NewVCVS("E1", 1, 2, 3, 4, 10)
	e.SetBranchIndex(5)
	require.NoError(t, e.Stamp(sys, newStatus(5)))
	require.Equal(t, 1.0, sys.Y[1][5])
	require.Equal(t, -1.0, sys.Y[2][5])
	require.Equal(t, 1.0, sys.Y[5][1])
	require.Equal(t, -1.0, sys.Y[5][2])
	require.Equal(t, -10.0, sys.Y[5][3])
	require.Equal(t, 10.0, sys.Y[5][4])
}

func TestCCVSStamp(t *testing.T) {
	sys := matrix.New(6)
	h := device.NewCCVS("H1", 1, 2, 3, 4, 50)
	h.SetBranchIndexes(5, 6)
	require.NoError(t, h.Stamp(sys, newStatus(6)))
	// Control branch shorted on its own row, output row ties to the
	// control current through -Rm.
	require.Equal(t, 1.0, sys.Y[6][3])
	require.Equal(t, -1.0, sys.Y[6][4])
	require.Equal(t, -50.0, sys.Y[5][6])
}

func TestCapacitorStampBE(t *testing.T) {
	sys := matrix.New(2)
	c := device.NewCapacitor("C1", 1, 2, 1e-6, 0.5)
	st := newStatus(2)
	st.TimeStep = 1e-5

	require.NoError(t, c.Stamp(sys, st))
	g := 1e-6 / 1e-5
	require.InDelta(t, g, sys.Y[1][1], 1e-15)
	// Companion source carries g*v0 at n=0: Source(b, a, g*v0)
	require.InDelta(t, g*0.5, sys.Y[1][3], 1e-15)
	require.InDelta(t, -g*0.5, sys.Y[2][3], 1e-15)
}

func TestCapacitorCompanionTrap(t *testing.T) {
	c := device.NewCapacitor("C1", 1, 0, 1e-6, 1)
	st := newStatus(1)
	st.Method = device.Trap
	st.TimeStep = 1e-5

	sys := matrix.New(1)
	require.NoError(t, c.Stamp(sys, st))
	require.Equal(t, 1.0, c.CompanionVoltage()) // IC at n=0

	// Next step: veq = vprev + iprev/g, iprev from the previous veq
	st.Step = 1
	st.PrevStep = 1e-5
	st.XPrev[1] = 0.8
	sys.Clear()
	require.NoError(t, c.Stamp(sys, st))
	g := 2 * 1e-6 / 1e-5
	iPrev := g * (0.8 - 1.0)
	require.InDelta(t, 0.8+iPrev/g, c.CompanionVoltage(), 1e-15)

	// Companion state must not move on later iterations of the same step
	st.First = false
	st.XPrev[1] = 0.2
	sys.Clear()
	require.NoError(t, c.Stamp(sys, st))
	require.InDelta(t, 0.8+iPrev/g, c.CompanionVoltage(), 1e-15)
}

func TestDiodeStampSeedAndClamp(t *testing.T) {
	// First iteration of the first step: the junction is evaluated at the
	// 0.6 V seed, where it conducts very close to 1 mA.
	sys := matrix.New(2)
	d := device.NewDiode("D1", 1, 2)
	st := newStatus(2)
	require.NoError(t, d.Stamp(sys, st))

	g := sys.Y[1][1]
	id := -sys.Y[1][3] // Source(a, b, id) subtracts on row a
	iTotal := g*0.6 + id
	require.InDelta(t, 1e-3, iTotal, 1e-6)

	// Far beyond the clamp the linearization must stay at 0.9 V.
	sys.Clear()
	st.Iter = 3
	st.X[1] = 5
	require.NoError(t, d.Stamp(sys, st))
	gClamped := sys.Y[1][1]
	idClamped := -sys.Y[1][3]
	iAt09 := gClamped*0.9 + idClamped
	require.InDelta(t, 3.7751345e-14*(math.Exp(0.9/0.025)-1), iAt09, 1e-9)
}

func TestMOSFETCutoff(t *testing.T) {
	sys := matrix.New(3)
	m := device.NewMOSFET("M1", 1, 2, 3, 0, device.TypeN, 1e-6, 1e-6)
	st := newStatus(3)
	st.Iter = 1 // past the conduction seed
	require.NoError(t, m.Stamp(sys, st))
	for i := 0; i <= 3; i++ {
		for j := 0; j <= 4; j++ {
			require.Zero(t, sys.Y[i][j], "cutoff must stamp nothing")
		}
	}
}

func TestNodalInductorCompanion(t *testing.T) {
	l := device.NewNodalInductor("X1", 1, 0, 1e-3, 0.25)
	st := newStatus(1)
	st.TimeStep = 1e-5

	sys := matrix.New(1)
	require.NoError(t, l.Stamp(sys, st))
	require.Equal(t, 0.25, l.CompanionCurrent()) // IC at n=0
	require.InDelta(t, 1e-5/1e-3, sys.Y[1][1], 1e-15)

	// BE advances the companion with the previous dt and voltage
	st.Step = 1
	st.PrevStep = 2e-5
	st.XPrev[1] = 0.5
	sys.Clear()
	require.NoError(t, l.Stamp(sys, st))
	require.InDelta(t, 0.25+2e-5*0.5/1e-3, l.CompanionCurrent(), 1e-15)
}
