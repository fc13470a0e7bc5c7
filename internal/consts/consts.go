package consts

// Junction model constants shared by the diode, BJT and MOSFET stamps.
const (
	DiodeIs   = 3.7751345e-14 // Saturation current (A). Conducts 1 mA at v=0.6 V
	DiodeVt   = 0.025         // Thermal voltage (V)
	DiodeVmax = 0.9           // Junction voltage clamp (V)

	MosfetK0     = 1e-4 // Transconductance parameter K0 (A/V^2), Km = K0*W/L
	MosfetLambda = 0.05 // Channel-length modulation
	MosfetVt0    = 1.0  // |Vt0| (V)

	BjtAlpha  = 0.99 // Forward alpha
	BjtAlphaR = 0.5  // Reverse alpha
)

// Solver policy.
const (
	PivotTol     = 1e-12 // Minimum usable pivot magnitude
	NewtonTol    = 1e-7  // Max-abs solution change for convergence
	MaxNewtonIt  = 100   // Hard iteration cap per time step
	RestartAfter = 20    // Iterations before a randomized restart
	MaxRestarts  = 10    // Restart budget per time step
	StartFactor  = 1e-3  // First-step attenuation of the nominal step
)

// Capacity bounds, as in the reference engine.
const (
	MaxVariables = 50     // Node voltages plus auxiliary currents
	MaxElements  = 100    // Netlist elements
	MaxPoints    = 100000 // Emitted samples
)
