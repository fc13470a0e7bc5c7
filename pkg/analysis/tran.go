// Package analysis owns the time-stepping loop and the Newton iteration
// wrapped around the per-step stamp+solve cycle.
package analysis

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"mnaspice/internal/consts"
	"mnaspice/pkg/circuit"
	"mnaspice/pkg/device"
	"mnaspice/pkg/matrix"
)

var ErrInvalidParameters = errors.New("invalid simulation parameters")

// Stats collects per-run Newton behavior for diagnostics.
type Stats struct {
	MaxIterations     int     // Peak iterations on any accepted step
	MaxIterationsAt   float64 // Time of that step
	MaxRestarts       int     // Peak restarts within a single step
	Randomizations    int     // Total randomized re-seeds
	LastRandomization float64 // Time of the last re-seed
}

// Transient advances the circuit over totalTime, emitting points+1 samples
// (every steps internal steps, the startup row included). The first step is
// attenuated by StartFactor so nonlinear devices settle before true time
// begins; t only ever advances by the nominal step.
type Transient struct {
	ckt       *circuit.Circuit
	totalTime float64
	points    int
	steps     int

	rng    *rand.Rand
	logger zerolog.Logger
	stats  Stats

	xNew []float64
	rows [][]float64
}

type Option func(*Transient)

// WithLogger attaches a logger for run statistics. Default is no logging.
func WithLogger(l zerolog.Logger) Option {
	return func(tr *Transient) { tr.logger = l }
}

// WithSeed fixes the Newton-restart RNG seed. Identical inputs and seed
// give identical trajectories. Default seed is 1.
func WithSeed(seed int64) Option {
	return func(tr *Transient) { tr.rng = rand.New(rand.NewSource(seed)) }
}

func NewTransient(ckt *circuit.Circuit, totalTime float64, points, steps int, opts ...Option) (*Transient, error) {
	if totalTime <= 0 || points <= 0 || steps <= 0 {
		return nil, fmt.Errorf("%w: time=%g points=%d steps=%d", ErrInvalidParameters, totalTime, points, steps)
	}
	if points > consts.MaxPoints {
		return nil, fmt.Errorf("%w: points=%d above %d", ErrInvalidParameters, points, consts.MaxPoints)
	}

	tr := &Transient{
		ckt:       ckt,
		totalTime: totalTime,
		points:    points,
		steps:     steps,
		rng:       rand.New(rand.NewSource(1)),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr, nil
}

// Execute runs the whole transient. The trajectory is retained and
// retrievable via Rows.
func (tr *Transient) Execute() error {
	nv := tr.ckt.NumVariables()
	sys := matrix.New(nv)
	status := &device.Status{
		Method: tr.ckt.Method(),
		X:      make([]float64, nv+1),
		XPrev:  make([]float64, nv+1),
	}
	tr.xNew = make([]float64, nv+1)
	tr.stats = Stats{}
	tr.rows = tr.rows[:0]

	ntotal := tr.points * tr.steps
	dt1 := tr.totalTime / float64(ntotal)

	t := 0.0
	dt := dt1 * consts.StartFactor // startup substep: settle before true time
	dta := 0.0

	for n := 0; n <= ntotal; n++ {
		status.Time = t
		status.TimeStep = dt
		status.PrevStep = dta
		status.Step = n

		if err := tr.solveStep(sys, status); err != nil {
			return err
		}
		copy(status.XPrev, status.X)

		if n%tr.steps == 0 {
			row := make([]float64, nv+1)
			row[0] = t
			copy(row[1:], status.X[1:])
			tr.rows = append(tr.rows, row)
		}

		dta = dt
		dt = dt1
		t += dt
	}

	tr.logger.Info().
		Int("max_iterations", tr.stats.MaxIterations).
		Float64("at", tr.stats.MaxIterationsAt).
		Int("max_restarts", tr.stats.MaxRestarts).
		Int("randomizations", tr.stats.Randomizations).
		Float64("last_randomization", tr.stats.LastRandomization).
		Msg("transient finished")
	return nil
}

// Rows is the emitted trajectory: one row per sample, first entry t, then
// x[1..nv] in symbol-table order.
func (tr *Transient) Rows() [][]float64 { return tr.rows }

// Stats returns the Newton statistics of the last Execute.
func (tr *Transient) Stats() Stats { return tr.stats }
