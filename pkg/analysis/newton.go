package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"mnaspice/internal/consts"
	"mnaspice/pkg/device"
	"mnaspice/pkg/matrix"
)

// ConvergenceError reports a time step on which Newton iteration exhausted
// both the iteration cap and the restart budget.
type ConvergenceError struct {
	Time     float64
	Restarts int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence at t=%g after %d restarts", e.Time, e.Restarts)
}

// solveStep runs the fixed-point/Newton loop for one time step. The MNA
// system is rebuilt from zero and solved on every iteration; convergence is
// the max-abs change between successive solutions. After 20 iterations
// without convergence the estimate is re-seeded with uniform values in
// [-5, +5], up to the restart budget. Linear circuits exit after a single
// iteration.
func (tr *Transient) solveStep(sys *matrix.System, status *device.Status) error {
	nv := sys.Size()
	iters := 0
	total := 0 // iterations of this step, restarts included
	restarts := 0
	status.First = true

	for {
		status.Iter = total
		sys.Clear()
		if err := tr.ckt.Stamp(sys, status); err != nil {
			return err
		}
		if err := sys.Solve(status.Time); err != nil {
			return err
		}

		for i := 1; i <= nv; i++ {
			tr.xNew[i] = sys.Solution(i)
		}
		errMax := floats.Distance(status.X[1:], tr.xNew[1:], math.Inf(1))
		copy(status.X[1:], tr.xNew[1:])

		iters++
		total++
		if !tr.ckt.Nonlinear() || errMax <= consts.NewtonTol {
			break
		}
		if iters > consts.MaxNewtonIt {
			return &ConvergenceError{Time: status.Time, Restarts: restarts}
		}
		if iters > consts.RestartAfter && restarts < consts.MaxRestarts {
			restarts++
			for i := 1; i <= nv; i++ {
				status.X[i] = tr.rng.Float64()*10 - 5
			}
			tr.stats.Randomizations++
			tr.stats.LastRandomization = status.Time
			iters = 0
		}
		status.First = false
	}

	if iters > tr.stats.MaxIterations {
		tr.stats.MaxIterations = iters
		tr.stats.MaxIterationsAt = status.Time
	}
	if restarts > tr.stats.MaxRestarts {
		tr.stats.MaxRestarts = restarts
	}
	return nil
}
