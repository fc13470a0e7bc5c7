// Package matrix holds the dense augmented MNA system and its Gauss-Jordan
// solver. Row and column 0 belong to the ground node: stamps may write there
// freely and the solver never reads them, which keeps every stamp free of
// ground special-casing.
package matrix

import (
	"fmt"
	"math"

	"mnaspice/internal/consts"
)

// SingularError reports a pivot below the usable threshold during solve.
type SingularError struct {
	Time  float64
	Pivot float64
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("singular system: pivot=%g at t=%g", e.Pivot, e.Time)
}

// System is the augmented matrix Y[0..nv][0..nv+1]. Column nv+1 is the RHS
// and, after Solve, the solution. Indices are 1-based; 0 is ground.
type System struct {
	nv int
	Y  [][]float64
}

func New(nv int) *System {
	s := &System{nv: nv, Y: make([][]float64, nv+1)}
	for i := range s.Y {
		s.Y[i] = make([]float64, nv+2)
	}
	return s
}

// Size is the number of unknowns nv.
func (s *System) Size() int { return s.nv }

// Clear zeroes the whole augmented matrix. Called before every stamp pass.
func (s *System) Clear() {
	for i := range s.Y {
		row := s.Y[i]
		for j := range row {
			row[j] = 0
		}
	}
}

// Add accumulates v at (i, j). Writes aimed at ground land in row/column 0
// and are discarded by Solve.
func (s *System) Add(i, j int, v float64) {
	s.Y[i][j] += v
}

// AddRHS accumulates v into the excitation column at row i.
func (s *System) AddRHS(i int, v float64) {
	s.Y[i][s.nv+1] += v
}

// Transconductance stamps the four-terminal pattern: +g at (a,c) and (b,d),
// -g at (a,d) and (b,c).
func (s *System) Transconductance(a, b, c, d int, g float64) {
	s.Y[a][c] += g
	s.Y[b][d] += g
	s.Y[a][d] -= g
	s.Y[b][c] -= g
}

// Conductance stamps a two-terminal conductance between a and b.
func (s *System) Conductance(a, b int, g float64) {
	s.Transconductance(a, b, a, b, g)
}

// Source stamps a current i flowing from a to b through the element.
func (s *System) Source(a, b int, i float64) {
	s.Y[a][s.nv+1] -= i
	s.Y[b][s.nv+1] += i
}

// Solution returns unknown i after a successful Solve.
func (s *System) Solution(i int) float64 {
	return s.Y[i][s.nv+1]
}

// Solve runs Gauss-Jordan elimination with partial (column) pivoting on
// rows/columns 1..nv, leaving the solution in the RHS column. The matrix is
// rebuilt from scratch every iteration, so full elimination costs nothing
// extra over an LU split here. t is carried only for diagnostics.
func (s *System) Solve(t float64) error {
	nv := s.nv
	for i := 1; i <= nv; i++ {
		pivot := 0.0
		pivotRow := i
		for l := i; l <= nv; l++ {
			if math.Abs(s.Y[l][i]) > math.Abs(pivot) {
				pivot = s.Y[l][i]
				pivotRow = l
			}
		}
		if pivotRow != i {
			s.Y[i], s.Y[pivotRow] = s.Y[pivotRow], s.Y[i]
		}
		if math.Abs(pivot) < consts.PivotTol {
			return &SingularError{Time: t, Pivot: pivot}
		}
		for j := nv + 1; j > 0; j-- {
			s.Y[i][j] /= pivot
			p := s.Y[i][j]
			for l := 1; l <= nv; l++ {
				if l != i {
					s.Y[l][j] -= s.Y[l][i] * p
				}
			}
		}
	}
	return nil
}
