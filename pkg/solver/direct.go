package solver

import (
	"math"

	"github.com/edp1096/netsolver/pkg/matrix"
	"github.com/edp1096/netsolver/pkg/network"
)

// Direct assembles and eliminates the full system on every call. Elimination
// touches only the columns predicted by NZRD.
type Direct struct {
	matrixSolver

	a       *matrix.Dense
	rhs     []float64
	lastRHS []float64 // assembled RHS before elimination
	x       []float64

	denseFrom int // first pivot after a row exchange
}

func NewDirect(params *Params, capacity int) *Direct {
	return &Direct{matrixSolver: newMatrixSolver(params, capacity)}
}

func (s *Direct) Setup(top *network.Topology) error {
	if err := s.setup(top, false); err != nil {
		return err
	}
	s.a = matrix.NewDense(s.n)
	s.rhs = make([]float64, s.n)
	s.lastRHS = make([]float64, s.n)
	s.x = make([]float64, s.n)
	return nil
}

// Solve runs one assemble, eliminate and commit cycle. On a singular matrix
// the nets keep their previous voltages.
func (s *Direct) Solve(newtonRaphson bool) (Status, error) {
	if !s.ready {
		return NotConverged, ErrNotSetup
	}

	s.buildA(s.a)
	s.buildRHS(s.lastRHS)
	copy(s.rhs, s.lastRHS)

	if err := s.eliminate(); err != nil {
		return NotConverged, err
	}
	s.backSubstitute(s.x)

	return s.commit(s.x, newtonRaphson), nil
}

// LastRHS returns the right hand side assembled by the last Solve.
func (s *Direct) LastRHS() []float64 { return s.lastRHS }

func (s *Direct) eliminate() error {
	n := s.n
	s.denseFrom = n

	for i := 0; i < n; i++ {
		if s.params.Pivot {
			// Find the row with the largest value in column i
			maxrow := i
			for j := i + 1; j < n; j++ {
				if math.Abs(s.a.At(j, i)) > math.Abs(s.a.At(maxrow, i)) {
					maxrow = j
				}
			}

			if maxrow != i {
				s.a.SwapRows(i, maxrow, i)
				s.rhs[i], s.rhs[maxrow] = s.rhs[maxrow], s.rhs[i]
				// NZRD no longer describes the exchanged rows
				if s.denseFrom > i {
					s.denseFrom = i
				}
			}
		}

		src := s.a.Row(i)
		pivot := src[i]
		if !s.usablePivot(pivot) {
			return s.singular(i, pivot)
		}

		f := 1.0 / pivot
		cols := s.rows[i].NZRD
		full := i >= s.denseFrom

		// Eliminate column i from row j
		for j := i + 1; j < n; j++ {
			dst := s.a.Row(j)
			f1 := -dst[i] * f
			if f1 == 0.0 {
				continue
			}

			if full {
				for k := i + 1; k < n; k++ {
					dst[k] += src[k] * f1
				}
			} else {
				for _, k := range cols {
					dst[k] += src[k] * f1
				}
			}
			s.rhs[j] += s.rhs[i] * f1
		}
	}
	return nil
}

func (s *Direct) backSubstitute(x []float64) {
	n := s.n

	for j := n - 1; j >= 0; j-- {
		row := s.a.Row(j)
		tmp := 0.0

		if j >= s.denseFrom {
			for k := j + 1; k < n; k++ {
				tmp += row[k] * x[k]
			}
		} else {
			for _, k := range s.rows[j].NZRD {
				tmp += row[k] * x[k]
			}
		}
		x[j] = (s.rhs[j] - tmp) / row[j]
	}
}
