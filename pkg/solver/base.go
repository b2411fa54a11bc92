package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/edp1096/netsolver/pkg/matrix"
	"github.com/edp1096/netsolver/pkg/network"
)

// matrixSolver carries what every solving strategy shares: the preprocessed
// rows, the solver's own net order and the assembly of A and RHS.
type matrixSolver struct {
	params   *Params
	capacity int
	timestep *Timestep

	n     int
	nets  []*network.Net
	rows  []*Row
	cur   []float64 // net voltages before commit
	ready bool
}

func newMatrixSolver(params *Params, capacity int) matrixSolver {
	if params == nil {
		params = DefaultParams()
	}
	return matrixSolver{
		params:   params,
		capacity: capacity,
		timestep: NewTimestep(params),
	}
}

func (s *matrixSolver) setup(top *network.Topology, withBelow bool) error {
	s.ready = false
	if top == nil {
		return fmt.Errorf("%w: nil topology", ErrNotSetup)
	}
	if err := s.params.Validate(); err != nil {
		return err
	}
	if len(top.Nets) > s.capacity {
		return fmt.Errorf("%w: %d nets, capacity %d", ErrCapacity, len(top.Nets), s.capacity)
	}

	rows, err := buildRows(top)
	if err != nil {
		return err
	}

	perm := Ordering(rows, s.params.Ordering)
	s.nets, s.rows = permute(top.Nets, rows, perm)
	resolveColumns(s.nets, s.rows)
	nonZero(s.rows)
	if withBelow {
		belowDiagonal(s.rows)
	}

	s.n = len(s.nets)
	s.cur = make([]float64, s.n)
	s.ready = true
	return nil
}

func (s *matrixSolver) Nets() []*network.Net { return s.nets }
func (s *matrixSolver) Rows() []*Row         { return s.rows }
func (s *matrixSolver) N() int               { return s.n }

// NextTimestep bounds the next step after a converged solve of step h.
func (s *matrixSolver) NextTimestep(h float64) float64 {
	return s.timestep.Next(s.nets, h)
}

// buildA assembles the coefficient matrix from scratch.
func (s *matrixSolver) buildA(a *matrix.Dense) {
	for k, r := range s.rows {
		row := a.Row(k)
		clear(row)

		akk := 0.0
		for _, t := range r.Terms {
			akk += t.Gt
		}
		row[k] += akk

		for i := 0; i < r.RailStart; i++ {
			row[r.Other[i]] -= r.Terms[i].Go
		}
	}
}

func (s *matrixSolver) buildRHS(rhs []float64) {
	for k, r := range s.rows {
		rhsA, rhsB := 0.0, 0.0
		for _, t := range r.Terms {
			rhsA += t.Idr
		}
		for _, t := range r.Terms[r.RailStart:] {
			rhsB += t.Go * t.Other.Voltage
		}
		rhs[k] = rhsA + rhsB
	}
}

// stamp assembles the system into a 1-based device matrix.
func (s *matrixSolver) stamp(m matrix.DeviceMatrix) {
	for k, r := range s.rows {
		akk, rhs := 0.0, 0.0
		for _, t := range r.Terms {
			akk += t.Gt
			rhs += t.Idr
		}
		m.AddElement(k+1, k+1, akk)

		for i := 0; i < r.RailStart; i++ {
			m.AddElement(k+1, r.Other[i]+1, -r.Terms[i].Go)
		}
		for _, t := range r.Terms[r.RailStart:] {
			rhs += t.Go * t.Other.Voltage
		}
		m.AddRHS(k+1, rhs)
	}
}

// delta is the largest voltage change v would apply to the nets.
func (s *matrixSolver) delta(v []float64) float64 {
	if s.n == 0 {
		return 0
	}
	for i, n := range s.nets {
		s.cur[i] = n.Voltage
	}
	return floats.Distance(v, s.cur, math.Inf(1))
}

func (s *matrixSolver) store(v []float64) {
	for i, n := range s.nets {
		n.Voltage = v[i]
	}
}

// commit always writes v into the nets; devices read the new voltages on the
// next Newton pass whatever the status.
func (s *matrixSolver) commit(v []float64, newtonRaphson bool) Status {
	if !newtonRaphson {
		s.store(v)
		return Accepted
	}

	err := s.delta(v)
	s.store(v)
	if err > s.params.Accuracy {
		return NotConverged
	}
	return Converged
}

func (s *matrixSolver) usablePivot(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && math.Abs(p) > s.params.PivotTolerance
}

func (s *matrixSolver) singular(row int, pivot float64) error {
	name := ""
	if row >= 0 && row < len(s.nets) {
		name = s.nets[row].Name
	}
	return &SingularError{Row: row, Net: name, Pivot: pivot}
}

// residual returns |a*x - rhs| in the infinity norm using scratch.
func residual(a *matrix.Dense, x, rhs, scratch []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	a.MulVec(scratch, x)
	return floats.Distance(scratch, rhs, math.Inf(1))
}
