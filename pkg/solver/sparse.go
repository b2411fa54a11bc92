package solver

import (
	"fmt"

	"github.com/edp1096/netsolver/pkg/matrix"
	"github.com/edp1096/netsolver/pkg/network"
)

// Sparse stamps the rows into an edp1096/sparse matrix and lets it pick the
// pivot order. It suits larger subcircuits where the dense strategies scale
// badly.
type Sparse struct {
	matrixSolver

	mat *matrix.CircuitMatrix
	x   []float64
}

func NewSparse(params *Params, capacity int) *Sparse {
	return &Sparse{matrixSolver: newMatrixSolver(params, capacity)}
}

func (s *Sparse) Setup(top *network.Topology) error {
	if err := s.setup(top, false); err != nil {
		return err
	}

	s.Destroy()
	s.x = make([]float64, s.n)
	if s.n == 0 {
		return nil
	}

	mat, err := matrix.NewCircuitMatrix(s.n)
	if err != nil {
		s.ready = false
		return fmt.Errorf("sparse setup: %w", err)
	}

	pattern := make([][]int, s.n)
	for k, r := range s.rows {
		pattern[k] = r.NZ
	}
	mat.SetupPattern(pattern)
	s.mat = mat
	return nil
}

func (s *Sparse) Solve(newtonRaphson bool) (Status, error) {
	if !s.ready {
		return NotConverged, ErrNotSetup
	}
	if s.n == 0 {
		return s.commit(s.x, newtonRaphson), nil
	}

	s.mat.Clear()
	s.stamp(s.mat)

	if err := s.mat.Solve(); err != nil {
		return NotConverged, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}

	copy(s.x, s.mat.Solution()[1:])
	return s.commit(s.x, newtonRaphson), nil
}

// Destroy releases the underlying sparse matrix.
func (s *Sparse) Destroy() {
	if s.mat != nil {
		s.mat.Destroy()
		s.mat = nil
	}
}
