package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// CircuitMatrix is a real-valued sparse system backed by edp1096/sparse.
// Vectors are 1-based like the underlying library; index 0 is unused.
type CircuitMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

func NewCircuitMatrix(size int) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		Translate:      true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
		Annotate:       0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1),
		solution: make([]float64, size+1),
		config:   config,
	}, nil
}

// SetupPattern allocates the elements of a fixed nonzero pattern so later
// stamps never grow the structure. pattern[i] lists 0-based columns of row i.
func (m *CircuitMatrix) SetupPattern(pattern [][]int) {
	for i, cols := range pattern {
		for _, j := range cols {
			m.matrix.GetElement(int64(i+1), int64(j+1))
		}
	}
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		fmt.Printf("Warning: Matrix index out of bounds (i=%d, j=%d, size=%d)\n", i, j, m.Size)
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > m.Size {
		fmt.Printf("Warning: RHS index out of bounds (i=%d, size=%d)\n", i, m.Size)
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	clear(m.rhs)
}

func (m *CircuitMatrix) Solve() error {
	var err error

	err = m.matrix.Factor()
	if err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}

	m.solution, err = m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}

	return nil
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

// Solution returns the 1-based solution vector of the last Solve.
func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
