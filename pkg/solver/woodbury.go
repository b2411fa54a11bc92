package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/edp1096/netsolver/pkg/matrix"
	"github.com/edp1096/netsolver/pkg/network"
)

// Woodbury keeps the inverse of the last fully inverted matrix lA and
// corrects the solution for the rows that changed since, using
//
//	A = lA + U*VT,  x = y - Ainv[:, rows] * H⁻¹ * VT*y,  H = I + VT*Ainv[:, rows]
//
// where y = Ainv*RHS and U selects the changed rows. Every RefreshInterval
// calls the inverse is rebuilt from scratch to bound numerical drift. The
// approach pays off up to a few tens of unknowns.
type Woodbury struct {
	matrixSolver

	a    *matrix.Dense
	ainv *matrix.Dense
	w    *matrix.Dense // elimination workspace
	la   *matrix.Dense // matrix Ainv belongs to
	h    *matrix.Dense

	rhs     []float64
	x       []float64
	t       []float64
	wv      []float64
	scratch []float64

	changed []int   // rows that differ from la
	cols    [][]int // differing columns per changed row

	cnt   int
	stale bool
	stats WoodburyStats
}

type WoodburyStats struct {
	Calls       int
	Refreshes   int // full inversions whose solution was committed
	Fallbacks   int // incremental updates rejected and redone by a refresh
	LastChanged int // changed rows seen by the last incremental update
}

func NewWoodbury(params *Params, capacity int) *Woodbury {
	return &Woodbury{matrixSolver: newMatrixSolver(params, capacity)}
}

func (s *Woodbury) Setup(top *network.Topology) error {
	if err := s.setup(top, true); err != nil {
		return err
	}
	n := s.n
	s.a = matrix.NewDense(n)
	s.ainv = matrix.NewDense(n)
	s.w = matrix.NewDense(n)
	s.la = matrix.NewDense(n)
	s.h = matrix.NewDense(n)
	s.rhs = make([]float64, n)
	s.x = make([]float64, n)
	s.t = make([]float64, n)
	s.wv = make([]float64, n)
	s.scratch = make([]float64, n)
	s.changed = make([]int, 0, n)
	s.cols = make([][]int, n)
	s.cnt = 0
	s.stale = true
	s.stats = WoodburyStats{}
	return nil
}

// Refresh makes the next Solve rebuild the inverse.
func (s *Woodbury) Refresh() { s.stale = true }

func (s *Woodbury) Stats() WoodburyStats { return s.stats }

func (s *Woodbury) Solve(newtonRaphson bool) (Status, error) {
	if !s.ready {
		return NotConverged, ErrNotSetup
	}

	s.buildA(s.a)
	s.buildRHS(s.rhs)
	s.stats.Calls++

	full := s.stale || s.cnt%s.params.RefreshInterval == 0
	s.cnt++

	if !full {
		ok := s.update(s.x)
		if ok && s.params.CheckResidual {
			if r := residual(s.a, s.x, s.rhs, s.scratch); r > s.residualLimit() {
				s.params.logf("woodbury: residual %g after %d changed rows, refreshing", r, s.stats.LastChanged)
				ok = false
			}
		}
		if !ok {
			s.stats.Fallbacks++
			full = true
		}
	}

	if full {
		if err := s.invert(); err != nil {
			s.params.logf("woodbury: %v, matrix:\n%v", err, s.a)
			s.stale = true
			return NotConverged, err
		}
		s.ainv.MulVec(s.x, s.rhs)

		if s.params.CheckResidual {
			if r := residual(s.a, s.x, s.rhs, s.scratch); r > s.residualLimit() {
				s.stale = true
				return NotConverged, fmt.Errorf("%w: residual %g after full inversion", ErrInconsistentUpdate, r)
			}
		}
		s.stale = false
		s.stats.Refreshes++
	}

	return s.commit(s.x, newtonRaphson), nil
}

// residualLimit scales the tolerance with the RHS once currents exceed 1 A.
func (s *Woodbury) residualLimit() float64 {
	scale := 1.0
	if s.n > 0 {
		scale = math.Max(1.0, floats.Norm(s.rhs, math.Inf(1)))
	}
	return s.params.ResidualTolerance * scale
}

// invert computes Ainv for the current A by Gauss-Jordan elimination and
// makes A the new snapshot.
func (s *Woodbury) invert() error {
	n := s.n
	s.w.CopyFrom(s.a)
	s.la.CopyFrom(s.a)
	s.ainv.Identity()

	// down
	for i := 0; i < n; i++ {
		wi := s.w.Row(i)
		pivot := wi[i]
		if !s.usablePivot(pivot) {
			return s.singular(i, pivot)
		}

		f := 1.0 / pivot
		cols := s.rows[i].NZRD
		ai := s.ainv.Row(i)

		// Eliminate column i from the rows it reaches
		for _, j := range s.rows[i].NZBD {
			wj := s.w.Row(j)
			f1 := -wj[i] * f
			if f1 == 0.0 {
				continue
			}
			for _, k := range cols {
				wj[k] += wi[k] * f1
			}
			aj := s.ainv.Row(j)
			for k := 0; k <= i; k++ {
				aj[k] += ai[k] * f1
			}
		}
	}

	// up
	for i := n - 1; i >= 0; i-- {
		f := 1.0 / s.w.At(i, i)
		ai := s.ainv.Row(i)

		for j := i - 1; j >= 0; j-- {
			f1 := -s.w.At(j, i) * f
			if f1 == 0.0 {
				continue
			}
			aj := s.ainv.Row(j)
			for k := 0; k < n; k++ {
				aj[k] += ai[k] * f1
			}
		}
		for k := 0; k < n; k++ {
			ai[k] *= f
		}
	}
	return nil
}

// update computes x for the current A from the cached inverse. It returns
// false when the capacitance matrix H is singular.
func (s *Woodbury) update(x []float64) bool {
	n := s.n

	// Solve lA*y = RHS for y
	s.ainv.MulVec(x, s.rhs)

	// determine changed rows
	s.changed = s.changed[:0]
	for row := 0; row < n; row++ {
		ar, lr := s.a.Row(row), s.la.Row(row)
		cc := s.cols[len(s.changed)][:0]
		for _, col := range s.rows[row].NZ {
			if ar[col] != lr[col] {
				cc = append(cc, col)
			}
		}
		s.cols[len(s.changed)] = cc
		if len(cc) > 0 {
			s.changed = append(s.changed, row)
		}
	}

	rc := len(s.changed)
	s.stats.LastChanged = rc
	if rc == 0 {
		return true
	}

	// w = VT*y, VT(r, c) = A(r, c) - lA(r, c)
	w := s.wv[:rc]
	for i, row := range s.changed {
		ar, lr := s.a.Row(row), s.la.Row(row)
		tmp := 0.0
		for _, col := range s.cols[i] {
			tmp += (ar[col] - lr[col]) * x[col]
		}
		w[i] = tmp
	}

	// H = I + VT*Ainv[:, changed]
	for i, row := range s.changed {
		hi := s.h.Row(i)
		clear(hi[:rc])
		hi[i] = 1.0

		ar, lr := s.a.Row(row), s.la.Row(row)
		for _, col := range s.cols[i] {
			f := ar[col] - lr[col]
			ac := s.ainv.Row(col)
			for j, cj := range s.changed {
				hi[j] += f * ac[cj]
			}
		}
	}

	t := s.t[:rc]
	if !s.solveH(rc, w, t) {
		s.params.logf("woodbury: capacitance matrix singular for %d changed rows", rc)
		return false
	}

	// x = y - Ainv[:, changed]*t
	for i := 0; i < n; i++ {
		ai := s.ainv.Row(i)
		tmp := 0.0
		for j, cj := range s.changed {
			tmp += ai[cj] * t[j]
		}
		x[i] -= tmp
	}
	return true
}

// solveH solves H*t = w for the leading rc×rc block of H, with partial
// pivoting. w is overwritten.
func (s *Woodbury) solveH(rc int, w, t []float64) bool {
	for i := 0; i < rc; i++ {
		maxrow := i
		for j := i + 1; j < rc; j++ {
			if math.Abs(s.h.At(j, i)) > math.Abs(s.h.At(maxrow, i)) {
				maxrow = j
			}
		}
		if maxrow != i {
			hi, hm := s.h.Row(i), s.h.Row(maxrow)
			for k := i; k < rc; k++ {
				hi[k], hm[k] = hm[k], hi[k]
			}
			w[i], w[maxrow] = w[maxrow], w[i]
		}

		hi := s.h.Row(i)
		if !s.usablePivot(hi[i]) {
			return false
		}
		f := 1.0 / hi[i]
		for j := i + 1; j < rc; j++ {
			hj := s.h.Row(j)
			f1 := -f * hj[i]
			if f1 == 0.0 {
				continue
			}
			for k := i + 1; k < rc; k++ {
				hj[k] += f1 * hi[k]
			}
			w[j] += f1 * w[i]
		}
	}

	// Back substitution
	for j := rc - 1; j >= 0; j-- {
		hj := s.h.Row(j)
		tmp := 0.0
		for k := j + 1; k < rc; k++ {
			tmp += hj[k] * t[k]
		}
		t[j] = (w[j] - tmp) / hj[j]
	}
	return true
}
