package solver

import (
	"fmt"
	"slices"

	"github.com/edp1096/netsolver/pkg/network"
)

// Row is the equation of one unknown net. Terms[:RailStart] couple to other
// unknowns, Terms[RailStart:] to rails.
type Row struct {
	Net       *network.Net
	Terms     []*network.Terminal
	Other     []int // column of each matrix term, -1 for rail terms
	RailStart int

	NZ   []int // columns with a nonzero entry, diagonal included
	NZRD []int // columns right of the diagonal that elimination may fill
	NZBD []int // rows below the diagonal touched by this pivot
}

// MatrixTerms returns the number of terms coupling to other unknowns.
func (r *Row) MatrixTerms() int { return r.RailStart }

// buildRows partitions the terminals of every unknown net into matrix and
// rail terms. Columns are resolved later, after reordering.
func buildRows(top *network.Topology) ([]*Row, error) {
	index := make(map[*network.Net]int, len(top.Nets))
	for k, n := range top.Nets {
		index[n] = k
	}

	matrixTerms := make([][]*network.Terminal, len(top.Nets))
	railTerms := make([][]*network.Terminal, len(top.Nets))

	for _, t := range top.Terminals {
		k, ok := index[t.Net]
		if !ok {
			continue
		}
		switch {
		case t.Other == nil:
			return nil, fmt.Errorf("%w: terminal %s has no other net", ErrUnknownNet, t.Name)
		case t.Other.Rail:
			railTerms[k] = append(railTerms[k], t)
		default:
			if _, ok := index[t.Other]; !ok {
				return nil, fmt.Errorf("%w: terminal %s couples %s to %s", ErrUnknownNet, t.Name, t.Net.Name, t.Other.Name)
			}
			matrixTerms[k] = append(matrixTerms[k], t)
		}
	}

	rows := make([]*Row, len(top.Nets))
	for k, n := range top.Nets {
		terms := append(matrixTerms[k], railTerms[k]...)
		rows[k] = &Row{
			Net:       n,
			Terms:     terms,
			RailStart: len(matrixTerms[k]),
		}
	}
	return rows, nil
}

// Ordering returns the permutation that reorders rows by their number of
// matrix terms. It runs N/2 adjacent-swap passes, which gives a partial
// order for larger N; the order only affects fill-in, never the solution.
func Ordering(rows []*Row, order Order) []int {
	n := len(rows)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var sign int
	switch order {
	case OrderAscending:
		sign = -1
	case OrderDescending:
		sign = 1
	default:
		return perm
	}

	for k := 0; k < n/2; k++ {
		for i := 0; i < n-1; i++ {
			a, b := rows[perm[i]].MatrixTerms(), rows[perm[i+1]].MatrixTerms()
			if (a-b)*sign < 0 {
				perm[i], perm[i+1] = perm[i+1], perm[i]
			}
		}
	}
	return perm
}

func permute(nets []*network.Net, rows []*Row, perm []int) ([]*network.Net, []*Row) {
	pn := make([]*network.Net, len(perm))
	pr := make([]*Row, len(perm))
	for i, p := range perm {
		pn[i] = nets[p]
		pr[i] = rows[p]
	}
	return pn, pr
}

func resolveColumns(nets []*network.Net, rows []*Row) {
	index := make(map[*network.Net]int, len(nets))
	for k, n := range nets {
		index[n] = k
	}
	for _, r := range rows {
		r.Other = make([]int, len(r.Terms))
		for i, t := range r.Terms {
			if i < r.RailStart {
				r.Other[i] = index[t.Other]
			} else {
				r.Other[i] = -1
			}
		}
	}
}

// nonZero fills NZ and NZRD. NZRD[k] carries NZRD[k-1] forward, so it covers
// every column fill-in can reach in row k when no rows are exchanged.
func nonZero(rows []*Row) {
	var prev []int
	for k, r := range rows {
		nzrd := make([]int, 0, len(prev)+r.RailStart)
		for _, c := range prev {
			if c >= k+1 {
				nzrd = append(nzrd, c)
			}
		}

		nz := make([]int, 0, r.RailStart+1)
		for _, c := range r.Other[:r.RailStart] {
			if c >= k+1 {
				nzrd = append(nzrd, c)
			}
			nz = append(nz, c)
		}
		nz = append(nz, k)

		slices.Sort(nzrd)
		slices.Sort(nz)
		r.NZRD = slices.Compact(nzrd)
		r.NZ = slices.Compact(nz)
		prev = r.NZRD
	}
}

// belowDiagonal fills NZBD with the rows a pivot touches during the
// downward sweep, following fill-in transitively.
func belowDiagonal(rows []*Row) {
	n := len(rows)
	touched := make([][]bool, n)
	for k, r := range rows {
		touched[k] = make([]bool, n)
		for _, c := range r.NZ {
			touched[k][c] = true
		}
	}

	for k, r := range rows {
		r.NZBD = r.NZBD[:0]
		for row := k + 1; row < n; row++ {
			if !touched[row][k] {
				continue
			}
			r.NZBD = append(r.NZBD, row)
			for col := k; col < n; col++ {
				if touched[k][col] {
					touched[row][col] = true
				}
			}
		}
	}
}
