// Package solver solves the nodal equations of one subcircuit. Given the
// terminal contributions of device models it assembles the MNA system,
// solves it with one of three interchangeable strategies, commits the node
// voltages and bounds the next timestep.
package solver

import (
	"fmt"
	"strings"

	"github.com/edp1096/netsolver/pkg/network"
)

type Status int

const (
	NotConverged Status = iota // Newton-Raphson must iterate again
	Converged                  // Newton-Raphson delta within accuracy
	Accepted                   // single linear solve
)

func (s Status) String() string {
	switch s {
	case NotConverged:
		return "not converged"
	case Converged:
		return "converged"
	case Accepted:
		return "accepted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Done reports whether the caller may move on to the next timestep.
func (s Status) Done() bool { return s != NotConverged }

// Solver is a solving strategy over one preprocessed topology. A solver is
// not safe for concurrent use.
type Solver interface {
	Setup(top *network.Topology) error
	Solve(newtonRaphson bool) (Status, error)
	NextTimestep(h float64) float64
	Nets() []*network.Net
}

const (
	MethodDirect   = "direct"
	MethodWoodbury = "woodbury"
	MethodSparse   = "sparse"
)

var Methods = []string{MethodDirect, MethodWoodbury, MethodSparse}

// New creates a solver for at most capacity nets.
func New(method string, params *Params, capacity int) (Solver, error) {
	switch strings.ToLower(method) {
	case MethodDirect, "":
		return NewDirect(params, capacity), nil
	case MethodWoodbury:
		return NewWoodbury(params, capacity), nil
	case MethodSparse:
		return NewSparse(params, capacity), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

var (
	_ Solver = (*Direct)(nil)
	_ Solver = (*Woodbury)(nil)
	_ Solver = (*Sparse)(nil)
)
