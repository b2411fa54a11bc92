package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacity is a configuration error: the topology has more nets than
	// the solver was built for.
	ErrCapacity = errors.New("solver: net count exceeds capacity")

	// ErrUnknownNet is returned by Setup when a terminal couples to a net that
	// is neither a rail nor one of the solver's unknowns.
	ErrUnknownNet = errors.New("solver: terminal couples to unknown net")

	// ErrSingularMatrix is returned when elimination meets a (near-)zero pivot.
	ErrSingularMatrix = errors.New("solver: singular matrix")

	// ErrInconsistentUpdate is returned when even a freshly inverted matrix
	// fails the residual check.
	ErrInconsistentUpdate = errors.New("solver: inconsistent update")

	ErrUnknownMethod = errors.New("solver: unknown method")
	ErrInvalidParams = errors.New("solver: invalid parameters")
	ErrNotSetup      = errors.New("solver: solve called before setup")
)

// SingularError reports the elimination step that hit an unusable pivot.
type SingularError struct {
	Row   int
	Net   string
	Pivot float64
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("solver: singular matrix at row %d (net %s, pivot %g)", e.Row, e.Net, e.Pivot)
}

func (e *SingularError) Is(target error) bool {
	return target == ErrSingularMatrix
}
