package solver

import (
	"fmt"
	"log"

	"github.com/edp1096/netsolver/internal/consts"
)

// Order selects the row ordering heuristic applied at setup.
type Order int

const (
	OrderAscending  Order = iota // fewest matrix terms first, suits elimination
	OrderDescending              // most matrix terms first, suits Gauss-Seidel
	OrderNone
)

func (o Order) String() string {
	switch o {
	case OrderAscending:
		return "ascending"
	case OrderDescending:
		return "descending"
	case OrderNone:
		return "none"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

type Params struct {
	Accuracy          float64 // Newton-Raphson convergence threshold (V)
	MinTimestep       float64
	MaxTimestep       float64
	LTE               float64 // target local truncation error
	Dynamic           bool    // dynamic timestep control
	RefreshInterval   int     // Woodbury calls between full inversions
	Pivot             bool    // partial pivoting in the direct solver
	PivotTolerance    float64
	ResidualTolerance float64
	CheckResidual     bool
	Ordering          Order
	Logger            *log.Logger // nil discards
}

func DefaultParams() *Params {
	return &Params{
		Accuracy:          consts.ACCURACY,
		MinTimestep:       consts.MIN_TIMESTEP,
		MaxTimestep:       consts.MAX_TIMESTEP,
		LTE:               consts.LTE,
		RefreshInterval:   consts.REFRESH_INTERVAL,
		PivotTolerance:    consts.PIVOT_TOLERANCE,
		ResidualTolerance: consts.RESIDUAL_TOLERANCE,
		CheckResidual:     true,
		Ordering:          OrderAscending,
	}
}

func (p *Params) Validate() error {
	switch {
	case p.Accuracy <= 0:
		return fmt.Errorf("%w: accuracy %g must be positive", ErrInvalidParams, p.Accuracy)
	case p.MinTimestep <= 0 || p.MaxTimestep <= 0:
		return fmt.Errorf("%w: timesteps must be positive (min %g, max %g)", ErrInvalidParams, p.MinTimestep, p.MaxTimestep)
	case p.MinTimestep > p.MaxTimestep:
		return fmt.Errorf("%w: min timestep %g above max %g", ErrInvalidParams, p.MinTimestep, p.MaxTimestep)
	case p.Dynamic && p.LTE <= 0:
		return fmt.Errorf("%w: lte %g must be positive", ErrInvalidParams, p.LTE)
	case p.RefreshInterval <= 0:
		return fmt.Errorf("%w: refresh interval %d must be positive", ErrInvalidParams, p.RefreshInterval)
	case p.PivotTolerance < 0 || p.ResidualTolerance < 0:
		return fmt.Errorf("%w: negative tolerance", ErrInvalidParams)
	}
	return nil
}

func (p *Params) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}
