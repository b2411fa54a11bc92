package solver

import (
	"math"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/internal/numeric"
	"github.com/edp1096/netsolver/pkg/network"
)

// Timestep bounds the next simulation step from the second difference of
// each net's voltage history.
type Timestep struct {
	Dynamic bool
	Min     float64
	Max     float64
	LTE     float64
}

func NewTimestep(p *Params) *Timestep {
	return &Timestep{
		Dynamic: p.Dynamic,
		Min:     p.MinTimestep,
		Max:     p.MaxTimestep,
		LTE:     p.LTE,
	}
}

// Next returns the step bound after a converged step of length h and shifts
// every net's history (HPrev, DDPrev, LastVoltage) for the following call.
func (c *Timestep) Next(nets []*network.Net, h float64) float64 {
	next := c.Max

	if c.Dynamic {
		for _, n := range nets {
			ddn := n.Voltage - n.LastVoltage
			candidate := c.Max

			if h > 0 && n.HPrev > 0 {
				dd2 := (ddn/h - n.DDPrev/n.HPrev) / (h + n.HPrev)
				if math.Abs(dd2) > consts.CURVATURE_FLOOR {
					candidate = math.Sqrt(c.LTE / math.Abs(0.5*dd2))
				}
			}

			n.HPrev = h
			n.DDPrev = ddn
			if candidate < next {
				next = candidate
			}
		}
		next = numeric.Clamp(next, c.Min, c.Max)
	}

	for _, n := range nets {
		n.LastVoltage = n.Voltage
	}
	return next
}
