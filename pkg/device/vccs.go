package device

import (
	"github.com/edp1096/netsolver/pkg/network"
)

// VCCS draws Value*(V(nc+)-V(nc-)) out of n+ and into n-. Its terminals
// have no diagonal part, so the system loses symmetry.
type VCCS struct {
	BaseDevice
	pos, neg [2]*network.Terminal // toward nc+ and nc-
}

func NewVCCS(name string, nodeNames []string, gm float64) *VCCS {
	return &VCCS{
		BaseDevice: BaseDevice{
			Name:      name,
			NodeNames: nodeNames,
			Value:     gm,
		},
	}
}

func (g *VCCS) GetType() string { return "G" }

func (g *VCCS) Attach(nets []*network.Net) error {
	if err := g.attach(nets); err != nil {
		return err
	}

	g.terms = g.terms[:0]
	g.pos, g.neg = [2]*network.Terminal{}, [2]*network.Terminal{}
	for side, n := range nets[:2] {
		if n.Rail {
			continue
		}
		ts := [2]*network.Terminal{
			network.NewTerminal(g.Name, n, nets[2]),
			network.NewTerminal(g.Name, n, nets[3]),
		}
		if side == 0 {
			g.pos = ts
		} else {
			g.neg = ts
		}
		g.terms = append(g.terms, ts[0], ts[1])
	}
	return nil
}

func (g *VCCS) Load(status *CircuitStatus) error {
	gm := g.Value
	if g.pos[0] != nil {
		g.pos[0].Set(0, -gm, 0)
		g.pos[1].Set(0, gm, 0)
	}
	if g.neg[0] != nil {
		g.neg[0].Set(0, gm, 0)
		g.neg[1].Set(0, -gm, 0)
	}
	return nil
}
