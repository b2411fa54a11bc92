package device

import (
	"github.com/edp1096/netsolver/pkg/network"
)

// GminShunt ties every unknown net to ground through CircuitStatus.Gmin.
// It is added by the circuit, never by a netlist.
type GminShunt struct {
	BaseDevice
}

func NewGminShunt(nets []*network.Net, ground *network.Net) *GminShunt {
	g := &GminShunt{BaseDevice: BaseDevice{Name: "gmin"}}
	for _, n := range nets {
		if n.Rail {
			continue
		}
		g.terms = append(g.terms, network.NewTerminal("gmin", n, ground))
	}
	return g
}

func (g *GminShunt) GetType() string { return "gmin" }

func (g *GminShunt) Attach(nets []*network.Net) error { return nil }

func (g *GminShunt) Load(status *CircuitStatus) error {
	for _, t := range g.terms {
		t.SetConductance(status.Gmin, 0)
	}
	return nil
}
