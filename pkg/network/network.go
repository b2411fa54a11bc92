// Package network holds the electrical data model shared by device models
// and the matrix solvers: nets, the terminals devices attach to them, and the
// topology handed to a solver.
package network

import "fmt"

// Net is an electrical node. For unknown nets Voltage is overwritten by every
// solve; rail nets hold a voltage set by their source.
type Net struct {
	Name        string
	Voltage     float64 // current estimate
	LastVoltage float64 // voltage at the last accepted timestep
	HPrev       float64 // previous timestep
	DDPrev      float64 // previous first difference (V)
	Rail        bool
}

func NewNet(name string) *Net {
	return &Net{Name: name}
}

func NewRail(name string, voltage float64) *Net {
	return &Net{Name: name, Voltage: voltage, LastVoltage: voltage, Rail: true}
}

func (n *Net) String() string {
	if n.Rail {
		return fmt.Sprintf("%s(rail %g V)", n.Name, n.Voltage)
	}
	return fmt.Sprintf("%s(%g V)", n.Name, n.Voltage)
}

// Terminal is one device connection to Net. It adds Gt to the diagonal of
// Net's row, couples to Other through Go and injects Idr.
type Terminal struct {
	Name  string
	Net   *Net
	Other *Net
	Gt    float64 // conductance to the diagonal
	Go    float64 // transconductance toward Other
	Idr   float64 // current source contribution
}

func NewTerminal(name string, net, other *Net) *Terminal {
	return &Terminal{Name: name, Net: net, Other: other}
}

// Set updates all three contributions at once.
func (t *Terminal) Set(gt, gov, idr float64) {
	t.Gt = gt
	t.Go = gov
	t.Idr = idr
}

// SetConductance sets a plain conductance g toward Other with current idr.
func (t *Terminal) SetConductance(g, idr float64) {
	t.Gt = g
	t.Go = g
	t.Idr = idr
}

// Topology is the finalized net/terminal graph of one subcircuit. Nets are
// the unknowns; terminals on nets outside Nets are ignored by the solver.
type Topology struct {
	Nets      []*Net
	Terminals []*Terminal
}

func (t *Topology) AddNet(n *Net) {
	t.Nets = append(t.Nets, n)
}

func (t *Topology) AddTerminal(term *Terminal) {
	t.Terminals = append(t.Terminals, term)
}

// Index returns the position of n in Nets or -1.
func (t *Topology) Index(n *Net) int {
	for i, net := range t.Nets {
		if net == n {
			return i
		}
	}
	return -1
}
