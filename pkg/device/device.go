package device

import (
	"fmt"

	"github.com/edp1096/netsolver/pkg/network"
	"github.com/edp1096/netsolver/pkg/util"
)

// Device produces the terminal contributions of one circuit element. Attach
// is called once with the nets named by GetNodeNames; Load recomputes the
// terminals before every Newton pass.
type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetValue() float64
	Attach(nets []*network.Net) error
	Terminals() []*network.Terminal
	Load(status *CircuitStatus) error
}

// TimeDependent devices keep history that advances once a step is accepted.
type TimeDependent interface {
	UpdateState(status *CircuitStatus)
}

type BaseDevice struct {
	Name      string
	Value     float64
	NodeNames []string
	Nets      []*network.Net
	terms     []*network.Terminal
}

type ModelParam struct {
	Type   string
	Name   string
	Params map[string]float64
}

type SourceType int

const (
	DC SourceType = iota
	SIN
	PULSE
	PWL
)

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	TransientAnalysis
)

type CircuitStatus struct {
	Time     float64
	TimeStep float64
	Gmin     float64
	Mode     AnalysisMode
	Method   util.IntegrationMethod
	Temp     float64
	Steps    int // accepted transient steps so far
}

func (d *BaseDevice) GetName() string                { return d.Name }
func (d *BaseDevice) GetNodeNames() []string         { return d.NodeNames }
func (d *BaseDevice) GetValue() float64              { return d.Value }
func (d *BaseDevice) Terminals() []*network.Terminal { return d.terms }

func (d *BaseDevice) attach(nets []*network.Net) error {
	if len(nets) != len(d.NodeNames) {
		return fmt.Errorf("%s: requires exactly %d nodes, got %d", d.Name, len(d.NodeNames), len(nets))
	}
	for i, n := range nets {
		if n == nil {
			return fmt.Errorf("%s: node %s has no net", d.Name, d.NodeNames[i])
		}
	}
	d.Nets = nets
	return nil
}

// voltage returns the voltage across nodes i and j.
func (d *BaseDevice) voltage(i, j int) float64 {
	return d.Nets[i].Voltage - d.Nets[j].Voltage
}

// pair holds the terminals of a two-node branch. A rail side has no
// terminal since rails have no row of their own.
type pair struct {
	a, b *network.Terminal
}

func newPair(name string, na, nb *network.Net) pair {
	var p pair
	if !na.Rail {
		p.a = network.NewTerminal(name, na, nb)
	}
	if !nb.Rail {
		p.b = network.NewTerminal(name, nb, na)
	}
	return p
}

// set loads conductance g across the branch and a current i flowing
// into a and out of b.
func (p pair) set(g, i float64) {
	if p.a != nil {
		p.a.SetConductance(g, i)
	}
	if p.b != nil {
		p.b.SetConductance(g, -i)
	}
}

func (p pair) terminals() []*network.Terminal {
	var ts []*network.Terminal
	if p.a != nil {
		ts = append(ts, p.a)
	}
	if p.b != nil {
		ts = append(ts, p.b)
	}
	return ts
}
