package device

import (
	"math"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/pkg/network"
	"github.com/edp1096/netsolver/pkg/util"
)

// Capacitor is replaced by its companion model, a conductance geq in
// parallel with a current source carrying the charge history.
type Capacitor struct {
	BaseDevice
	p pair

	Voltage0 float64 // voltage of the last accepted step
	Voltage1 float64 // voltage of the step before
	current0 float64 // current of the last accepted step
	geq      float64
	ieq      float64
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{
		BaseDevice: BaseDevice{
			Name:      name,
			NodeNames: nodeNames,
			Value:     value,
		},
	}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Attach(nets []*network.Net) error {
	if err := c.attach(nets); err != nil {
		return err
	}
	c.p = newPair(c.Name, nets[0], nets[1])
	c.terms = c.p.terminals()
	return nil
}

func (c *Capacitor) Load(status *CircuitStatus) error {
	if status.Mode != TransientAnalysis || status.TimeStep <= 0 {
		// open circuit, leak gmin so the node is not floating
		c.geq, c.ieq = math.Max(status.Gmin, consts.GMIN), 0
		c.p.set(c.geq, 0)
		return nil
	}

	method := status.Method
	order := 1
	if method == util.Trapezoidal {
		order = 2
	}
	if method == util.Gear && status.Steps > 0 {
		order = 2
	}
	coeffs := util.GetIntegratorCoeffs(method, order, status.TimeStep)
	c.geq = c.Value * coeffs[0]

	switch {
	case method == util.Trapezoidal:
		c.ieq = c.geq*c.Voltage0 + c.current0
	case len(coeffs) == 3:
		c.ieq = -c.Value * (coeffs[1]*c.Voltage0 + coeffs[2]*c.Voltage1)
	default:
		c.ieq = -c.Value * coeffs[1] * c.Voltage0
	}

	c.p.set(c.geq, c.ieq)
	return nil
}

func (c *Capacitor) UpdateState(status *CircuitStatus) {
	vd := c.voltage(0, 1)

	if status.Mode != TransientAnalysis {
		c.Voltage0, c.Voltage1 = vd, vd
		c.current0 = 0
		return
	}

	c.current0 = c.geq*vd - c.ieq
	c.Voltage1 = c.Voltage0
	c.Voltage0 = vd
}

// Current returns the current through the capacitor at the last accepted step.
func (c *Capacitor) Current() float64 { return c.current0 }
