package device

import (
	"fmt"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/pkg/network"
)

type Resistor struct {
	BaseDevice
	Tc1  float64
	Tc2  float64
	Tnom float64
	p    pair
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{
		BaseDevice: BaseDevice{
			Name:      name,
			NodeNames: nodeNames,
			Value:     value,
		},
		Tnom: consts.REFTEMP,
	}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Attach(nets []*network.Net) error {
	if r.Value == 0 {
		return fmt.Errorf("resistor %s: zero resistance", r.Name)
	}
	if err := r.attach(nets); err != nil {
		return err
	}
	r.p = newPair(r.Name, nets[0], nets[1])
	r.terms = r.p.terminals()
	return nil
}

func (r *Resistor) Load(status *CircuitStatus) error {
	// G = 1/R
	r.p.set(1.0/r.temperatureAdjustedValue(status.Temp), 0)
	return nil
}

// Current returns the current from the first node to the second.
func (r *Resistor) Current() float64 {
	if r.Nets == nil {
		return 0
	}
	return r.voltage(0, 1) / r.Value
}

func (r *Resistor) temperatureAdjustedValue(temp float64) float64 {
	if temp <= 0 {
		return r.Value
	}
	dt := temp - r.Tnom
	factor := 1.0 + r.Tc1*dt + r.Tc2*dt*dt
	return r.Value * factor
}
