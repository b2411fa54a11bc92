package device

import (
	"fmt"
	"math"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/pkg/network"
)

type Diode struct {
	BaseDevice
	p pair

	// Model parameters
	Is   float64 // Saturation current
	N    float64 // Emission coefficient
	Gmin float64 // Minimum Conductance

	// Temperature parameters
	Eg  float64 // Energy Gap (eV)
	Xti float64 // Saturation current temperature exponent

	// Linearization point
	vd float64
	id float64
	gd float64
}

func NewDiode(name string, nodeNames []string) *Diode {
	d := &Diode{
		BaseDevice: BaseDevice{
			Name:      name,
			NodeNames: nodeNames,
		},
	}
	d.setDefaultParameters()
	return d
}

func (d *Diode) GetType() string { return "D" }

func (d *Diode) setDefaultParameters() {
	d.Is = 1e-14
	d.N = 1.0
	d.Gmin = consts.GMIN

	d.Eg = 1.11 // Silicon bandgap
	d.Xti = 3.0
}

func (d *Diode) SetModelParameters(params map[string]float64) {
	if is, ok := params["is"]; ok {
		d.Is = is
	}
	if n, ok := params["n"]; ok {
		d.N = n
	}
	if eg, ok := params["eg"]; ok {
		d.Eg = eg
	}
	if xti, ok := params["xti"]; ok {
		d.Xti = xti
	}
	if gmin, ok := params["gmin"]; ok {
		d.Gmin = gmin
	}
}

func (d *Diode) Attach(nets []*network.Net) error {
	if d.Is <= 0 || d.N <= 0 {
		return fmt.Errorf("diode %s: is and n must be positive", d.Name)
	}
	if err := d.attach(nets); err != nil {
		return err
	}
	d.p = newPair(d.Name, nets[0], nets[1])
	d.terms = d.p.terminals()
	return nil
}

func (d *Diode) thermalVoltage(temp float64) float64 {
	if temp <= 0 {
		temp = consts.REFTEMP
	}
	return consts.BOLTZMANN * temp / consts.CHARGE
}

func (d *Diode) temperatureAdjustedIs(temp float64) float64 {
	if temp <= 0 {
		temp = consts.REFTEMP
	}
	vt := d.thermalVoltage(temp)

	// is(T2) = is(T1) * (T2/T1)^(XTI/N) * exp(-(Eg/(2*k))*(1/T2 - 1/T1))
	ratio := temp / consts.REFTEMP
	egfact := -d.Eg / (2 * vt) * (ratio - 1.0)

	return d.Is * math.Pow(ratio, d.Xti/d.N) * math.Exp(egfact)
}

func (d *Diode) calculateCurrent(vd, temp float64) float64 {
	nvt := d.N * d.thermalVoltage(temp)

	// Forward bias and weak reverse bias
	if vd > -3.0*nvt {
		arg := math.Min(vd/nvt, 40.0)
		return d.temperatureAdjustedIs(temp) * (math.Exp(arg) - 1.0)
	}

	return -d.temperatureAdjustedIs(temp)
}

func (d *Diode) calculateConductance(vd, id, temp float64) float64 {
	nvt := d.N * d.thermalVoltage(temp)

	if vd > -3.0*nvt {
		return (id+d.temperatureAdjustedIs(temp))/nvt + d.Gmin
	}

	// Strong reverse bias
	return d.Gmin
}

// limitJunction damps the Newton update of the junction voltage so the
// exponential cannot overflow between passes.
func limitJunction(vnew, vold, nvt, vcrit float64) float64 {
	if vnew > vcrit && math.Abs(vnew-vold) > 2*nvt {
		if vold > 0 {
			arg := 1 + (vnew-vold)/nvt
			if arg > 0 {
				return vold + nvt*math.Log(arg)
			}
			return vcrit
		}
		return nvt * math.Log(vnew/nvt)
	}
	return vnew
}

func (d *Diode) Load(status *CircuitStatus) error {
	nvt := d.N * d.thermalVoltage(status.Temp)
	is := d.temperatureAdjustedIs(status.Temp)
	vcrit := nvt * math.Log(nvt/(math.Sqrt2*is))

	d.vd = limitJunction(d.voltage(0, 1), d.vd, nvt, vcrit)
	d.id = d.calculateCurrent(d.vd, status.Temp)
	d.gd = d.calculateConductance(d.vd, d.id, status.Temp)

	// id(v) ~ gd*v + (id - gd*vd)
	d.p.set(d.gd, -(d.id - d.gd*d.vd))
	return nil
}

// Current returns the diode current at the last linearization point.
func (d *Diode) Current() float64 { return d.id }
