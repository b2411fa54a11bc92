package device

import (
	"fmt"

	"github.com/edp1096/netsolver/pkg/network"
)

// VoltageSource ties one node to ground. The node becomes a rail whose
// voltage follows Wave; it never appears as an unknown.
type VoltageSource struct {
	BaseDevice
	Wave Waveform
	rail *network.Net
	sign float64
}

func NewVoltageSource(name string, nodeNames []string, wave Waveform) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{
			Name:      name,
			NodeNames: nodeNames,
			Value:     wave.At(0),
		},
		Wave: wave,
	}
}

func NewDCVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return NewVoltageSource(name, nodeNames, DCWave(value))
}

func (v *VoltageSource) GetType() string { return "V" }

// RailNode returns the node the source drives. isGround reports whether a
// node name is the reference node.
func (v *VoltageSource) RailNode(isGround func(string) bool) (string, error) {
	if len(v.NodeNames) != 2 {
		return "", fmt.Errorf("voltage source %s: requires exactly 2 nodes", v.Name)
	}
	pos, neg := v.NodeNames[0], v.NodeNames[1]
	switch {
	case isGround(pos) && isGround(neg):
		return "", fmt.Errorf("voltage source %s: both nodes are ground", v.Name)
	case isGround(neg):
		v.sign = 1
		return pos, nil
	case isGround(pos):
		v.sign = -1
		return neg, nil
	default:
		return "", fmt.Errorf("voltage source %s: floating sources are not supported, one node must be ground", v.Name)
	}
}

// Attach takes the rail created for RailNode.
func (v *VoltageSource) Attach(nets []*network.Net) error {
	if err := v.attach(nets); err != nil {
		return err
	}

	switch v.sign {
	case 1:
		v.rail = nets[0]
	case -1:
		v.rail = nets[1]
	default:
		return fmt.Errorf("voltage source %s: attached before its rail node was assigned", v.Name)
	}
	if !v.rail.Rail {
		return fmt.Errorf("voltage source %s: net %s is not a rail", v.Name, v.rail.Name)
	}

	v.rail.Voltage = v.sign * v.Wave.At(0)
	v.rail.LastVoltage = v.rail.Voltage
	return nil
}

func (v *VoltageSource) Load(status *CircuitStatus) error {
	v.rail.Voltage = v.sign * v.Wave.At(status.Time)
	return nil
}

// Rail returns the driven net after Attach.
func (v *VoltageSource) Rail() *network.Net { return v.rail }

func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
	v.Wave = DCWave(value)
}
