package device

import (
	"github.com/edp1096/netsolver/pkg/network"
)

// CurrentSource drives Waveform from its first node through the source into
// its second node.
type CurrentSource struct {
	BaseDevice
	Wave Waveform
	p    pair
}

func NewCurrentSource(name string, nodeNames []string, wave Waveform) *CurrentSource {
	return &CurrentSource{
		BaseDevice: BaseDevice{
			Name:      name,
			NodeNames: nodeNames,
			Value:     wave.At(0),
		},
		Wave: wave,
	}
}

func NewDCCurrentSource(name string, nodeNames []string, value float64) *CurrentSource {
	return NewCurrentSource(name, nodeNames, DCWave(value))
}

func (i *CurrentSource) GetType() string { return "I" }

func (i *CurrentSource) Attach(nets []*network.Net) error {
	if err := i.attach(nets); err != nil {
		return err
	}
	// injected into the second node
	i.p = newPair(i.Name, nets[1], nets[0])
	i.terms = i.p.terminals()
	return nil
}

func (i *CurrentSource) Load(status *CircuitStatus) error {
	i.p.set(0, i.Wave.At(status.Time))
	return nil
}

func (i *CurrentSource) SetValue(value float64) {
	i.Value = value
	i.Wave = DCWave(value)
}
