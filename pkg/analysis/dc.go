package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/netsolver/pkg/circuit"
	"github.com/edp1096/netsolver/pkg/device"
)

// DCSweep steps the DC value of one independent source and solves the
// operating point at every value.
type DCSweep struct {
	BaseAnalysis
	sourceName string
	sweepVals  []float64
	setValue   func(float64)
	origWave   device.Waveform
	restore    func(device.Waveform)
	op         *OperatingPoint
}

func NewDCSweep(source string, start, stop, increment float64) (*DCSweep, error) {
	if increment == 0 || (stop-start)/increment < 0 {
		return nil, fmt.Errorf("invalid sweep %g to %g by %g", start, stop, increment)
	}

	n := int(math.Floor((stop-start)/increment+1e-9)) + 1
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = start + float64(i)*increment
	}

	return &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(),
		sourceName:   source,
		sweepVals:    vals,
		op:           NewOP(),
	}, nil
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	dc.Circuit = ckt
	dc.op.Circuit = ckt
	dc.op.convergence = dc.convergence

	for _, dev := range ckt.GetDevices() {
		if dev.GetName() != dc.sourceName {
			continue
		}
		switch s := dev.(type) {
		case *device.VoltageSource:
			dc.origWave = s.Wave
			dc.setValue = s.SetValue
			dc.restore = func(w device.Waveform) { s.Wave = w }
		case *device.CurrentSource:
			dc.origWave = s.Wave
			dc.setValue = s.SetValue
			dc.restore = func(w device.Waveform) { s.Wave = w }
		default:
			return fmt.Errorf("%s is not an independent source", dc.sourceName)
		}
		return nil
	}
	return fmt.Errorf("source %s not found", dc.sourceName)
}

func (dc *DCSweep) Execute() error {
	if dc.setValue == nil {
		return fmt.Errorf("sweep source not set")
	}
	defer dc.restore(dc.origWave)

	for _, val := range dc.sweepVals {
		dc.setValue(val)
		if err := dc.op.solve(0); err != nil {
			return fmt.Errorf("sweep %s=%g: %w", dc.sourceName, val, err)
		}

		dc.results["SWEEP"] = append(dc.results["SWEEP"], val)
		for key, value := range dc.Circuit.GetSolution() {
			dc.results[key] = append(dc.results[key], value)
		}
	}
	return nil
}
