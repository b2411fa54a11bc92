package netlist

import (
	"fmt"
	"strings"

	"github.com/edp1096/netsolver/pkg/device"
)

func CreateDevice(elem Element, models map[string]device.ModelParam) (device.Device, error) {
	switch elem.Type {
	case "R":
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value), nil

	case "C":
		return device.NewCapacitor(elem.Name, elem.Nodes, elem.Value), nil

	case "G":
		return device.NewVCCS(elem.Name, elem.Nodes, elem.Value), nil

	case "D":
		diode := device.NewDiode(elem.Name, elem.Nodes)
		if modelName, ok := elem.Params["model"]; ok {
			model, exists := models[modelName]
			if !exists {
				return nil, fmt.Errorf("undefined model %s for diode %s", modelName, elem.Name)
			}
			diode.SetModelParameters(model.Params)
		}
		return diode, nil

	case "V", "I":
		wave, err := parseWaveform(elem)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", elem.Name, err)
		}
		if elem.Type == "V" {
			return device.NewVoltageSource(elem.Name, elem.Nodes, wave), nil
		}
		return device.NewCurrentSource(elem.Name, elem.Nodes, wave), nil
	}
	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}

func parseWaveform(elem Element) (device.Waveform, error) {
	switch elem.Params["type"] {
	case "dc", "":
		return device.DCWave(elem.Value), nil

	case "sin":
		offset, amplitude, freq, phase, err := parseSinParams(elem.Params["sin"])
		if err != nil {
			return device.Waveform{}, err
		}
		return device.SinWave(offset, amplitude, freq, phase), nil

	case "pulse":
		v1, v2, delay, rise, fall, pWidth, period, err := parsePulseParams(elem.Params["pulse"])
		if err != nil {
			return device.Waveform{}, err
		}
		return device.PulseWave(v1, v2, delay, rise, fall, pWidth, period), nil

	case "pwl":
		times, values, err := parsePWLParams(elem.Params["pwl"])
		if err != nil {
			return device.Waveform{}, err
		}
		return device.PWLWave(times, values), nil

	default:
		return device.Waveform{}, fmt.Errorf("unsupported source type: %s", elem.Params["type"])
	}
}

// parseValues parses at least min values, filling missing ones up to
// len(defaults) from defaults.
func parseValues(params string, min int, defaults []float64) ([]float64, error) {
	fields := strings.Fields(params)
	if len(fields) < min {
		return nil, fmt.Errorf("need at least %d parameters, got %d", min, len(fields))
	}
	if len(fields) > len(defaults) {
		return nil, fmt.Errorf("too many parameters, at most %d", len(defaults))
	}

	values := append([]float64(nil), defaults...)
	for i, f := range fields {
		v, err := ParseValue(f)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %v", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

func parseSinParams(params string) (offset, amplitude, freq, phase float64, err error) {
	v, err := parseValues(params, 3, []float64{0, 0, 0, 0})
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN: %v", err)
	}
	return v[0], v[1], v[2], v[3], nil
}

func parsePulseParams(params string) (v1, v2, delay, rise, fall, pWidth, period float64, err error) {
	v, err := parseValues(params, 2, []float64{0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE: %v", err)
	}
	for _, x := range v[2:] {
		if x < 0 {
			return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE: negative time %g", x)
		}
	}
	return v[0], v[1], v[2], v[3], v[4], v[5], v[6], nil
}

func parsePWLParams(params string) (times []float64, values []float64, err error) {
	pwlParams := strings.Fields(params)
	if len(pwlParams) < 2 || len(pwlParams)%2 != 0 {
		return nil, nil, fmt.Errorf("insufficient or invalid PWL parameters, need pairs of time-value")
	}

	numPoints := len(pwlParams) / 2
	times = make([]float64, numPoints)
	values = make([]float64, numPoints)

	for i := 0; i < numPoints; i++ {
		times[i], err = ParseValue(pwlParams[2*i])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid PWL time[%d]: %v", i, err)
		}
		values[i], err = ParseValue(pwlParams[2*i+1])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid PWL value[%d]: %v", i, err)
		}

		if i > 0 && times[i] <= times[i-1] {
			return nil, nil, fmt.Errorf("PWL time points must be strictly increasing")
		}
	}

	return times, values, nil
}
