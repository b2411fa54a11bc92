package device

import "math"

// Waveform is the time function shared by independent sources.
type Waveform struct {
	Type SourceType
	// DC, common params
	DC float64
	// SIN params
	Amplitude float64
	Freq      float64
	Phase     float64 // degrees
	// PULSE params
	V1     float64
	V2     float64
	Delay  float64
	Rise   float64
	Fall   float64
	PWidth float64
	Period float64
	// PWL params
	Times  []float64
	Values []float64
}

func DCWave(value float64) Waveform {
	return Waveform{Type: DC, DC: value}
}

func SinWave(offset, amplitude, freq, phase float64) Waveform {
	return Waveform{Type: SIN, DC: offset, Amplitude: amplitude, Freq: freq, Phase: phase}
}

func PulseWave(v1, v2, delay, rise, fall, pWidth, period float64) Waveform {
	return Waveform{Type: PULSE, V1: v1, V2: v2, Delay: delay, Rise: rise, Fall: fall, PWidth: pWidth, Period: period}
}

func PWLWave(times, values []float64) Waveform {
	return Waveform{Type: PWL, Times: times, Values: values}
}

func (w *Waveform) At(t float64) float64 {
	switch w.Type {
	case DC:
		return w.DC
	case SIN:
		phaseRad := w.Phase * math.Pi / 180.0
		return w.DC + w.Amplitude*math.Sin(2.0*math.Pi*w.Freq*t+phaseRad)
	case PULSE:
		return w.pulse(t)
	case PWL:
		return w.pwl(t)
	default:
		return 0
	}
}

func (w *Waveform) pulse(t float64) float64 {
	if t < w.Delay {
		return w.V1
	}

	t = t - w.Delay
	if w.Period > 0 {
		t = math.Mod(t, w.Period)
	}

	if t < w.Rise {
		return w.V1 + (w.V2-w.V1)*t/w.Rise
	}

	if t < w.Rise+w.PWidth {
		return w.V2
	}

	fallStart := w.Rise + w.PWidth
	if t < fallStart+w.Fall {
		return w.V2 - (w.V2-w.V1)*(t-fallStart)/w.Fall
	}

	return w.V1
}

func (w *Waveform) pwl(t float64) float64 {
	if len(w.Times) == 0 {
		return 0
	}
	if t <= w.Times[0] {
		return w.Values[0]
	}

	last := len(w.Times) - 1
	if t >= w.Times[last] {
		return w.Values[last]
	}

	for idx := 1; idx < len(w.Times); idx++ {
		if t <= w.Times[idx] {
			t1, t2 := w.Times[idx-1], w.Times[idx]
			v1, v2 := w.Values[idx-1], w.Values[idx]
			return v1 + (v2-v1)*(t-t1)/(t2-t1)
		}
	}

	return w.Values[last]
}
