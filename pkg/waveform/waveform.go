// Package waveform renders transient results with gonum/plot.
package waveform

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// Series turns one result key into plot points against TIME.
func Series(results map[string][]float64, key string) (plotter.XYs, error) {
	times, ok := results["TIME"]
	if !ok {
		return nil, fmt.Errorf("results carry no TIME axis")
	}
	values, ok := results[key]
	if !ok {
		return nil, fmt.Errorf("no result named %s", key)
	}
	if len(values) != len(times) {
		return nil, fmt.Errorf("%s has %d points, TIME has %d", key, len(values), len(times))
	}

	pts := make(plotter.XYs, len(times))
	for i := range times {
		pts[i].X = times[i]
		pts[i].Y = values[i]
	}
	return pts, nil
}

// New builds a plot of the given keys. Voltages and currents share the
// vertical axis, so callers usually pass only one kind.
func New(title string, results map[string][]float64, keys []string) (*plot.Plot, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("nothing to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = axisLabel(keys)
	p.Add(plotter.NewGrid())

	for i, key := range keys {
		pts, err := Series(results, key)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", key, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		p.Add(line)
		p.Legend.Add(key, line)
	}
	p.Legend.Top = true
	return p, nil
}

// Save writes the plot to path. The extension picks the format (png, svg,
// pdf, ...).
func Save(path, title string, results map[string][]float64, keys []string) error {
	p, err := New(title, results, keys)
	if err != nil {
		return err
	}
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}

func axisLabel(keys []string) string {
	volts, amps := false, false
	for _, k := range keys {
		switch {
		case strings.HasPrefix(k, "V("):
			volts = true
		case strings.HasPrefix(k, "I("):
			amps = true
		}
	}
	switch {
	case volts && !amps:
		return "Voltage (V)"
	case amps && !volts:
		return "Current (A)"
	default:
		return "Value"
	}
}
