package netlist

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/edp1096/netsolver/pkg/solver"
	"github.com/edp1096/netsolver/pkg/util"
)

// Options are the .options settings that do not live in solver.Params.
type Options struct {
	Method      string // solver strategy
	Integration util.IntegrationMethod
}

// ApplyOptions writes the .options lines into p and returns the rest.
func (d *NetlistData) ApplyOptions(p *solver.Params) (Options, error) {
	opts := Options{Method: solver.MethodDirect, Integration: util.BackwardEuler}

	for key, value := range d.Options {
		var err error
		switch key {
		case "method", "solver":
			opts.Method = strings.ToLower(value)
			if !slices.Contains(solver.Methods, opts.Method) {
				err = solver.ErrUnknownMethod
			}
		case "integ", "integration":
			opts.Integration, err = util.ParseIntegrationMethod(value)
		case "accuracy", "reltol":
			p.Accuracy, err = ParseValue(value)
		case "lte":
			p.LTE, err = ParseValue(value)
		case "mintimestep", "hmin":
			p.MinTimestep, err = ParseValue(value)
		case "maxtimestep", "hmax":
			p.MaxTimestep, err = ParseValue(value)
		case "residual":
			p.ResidualTolerance, err = ParseValue(value)
		case "pivot":
			p.Pivot, err = parseFlag(value)
		case "dynamic":
			p.Dynamic, err = parseFlag(value)
		case "checkresidual":
			p.CheckResidual, err = parseFlag(value)
		case "refresh":
			p.RefreshInterval, err = strconv.Atoi(value)
		case "ordering":
			p.Ordering, err = parseOrder(value)
		default:
			err = fmt.Errorf("unknown option")
		}
		if err != nil {
			return opts, fmt.Errorf(".options %s=%s: %w", key, value, err)
		}
	}

	if err := p.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a flag: %s", s)
}

func parseOrder(s string) (solver.Order, error) {
	for _, o := range []solver.Order{solver.OrderAscending, solver.OrderDescending, solver.OrderNone} {
		if strings.EqualFold(s, o.String()) {
			return o, nil
		}
	}
	return solver.OrderNone, fmt.Errorf("unknown ordering %s", s)
}
