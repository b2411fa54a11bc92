package analysis

import (
	"errors"
	"fmt"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/pkg/circuit"
	"github.com/edp1096/netsolver/pkg/device"
	"github.com/edp1096/netsolver/pkg/solver"
	"github.com/edp1096/netsolver/pkg/util"
)

// ErrNonConvergence is returned when Newton-Raphson hits its iteration cap.
var ErrNonConvergence = errors.New("analysis: newton-raphson did not converge")

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Circuit     *circuit.Circuit
	results     map[string][]float64 // key: variable name, value: result by time
	convergence struct {
		maxIter int
		gmin    float64
	}
	iterations int // Newton passes of the last solve
}

func NewBaseAnalysis() *BaseAnalysis {
	ba := &BaseAnalysis{results: make(map[string][]float64)}

	ba.convergence.maxIter = consts.NR_LOOPS
	ba.convergence.gmin = consts.GMIN

	return ba
}

// SetMaxIter overrides the Newton-Raphson iteration cap.
func (a *BaseAnalysis) SetMaxIter(n int) {
	if n > 0 {
		a.convergence.maxIter = n
	}
}

// doNRiter loads the devices and solves until the solver reports
// convergence. Device state is recomputed from the committed voltages on
// every pass.
func (a *BaseAnalysis) doNRiter(status *device.CircuitStatus, maxIter int) error {
	ckt := a.Circuit

	for iter := 0; iter < maxIter; iter++ {
		a.iterations = iter + 1

		if err := ckt.Load(status); err != nil {
			return fmt.Errorf("loading devices: %v", err)
		}

		st, err := ckt.Solve(true)
		if err != nil {
			return fmt.Errorf("solve at iteration %d: %w", iter, err)
		}
		if st == solver.Converged {
			return nil
		}
	}

	return fmt.Errorf("%w in %d iterations", ErrNonConvergence, maxIter)
}

// Iterations returns the Newton passes taken by the last solve.
func (a *BaseAnalysis) Iterations() int { return a.iterations }

func (a *BaseAnalysis) StoreTimeResult(time float64, solution map[string]float64) {
	// Ignore same time
	if times := a.results["TIME"]; len(times) > 0 {
		lastTime := times[len(times)-1]
		if time == lastTime {
			return
		}
		// Compare rounded string. 1.999999e-05 == 2.000000e-05
		if util.FormatValueFactor(time, "s") == util.FormatValueFactor(lastTime, "s") {
			return
		}
	}

	a.results["TIME"] = append(a.results["TIME"], time)
	for name, value := range solution {
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

func (a *BaseAnalysis) status(mode device.AnalysisMode) *device.CircuitStatus {
	return &device.CircuitStatus{
		Mode: mode,
		Temp: consts.REFTEMP,
	}
}
