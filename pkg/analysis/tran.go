package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/edp1096/netsolver/pkg/circuit"
	"github.com/edp1096/netsolver/pkg/device"
	"github.com/edp1096/netsolver/pkg/solver"
	"github.com/edp1096/netsolver/pkg/util"
)

type Transient struct {
	BaseAnalysis
	op        *OperatingPoint
	time      float64
	startTime float64
	stopTime  float64
	timeStep  float64
	maxStep   float64
	minStep   float64
	useUIC    bool
	method    util.IntegrationMethod

	steps    int
	rejected int
}

func NewTransient(tStart, tStop, tStep, tMax float64, uic bool) *Transient {
	if tMax == 0 {
		tMax = tStep
	}

	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		op:           NewOP(),
		startTime:    tStart,
		stopTime:     tStop,
		timeStep:     tStep,
		maxStep:      tMax,
		minStep:      tStep / 50.0,
		useUIC:       uic,
		method:       util.BackwardEuler,
	}
}

func (tr *Transient) SetMethod(method util.IntegrationMethod) { tr.method = method }

// SetMinStep overrides the smallest step the halving may reach.
func (tr *Transient) SetMinStep(h float64) {
	if h > 0 {
		tr.minStep = h
	}
}

// Steps returns the accepted and rejected step counts.
func (tr *Transient) Steps() (accepted, rejected int) { return tr.steps, tr.rejected }

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	if tr.stopTime <= 0 || tr.timeStep <= 0 {
		return fmt.Errorf("invalid transient parameters: tstep %g, tstop %g", tr.timeStep, tr.stopTime)
	}
	tr.Circuit = ckt

	if tr.useUIC {
		ckt.NextTimestep(0)
		ckt.Accept(tr.status(device.OperatingPointAnalysis))
		return nil
	}

	tr.op.convergence = tr.convergence
	if err := tr.op.Setup(ckt); err != nil {
		return fmt.Errorf("operating point setup error: %v", err)
	}
	if err := tr.op.Execute(); err != nil {
		return fmt.Errorf("operating point analysis error: %w", err)
	}
	return nil
}

func (tr *Transient) Execute() error {
	if tr.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	ckt := tr.Circuit

	if tr.startTime <= 0 {
		tr.StoreTimeResult(0, ckt.GetSolution())
	}

	h := math.Min(tr.timeStep, tr.maxStep)
	for tr.time < tr.stopTime {
		if tr.time+h > tr.stopTime {
			h = tr.stopTime - tr.time
		}

		status := tr.status(device.TransientAnalysis)
		status.Time = tr.time + h
		status.TimeStep = h
		status.Method = tr.method
		status.Steps = tr.steps

		err := tr.doNRiter(status, tr.convergence.maxIter)
		if err != nil {
			retry := errors.Is(err, ErrNonConvergence) || errors.Is(err, solver.ErrSingularMatrix)
			if retry && h/2 >= tr.minStep {
				ckt.Restore()
				tr.rejected++
				h /= 2
				continue
			}
			return fmt.Errorf("failed to converge at t=%g with step %g: %w", tr.time, h, err)
		}

		ckt.Accept(status)
		tr.time += h
		if tr.stopTime-tr.time < 1e-9*h {
			tr.time = tr.stopTime
		}
		tr.steps++
		if tr.time >= tr.startTime {
			tr.StoreTimeResult(tr.time, ckt.GetSolution())
		}

		// the solver bound, never more than twice the last step
		next := ckt.NextTimestep(h)
		h = math.Min(math.Min(next, 2*h), tr.maxStep)
		h = math.Max(h, tr.minStep)
	}

	return nil
}
