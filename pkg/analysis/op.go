package analysis

import (
	"fmt"

	"github.com/edp1096/netsolver/pkg/circuit"
	"github.com/edp1096/netsolver/pkg/device"
)

type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

// solve finds the operating point at time t, falling back to gmin stepping.
func (op *OperatingPoint) solve(t float64) error {
	status := op.status(device.OperatingPointAnalysis)
	status.Time = t

	err := op.doNRiter(status, op.convergence.maxIter)
	if err == nil {
		return nil
	}

	// start from a heavily shunted circuit and relax toward gmin
	numGminSteps := 10
	gmin := op.convergence.gmin * 1e10
	for i := 0; i <= numGminSteps; i++ {
		status.Gmin = gmin
		if err := op.doNRiter(status, op.convergence.maxIter); err != nil {
			return fmt.Errorf("gmin stepping failed at %g: %w", gmin, err)
		}
		gmin /= 10
	}

	status.Gmin = 0
	if err := op.doNRiter(status, op.convergence.maxIter); err != nil {
		return fmt.Errorf("final solution failed with zero gmin: %w", err)
	}
	return nil
}

func (op *OperatingPoint) Execute() error {
	if op.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	if err := op.solve(0); err != nil {
		return err
	}

	// seed the timestep history; the returned bound is not needed
	op.Circuit.NextTimestep(0)
	op.Circuit.Accept(op.status(device.OperatingPointAnalysis))

	op.storeResults()
	return nil
}

func (op *OperatingPoint) storeResults() {
	for key, value := range op.Circuit.GetSolution() {
		op.results[key] = []float64{value}
	}
}
