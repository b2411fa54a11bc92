package util

import (
	"fmt"
	"strings"
)

type IntegrationMethod int

const (
	BackwardEuler IntegrationMethod = iota
	Trapezoidal
	Gear // second order BDF
)

func (m IntegrationMethod) String() string {
	switch m {
	case BackwardEuler:
		return "be"
	case Trapezoidal:
		return "trap"
	case Gear:
		return "gear"
	default:
		return fmt.Sprintf("IntegrationMethod(%d)", int(m))
	}
}

func ParseIntegrationMethod(s string) (IntegrationMethod, error) {
	switch strings.ToLower(s) {
	case "be", "euler":
		return BackwardEuler, nil
	case "trap", "tr", "trapezoidal":
		return Trapezoidal, nil
	case "gear", "bdf2":
		return Gear, nil
	default:
		return BackwardEuler, fmt.Errorf("unknown integration method %q", s)
	}
}

type BackwardDifferentialFormula struct {
	coefficients []float64
	beta         float64
}

var BdfCoefficients = [2]BackwardDifferentialFormula{
	{[]float64{1.0}, 1.0},
	{[]float64{4.0 / 3.0, -1.0 / 3.0}, 2.0 / 3.0},
}

// GetIntegratorCoeffs returns the derivative coefficients for a step dt.
// For BDF, dx/dt = c[0]*x(n) + c[1]*x(n-1) + ... ; for the trapezoidal rule
// only c[0] is returned and the previous derivative enters with weight one.
func GetIntegratorCoeffs(method IntegrationMethod, order int, dt float64) []float64 {
	switch method {
	case Trapezoidal:
		return GetTrapezoidalCoeffs(order, dt)
	case Gear:
		return GetBDFcoeffs(order, dt)
	default:
		return GetBDFcoeffs(1, dt)
	}
}

func GetBDFcoeffs(order int, dt float64) []float64 {
	if order < 1 || order > len(BdfCoefficients) {
		order = 1
	}

	bdf := BdfCoefficients[order-1]
	coeffs := make([]float64, order+1)
	scale := 1.0 / (bdf.beta * dt)
	coeffs[0] = scale

	for i := 1; i <= order; i++ {
		coeffs[i] = -bdf.coefficients[i-1] * scale
	}

	return coeffs
}

func GetTrapezoidalCoeffs(order int, dt float64) []float64 {
	coeffs := make([]float64, 1)
	coeffs[0] = 2.0 / dt
	if order == 1 {
		coeffs[0] = 1.0 / dt
	}
	return coeffs
}
