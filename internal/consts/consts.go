package consts

const (
	CHARGE    = 1.6021918e-19 // Elementary charge (C)
	BOLTZMANN = 1.3806226e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15        // Kelvin temperature (K)
	REFTEMP   = 300.15        // 27degC
)

// Solver defaults
const (
	ACCURACY           = 1e-7  // Newton-Raphson voltage delta (V)
	MIN_TIMESTEP       = 1e-9  // s
	MAX_TIMESTEP       = 10e-6 // s
	LTE                = 5e-5  // target local truncation error
	REFRESH_INTERVAL   = 100   // Woodbury calls between full inversions
	PIVOT_TOLERANCE    = 1e-20 // smallest usable pivot magnitude
	RESIDUAL_TOLERANCE = 1e-6  // |A*x - RHS| limit after an incremental update
	CURVATURE_FLOOR    = 1e-30 // |DD2| below this counts as flat
	MATRIX_ALIGN       = 8     // row pitch granularity in float64s
	NR_LOOPS           = 100   // default Newton-Raphson iteration cap
	GMIN               = 1e-12 // minimum conductance (S)
)
