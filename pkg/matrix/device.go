package matrix

// DeviceMatrix receives stamped system entries. Indices are 1-based, row and
// column 0 being ground.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
}

var _ DeviceMatrix = (*CircuitMatrix)(nil)
