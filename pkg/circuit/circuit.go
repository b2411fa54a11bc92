package circuit

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/pkg/device"
	"github.com/edp1096/netsolver/pkg/netlist"
	"github.com/edp1096/netsolver/pkg/network"
	"github.com/edp1096/netsolver/pkg/solver"
)

type Circuit struct {
	name     string
	ground   *network.Net
	nets     map[string]*network.Net // every node but ground, rails included
	order    []string                // node names in first-seen order
	devices  []device.Device
	sources  []*device.VoltageSource
	timeDeps []device.TimeDependent
	gmin     *device.GminShunt
	top      *network.Topology
	solver   solver.Solver
	Status   *device.CircuitStatus
	Models   map[string]device.ModelParam
}

func New(name string) *Circuit {
	return &Circuit{
		name:   name,
		ground: network.NewRail("0", 0),
		nets:   make(map[string]*network.Net),
		Status: &device.CircuitStatus{Temp: consts.REFTEMP},
		Models: make(map[string]device.ModelParam),
	}
}

func IsGround(node string) bool {
	return node == "0" || strings.EqualFold(node, "gnd")
}

func (c *Circuit) SetModels(models map[string]device.ModelParam) {
	c.Models = models
}

// AssignNets creates a net for every node. Nodes driven by a voltage source
// become rails.
func (c *Circuit) AssignNets(elements []netlist.Element) error {
	rails := make(map[string]string) // node -> source
	for _, elem := range elements {
		if elem.Type != "V" {
			continue
		}
		tmp := device.NewVoltageSource(elem.Name, elem.Nodes, device.DCWave(0))
		node, err := tmp.RailNode(IsGround)
		if err != nil {
			return err
		}
		if other, dup := rails[node]; dup {
			return fmt.Errorf("node %s driven by both %s and %s", node, other, elem.Name)
		}
		rails[node] = elem.Name
	}

	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if IsGround(nodeName) {
				continue
			}
			if _, exists := c.nets[nodeName]; exists {
				continue
			}
			if _, rail := rails[nodeName]; rail {
				c.nets[nodeName] = network.NewRail(nodeName, 0)
			} else {
				c.nets[nodeName] = network.NewNet(nodeName)
			}
			c.order = append(c.order, nodeName)
		}
	}
	return nil
}

func (c *Circuit) net(node string) *network.Net {
	if IsGround(node) {
		return c.ground
	}
	return c.nets[node]
}

// SetupDevices creates and attaches the devices and collects the topology.
func (c *Circuit) SetupDevices(elements []netlist.Element) error {
	for _, elem := range elements {
		dev, err := netlist.CreateDevice(elem, c.Models)
		if err != nil {
			return fmt.Errorf("creating device %s: %v", elem.Name, err)
		}
		if err := c.AddDevice(dev); err != nil {
			return err
		}
	}
	return c.Finalize()
}

// AddDevice attaches dev to the already assigned nets.
func (c *Circuit) AddDevice(dev device.Device) error {
	names := dev.GetNodeNames()
	nets := make([]*network.Net, len(names))
	for i, name := range names {
		if nets[i] = c.net(name); nets[i] == nil {
			return fmt.Errorf("device %s: unknown node %s", dev.GetName(), name)
		}
	}

	if v, ok := dev.(*device.VoltageSource); ok {
		if _, err := v.RailNode(IsGround); err != nil {
			return err
		}
		c.sources = append(c.sources, v)
	}
	if err := dev.Attach(nets); err != nil {
		return fmt.Errorf("attaching device %s: %v", dev.GetName(), err)
	}
	if td, ok := dev.(device.TimeDependent); ok {
		c.timeDeps = append(c.timeDeps, td)
	}

	c.devices = append(c.devices, dev)
	return nil
}

// Finalize builds the topology from the attached devices and adds the gmin
// shunt.
func (c *Circuit) Finalize() error {
	top := &network.Topology{}
	for _, name := range c.order {
		if n := c.nets[name]; !n.Rail {
			top.AddNet(n)
		}
	}

	c.gmin = device.NewGminShunt(top.Nets, c.ground)
	for _, dev := range append(slices.Clone(c.devices), c.gmin) {
		for _, t := range dev.Terminals() {
			top.AddTerminal(t)
		}
	}

	c.top = top
	return nil
}

// CreateSolver builds the solver for the finalized topology.
func (c *Circuit) CreateSolver(method string, params *solver.Params) error {
	if c.top == nil {
		return fmt.Errorf("circuit %s: topology not finalized", c.name)
	}
	s, err := solver.New(method, params, len(c.top.Nets))
	if err != nil {
		return err
	}
	if err := s.Setup(c.top); err != nil {
		return fmt.Errorf("solver setup: %w", err)
	}
	c.solver = s
	return nil
}

// Load recomputes every terminal for status.
func (c *Circuit) Load(status *device.CircuitStatus) error {
	c.Status = status
	for _, dev := range c.devices {
		if err := dev.Load(status); err != nil {
			return fmt.Errorf("loading device %s: %v", dev.GetName(), err)
		}
	}
	return c.gmin.Load(status)
}

func (c *Circuit) Solve(newtonRaphson bool) (solver.Status, error) {
	if c.solver == nil {
		return solver.NotConverged, fmt.Errorf("circuit %s: no solver", c.name)
	}
	return c.solver.Solve(newtonRaphson)
}

// Accept advances device history after a converged step.
func (c *Circuit) Accept(status *device.CircuitStatus) {
	for _, td := range c.timeDeps {
		td.UpdateState(status)
	}
}

// Restore puts the unknown nets back to the last accepted voltages.
func (c *Circuit) Restore() {
	for _, n := range c.top.Nets {
		n.Voltage = n.LastVoltage
	}
}

func (c *Circuit) NextTimestep(h float64) float64 {
	return c.solver.NextTimestep(h)
}

func (c *Circuit) GetSolution() map[string]float64 {
	solution := make(map[string]float64)

	for name, n := range c.nets {
		solution[fmt.Sprintf("V(%s)", name)] = n.Voltage
	}

	for _, dev := range c.devices {
		switch d := dev.(type) {
		case *device.Resistor:
			solution[fmt.Sprintf("I(%s)", d.GetName())] = d.Current()
		case *device.Diode:
			solution[fmt.Sprintf("I(%s)", d.GetName())] = d.Current()
		}
	}

	return solution
}

func (c *Circuit) Name() string                    { return c.name }
func (c *Circuit) GetDevices() []device.Device     { return c.devices }
func (c *Circuit) GetTopology() *network.Topology  { return c.top }
func (c *Circuit) GetSolver() solver.Solver        { return c.solver }
func (c *Circuit) GetNumNodes() int                { return len(c.nets) }
func (c *Circuit) GetNodeNames() []string          { return slices.Sorted(maps.Keys(c.nets)) }
func (c *Circuit) GetNet(node string) *network.Net { return c.net(node) }

func (c *Circuit) GetNodeVoltage(node string) float64 {
	if n := c.net(node); n != nil {
		return n.Voltage
	}
	return 0
}

func (c *Circuit) Destroy() {
	if s, ok := c.solver.(*solver.Sparse); ok {
		s.Destroy()
	}
}
