package main

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/edp1096/netsolver/pkg/circuit"
	"github.com/edp1096/netsolver/pkg/device"
	"github.com/edp1096/netsolver/pkg/netlist"
	"github.com/edp1096/netsolver/pkg/solver"
)

type benchConfig struct {
	size    int
	iter    int
	changes int
	seed    int64
}

// benchNetlist is a resistor ladder between two supplies with random
// cross links, so every strategy sees the same sparse but non-banded
// pattern.
func benchNetlist(rng *rand.Rand, n int) []netlist.Element {
	node := func(i int) string { return fmt.Sprintf("n%d", i) }
	elems := []netlist.Element{
		{Type: "V", Name: "Vdd", Nodes: []string{"vdd", "0"}, Value: 5},
		{Type: "R", Name: "Rin", Nodes: []string{"vdd", node(0)}, Value: 1e3},
	}
	add := func(a, b string) {
		name := fmt.Sprintf("R%d", len(elems))
		elems = append(elems, netlist.Element{Type: "R", Name: name, Nodes: []string{a, b}, Value: 100 + 900*rng.Float64()})
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			add(node(i-1), node(i))
		}
		add(node(i), "0")
	}
	for i := 0; i < n/2; i++ {
		a, b := rng.Intn(n), rng.Intn(n)
		if a != b {
			add(node(a), node(b))
		}
	}
	return elems
}

func bench(w io.Writer, cfg benchConfig, methods []string) error {
	if cfg.size < 1 || cfg.iter < 1 {
		return fmt.Errorf("size and iter must be positive")
	}

	for _, method := range methods {
		rng := rand.New(rand.NewSource(cfg.seed))
		elems := benchNetlist(rng, cfg.size)

		ckt := circuit.New("bench")
		if err := ckt.AssignNets(elems); err != nil {
			return err
		}
		if err := ckt.SetupDevices(elems); err != nil {
			return err
		}
		if err := ckt.CreateSolver(method, solver.DefaultParams()); err != nil {
			return err
		}

		var resistors []*device.Resistor
		for _, dev := range ckt.GetDevices() {
			if r, ok := dev.(*device.Resistor); ok {
				resistors = append(resistors, r)
			}
		}

		status := &device.CircuitStatus{Mode: device.OperatingPointAnalysis}
		start := time.Now()
		for i := 0; i < cfg.iter; i++ {
			for j := 0; j < cfg.changes; j++ {
				r := resistors[rng.Intn(len(resistors))]
				r.Value = 100 + 900*rng.Float64()
			}
			if err := ckt.Load(status); err != nil {
				return err
			}
			if _, err := ckt.Solve(false); err != nil {
				ckt.Destroy()
				return fmt.Errorf("%s: %w", method, err)
			}
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%-9s n=%-5d %8d calls %12v  %10.2f us/call  V(n0)=%.6f\n",
			method, len(ckt.GetTopology().Nets), cfg.iter, elapsed,
			float64(elapsed.Microseconds())/float64(cfg.iter), ckt.GetNodeVoltage("n0"))
		if wb, ok := ckt.GetSolver().(*solver.Woodbury); ok {
			st := wb.Stats()
			fmt.Fprintf(w, "          refreshes %d, fallbacks %d\n", st.Refreshes, st.Fallbacks)
		}
		ckt.Destroy()
	}
	return nil
}
