package solver

import (
	"fmt"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/netsolver/internal/numeric"
	"github.com/edp1096/netsolver/pkg/network"
)

// resistor adds a conductance g between a and b. Rails get no terminal.
func resistor(top *network.Topology, name string, a, b *network.Net, g float64) [2]*network.Terminal {
	var ts [2]*network.Terminal
	if !a.Rail {
		ts[0] = network.NewTerminal(name+"_a", a, b)
		ts[0].SetConductance(g, 0)
		top.AddTerminal(ts[0])
	}
	if !b.Rail {
		ts[1] = network.NewTerminal(name+"_b", b, a)
		ts[1].SetConductance(g, 0)
		top.AddTerminal(ts[1])
	}
	return ts
}

func setResistor(ts [2]*network.Terminal, g float64) {
	for _, t := range ts {
		if t != nil {
			t.SetConductance(g, 0)
		}
	}
}

// twoNode is 1 V feeding net a through 1 S, a-b 2 S, b to ground 1 S.
// A = [[3 -2] [-2 3]], RHS = [1 0].
func twoNode() (*network.Topology, *network.Net, *network.Net) {
	top := &network.Topology{}
	gnd := network.NewRail("0", 0)
	vcc := network.NewRail("vcc", 1)
	a := network.NewNet("a")
	b := network.NewNet("b")
	top.AddNet(a)
	top.AddNet(b)

	resistor(top, "R1", vcc, a, 1)
	resistor(top, "R2", a, b, 2)
	resistor(top, "R3", b, gnd, 1)
	return top, a, b
}

type randomNetwork struct {
	top       *network.Topology
	rails     []*network.Net
	resistors [][2]*network.Terminal
}

// newRandomNetwork builds a connected, diagonally dominant network of n nets
// with resistors, rail ties, current injections and one-sided
// transconductances.
func newRandomNetwork(rng *rand.Rand, n int) *randomNetwork {
	rn := &randomNetwork{top: &network.Topology{}}
	rn.rails = []*network.Net{network.NewRail("0", 0), network.NewRail("vdd", 5), network.NewRail("vee", -3)}

	nets := make([]*network.Net, n)
	for i := range nets {
		nets[i] = network.NewNet(fmt.Sprintf("n%d", i))
		rn.top.AddNet(nets[i])
	}

	add := func(a, b *network.Net) {
		name := fmt.Sprintf("R%d", len(rn.resistors))
		rn.resistors = append(rn.resistors, resistor(rn.top, name, a, b, 0.1+rng.Float64()))
	}

	// chain keeps the graph connected
	for i := 1; i < n; i++ {
		add(nets[i-1], nets[i])
	}
	for i := 0; i < n; i++ {
		add(nets[i], rn.rails[rng.Intn(len(rn.rails))])
		if j := rng.Intn(n); rng.Intn(3) == 0 && j != i {
			add(nets[i], nets[j])
		}
	}

	for i := 0; i < n; i++ {
		if rng.Intn(2) == 0 {
			src := network.NewTerminal(fmt.Sprintf("I%d", i), nets[i], rn.rails[0])
			src.Set(0, 0, rng.Float64()-0.5)
			rn.top.AddTerminal(src)
		}
		if n > 1 && rng.Intn(3) == 0 {
			ctl := nets[rng.Intn(n)]
			if ctl == nets[i] {
				continue
			}
			gm := 0.05 * rng.Float64()
			g := network.NewTerminal(fmt.Sprintf("G%d", i), nets[i], ctl)
			g.Set(0, gm, 0)
			rn.top.AddTerminal(g)
			// shunt keeps the row dominant
			rn.resistors = append(rn.resistors, resistor(rn.top, fmt.Sprintf("Rs%d", i), nets[i], rn.rails[0], gm+0.1))
		}
	}
	return rn
}

// perturb changes k random resistors.
func (rn *randomNetwork) perturb(rng *rand.Rand, k int) {
	for i := 0; i < k; i++ {
		setResistor(rn.resistors[rng.Intn(len(rn.resistors))], 0.1+rng.Float64())
	}
}

// reference solves the topology independently of the solver's ordering.
func reference(t *testing.T, top *network.Topology) map[*network.Net]float64 {
	t.Helper()

	n := len(top.Nets)
	index := make(map[*network.Net]int, n)
	for k, net := range top.Nets {
		index[net] = k
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for _, term := range top.Terminals {
		k, ok := index[term.Net]
		if !ok {
			continue
		}
		a.Set(k, k, a.At(k, k)+term.Gt)
		b.SetVec(k, b.AtVec(k)+term.Idr)
		if term.Other.Rail {
			b.SetVec(k, b.AtVec(k)+term.Go*term.Other.Voltage)
		} else {
			j := index[term.Other]
			a.Set(k, j, a.At(k, j)-term.Go)
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		t.Fatalf("reference solve: %v", err)
	}

	v := make(map[*network.Net]float64, n)
	for k, net := range top.Nets {
		v[net] = x.AtVec(k)
	}
	return v
}

func checkAgainstReference(t *testing.T, top *network.Topology, tol float64) {
	t.Helper()

	want := reference(t, top)
	got := make([]float64, 0, len(top.Nets))
	exp := make([]float64, 0, len(top.Nets))
	for _, net := range top.Nets {
		got = append(got, net.Voltage)
		exp = append(exp, want[net])
	}
	if d := numeric.MaxAbsDiff(got, exp); d > tol {
		t.Fatalf("max deviation from reference %g > %g\ngot  %v\nwant %v", d, tol, got, exp)
	}
}

func newSolver(t *testing.T, method string, p *Params, top *network.Topology) Solver {
	t.Helper()

	s, err := New(method, p, len(top.Nets))
	if err != nil {
		t.Fatalf("New(%s): %v", method, err)
	}
	if err := s.Setup(top); err != nil {
		t.Fatalf("Setup(%s): %v", method, err)
	}
	return s
}
