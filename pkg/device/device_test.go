package device

import (
	"math"
	"testing"

	"github.com/edp1096/netsolver/internal/consts"
	"github.com/edp1096/netsolver/pkg/network"
	"github.com/edp1096/netsolver/pkg/util"
)

func near(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %g, want %g", name, got, want)
	}
}

func TestResistorOnRail(t *testing.T) {
	a := network.NewNet("a")
	gnd := network.NewRail("0", 0)

	r := NewResistor("R1", []string{"a", "0"}, 2e3)
	if err := r.Attach([]*network.Net{a, gnd}); err != nil {
		t.Fatal(err)
	}
	terms := r.Terminals()
	if len(terms) != 1 || terms[0].Net != a || terms[0].Other != gnd {
		t.Fatalf("terminals = %v, want one on a toward ground", terms)
	}

	if err := r.Load(&CircuitStatus{Temp: consts.REFTEMP}); err != nil {
		t.Fatal(err)
	}
	near(t, "Gt", terms[0].Gt, 5e-4, 1e-15)
	near(t, "Go", terms[0].Go, 5e-4, 1e-15)

	a.Voltage = 4
	near(t, "Current", r.Current(), 2e-3, 1e-15)
}

func TestResistorZero(t *testing.T) {
	r := NewResistor("R0", []string{"a", "b"}, 0)
	if err := r.Attach([]*network.Net{network.NewNet("a"), network.NewNet("b")}); err == nil {
		t.Error("zero resistance attached")
	}
}

func TestAttachNodeCount(t *testing.T) {
	r := NewResistor("R1", []string{"a", "b"}, 1)
	if err := r.Attach([]*network.Net{network.NewNet("a")}); err == nil {
		t.Error("attach with one net succeeded")
	}
}

func TestCurrentSourceDirection(t *testing.T) {
	a, b := network.NewNet("a"), network.NewNet("b")
	src := NewDCCurrentSource("I1", []string{"a", "b"}, 2)
	if err := src.Attach([]*network.Net{a, b}); err != nil {
		t.Fatal(err)
	}
	if err := src.Load(&CircuitStatus{}); err != nil {
		t.Fatal(err)
	}

	for _, term := range src.Terminals() {
		if term.Gt != 0 || term.Go != 0 {
			t.Errorf("%s: conductance %g/%g on an ideal source", term.Net.Name, term.Gt, term.Go)
		}
		switch term.Net {
		case a:
			near(t, "Idr(a)", term.Idr, -2, 0)
		case b:
			near(t, "Idr(b)", term.Idr, 2, 0)
		}
	}

	src.SetValue(-1)
	src.Load(&CircuitStatus{Time: 1})
	if got := src.Wave.At(1); got != -1 {
		t.Errorf("SetValue wave = %g, want -1", got)
	}
}

func TestCapacitorCompanion(t *testing.T) {
	const c, h = 1e-6, 1e-3

	newCap := func(t *testing.T) (*Capacitor, *network.Terminal) {
		a := network.NewNet("a")
		a.Voltage = 2
		cc := NewCapacitor("C1", []string{"a", "0"}, c)
		if err := cc.Attach([]*network.Net{a, network.NewRail("0", 0)}); err != nil {
			t.Fatal(err)
		}
		cc.UpdateState(&CircuitStatus{Mode: OperatingPointAnalysis})
		return cc, cc.Terminals()[0]
	}

	tests := []struct {
		name     string
		method   util.IntegrationMethod
		steps    int
		geq, ieq float64
	}{
		{"be", util.BackwardEuler, 0, c / h, 2 * c / h},
		{"trap", util.Trapezoidal, 3, 2 * c / h, 4 * c / h},
		{"gear first step", util.Gear, 0, c / h, 2 * c / h},
		// 1.5/h * C, -C*(-2/h*2 + 0.5/h*2)
		{"gear", util.Gear, 1, 1.5 * c / h, 3 * c / h},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc, term := newCap(t)
			status := &CircuitStatus{Mode: TransientAnalysis, TimeStep: h, Method: tt.method, Steps: tt.steps}
			if err := cc.Load(status); err != nil {
				t.Fatal(err)
			}
			near(t, "geq", term.Gt, tt.geq, 1e-12)
			near(t, "ieq", term.Idr, tt.ieq, 1e-12)

			// i = geq*v - ieq
			cc.UpdateState(status)
			near(t, "current", cc.Current(), 2*tt.geq-tt.ieq, 1e-12)
			if cc.Voltage0 != 2 || cc.Voltage1 != 2 {
				t.Errorf("history = %g, %g, want 2, 2", cc.Voltage0, cc.Voltage1)
			}
		})
	}
}

func TestCapacitorOpenInOP(t *testing.T) {
	a := network.NewNet("a")
	cc := NewCapacitor("C1", []string{"a", "0"}, 1e-6)
	cc.Attach([]*network.Net{a, network.NewRail("0", 0)})

	cc.Load(&CircuitStatus{Mode: OperatingPointAnalysis})
	term := cc.Terminals()[0]
	if term.Gt != consts.GMIN || term.Idr != 0 {
		t.Errorf("op load = %g/%g, want gmin and no current", term.Gt, term.Idr)
	}

	cc.Load(&CircuitStatus{Mode: OperatingPointAnalysis, Gmin: 1e-3})
	if term.Gt != 1e-3 {
		t.Errorf("op load with gmin stepping = %g, want 1e-3", term.Gt)
	}
}

func TestLimitJunction(t *testing.T) {
	const nvt, vcrit = 0.0259, 0.7

	if got := limitJunction(0.5, 0, nvt, vcrit); got != 0.5 {
		t.Errorf("below vcrit: %g, want unchanged", got)
	}
	if got := limitJunction(0.75, 0.72, nvt, vcrit); got != 0.75 {
		t.Errorf("small step: %g, want unchanged", got)
	}

	got := limitJunction(5, 0.7, nvt, vcrit)
	want := 0.7 + nvt*math.Log(1+(5-0.7)/nvt)
	near(t, "limited from forward bias", got, want, 1e-12)
	if got >= 1 {
		t.Errorf("limited voltage %g not damped", got)
	}

	got = limitJunction(5, -1, nvt, vcrit)
	near(t, "limited from reverse bias", got, nvt*math.Log(5/nvt), 1e-12)
}

func TestDiodeLoad(t *testing.T) {
	a := network.NewNet("a")
	a.Voltage = 0.6
	d := NewDiode("D1", []string{"a", "0"})
	if err := d.Attach([]*network.Net{a, network.NewRail("0", 0)}); err != nil {
		t.Fatal(err)
	}
	if err := d.Load(&CircuitStatus{Temp: consts.REFTEMP}); err != nil {
		t.Fatal(err)
	}

	nvt := consts.BOLTZMANN * consts.REFTEMP / consts.CHARGE
	id := 1e-14 * (math.Exp(0.6/nvt) - 1)
	gd := (id+1e-14)/nvt + consts.GMIN
	near(t, "Current", d.Current(), id, id*1e-9)

	term := d.Terminals()[0]
	near(t, "Gt", term.Gt, gd, gd*1e-9)
	near(t, "Idr", term.Idr, -(id - gd*0.6), math.Abs(id-gd*0.6)*1e-9)
}

func TestDiodeModel(t *testing.T) {
	d := NewDiode("D1", []string{"a", "b"})
	d.SetModelParameters(map[string]float64{"is": 2.52e-9, "n": 1.752, "rs": 0.5})
	if d.Is != 2.52e-9 || d.N != 1.752 {
		t.Errorf("model not applied: is %g, n %g", d.Is, d.N)
	}

	d.SetModelParameters(map[string]float64{"n": 0})
	if err := d.Attach([]*network.Net{network.NewNet("a"), network.NewNet("b")}); err == nil {
		t.Error("diode with n=0 attached")
	}
}

func TestVoltageSourceRail(t *testing.T) {
	isGround := func(s string) bool { return s == "0" }

	v := NewDCVoltageSource("V1", []string{"0", "n"}, 5)
	node, err := v.RailNode(isGround)
	if err != nil || node != "n" {
		t.Fatalf("RailNode = %q, %v; want n", node, err)
	}

	gnd, rail := network.NewRail("0", 0), network.NewRail("n", 0)
	if err := v.Attach([]*network.Net{gnd, rail}); err != nil {
		t.Fatal(err)
	}
	if v.Rail() != rail || rail.Voltage != -5 || rail.LastVoltage != -5 {
		t.Errorf("inverted source rail = %v", rail)
	}
	if len(v.Terminals()) != 0 {
		t.Errorf("voltage source has %d terminals", len(v.Terminals()))
	}

	v.Wave = PWLWave([]float64{0, 1}, []float64{0, 10})
	v.Load(&CircuitStatus{Time: 0.5})
	near(t, "rail at t=0.5", rail.Voltage, -5, 1e-12)
}

func TestVoltageSourceErrors(t *testing.T) {
	isGround := func(s string) bool { return s == "0" }

	if _, err := NewDCVoltageSource("V1", []string{"0", "0"}, 1).RailNode(isGround); err == nil {
		t.Error("source across ground accepted")
	}
	if _, err := NewDCVoltageSource("V2", []string{"a", "b"}, 1).RailNode(isGround); err == nil {
		t.Error("floating source accepted")
	}

	v := NewDCVoltageSource("V3", []string{"a", "0"}, 1)
	if err := v.Attach([]*network.Net{network.NewRail("a", 0), network.NewRail("0", 0)}); err == nil {
		t.Error("attach before RailNode succeeded")
	}
	v.RailNode(isGround)
	if err := v.Attach([]*network.Net{network.NewNet("a"), network.NewRail("0", 0)}); err == nil {
		t.Error("attach to a non-rail net succeeded")
	}
}

func TestVCCSSigns(t *testing.T) {
	out, cp := network.NewNet("out"), network.NewNet("cp")
	gnd := network.NewRail("0", 0)

	g := NewVCCS("G1", []string{"out", "0", "cp", "0"}, 0.5)
	if err := g.Attach([]*network.Net{out, gnd, cp, gnd}); err != nil {
		t.Fatal(err)
	}
	g.Load(&CircuitStatus{})

	terms := g.Terminals()
	if len(terms) != 2 {
		t.Fatalf("terminals = %d, want 2 (n- is ground)", len(terms))
	}
	for _, term := range terms {
		if term.Net != out || term.Gt != 0 {
			t.Errorf("terminal on %s with Gt %g", term.Net.Name, term.Gt)
		}
		switch term.Other {
		case cp:
			near(t, "Go toward nc+", term.Go, -0.5, 0)
		case gnd:
			near(t, "Go toward nc-", term.Go, 0.5, 0)
		}
	}
}

func TestGminShunt(t *testing.T) {
	gnd := network.NewRail("0", 0)
	nets := []*network.Net{network.NewNet("a"), network.NewRail("vdd", 5), network.NewNet("b")}

	g := NewGminShunt(nets, gnd)
	if len(g.Terminals()) != 2 {
		t.Fatalf("shunt terminals = %d, want 2", len(g.Terminals()))
	}
	g.Load(&CircuitStatus{Gmin: 1e-4})
	for _, term := range g.Terminals() {
		if term.Gt != 1e-4 || term.Go != 1e-4 || term.Other != gnd {
			t.Errorf("%s shunt = %g/%g", term.Net.Name, term.Gt, term.Go)
		}
	}
}
