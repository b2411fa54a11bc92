package netlist

import (
	"testing"

	"github.com/edp1096/netsolver/pkg/device"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseValue(t *testing.T) {
	Convey("Given values with engineering suffixes", t, func() {
		tests := []struct {
			in   string
			want float64
		}{
			{"1k", 1e3},
			{"1K", 1e3},
			{"4.7meg", 4.7e6},
			{"2MEG", 2e6},
			{"10u", 10e-6},
			{"10uF", 10e-6},
			{"2mA", 2e-3},
			{"3M", 3e-3},
			{"5V", 5},
			{"1e-3", 1e-3},
			{"-2.5", -2.5},
			{"100p", 100e-12},
			{" 1n ", 1e-9},
		}

		Convey("Each should scale by its suffix", func() {
			for _, tt := range tests {
				got, err := ParseValue(tt.in)
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, tt.want, 1e-12*abs(tt.want))
			}
		})

		Convey("Malformed values should be rejected", func() {
			for _, bad := range []string{"", "k1", "abc", "1.2.3"} {
				_, err := ParseValue(bad)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

const rectifier = `* Half wave rectifier
Vin 1 0 SIN(0 5 1k)
R1 1 2 100 ; series resistor
D1 2 3 D1N4148
C1 3 0 10u
+
RL 3 0
+ 1k
.model D1N4148 D(is=2.52n n=1.752)
.options method=woodbury pivot integ=trap
.tran 10u 5m 0 50u
.end
R2 9 9 1
`

func TestParseRectifier(t *testing.T) {
	Convey("Given a rectifier netlist", t, func() {
		data, err := Parse(rectifier)
		So(err, ShouldBeNil)

		Convey("The header and analysis should be read", func() {
			So(data.Title, ShouldEqual, "Half wave rectifier")
			So(data.Analysis, ShouldEqual, AnalysisTRAN)
		})

		Convey("Nothing after .end should be kept", func() {
			So(data.Elements, ShouldHaveLength, 5)
			So(data.Nodes, ShouldHaveLength, 4)
		})

		Convey("Element fields should match", func() {
			vin := data.Elements[0]
			So(vin.Type, ShouldEqual, "V")
			So(vin.Params["type"], ShouldEqual, "sin")
			So(vin.Params["sin"], ShouldEqual, "0 5 1k")

			d := data.Elements[2]
			So(d.Type, ShouldEqual, "D")
			So(d.Params["model"], ShouldEqual, "D1N4148")

			rl := data.Elements[4]
			So(rl.Name, ShouldEqual, "RL")
			So(rl.Value, ShouldEqual, 1e3)
		})

		Convey("The diode model should carry defaults", func() {
			model, ok := data.Models["D1N4148"]
			So(ok, ShouldBeTrue)
			So(model.Type, ShouldEqual, "D")
			So(model.Params["is"], ShouldAlmostEqual, 2.52e-9, 1e-21)
			So(model.Params["n"], ShouldEqual, 1.752)
			So(model.Params["xti"], ShouldEqual, 3)
		})

		Convey("The .tran and .options cards should be read", func() {
			tp := data.TranParam
			So(tp.TStep, ShouldAlmostEqual, 10e-6, 1e-18)
			So(tp.TStop, ShouldAlmostEqual, 5e-3, 1e-15)
			So(tp.TStart, ShouldEqual, 0)
			So(tp.TMax, ShouldAlmostEqual, 50e-6, 1e-18)
			So(tp.UIC, ShouldBeFalse)

			So(data.Options["method"], ShouldEqual, "woodbury")
			So(data.Options["pivot"], ShouldEqual, "1")
			So(data.Options["integ"], ShouldEqual, "trap")
		})
	})
}

func TestParseAnalyses(t *testing.T) {
	Convey("Given a .dc sweep", t, func() {
		data, err := Parse("sweep\nV1 1 0 DC 1\nR1 1 0 1k\n.dc V1 0 5 0.5\n")
		So(err, ShouldBeNil)
		So(data.Analysis, ShouldEqual, AnalysisDC)
		dp := data.DCParam
		So(dp.Source, ShouldEqual, "V1")
		So(dp.Start, ShouldEqual, 0)
		So(dp.Stop, ShouldEqual, 5)
		So(dp.Increment, ShouldEqual, 0.5)
	})

	Convey("Given a .tran with uic", t, func() {
		data, err := Parse("uic\nR1 1 0 1k\nC1 1 0 1u\n.tran 1u 1m uic\n")
		So(err, ShouldBeNil)
		So(data.TranParam.UIC, ShouldBeTrue)
		So(data.TranParam.TMax, ShouldEqual, 1e-6)
	})

	Convey("Given an .op netlist with a VCCS", t, func() {
		data, err := Parse("op only\nI1 0 1 1m\nR1 1 0 1k\nG1 2 0 1 0 2m\nR2 2 0 1k\n.op\n")
		So(err, ShouldBeNil)
		So(data.Analysis, ShouldEqual, AnalysisOP)
		So(data.Elements, ShouldHaveLength, 4)

		g := data.Elements[2]
		So(g.Nodes, ShouldHaveLength, 4)
		So(g.Value, ShouldEqual, 2e-3)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"unknown element", "t\nQ1 1 2 3 npn\n", "line 2"},
		{"short resistor", "t\nR1 1 2\n", "line 2"},
		{"bad value", "t\n* comment\nR1 1 0 abc\n", "line 3"},
		{"vccs fields", "t\nG1 1 0 2 3\n", "VCCS"},
		{"dangling continuation", "t\n+ 1k\n", "continuation"},
		{"tran params", "t\n.tran 1u\n", "tran"},
		{"dc params", "t\n.dc V1 0 1\n", "dc sweep"},
		{"model type", "t\n.model Q1 NPN(bf=100)\n", "unsupported model"},
		{"control", "t\n.ac dec 10 1 1k\n", "unsupported control"},
		{"continued error", "t\nR1 1 0\n+ x\n", "line 2"},
	}

	Convey("Given malformed netlists", t, func() {
		for _, tt := range tests {
			Convey("When parsing one with "+tt.name, func() {
				_, err := Parse(tt.input)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, tt.want)
			})
		}
	})
}

func TestCreateDevice(t *testing.T) {
	Convey("Given the parsed rectifier", t, func() {
		data, err := Parse(rectifier)
		So(err, ShouldBeNil)

		Convey("Every element should become a device", func() {
			types := []string{"V", "R", "D", "C", "R"}
			for i, elem := range data.Elements {
				dev, err := CreateDevice(elem, data.Models)
				So(err, ShouldBeNil)
				So(dev.GetType(), ShouldEqual, types[i])
				So(dev.GetName(), ShouldEqual, elem.Name)
			}
		})

		Convey("The diode should take the model parameters", func() {
			d, err := CreateDevice(data.Elements[2], data.Models)
			So(err, ShouldBeNil)
			So(d, ShouldHaveSameTypeAs, &device.Diode{})
			So(d.(*device.Diode).N, ShouldEqual, 1.752)
		})

		Convey("The source should carry its SIN wave", func() {
			v, err := CreateDevice(data.Elements[0], data.Models)
			So(err, ShouldBeNil)
			wave := v.(*device.VoltageSource).Wave
			So(wave.Type, ShouldEqual, device.SIN)
			So(wave.Freq, ShouldEqual, 1e3)
			So(wave.Amplitude, ShouldEqual, 5)
		})

		Convey("A diode without its model should be refused", func() {
			_, err := CreateDevice(data.Elements[2], nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSourceWaveforms(t *testing.T) {
	tests := []struct {
		line string
		at   float64
		want float64
	}{
		{"V1 1 0 3.3", 1, 3.3},
		{"V1 1 0 DC 2", 1, 2},
		{"V1 1 0 PULSE(0 5 1u 1u 1u 5u 20u)", 4e-6, 5},
		{"V1 1 0 PULSE (0 1)", 1, 0},
		{"V1 1 0 pwl(0 0 1m 2)", 0.5e-3, 1},
		{"I1 0 1 SIN(1 1 1k 90)", 0, 2},
	}

	Convey("Given source lines with waveforms", t, func() {
		for _, tt := range tests {
			Convey(tt.line, func() {
				elem, err := parseElement(tt.line)
				So(err, ShouldBeNil)
				wave, err := parseWaveform(*elem)
				So(err, ShouldBeNil)
				So(wave.At(tt.at), ShouldAlmostEqual, tt.want, 1e-9)
			})
		}
	})

	Convey("Given malformed waveforms", t, func() {
		bad := []string{
			"V1 1 0 SIN(0 1)",
			"V1 1 0 PULSE(0)",
			"V1 1 0 PULSE(0 1 -1u)",
			"V1 1 0 PWL(0 0 1m)",
			"V1 1 0 PWL(1m 0 0 1)",
		}
		for _, line := range bad {
			elem, err := parseElement(line)
			if err != nil {
				continue
			}
			_, err = parseWaveform(*elem)
			So(err, ShouldNotBeNil)
		}
	})
}
