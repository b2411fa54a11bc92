package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/edp1096/netsolver/pkg/analysis"
	"github.com/edp1096/netsolver/pkg/circuit"
	"github.com/edp1096/netsolver/pkg/netlist"
	"github.com/edp1096/netsolver/pkg/solver"
	"github.com/edp1096/netsolver/pkg/util"
	"github.com/edp1096/netsolver/pkg/waveform"
)

func runAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: netsolve run [flags] <netlist_file>")
	}

	content, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("reading netlist file: %v", err)
	}
	data, err := netlist.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing netlist: %v", err)
	}

	params := solver.DefaultParams()
	if data.Analysis == netlist.AnalysisTRAN {
		// the .tran line bounds the step before .options may narrow it
		tp := data.TranParam
		params.MaxTimestep = tp.TStep
		if tp.TMax > 0 {
			params.MaxTimestep = tp.TMax
		}
		params.MinTimestep = min(params.MinTimestep, params.MaxTimestep/50)
	}
	opts, err := data.ApplyOptions(params)
	if err != nil {
		return err
	}

	if m := c.String("method"); m != "" {
		opts.Method = strings.ToLower(m)
	}
	if c.IsSet("pivot") {
		params.Pivot = c.Bool("pivot")
	}
	if c.IsSet("dynamic") {
		params.Dynamic = c.Bool("dynamic")
	}
	if s := c.String("integ"); s != "" {
		if opts.Integration, err = util.ParseIntegrationMethod(s); err != nil {
			return err
		}
	}
	verbose := c.Bool("verbose")
	if verbose {
		params.Logger = log.New(os.Stderr, "solver: ", 0)
	}

	ckt := circuit.New(data.Title)
	defer ckt.Destroy()
	ckt.SetModels(data.Models)

	if err := ckt.AssignNets(data.Elements); err != nil {
		return fmt.Errorf("creating circuit nets: %v", err)
	}
	if err := ckt.SetupDevices(data.Elements); err != nil {
		return fmt.Errorf("setting up devices: %v", err)
	}
	if err := ckt.CreateSolver(opts.Method, params); err != nil {
		return err
	}
	if verbose {
		printSummary(os.Stderr, data, ckt, opts)
	}

	var analyzer analysis.Analysis
	switch data.Analysis {
	case netlist.AnalysisOP:
		analyzer = analysis.NewOP()
	case netlist.AnalysisTRAN:
		tp := data.TranParam
		tran := analysis.NewTransient(tp.TStart, tp.TStop, tp.TStep, params.MaxTimestep, tp.UIC)
		tran.SetMethod(opts.Integration)
		tran.SetMinStep(params.MinTimestep)
		analyzer = tran
	case netlist.AnalysisDC:
		dp := data.DCParam
		if analyzer, err = analysis.NewDCSweep(dp.Source, dp.Start, dp.Stop, dp.Increment); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported analysis %v", data.Analysis)
	}

	if err := analyzer.Setup(ckt); err != nil {
		return fmt.Errorf("analysis setup failed: %v", err)
	}
	if err := analyzer.Execute(); err != nil {
		return fmt.Errorf("analysis execution failed: %v", err)
	}

	results := analyzer.GetResults()
	printResults(os.Stdout, results)

	if tran, ok := analyzer.(*analysis.Transient); ok && verbose {
		accepted, rejected := tran.Steps()
		fmt.Fprintf(os.Stderr, "steps: %d accepted, %d rejected\n", accepted, rejected)
	}
	if wb, ok := ckt.GetSolver().(*solver.Woodbury); ok && verbose {
		st := wb.Stats()
		fmt.Fprintf(os.Stderr, "woodbury: %d calls, %d refreshes, %d fallbacks\n", st.Calls, st.Refreshes, st.Fallbacks)
	}

	if path := c.String("plot"); path != "" {
		if data.Analysis != netlist.AnalysisTRAN {
			return fmt.Errorf("--plot needs a transient analysis")
		}
		var keys []string
		for _, k := range util.SortedKeys(results) {
			if util.UnitOf(k) == "V" {
				keys = append(keys, k)
			}
		}
		if err := waveform.Save(path, data.Title, results, keys); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, data *netlist.NetlistData, ckt *circuit.Circuit, opts netlist.Options) {
	fmt.Fprintf(w, "Circuit: %s\n", data.Title)
	fmt.Fprintf(w, "Analysis: %v, solver: %s, integration: %v\n", data.Analysis, opts.Method, opts.Integration)
	fmt.Fprintf(w, "Elements: %d, nodes: %d, unknowns: %d\n",
		len(data.Elements), ckt.GetNumNodes(), len(ckt.GetTopology().Nets))
	for i, elem := range data.Elements {
		fmt.Fprintf(w, "  %d: %s (type: %s, nodes: %v)\n", i, elem.Name, elem.Type, elem.Nodes)
	}
}

func printResults(w io.Writer, results map[string][]float64) {
	keys := util.SortedKeys(results)

	fmt.Fprintln(w, "\nAnalysis Results:")
	fmt.Fprintln(w, "================")

	// DC Sweep
	if sweep, isDC := results["SWEEP"]; isDC {
		fmt.Fprintf(w, "\nDC Sweep Analysis Results (%d points):\n", len(sweep))
		for i, val := range sweep {
			fmt.Fprintf(w, "%-11s", util.FormatValueFactor(val, ""))
			printRow(w, results, keys, i)
		}
		return
	}

	// Operating point
	times, isTran := results["TIME"]
	if !isTran {
		for _, name := range keys {
			fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], util.UnitOf(name)))
		}
		return
	}

	// Transient
	fmt.Fprintf(w, "\nTransient Analysis Results (%d time points):\n", len(times))
	for i, t := range times {
		fmt.Fprintf(w, "%11s", util.FormatValueFactor(t, "s"))
		printRow(w, results, keys, i)
	}
}

func printRow(w io.Writer, results map[string][]float64, keys []string, i int) {
	for _, name := range keys {
		if name == "SWEEP" {
			continue
		}
		if values := results[name]; i < len(values) {
			fmt.Fprintf(w, "  %s=%s", name, util.FormatValueFactor(values[i], util.UnitOf(name)))
		}
	}
	fmt.Fprintln(w)
}
