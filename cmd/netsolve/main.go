package main

import (
	"log"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/edp1096/netsolver/pkg/solver"
)

func main() {
	log.SetFlags(0)

	app := cli.NewApp()
	app.Name = "netsolve"
	app.Usage = "nodal circuit simulation with interchangeable matrix solvers"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Simulate a netlist",
			ArgsUsage: "netlist.cir",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "method",
					Usage: "solver `strategy`: direct, woodbury or sparse (overrides .options)",
				},
				cli.BoolFlag{
					Name:  "pivot",
					Usage: "partial pivoting in the direct solver",
				},
				cli.BoolFlag{
					Name:  "dynamic",
					Usage: "dynamic timestep control from the solver",
				},
				cli.StringFlag{
					Name:  "integ",
					Usage: "integration `method`: be, trap or gear (overrides .options)",
				},
				cli.StringFlag{
					Name:  "plot",
					Usage: "write transient node voltages to `file` (.png, .svg, .pdf)",
				},
				cli.BoolFlag{
					Name:  "verbose",
					Usage: "log solver fallbacks and print the netlist summary",
				},
			},
			Action: runAction,
		},
		{
			Name:  "bench",
			Usage: "Time the solver strategies on a random network",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "size",
					Value: 20,
					Usage: "number of unknown `nets`",
				},
				cli.StringFlag{
					Name:  "method",
					Usage: "benchmark only this `strategy` (default all)",
				},
				cli.IntFlag{
					Name:  "iter",
					Value: 1000,
					Usage: "solve `calls` per strategy",
				},
				cli.IntFlag{
					Name:  "changes",
					Value: 1,
					Usage: "resistors changed between calls",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random `seed`",
				},
			},
			Action: func(c *cli.Context) error {
				methods := solver.Methods
				if m := c.String("method"); m != "" {
					methods = []string{m}
				}
				return bench(os.Stdout, benchConfig{
					size:    c.Int("size"),
					iter:    c.Int("iter"),
					changes: c.Int("changes"),
					seed:    c.Int64("seed"),
				}, methods)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
