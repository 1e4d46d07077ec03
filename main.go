package main

import (
	"os"

	"github.com/achilleasa/go-viewshed/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-viewshed"
	app.Usage = "compute distributed viewsheds over a partitioned elevation layer"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "compute",
			Usage:     "compute a viewshed for one or more observers",
			ArgsUsage: "elevation.json",
			Description: `
Read a partitioned elevation layer (or generate a synthetic one), resolve a
set of observers against it, and iteratively drive the R2 line-of-sight
kernel across every tile the observers' rays touch until the ray packet bus
is quiescent. The resulting visibility layer is written to --out.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "observers",
					Usage: "path to a JSON file listing observer points",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "visibility.json",
					Usage: "output path for the computed visibility layer",
				},
				cli.Float64Flag{
					Name:  "max-distance",
					Value: 10000,
					Usage: "maximum ray distance in meters",
				},
				cli.StringFlag{
					Name:  "operator",
					Value: "or",
					Usage: "aggregation operator: or, and, sum or debug",
				},
				cli.BoolFlag{
					Name:  "disable-curvature",
					Usage: "disable the Earth-curvature drop term",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of concurrent tile workers",
				},
				cli.IntFlag{
					Name:  "max-retries",
					Value: 2,
					Usage: "retries for a tile task failing with a substrate error",
				},
				cli.BoolFlag{
					Name:  "synthetic",
					Usage: "generate a synthetic cone-shaped elevation layer instead of reading a file",
				},
				cli.IntFlag{
					Name:  "synthetic-grid-cols",
					Value: 2,
					Usage: "synthetic layer: tile columns",
				},
				cli.IntFlag{
					Name:  "synthetic-grid-rows",
					Value: 2,
					Usage: "synthetic layer: tile rows",
				},
				cli.IntFlag{
					Name:  "synthetic-tile-size",
					Value: 64,
					Usage: "synthetic layer: pixels per tile edge",
				},
				cli.Float64Flag{
					Name:  "synthetic-peak",
					Value: 200,
					Usage: "synthetic layer: peak elevation in meters at the center",
				},
			},
			Action: cmd.Compute,
		},
		{
			Name:   "workers",
			Usage:  "report the shape of the worker pool a compute run would use",
			Action: cmd.Workers,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of concurrent tile workers",
				},
				cli.IntFlag{
					Name:  "max-retries",
					Value: 2,
					Usage: "retries for a tile task failing with a substrate error",
				},
			},
		},
	}

	app.Run(os.Args)
}
