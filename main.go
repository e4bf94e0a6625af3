package main

import (
	"os"

	"github.com/borealis-gfx/borealis/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "borealis"
	app.Usage = "distributed scene-graph renderer"
	app.Version = "0.1.0"
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
			Name:  "render",
			Usage: "render the demo scene",
			Description: `
Build the demo scene graph on a group of in-process ranks, render it twice
(navigation resolution first, then full size), composite the per-rank tiles
and save the result from rank 0.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 1024,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 768,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "ranks",
					Value: 2,
					Usage: "number of in-process render ranks",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:        "view",
			Usage:       "render an interactive view of the demo scene",
			Description: `Open an opengl window displaying the frame buffer; arrow keys move the camera.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 1024,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 768,
					Usage: "frame height",
				},
			},
			Action: cmd.RenderInteractive,
		},
		{
			Name:   "info",
			Usage:  "list registered node types, subtypes and backends",
			Action: cmd.ListNodeTypes,
		},
	}

	app.Run(os.Args)
}
