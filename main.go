package main

import (
	"os"

	"github.com/lumen-render/lumen/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "reconstruct light-field captures from novel viewpoints"
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
			Name:  "compile",
			Usage: "compile a raw light-field capture into a binary scene archive",
			Description: `
Load a light-field capture directory (camera grid images, per-camera depth
maps and a parameters.cfg file), slice the capture into stacked depth planes,
precompute per-plane camera records and package everything into a compressed
archive which can be supplied as an argument to the render command.`,
			ArgsUsage: "capture_dir1 capture_dir2 ...",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "slices",
					Value: 16,
					Usage: "number of depth slices per light field",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "",
					Usage: "scene archive filename (defaults to <capture_dir>.zip)",
				},
			},
			Action: cmd.CompileCapture,
		},
		{
			Name:      "info",
			Usage:     "print the plane/camera/texture tables of a compiled scene",
			ArgsUsage: "scene_file.zip",
			Action:    cmd.SceneInfo,
		},
		{
			Name:      "probe",
			Usage:     "trace a single ray through a scene and dump the compositing layers",
			ArgsUsage: "scene_file.zip",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "x", Value: 0.5, Usage: "normalized frame x coordinate"},
				cli.Float64Flag{Name: "y", Value: 0.5, Usage: "normalized frame y coordinate"},
			},
			Action: cmd.ProbeRay,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame and save it as a PNG image.`,
					ArgsUsage:   "scene_file.zip",
					Flags: []cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "max-bounces",
							Value: 8,
							Usage: "max composited plane layers per ray",
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
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Open an OpenGL window and navigate the light field with keyboard and mouse.`,
					ArgsUsage:   "scene_file.zip",
					Flags: []cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "max-bounces",
							Value: 8,
							Usage: "max composited plane layers per ray",
						},
					},
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	app.Run(os.Args)
}
