package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/lumen-render/lumen/scene/io"
	"github.com/lumen-render/lumen/tracer/lightfield"
	"github.com/lumen-render/lumen/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Trace a single ray through a compiled scene and dump the state of every
// composited layer along it.
func ProbeRay(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := io.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	x := float32(ctx.Float64("x"))
	y := float32(ctx.Float64("y"))
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return errors.New("the probed frame coordinates must lie in [0, 1]")
	}

	sc.Camera.SetupProjection(1.0)

	// interpolate the frustum corner rays for the probed frame coordinate
	top := sc.Camera.Frustum[0].Vec3().Lerp(sc.Camera.Frustum[1].Vec3(), x)
	bottom := sc.Camera.Frustum[2].Vec3().Lerp(sc.Camera.Frustum[3].Vec3(), x)
	direction := top.Lerp(bottom, y).Normalize()

	geometry := lightfield.NewGeometry(sc.Planes)
	selector := lightfield.NewTableSelector(sc)
	selector.SetViewpoint(sc.Camera.Position)
	compositor := lightfield.NewCompositor(sc, geometry, selector, lightfield.DefaultMaxBounces, types.Vec4{})

	color, states := compositor.Probe(sc.Camera.Position, direction)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Layer", "Hit distance", "Color", "Alpha", "Factor"})
	for index, state := range states {
		if state.IsMiss() {
			table.Append([]string{fmt.Sprintf("%d", index), "miss", "", "", ""})
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%d", index),
			fmt.Sprintf("%.4f", state.Distance),
			fmt.Sprintf("(%.3f, %.3f, %.3f)", state.Color[0], state.Color[1], state.Color[2]),
			fmt.Sprintf("%.3f", state.Alpha),
			fmt.Sprintf("%.3f", state.Factor),
		})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("(%.3f, %.3f, %.3f)", color[0], color[1], color[2]), fmt.Sprintf("%.3f", color[3]), "FINAL"})
	table.Render()

	logger.Noticef(
		"probed frame coordinate (%.3f, %.3f), ray direction (%.3f, %.3f, %.3f)\n%s",
		x, y, direction[0], direction[1], direction[2], buf.String(),
	)

	return nil
}
