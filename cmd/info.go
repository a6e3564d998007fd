package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/lumen-render/lumen/scene/io"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display the plane/camera/texture tables of a compiled scene.
func SceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := io.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Plane", "Layer", "Depth (m)", "Cameras", "Top left", "Bottom right"})
	for index, plane := range sc.Planes {
		table.Append([]string{
			fmt.Sprintf("%d", index),
			fmt.Sprintf("%d", plane.LayerIndex),
			fmt.Sprintf("%.3f", plane.Depth),
			fmt.Sprintf("%d", plane.LastRecord-plane.FirstRecord),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", plane.TopLeft[0], plane.TopLeft[1], plane.TopLeft[2]),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", plane.BottomRight[0], plane.BottomRight[1], plane.BottomRight[2]),
		})
	}
	table.Render()

	logger.Noticef(
		"scene %q: %dx%d camera grid, baseline %.3f m, %d planes, %d camera records, %d textures\n%s",
		sc.SceneName,
		sc.HorizontalCameraCount, sc.VerticalCameraCount,
		sc.Baseline,
		len(sc.Planes), len(sc.Records), len(sc.Textures),
		buf.String(),
	)

	return nil
}
