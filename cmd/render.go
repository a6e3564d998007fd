package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"runtime"
	"time"

	"github.com/lumen-render/lumen/renderer"
	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/scene/io"
	"github.com/lumen-render/lumen/tracer"
	"github.com/lumen-render/lumen/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Parse the common render flags and load the scene argument.
func setupRender(ctx *cli.Context) (*scene.Scene, renderer.Options, error) {
	opts := renderer.Options{
		FrameW:     uint32(ctx.Int("width")),
		FrameH:     uint32(ctx.Int("height")),
		MaxBounces: uint32(ctx.Int("max-bounces")),
		Background: types.XYZW(0, 0, 0, 1),
	}

	if ctx.NArg() != 1 {
		return nil, opts, errors.New("missing scene file argument")
	}

	sc, err := io.ReadScene(ctx.Args().First())
	if err != nil {
		return nil, opts, err
	}

	// Update projection matrix
	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	return sc, opts, nil
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, opts, err := setupRender(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, tracer.NaiveScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}
	displayFrameStats(r.Stats())

	// Export PNG
	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, r.Frame()); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)

	return nil
}

// Use opengl to render a continuously updating view of the scene from an
// interactively controlled viewpoint.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, opts, err := setupRender(ctx)
	if err != nil {
		return err
	}

	// glBlitFramebuffer copies the texture with the Y axis inverted; render
	// the frame upside-down to compensate.
	sc.Camera.InvertY = true
	sc.Camera.Update()

	// the opengl context is bound to the main thread
	runtime.LockOSThread()

	r, err := renderer.NewInteractive(sc, tracer.PerfectScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
