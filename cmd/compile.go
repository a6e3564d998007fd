package cmd

import (
	"errors"
	"strings"

	"github.com/lumen-render/lumen/asset/capture"
	"github.com/lumen-render/lumen/scene/compiler"
	"github.com/lumen-render/lumen/scene/io"
	"github.com/urfave/cli"
)

// Compile capture directories to binary scene archives.
func CompileCapture(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing capture directory argument")
	}

	sliceCount := ctx.Int("slices")
	for idx := 0; idx < ctx.NArg(); idx++ {
		captureDir := strings.TrimSuffix(ctx.Args().Get(idx), "/")

		logger.Noticef("loading capture: %s", captureDir)
		cap, err := capture.Load(captureDir, sliceCount)
		if err != nil {
			return err
		}

		sc, err := compiler.Compile(cap)
		if err != nil {
			return err
		}

		zipFile := ctx.String("out")
		if zipFile == "" || ctx.NArg() > 1 {
			zipFile = captureDir + ".zip"
		}

		if err = io.WriteScene(sc, zipFile); err != nil {
			return err
		}
		logger.Noticef("wrote compiled scene to %s", zipFile)
	}

	return nil
}
