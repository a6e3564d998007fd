package io

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/lumen-render/lumen/log"
	"github.com/lumen-render/lumen/scene"
)

const (
	planeFile   = "planes.bin"
	recordFile  = "cameraRecords.bin"
	textureFile = "textures.bin"
	cameraFile  = "camera.bin"
	metaFile    = "meta.bin"
)

// Scene fields without their own archive entry.
type sceneMeta struct {
	HorizontalCameraCount int32
	VerticalCameraCount   int32
	Baseline              float32
	SceneName             string
}

// Register a faster deflate implementation for the texture-heavy archives.
func newZipWriter(out io.Writer) *zip.Writer {
	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})
	return zw
}

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer.
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zipSceneWriter"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef("writing compressed scene to %s", w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	zw := newZipWriter(zipFile)
	defer zw.Close()

	meta := sceneMeta{
		HorizontalCameraCount: sc.HorizontalCameraCount,
		VerticalCameraCount:   sc.VerticalCameraCount,
		Baseline:              sc.Baseline,
		SceneName:             sc.SceneName,
	}

	entries := []struct {
		name string
		data interface{}
	}{
		{planeFile, sc.Planes},
		{recordFile, sc.Records},
		{textureFile, sc.Textures},
		{cameraFile, sc.Camera},
		{metaFile, meta},
	}

	for _, entry := range entries {
		cw, err := zw.Create(entry.name)
		if err != nil {
			return err
		}
		if err = gob.NewEncoder(cw).Encode(entry.data); err != nil {
			return fmt.Errorf("zipSceneWriter: failed to write %s: %s", entry.name, err.Error())
		}
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

type zipSceneReader struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene reader.
func newZipSceneReader(sceneFile string) *zipSceneReader {
	return &zipSceneReader{
		logger:    log.New("zipSceneReader"),
		sceneFile: sceneFile,
	}
}

// Read scene definition from zip file.
func (p *zipSceneReader) Read() (*scene.Scene, error) {
	p.logger.Noticef("parsing compiled scene from %s", p.sceneFile)
	start := time.Now()

	zr, err := zip.OpenReader(p.sceneFile)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	sc := &scene.Scene{}
	var meta sceneMeta
	var target interface{}
	for _, f := range zr.File {
		switch f.Name {
		case planeFile:
			target = &sc.Planes
		case recordFile:
			target = &sc.Records
		case textureFile:
			target = &sc.Textures
		case cameraFile:
			target = &sc.Camera
		case metaFile:
			target = &meta
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = gob.NewDecoder(rc).Decode(target)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zipSceneReader: failed to load %s: %s", f.Name, err.Error())
		}
	}

	sc.HorizontalCameraCount = meta.HorizontalCameraCount
	sc.VerticalCameraCount = meta.VerticalCameraCount
	sc.Baseline = meta.Baseline
	sc.SceneName = meta.SceneName

	p.logger.Noticef("loaded scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}
