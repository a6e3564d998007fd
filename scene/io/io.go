// Package io reads and writes compiled light-field scene archives.
package io

import (
	"fmt"
	"strings"

	"github.com/lumen-render/lumen/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition.
	Read() (*scene.Scene, error)
}

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition.
	Write(*scene.Scene) error
}

// Read scene from file.
func ReadScene(filename string) (*scene.Scene, error) {
	if !strings.HasSuffix(filename, ".zip") {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}
	return newZipSceneReader(filename).Read()
}

// Write scene to file.
func WriteScene(sc *scene.Scene, filename string) error {
	if !strings.HasSuffix(filename, ".zip") {
		return fmt.Errorf("writeScene: unsupported file format")
	}
	return newZipSceneWriter(filename).Write(sc)
}
