// Package pfm implements the portable float map format used by light-field
// capture pipelines for ground-truth depth and disparity maps.
package pfm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// A decoded float map. Data is stored in top-down row-major order, one
// float32 per pixel. Only the single-channel ("Pf") variant is supported;
// captures never ship RGB float maps.
type Image struct {
	Width  int
	Height int
	Data   []float32
}

// Get the sample at x, y.
func (img *Image) At(x, y int) float32 {
	return img.Data[y*img.Width+x]
}

// Decode a PFM stream.
//
// The header consists of three whitespace-separated tokens: the "Pf" magic,
// the dimensions and a scale factor whose sign encodes endianness (negative
// means little-endian). Rows are stored bottom-up and are flipped while
// reading so that Data is top-down.
func Decode(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, err
	}
	if magic == "PF" {
		return nil, fmt.Errorf("pfm: color float maps are not supported")
	}
	if magic != "Pf" {
		return nil, fmt.Errorf("pfm: invalid magic %q", magic)
	}

	var width, height int
	if width, err = readInt(br); err != nil {
		return nil, err
	}
	if height, err = readInt(br); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pfm: invalid dimensions %dx%d", width, height)
	}

	scaleTok, err := readToken(br)
	if err != nil {
		return nil, err
	}
	var scale float64
	if _, err = fmt.Sscanf(scaleTok, "%g", &scale); err != nil || scale == 0 {
		return nil, fmt.Errorf("pfm: invalid scale %q", scaleTok)
	}
	byteOrder := binary.ByteOrder(binary.BigEndian)
	if scale < 0 {
		byteOrder = binary.LittleEndian
	}

	raw := make([]byte, width*height*4)
	if _, err = io.ReadFull(br, raw); err != nil {
		return nil, fmt.Errorf("pfm: truncated sample data: %s", err.Error())
	}

	img := &Image{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}

	// flip bottom-up rows while copying
	for row := 0; row < height; row++ {
		srcOff := (height - 1 - row) * width * 4
		for col := 0; col < width; col++ {
			bits := byteOrder.Uint32(raw[srcOff+col*4:])
			img.Data[row*width+col] = math.Float32frombits(bits)
		}
	}

	return img, nil
}

// Encode img as a little-endian PFM stream.
func Encode(w io.Writer, img *Image) error {
	if len(img.Data) != img.Width*img.Height {
		return fmt.Errorf("pfm: sample count %d does not match %dx%d", len(img.Data), img.Width, img.Height)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Pf\n%d %d\n-1.0\n", img.Width, img.Height)

	var scratch [4]byte
	for row := img.Height - 1; row >= 0; row-- {
		for col := 0; col < img.Width; col++ {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(img.Data[row*img.Width+col]))
			if _, err := bw.Write(scratch[:]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// Read the next whitespace-delimited header token.
func readToken(br *bufio.Reader) (string, error) {
	var token []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", fmt.Errorf("pfm: truncated header: %s", err.Error())
		}
		if b == ' ' || b == '\n' || b == '\r' || b == '\t' {
			if len(token) == 0 {
				continue
			}
			return string(token), nil
		}
		token = append(token, b)
	}
}

func readInt(br *bufio.Reader) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, err
	}
	var v int
	if _, err = fmt.Sscanf(tok, "%d", &v); err != nil {
		return 0, fmt.Errorf("pfm: invalid dimension %q", tok)
	}
	return v, nil
}
