package pfm

import (
	"bytes"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	src := &Image{
		Width:  3,
		Height: 2,
		Data:   []float32{0.5, 1.25, -2, 7.5, 0, 42},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Width != src.Width || got.Height != src.Height {
		t.Fatalf("expected dims %dx%d; got %dx%d", src.Width, src.Height, got.Width, got.Height)
	}
	for i, v := range src.Data {
		if got.Data[i] != v {
			t.Fatalf("expected sample %d to be %f; got %f", i, v, got.Data[i])
		}
	}
	if got.At(2, 1) != 42 {
		t.Fatalf("expected At(2,1) to be 42; got %f", got.At(2, 1))
	}
}

func TestDecodeRejectsColorMaps(t *testing.T) {
	_, err := Decode(strings.NewReader("PF\n1 1\n-1.0\n"))
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected color map rejection; got %v", err)
	}
}

func TestDecodeInvalidHeader(t *testing.T) {
	type spec struct {
		input string
	}
	specs := []spec{
		{"P5\n1 1\n-1.0\n"},
		{"Pf\n0 4\n-1.0\n"},
		{"Pf\n2 2\nzero\n"},
		{"Pf\n2 2\n-1.0\nshort"},
	}

	for index, s := range specs {
		if _, err := Decode(strings.NewReader(s.input)); err == nil {
			t.Fatalf("[spec %d] expected a decode error", index)
		}
	}
}
