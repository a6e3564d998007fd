package asset

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parameters.cfg")
	if err := os.WriteFile(path, []byte("baseline_mm = 50"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewResource(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.IsRemote() {
		t.Fatal("expected local resource not to be flagged as remote")
	}

	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "baseline_mm = 50" {
		t.Fatalf("unexpected resource content %q", string(data))
	}
}

func TestRelativeResource(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "capture", "parameters.cfg")
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	sibling := filepath.Join(dir, "capture", "input_Cam000.png")
	if err := os.WriteFile(sibling, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	baseRes, err := NewResource(base, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer baseRes.Close()

	res, err := NewResource("input_Cam000.png", baseRes)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !strings.HasSuffix(res.Path(), "input_Cam000.png") {
		t.Fatalf("unexpected resolved path %q", res.Path())
	}
}

func TestRemoteResource(t *testing.T) {
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/capture/parameters.cfg" {
			w.Write([]byte("num_cams_x = 9"))
		} else {
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	res, err := NewResource(server.URL+"/capture/parameters.cfg", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !res.IsRemote() {
		t.Fatal("expected http resource to be flagged as remote")
	}

	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "num_cams_x = 9" {
		t.Fatalf("unexpected resource content %q", string(data))
	}

	if _, err = NewResource(server.URL+"/missing.cfg", nil); err == nil {
		t.Fatal("expected an error for a missing remote resource")
	}
}
