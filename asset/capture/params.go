// Package capture loads raw light-field captures: the parameters.cfg
// metadata file, the camera-grid images and the per-camera depth maps.
package capture

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/lumen-render/lumen/asset"
	"github.com/lumen-render/lumen/types"
)

const (
	metaSection      = "meta"
	intrinsicSection = "intrinsics"
	extrinsicSection = "extrinsics"
)

// Capture-level metadata. Only the disparity fields influence compilation;
// the rest is carried along for tooling output.
type Meta struct {
	Scene         string
	Category      string
	Version       string
	DispMin       float32
	DispMax       float32
	DepthMapScale float32
}

// Per-camera sensor parameters. All captured cameras share one sensor.
type Intrinsics struct {
	// in millimeters
	FocalLengthMM float32
	SensorSizeMM  float32

	// in pixels
	ImageWidth  uint32
	ImageHeight uint32

	FStop float32
}

// Focal length in meters.
func (in *Intrinsics) FocalLength() float32 {
	return in.FocalLengthMM * 0.001
}

// Sensor size in meters.
func (in *Intrinsics) SensorSize() float32 {
	return in.SensorSizeMM * 0.001
}

// Capture rig placement: grid dimensions, camera spacing and the pose of the
// grid center camera.
type Extrinsics struct {
	HorizontalCameraCount uint32
	VerticalCameraCount   uint32

	// in millimeters
	BaselineMM float32

	// in meters
	FocusDistance float32
	CameraCenter  types.Vec3

	// in radians
	CameraRotation types.Vec3

	Offset float32
}

// Baseline in meters.
func (ex *Extrinsics) Baseline() float32 {
	return ex.BaselineMM * 0.001
}

// Rotation matrix for the grid center camera (Rz * Ry * Rx).
func (ex *Extrinsics) RotationMatrix() types.Mat4 {
	return types.RotateZ4(ex.CameraRotation[2]).
		Mul4(types.RotateY4(ex.CameraRotation[1])).
		Mul4(types.RotateX4(ex.CameraRotation[0]))
}

// The parsed parameters.cfg contents.
type Params struct {
	Meta       Meta
	Intrinsics Intrinsics
	Extrinsics Extrinsics
}

// Parse a parameters.cfg resource: "[section]" headers followed by
// "key = value" pairs, '#' starting a comment.
func LoadParams(res *asset.Resource) (*Params, error) {
	sections := map[string]map[string]string{}
	section := ""

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			if _, exists := sections[section]; !exists {
				sections[section] = map[string]string{}
			}
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("params: malformed line %q in %s", line, res.Path())
		}
		if section == "" {
			return nil, fmt.Errorf("params: entry %q outside of a section in %s", line, res.Path())
		}
		sections[section][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("params: could not read %s: %s", res.Path(), err.Error())
	}

	params := &Params{}
	if err := params.Meta.load(sections); err != nil {
		return nil, err
	}
	if err := params.Intrinsics.load(sections); err != nil {
		return nil, err
	}
	if err := params.Extrinsics.load(sections); err != nil {
		return nil, err
	}

	if params.Extrinsics.HorizontalCameraCount == 0 || params.Extrinsics.VerticalCameraCount == 0 {
		return nil, fmt.Errorf("params: capture grid must contain at least one camera")
	}

	return params, nil
}

type sectionReader struct {
	section map[string]string
	name    string
	err     error
}

func newSectionReader(sections map[string]map[string]string, name string) *sectionReader {
	sr := &sectionReader{section: sections[name], name: name}
	if sr.section == nil {
		sr.err = fmt.Errorf("params: %s section is missing", name)
	}
	return sr
}

func (sr *sectionReader) str(key string) string {
	if sr.err != nil {
		return ""
	}
	value, exists := sr.section[key]
	if !exists {
		sr.err = fmt.Errorf("params: %s is missing from the %s section", key, sr.name)
	}
	return value
}

func (sr *sectionReader) float(key string) float32 {
	raw := sr.str(key)
	if sr.err != nil {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		sr.err = fmt.Errorf("params: %s.%s: invalid number %q", sr.name, key, raw)
	}
	return float32(value)
}

func (sr *sectionReader) uint(key string) uint32 {
	raw := sr.str(key)
	if sr.err != nil {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		sr.err = fmt.Errorf("params: %s.%s: invalid count %q", sr.name, key, raw)
	}
	return uint32(value)
}

func (m *Meta) load(sections map[string]map[string]string) error {
	sr := newSectionReader(sections, metaSection)
	m.Scene = sr.str("scene")
	m.Category = sr.str("category")
	m.Version = sr.str("version")
	m.DispMin = sr.float("disp_min")
	m.DispMax = sr.float("disp_max")
	m.DepthMapScale = sr.float("depth_map_scale")
	return sr.err
}

func (in *Intrinsics) load(sections map[string]map[string]string) error {
	sr := newSectionReader(sections, intrinsicSection)
	in.FocalLengthMM = sr.float("focal_length_mm")
	in.SensorSizeMM = sr.float("sensor_size_mm")
	in.ImageWidth = sr.uint("image_resolution_x_px")
	in.ImageHeight = sr.uint("image_resolution_y_px")
	in.FStop = sr.float("fstop")
	return sr.err
}

func (ex *Extrinsics) load(sections map[string]map[string]string) error {
	sr := newSectionReader(sections, extrinsicSection)
	ex.HorizontalCameraCount = sr.uint("num_cams_x")
	ex.VerticalCameraCount = sr.uint("num_cams_y")
	ex.BaselineMM = sr.float("baseline_mm")
	ex.FocusDistance = sr.float("focus_distance_m")
	ex.CameraCenter = types.XYZ(
		sr.float("center_cam_x_m"),
		sr.float("center_cam_y_m"),
		sr.float("center_cam_z_m"),
	)
	ex.CameraRotation = types.XYZ(
		sr.float("center_cam_rx_rad"),
		sr.float("center_cam_ry_rad"),
		sr.float("center_cam_rz_rad"),
	)
	ex.Offset = sr.float("offset")
	return sr.err
}

// SwapAxis converts a capture-space vector (Z up) to viewer space (Y up,
// right-handed): y and z are exchanged and the new z negated.
func SwapAxis(v types.Vec3) types.Vec3 {
	return types.XYZ(v[0], v[2], -v[1])
}
