package lightfield

import (
	"fmt"
	"sync"
	"time"

	"github.com/lumen-render/lumen/log"
	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/tracer"
	"github.com/lumen-render/lumen/types"
)

// A pure-Go block tracer. Each instance renders the frame rows assigned to
// it by the scheduler on its own goroutine; the renderer runs one instance
// per logical CPU.
type cpuTracer struct {
	id     string
	logger log.Logger

	frameW      uint32
	frameH      uint32
	frameBuffer []uint8

	// guards the scene state against concurrent updates
	mu       sync.Mutex
	sc       *scene.Scene
	geometry *Geometry
	selector SelectorStrategy
	camera   *scene.Camera

	background types.Vec4

	workChan  chan tracer.BlockRequest
	closeChan chan struct{}
	closeOnce sync.Once

	stats tracer.Stats
}

// Create a new cpu tracer. The background color is composited behind the
// light-field layers of every traced ray.
func NewTracer(id string, background types.Vec4) tracer.Tracer {
	return &cpuTracer{
		id:         id,
		logger:     log.New(id),
		background: background,
		workChan:   make(chan tracer.BlockRequest),
		closeChan:  make(chan struct{}),
	}
}

func (tr *cpuTracer) Id() string {
	return tr.id
}

func (tr *cpuTracer) Flags() tracer.Flag {
	return tracer.Local
}

func (tr *cpuTracer) Speed() uint32 {
	return 1
}

func (tr *cpuTracer) Init(frameW, frameH uint32, frameBuffer []uint8) error {
	if int(frameW*frameH)*4 != len(frameBuffer) {
		return fmt.Errorf("lightfield: frame buffer size mismatch: %dx%d frame into %d bytes", frameW, frameH, len(frameBuffer))
	}

	tr.frameW = frameW
	tr.frameH = frameH
	tr.frameBuffer = frameBuffer

	go tr.worker()
	return nil
}

func (tr *cpuTracer) Close() {
	tr.closeOnce.Do(func() {
		close(tr.closeChan)
	})
}

func (tr *cpuTracer) Enqueue(req tracer.BlockRequest) {
	select {
	case tr.workChan <- req:
	case <-tr.closeChan:
		req.ErrChan <- fmt.Errorf("lightfield: %s is closed", tr.id)
	}
}

func (tr *cpuTracer) Update(updateType tracer.UpdateType, payload interface{}) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	switch updateType {
	case tracer.SceneData:
		sc := payload.(*scene.Scene)
		tr.sc = sc
		tr.geometry = NewGeometry(sc.Planes)
		tr.selector = NewTableSelector(sc)
		tr.camera = sc.Camera
		tr.selector.SetViewpoint(tr.camera.Position)
	case tracer.CameraData:
		tr.camera = payload.(*scene.Camera)
		if tr.selector != nil {
			tr.selector.SetViewpoint(tr.camera.Position)
		}
	}
}

func (tr *cpuTracer) Stats() *tracer.Stats {
	return &tr.stats
}

func (tr *cpuTracer) worker() {
	for {
		select {
		case <-tr.closeChan:
			return
		case req := <-tr.workChan:
			tr.process(req)
		}
	}
}

func (tr *cpuTracer) process(req tracer.BlockRequest) {
	tr.mu.Lock()
	sc, geometry, selector, camera := tr.sc, tr.geometry, tr.selector, tr.camera
	tr.mu.Unlock()

	if sc == nil || camera == nil {
		req.ErrChan <- fmt.Errorf("lightfield: %s received a block before scene data", tr.id)
		return
	}

	start := time.Now()
	compositor := NewCompositor(sc, geometry, selector, int(req.MaxBounces), tr.background)

	topLeft := camera.Frustum[0].Vec3()
	topRight := camera.Frustum[1].Vec3()
	bottomLeft := camera.Frustum[2].Vec3()
	bottomRight := camera.Frustum[3].Vec3()

	for y := req.BlockY; y < req.BlockY+req.BlockH; y++ {
		ty := (float32(y) + 0.5) / float32(tr.frameH)
		offset := int(y*tr.frameW) * 4

		for x := uint32(0); x < tr.frameW; x++ {
			tx := (float32(x) + 0.5) / float32(tr.frameW)

			// interpolate the frustum corner rays for this pixel
			top := topLeft.Lerp(topRight, tx)
			bottom := bottomLeft.Lerp(bottomRight, tx)
			direction := top.Lerp(bottom, ty).Normalize()

			color := compositor.Trace(camera.Position, direction)

			tr.frameBuffer[offset] = quantize(color[0])
			tr.frameBuffer[offset+1] = quantize(color[1])
			tr.frameBuffer[offset+2] = quantize(color[2])
			tr.frameBuffer[offset+3] = quantize(color[3])
			offset += 4
		}
	}

	tr.stats.BlockH = req.BlockH
	tr.stats.RenderTime = time.Since(start)
	tr.logger.Debugf("rendered %d rows at y=%d in %s", req.BlockH, req.BlockY, tr.stats.RenderTime)
	req.DoneChan <- req.BlockH
}

func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
