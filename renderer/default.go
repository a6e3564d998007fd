package renderer

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/lumen-render/lumen/log"
	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/tracer"
	"github.com/lumen-render/lumen/tracer/lightfield"
)

// The default renderer drives a pool of cpu tracers sharing one RGBA8 frame
// buffer. Each frame is split into contiguous row blocks by the attached
// scheduler and the blocks are rendered in parallel.
type defaultRenderer struct {
	logger log.Logger

	options Options
	sc      *scene.Scene

	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer

	blockAssignments []uint32
	frameBuffer      []uint8

	doneChan chan uint32
	errChan  chan error

	stats FrameStats
}

// Create a new default renderer using the specified block scheduler. One
// tracer is attached per logical CPU, capped to the frame height so every
// tracer receives at least one row.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	return newDefault(sc, scheduler, opts)
}

func newDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (*defaultRenderer, error) {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}

	numTracers := runtime.NumCPU()
	if uint32(numTracers) > opts.FrameH {
		numTracers = int(opts.FrameH)
	}
	if numTracers == 0 {
		return nil, ErrNoTracers
	}

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		options:     opts,
		sc:          sc,
		scheduler:   scheduler,
		frameBuffer: make([]uint8, opts.FrameW*opts.FrameH*4),
		doneChan:    make(chan uint32, numTracers),
		errChan:     make(chan error, numTracers),
	}

	for index := 0; index < numTracers; index++ {
		tr := lightfield.NewTracer(fmt.Sprintf("cpu-%d", index), opts.Background)
		if err := tr.Init(opts.FrameW, opts.FrameH, r.frameBuffer); err != nil {
			r.Close()
			return nil, err
		}
		tr.Update(tracer.SceneData, sc)
		r.tracers = append(r.tracers, tr)
	}
	r.logger.Infof("attached %d tracers for a %dx%d frame", numTracers, opts.FrameW, opts.FrameH)

	return r, nil
}

// Render a single frame, blocking until all assigned blocks complete.
func (r *defaultRenderer) Render() error {
	start := time.Now()
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	var blockY uint32
	for index, tr := range r.tracers {
		tr.Enqueue(tracer.BlockRequest{
			BlockY:     blockY,
			BlockH:     r.blockAssignments[index],
			MaxBounces: r.options.MaxBounces,
			FrameCount: 1,
			DoneChan:   r.doneChan,
			ErrChan:    r.errChan,
		})
		blockY += r.blockAssignments[index]
	}

	var doneRows uint32
	var firstErr error
	for pending := len(r.tracers); pending > 0; pending-- {
		select {
		case rows := <-r.doneChan:
			doneRows += rows
		case err := <-r.errChan:
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if doneRows != r.options.FrameH {
		return fmt.Errorf("renderer: rendered %d of %d frame rows", doneRows, r.options.FrameH)
	}

	r.collectStats(time.Since(start))
	return nil
}

// The rendered frame as an image sharing the tracer frame buffer. Only valid
// after a successful Render call and until the next one.
func (r *defaultRenderer) Frame() *image.RGBA {
	return &image.RGBA{
		Pix:    r.frameBuffer,
		Stride: int(r.options.FrameW) * 4,
		Rect:   image.Rect(0, 0, int(r.options.FrameW), int(r.options.FrameH)),
	}
}

func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Forward a camera update to all attached tracers.
func (r *defaultRenderer) updateCamera(camera *scene.Camera) {
	for _, tr := range r.tracers {
		tr.Update(tracer.CameraData, camera)
	}
}

func (r *defaultRenderer) collectStats(frameTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: frameTime,
	}

	for index, tr := range r.tracers {
		stats := tr.Stats()
		r.stats.Tracers[index] = TracerStat{
			Id:           tr.Id(),
			BlockH:       stats.BlockH,
			FramePercent: float32(stats.BlockH) * 100.0 / float32(r.options.FrameH),
			RenderTime:   stats.RenderTime,
		}
	}
}
