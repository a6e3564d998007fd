package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling
// algorithms. Schedule splits a frame into blocks of variable height and
// returns the block height assignment for each tracer in the input list.
type BlockScheduler interface {
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame using only the static speed estimates
// reported by the tracers.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	var total float64
	for _, tr := range tracers {
		total += float64(tr.Speed())
	}

	return distribute(frameH, tracers, func(tr Tracer) float64 {
		return float64(tr.Speed()) / total
	})
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same and uses the per-tracer row
// throughput of the previous frame to split the next one.
type perfectScheduler struct {
	naive BlockScheduler
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{naive: NaiveScheduler()}
}

func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// No feedback yet; fall back to the static speed estimates
	for _, tr := range tracers {
		stats := tr.Stats()
		if stats.BlockH == 0 || stats.RenderTime == 0 {
			return sch.naive.Schedule(tracers, frameH)
		}
	}

	var total float64
	for _, tr := range tracers {
		stats := tr.Stats()
		total += float64(stats.BlockH) / float64(stats.RenderTime)
	}

	return distribute(frameH, tracers, func(tr Tracer) float64 {
		stats := tr.Stats()
		return float64(stats.BlockH) / float64(stats.RenderTime) / total
	})
}

// Assign each tracer its share of the frame rows, at least one row each. Any
// rows lost to rounding go to the first tracer.
func distribute(frameH uint32, tracers []Tracer, share func(Tracer) float64) []uint32 {
	assignment := make([]uint32, len(tracers))

	var scheduledRows uint32
	for idx, tr := range tracers {
		rows := uint32(math.Max(1.0, math.Floor(share(tr)*float64(frameH))))
		assignment[idx] = rows
		scheduledRows += rows
	}
	assignment[0] += frameH - scheduledRows

	return assignment
}
