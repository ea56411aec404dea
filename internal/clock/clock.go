// Package clock decouples scenario time from its source. Live preview reads
// wall-clock time; export and tests step a synthetic fixed-rate clock. The
// sampler never knows which one is driving it.
package clock

import "time"

// Source yields monotonic scenario time in seconds, one value per tick.
type Source interface {
	// Now returns the current scenario time. Successive calls never go
	// backwards.
	Now() float64
}

// Wall derives scenario time from the wall clock, starting at zero.
type Wall struct {
	start time.Time
}

// NewWall starts a wall clock at scenario time zero.
func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

func (w *Wall) Now() float64 {
	return time.Since(w.start).Seconds()
}

// FixedStep produces the exact frame times an exporter iterates: k/fps for
// k = 0, 1, 2, ... Advance moves to the next frame.
type FixedStep struct {
	fps   int
	frame int
}

// NewFixedStep creates a fixed-step clock at frame zero.
func NewFixedStep(fps int) *FixedStep {
	if fps <= 0 {
		fps = 30
	}
	return &FixedStep{fps: fps}
}

func (f *FixedStep) Now() float64 {
	return float64(f.frame) / float64(f.fps)
}

// Advance steps to the next frame and returns its time.
func (f *FixedStep) Advance() float64 {
	f.frame++
	return f.Now()
}

// Frame returns the current frame index.
func (f *FixedStep) Frame() int {
	return f.frame
}
