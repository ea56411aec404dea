// Package preview plays a scenario in real time. A clock source supplies
// scenario time on each tick; frames are rendered through the same sampler
// and renderer the exporter uses and handed to a sink, typically a canvas
// blit in the embedding UI.
package preview

import (
	"context"
	"image"
	"time"

	"github.com/ivlev/traffic2video/internal/clock"
	"github.com/ivlev/traffic2video/internal/render"
	"github.com/ivlev/traffic2video/internal/scene"
)

// FrameSink receives each rendered preview frame together with its scenario
// time. The frame buffer is recycled after the callback returns; sinks that
// keep pixels must copy them.
type FrameSink func(t float64, img *image.RGBA)

// Player runs the preview loop.
type Player struct {
	Renderer *render.Renderer
	FPS      int

	// Clock overrides the time source. Nil means wall clock, which is the
	// interactive default; tests and deterministic replays install a
	// clock.FixedStep instead.
	Clock clock.Source
}

// Play renders sc from scenario time zero until its duration is reached or
// ctx is cancelled, invoking sink for every frame. Structural edits to the
// scene must not happen while Play runs.
func (p *Player) Play(ctx context.Context, sc *scene.Scene, sink FrameSink) error {
	fps := p.FPS
	if fps <= 0 {
		fps = 30
	}

	duration := sc.Duration()

	src := p.Clock
	var step *clock.FixedStep
	if src == nil {
		src = clock.NewWall()
	} else if fs, ok := src.(*clock.FixedStep); ok {
		step = fs
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		t := src.Now()
		if t > duration {
			return nil
		}

		frame := p.Renderer.Frame(sc, t)
		sink(t, frame)
		p.Renderer.Release(frame)

		if step != nil {
			// Synthetic clock: advance frame by frame without waiting, so
			// a replay is exact and as fast as the sink allows.
			step.Advance()
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
