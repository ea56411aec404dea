// Package export iterates a scenario at a fixed frame rate and feeds the
// rendered frames to a video encoder. Frame times are k/fps for
// k = 0 .. ceil(duration*fps); positions come from the same sampler the
// live preview uses, so an exported video and a preview of the same scene
// can never diverge.
package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/traffic2video/internal/render"
	"github.com/ivlev/traffic2video/internal/scene"
)

// Exporter drives one export pass. Rendering is fanned out over Workers
// goroutines; frames are written to the encoder strictly in order.
type Exporter struct {
	Renderer *render.Renderer
	Encoder  VideoEncoder
	Workers  int

	// Progress, when set, is called after each written frame.
	Progress func(frame, total int)
}

type frameJob struct {
	index int
	out   chan *image.RGBA
}

// Export renders sc into the video described by spec. The scene's tracks
// are snapshotted first, so interactive edits after Export returns to the
// caller's control cannot race the pass. Cancelling ctx stops the iteration
// and discards the partially written output file.
func (e *Exporter) Export(ctx context.Context, sc *scene.Scene, spec StreamSpec) error {
	if spec.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", spec.FPS)
	}

	snap := snapshot(sc)
	duration := snap.Duration()
	if duration <= 0 {
		return fmt.Errorf("scene has no vehicle motion to export")
	}

	// Inclusive upper bound: the final frame shows every vehicle at rest.
	lastFrame := int(math.Ceil(duration * float64(spec.FPS)))
	total := lastFrame + 1

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	g, ctx := errgroup.WithContext(ctx)

	jobs := make(chan frameJob, workers)
	// queue carries per-frame result channels in presentation order, so the
	// writer reorders whatever the workers finish first.
	queue := make(chan chan *image.RGBA, workers*2)

	g.Go(func() error {
		defer close(jobs)
		defer close(queue)
		for k := 0; k <= lastFrame; k++ {
			job := frameJob{index: k, out: make(chan *image.RGBA, 1)}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case queue <- job.out:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for job := range jobs {
				t := float64(job.index) / float64(spec.FPS)
				job.out <- e.Renderer.Frame(snap, t)
			}
			return nil
		})
	}

	g.Go(func() error {
		stream, err := e.Encoder.Start(ctx, spec)
		if err != nil {
			return err
		}
		written := 0
		for out := range queue {
			var img *image.RGBA
			select {
			case img = <-out:
			case <-ctx.Done():
				stream.Close()
				return ctx.Err()
			}
			err := stream.WriteFrame(img)
			e.Renderer.Release(img)
			if err != nil {
				stream.Close()
				return err
			}
			written++
			if e.Progress != nil {
				e.Progress(written, total)
			}
		}
		return stream.Close()
	})

	if err := g.Wait(); err != nil {
		// Never leave a truncated video behind.
		os.Remove(spec.Path)
		return err
	}
	return nil
}

// snapshot deep-copies every vehicle track so the export pass samples a
// frozen scene.
func snapshot(sc *scene.Scene) *scene.Scene {
	snap := *sc
	snap.Vehicles = make([]*scene.Vehicle, 0, len(sc.Vehicles))
	for _, v := range sc.Vehicles {
		cv := *v
		if v.Track != nil {
			cv.Track = v.Track.Clone()
		}
		snap.Vehicles = append(snap.Vehicles, &cv)
	}
	return &snap
}
