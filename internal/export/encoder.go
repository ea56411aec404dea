package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// StreamSpec describes the single continuous video stream an export
// produces.
type StreamSpec struct {
	Width   int
	Height  int
	FPS     int
	Encoder string // ffmpeg -c:v value, e.g. libx264
	Quality int
	Path    string
}

// FrameStream consumes rendered frames in presentation order.
type FrameStream interface {
	WriteFrame(img *image.RGBA) error
	// Close flushes the stream and waits for the encoder to finish.
	Close() error
}

// VideoEncoder opens a frame stream for a spec. The production
// implementation shells out to ffmpeg; tests substitute an in-memory one.
type VideoEncoder interface {
	Start(ctx context.Context, spec StreamSpec) (FrameStream, error)
}

// FFmpegEncoder streams raw RGBA frames into an ffmpeg process over stdin.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Start(ctx context.Context, spec StreamSpec) (FrameStream, error) {
	args := buildFFmpegArgs(spec)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &ffmpegStream{cmd: cmd, stdin: stdin, log: &out, spec: spec}, nil
}

func buildFFmpegArgs(spec StreamSpec) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-framerate", fmt.Sprintf("%d", spec.FPS),
		"-i", "-",
		"-r", fmt.Sprintf("%d", spec.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", spec.Encoder,
	}

	switch spec.Encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no CRF knob on every version; drive it by bitrate.
		bitrate := spec.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", spec.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", spec.Quality), "-preset", "medium")
	}

	args = append(args, spec.Path)
	return args
}

type ffmpegStream struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   *bytes.Buffer
	spec  StreamSpec
}

func (s *ffmpegStream) WriteFrame(img *image.RGBA) error {
	bounds := img.Bounds()
	if bounds.Dx() != s.spec.Width || bounds.Dy() != s.spec.Height {
		return fmt.Errorf("frame size %dx%d does not match stream %dx%d",
			bounds.Dx(), bounds.Dy(), s.spec.Width, s.spec.Height)
	}
	if img.Stride != bounds.Dx()*4 {
		return fmt.Errorf("unexpected frame stride %d", img.Stride)
	}
	_, err := s.stdin.Write(img.Pix)
	return err
}

func (s *ffmpegStream) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg error: %w\nlog: %s", err, s.log.String())
	}
	return nil
}
