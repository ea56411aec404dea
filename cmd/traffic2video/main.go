package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/traffic2video/internal/config"
	"github.com/ivlev/traffic2video/internal/director"
	"github.com/ivlev/traffic2video/internal/export"
	"github.com/ivlev/traffic2video/internal/project"
	"github.com/ivlev/traffic2video/internal/render"
	"github.com/ivlev/traffic2video/internal/sampler"
	"github.com/ivlev/traffic2video/internal/scene"
	"github.com/ivlev/traffic2video/internal/system"
)

func main() {
	system.InitResourceLimits()

	for _, d := range []string{"input/projects", "output"} {
		os.MkdirAll(d, 0755)
	}

	projectPtr := flag.String("project", "", "Project file (.json/.yaml); default: newest file in input/projects/")
	outputPtr := flag.String("output", "", "Output video path (default: generated under output/)")
	widthPtr := flag.Int("width", 0, "Canvas width override (0 = from project)")
	heightPtr := flag.Int("height", 0, "Canvas height override (0 = from project)")
	fpsPtr := flag.Int("fps", 30, "Frames per second")
	workersPtr := flag.Int("workers", 0, "Render workers (0 = auto)")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 = auto; x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	hiddenPtr := flag.Bool("spawn-hidden", false, "Hide vehicles before their first waypoint instead of clamping to it")
	qrPtr := flag.String("qr", "", "Content for a QR code overlay in the bottom-right corner")
	demoPtr := flag.Bool("demo", false, "Write a demo intersection project and exit")
	formatPtr := flag.String("format", "json", "Demo project format: json or yaml")
	statsPtr := flag.Bool("stats", false, "Print a performance report after export")

	flag.Parse()

	if *demoPtr {
		if err := writeDemo(*projectPtr, *formatPtr); err != nil {
			log.Fatalf("[-] Demo generation failed: %v", err)
		}
		return
	}

	projectPath := *projectPtr
	if projectPath == "" {
		latest, err := system.FindLatestProject("input/projects")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a project file in input/projects/ or pass -project", err)
		}
		projectPath = latest
		fmt.Printf("[*] Selected project: %s\n", projectPath)
	}

	sc, warnings, err := project.Load(projectPath)
	if err != nil {
		log.Fatalf("[-] Could not load project: %v", err)
	}
	for _, w := range warnings {
		fmt.Printf("[!] Skipping vehicle: %v\n", w)
	}
	if len(sc.Vehicles) == 0 {
		log.Fatalf("[-] Error: project has no usable vehicles")
	}

	if *widthPtr > 0 {
		sc.Width = *widthPtr
	}
	if *heightPtr > 0 {
		sc.Height = *heightPtr
	}
	// Even dimensions keep yuv420p encoders happy.
	if sc.Width%2 != 0 {
		sc.Width++
	}
	if sc.Height%2 != 0 {
		sc.Height++
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Hardware acceleration detected: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	workers := *workersPtr
	if workers <= 0 {
		workers = system.AutoWorkers(sc.Width, sc.Height)
	}

	output := *outputPtr
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(projectPath), filepath.Ext(projectPath))
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		output = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", base, timestamp))
	}

	cfg := &config.Config{
		ProjectPath:  projectPath,
		OutputVideo:  output,
		Width:        sc.Width,
		Height:       sc.Height,
		FPS:          *fpsPtr,
		Workers:      workers,
		VideoEncoder: encoderName,
		Quality:      quality,
		SpawnHidden:  *hiddenPtr,
		QRContent:    *qrPtr,
		ShowStats:    *statsPtr,
	}

	if err := runExport(sc, cfg); err != nil {
		log.Fatalf("[-] Export failed: %v", err)
	}
	fmt.Printf("[+++] Done! Result: %s\n", cfg.OutputVideo)
}

func runExport(sc *scene.Scene, cfg *config.Config) error {
	startTime := time.Now()

	policy := sampler.SpawnClamp
	if cfg.SpawnHidden {
		policy = sampler.SpawnHidden
	}
	renderer, err := render.New(sampler.Sampler{Spawn: policy}, cfg.QRContent)
	if err != nil {
		return fmt.Errorf("renderer init: %w", err)
	}

	duration := sc.Duration()
	fmt.Printf("[*] Scene: %dx%d | %d vehicles | %.1fs @ %d FPS | %d workers\n",
		sc.Width, sc.Height, len(sc.Vehicles), duration, cfg.FPS, cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lastReport := 0
	exporter := &export.Exporter{
		Renderer: renderer,
		Encoder:  &export.FFmpegEncoder{},
		Workers:  cfg.Workers,
		Progress: func(frame, total int) {
			if frame-lastReport >= cfg.FPS || frame == total {
				lastReport = frame
				fmt.Printf("[>] Frame %d/%d\n", frame, total)
			}
		},
	}

	spec := export.StreamSpec{
		Width:   sc.Width,
		Height:  sc.Height,
		FPS:     cfg.FPS,
		Encoder: cfg.VideoEncoder,
		Quality: cfg.Quality,
		Path:    cfg.OutputVideo,
	}
	if err := exporter.Export(ctx, sc, spec); err != nil {
		return err
	}

	if cfg.ShowStats {
		total := time.Since(startTime)
		frames := int(math.Ceil(duration*float64(cfg.FPS))) + 1
		fmt.Printf("--- [PERFORMANCE REPORT] ---\n")
		fmt.Printf("Total Time: %.2fs\n", total.Seconds())
		fmt.Printf("Frames: %d\n", frames)
		fmt.Printf("Effective FPS: %.2f\n", float64(frames)/total.Seconds())
		fmt.Printf("----------------------------\n")
	}
	return nil
}

func writeDemo(path, format string) error {
	if path == "" {
		ext := ".json"
		if format == "yaml" {
			ext = ".yaml"
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		path = filepath.Join("input/projects", fmt.Sprintf("demo_%s%s", timestamp, ext))
	}

	sc, err := director.NewDirector(1280, 720).GenerateIntersection()
	if err != nil {
		return err
	}
	if err := project.Save(sc, path); err != nil {
		return err
	}
	fmt.Printf("[+++] Demo project saved: %s\n", path)
	return nil
}
