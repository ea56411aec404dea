package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so long exports do not hit
// the default NOFILE cap (macOS/Linux).
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	}
}

// AutoWorkers picks a render worker count for the export pipeline: one per
// logical core, capped so the in-flight RGBA frame buffers stay under a
// quarter of available memory.
func AutoWorkers(frameWidth, frameHeight int) int {
	workers, err := cpu.Counts(true)
	if err != nil || workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	if vm, err := mem.VirtualMemory(); err == nil && frameWidth > 0 && frameHeight > 0 {
		frameBytes := uint64(frameWidth) * uint64(frameHeight) * 4
		budget := vm.Available / 4
		maxByMem := int(budget / frameBytes)
		if maxByMem < 1 {
			maxByMem = 1
		}
		if workers > maxByMem {
			workers = maxByMem
		}
	}

	return workers
}

// FindLatestProject returns the most recently modified project file
// (.json/.yaml/.yml) in dir.
func FindLatestProject(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	extensions := []string{".json", ".yaml", ".yml"}
	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		isProject := false
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				isProject = true
				break
			}
		}
		if !isProject {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no project files found in %s", dir)
	}
	return latestFile, nil
}

// GetBestH264Encoder probes ffmpeg for hardware H.264 encoders and falls
// back to software libx264. Priority: VideoToolbox (macOS), NVENC (NVIDIA).
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}
