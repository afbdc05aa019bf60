package batch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"cpu-rasterizer/internal/postprocess"
	"cpu-rasterizer/internal/raster"
)

// Config holds the shared settings of an export run.
type Config struct {
	OutputDir string
	// Thumbnail is the longer side of an extra downscaled copy per frame;
	// zero disables thumbnails.
	Thumbnail int
	Workers   int
	// Progress enables the periodic progress line on stdout.
	Progress bool
}

// Result holds the outcome of exporting one frame.
type Result struct {
	Index     int
	Image     string
	Thumbnail string
	Width     int
	Height    int
	Success   bool
	Error     string
}

// FrameName is the file name of frame i.
func FrameName(i int) string { return fmt.Sprintf("frame_%04d.webp", i) }

// Run encodes every frame to WebP using a worker pool.
func Run(cfg Config, frames []raster.Target) []Result {
	total := len(frames)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	workers := max(cfg.Workers, 1)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Printf("  [%d/%d] %.1f frames/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	frameChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range frameChan {
				results[idx] = exportFrame(cfg, idx, frames[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range frames {
		frameChan <- i
	}
	close(frameChan)

	wg.Wait()
	close(done)

	return results
}

func exportFrame(cfg Config, idx int, frame raster.Target) Result {
	res := Result{
		Index:  idx,
		Image:  FrameName(idx),
		Width:  frame.Width,
		Height: frame.Height,
	}
	if !frame.Valid() {
		res.Error = "empty frame"
		return res
	}

	img := frame.ToNRGBA()
	if err := writeWebP(filepath.Join(cfg.OutputDir, res.Image), img); err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.Thumbnail > 0 {
		thumb := filepath.Join("thumbs", res.Image)
		small := postprocess.Downsample(img, cfg.Thumbnail)
		if err := writeWebP(filepath.Join(cfg.OutputDir, thumb), small); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Thumbnail = filepath.ToSlash(thumb)
	}

	res.Success = true
	return res
}

func writeWebP(path string, img *image.NRGBA) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: mkdir %s: %w", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("batch: encode %s: %w", path, err)
	}
	return nil
}
