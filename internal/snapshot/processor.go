// Package snapshot renders shape frames to image files with a worker
// pool.
package snapshot

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/schollz/progressbar/v3"

	"icos-renderer/internal/config"
	"icos-renderer/internal/postprocess"
	"icos-renderer/internal/raster"
	"icos-renderer/internal/scheduler"
)

// Config holds all shared settings for a snapshot run.
type Config struct {
	OutputDir   string
	Format      string
	RenderSize  int
	Supersample int
	Yaw, Pitch  float64
	FOV         float64
	Workers     int

	// Progress receives a progress bar; nil renders silently.
	Progress io.Writer
}

// FromConfig copies the render settings of c.
func FromConfig(c config.Config) Config {
	return Config{
		OutputDir:   c.OutputDir,
		Format:      c.Format,
		RenderSize:  c.RenderSize,
		Supersample: c.Supersample,
		Yaw:         c.Yaw,
		Pitch:       c.Pitch,
		FOV:         c.FOV,
		Workers:     c.Workers,
	}
}

// Job is one frame to render.
type Job struct {
	Shape  string
	Frame  int
	Params []float64
	Meshes []scheduler.Mesh
	Radius float64
}

// Result holds the outcome of rendering one job.
type Result struct {
	Shape   string
	Frame   int
	Params  []float64
	Image   string
	Success bool
	Error   string
}

// Run renders all jobs using a worker pool. Jobs not yet started when ctx
// is cancelled fail with the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)

	var bar *progressbar.ProgressBar
	if cfg.Progress != nil {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(cfg.Progress),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	} else {
		bar = progressbar.DefaultSilent(int64(total))
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx] = failed(jobs[idx], err)
				} else {
					results[idx] = processJob(cfg, jobs[idx])
				}
				_ = bar.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	_ = bar.Finish()

	return results
}

// RelPath is the output path of a job relative to the output directory.
func RelPath(cfg Config, j Job) string {
	return filepath.Join(j.Shape, fmt.Sprintf("%04d.%s", j.Frame, cfg.Format))
}

func failed(j Job, err error) Result {
	return Result{Shape: j.Shape, Frame: j.Frame, Params: j.Params, Error: err.Error()}
}

// RenderImage renders j at the configured size, downsampling any
// supersampled render.
func RenderImage(cfg Config, j Job) *image.NRGBA {
	img := raster.Render(j.Meshes, raster.Options{
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
		Yaw:         cfg.Yaw,
		Pitch:       cfg.Pitch,
		FOV:         cfg.FOV,
		Radius:      j.Radius,
	})
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.RenderSize)
	}
	return img
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case config.FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("snapshot: webp encode: %w", err)
		}
	case config.FormatTGA:
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("snapshot: tga encode: %w", err)
		}
	default:
		return fmt.Errorf("snapshot: unknown format %q", format)
	}
	return nil
}

func processJob(cfg Config, j Job) Result {
	img := RenderImage(cfg, j)

	rel := RelPath(cfg, j)
	outPath := filepath.Join(cfg.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return failed(j, err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return failed(j, err)
	}
	defer f.Close()

	if err := Encode(f, img, cfg.Format); err != nil {
		return failed(j, err)
	}

	return Result{Shape: j.Shape, Frame: j.Frame, Params: j.Params, Image: filepath.ToSlash(rel), Success: true}
}
