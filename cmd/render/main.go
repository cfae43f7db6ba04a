package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"icos-renderer/internal/config"
	"icos-renderer/internal/scheduler"
	"icos-renderer/internal/snapshot"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json or config.yaml")
	shapeList := flag.String("shape", "", "Comma-separated shapes to render (default: all known)")
	frames := flag.Int("frames", 0, "Frames per parameter sweep (default: 24; 1 renders defaults only)")
	param := flag.Int("param", -1, "Index of the parameter to sweep (default: 0)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	catalog := flag.String("catalog", "", "Directory of shape descriptors")
	url := flag.String("url", "", "Base URL of a descriptor server")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	format := flag.String("format", "", "Image format: webp or tga (default: webp)")
	size := flag.Int("size", 0, "Image size in pixels (default: 256)")
	quiet := flag.Bool("quiet", false, "Hide the progress bar")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		CatalogDir:    *catalog,
		DescriptorURL: *url,
		OutputDir:     *outputDir,
		Format:        *format,
		Size:          *size,
		Workers:       *workers,
	})
	if *frames > 0 {
		cfg.SweepFrames = *frames
	}
	if *param >= 0 {
		cfg.SweepParam = *param
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.Logger(os.Stderr)
	src, _ := cfg.Source(logger)

	axes, err := scheduler.LoadAxes(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading constants: %v\n", err)
		os.Exit(1)
	}

	names := splitList(*shapeList)
	if len(names) == 0 {
		names, err = listShapes(ctx, src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing shapes: %v\n", err)
			os.Exit(1)
		}
	}

	// Build jobs
	var jobs []snapshot.Job
	loadFailed := 0
	for _, name := range names {
		sess, err := scheduler.LoadSession(ctx, src, name, axes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", name, err)
			loadFailed++
			continue
		}
		sj, err := snapshot.Sweep(sess, cfg.SweepParam, cfg.SweepFrames)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", name, err)
			loadFailed++
			continue
		}
		fmt.Printf("  %-16s %d meshes, %d instances, %d params, %d frames\n",
			name, len(sess.Sets()), sess.Instances(), sess.Arity(), len(sj))
		jobs = append(jobs, sj...)
	}

	if len(jobs) == 0 {
		fmt.Println("No frames to render.")
		os.Exit(1)
	}

	fmt.Printf("Icosahedral shape renderer → %s\n", strings.ToUpper(cfg.Format))
	fmt.Printf("Frames: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	snapCfg := snapshot.FromConfig(cfg)
	if !*quiet {
		snapCfg.Progress = os.Stderr
	}
	results := snapshot.Run(ctx, snapCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []snapshot.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s#%d: %s\n", e.Shape, e.Frame, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := snapshot.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 || loadFailed > 0 {
		os.Exit(1)
	}
}
